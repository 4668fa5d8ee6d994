package port

import (
	"fmt"
	"strings"
)

// Ref names a port on a registered component, written "component.port".
type Ref struct {
	Component string
	Port      string
}

// ParseRef splits "component.port" at the last dot.
func ParseRef(s string) (Ref, error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return Ref{}, fmt.Errorf("port: bad reference %q, want component.port", s)
	}
	return Ref{Component: s[:i], Port: s[i+1:]}, nil
}

func (r Ref) String() string {
	return r.Component + "." + r.Port
}

func (r Ref) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Ref) UnmarshalText(b []byte) error {
	ref, err := ParseRef(string(b))
	if err != nil {
		return err
	}
	*r = ref
	return nil
}
