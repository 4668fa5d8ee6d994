package engine

import (
	"fmt"
	"sort"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/plantkit/pkg/geom"
)

// isKW reports whether s is a rewritten keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs is an argument list split into keyword and positional values.
type kwArgs struct {
	fn         string
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
	// trailing names a keyword that ended the list without a value.
	trailing string
}

// parseArgs splits args for builtin fn. A trailing keyword with no value
// is a flag set to true.
func parseArgs(fn string, args []zygo.Sexp) kwArgs {
	a := kwArgs{fn: fn, kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			a.positional = append(a.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			a.kw[name] = args[i+1]
			i++
		} else {
			a.kw[name] = &zygo.SexpBool{Val: true}
			a.trailing = name
		}
	}
	return a
}

// allow rejects keywords outside known.
func (a kwArgs) allow(known ...string) error {
	var unknown []string
	for k := range a.kw {
		found := false
		for _, n := range known {
			if k == n {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, ":"+k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%s: unknown keyword %s", a.fn, strings.Join(unknown, ", "))
}

// name returns the leading positional string argument.
func (a kwArgs) name() (string, error) {
	if len(a.positional) < 1 {
		return "", fmt.Errorf("%s requires a name argument", a.fn)
	}
	s, err := toString(a.positional[0])
	if err != nil {
		return "", fmt.Errorf("%s: name: %w", a.fn, err)
	}
	if s == "" {
		return "", fmt.Errorf("%s: name is empty", a.fn)
	}
	return s, nil
}

func (a kwArgs) float(key string) (*float64, error) {
	v, ok := a.kw[key]
	if !ok {
		return nil, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", a.fn, key, err)
	}
	return &f, nil
}

// floatOr returns the keyword's value, or def when it is absent.
func (a kwArgs) floatOr(key string, def float64) (float64, error) {
	f, err := a.float(key)
	if err != nil || f == nil {
		return def, err
	}
	return *f, nil
}

func (a kwArgs) integer(key string) (*int, error) {
	v, ok := a.kw[key]
	if !ok {
		return nil, nil
	}
	n, ok := v.(*zygo.SexpInt)
	if !ok {
		return nil, fmt.Errorf("%s: %s: expected integer, got %s", a.fn, key, v.SexpString(nil))
	}
	i := int(n.Val)
	return &i, nil
}

func (a kwArgs) boolean(key string) (*bool, error) {
	v, ok := a.kw[key]
	if !ok {
		return nil, nil
	}
	b, ok := v.(*zygo.SexpBool)
	if !ok {
		return nil, fmt.Errorf("%s: %s: expected true or false, got %s", a.fn, key, v.SexpString(nil))
	}
	val := b.Val
	return &val, nil
}

// flag is boolean with absent meaning false.
func (a kwArgs) flag(key string) (bool, error) {
	b, err := a.boolean(key)
	if err != nil || b == nil {
		return false, err
	}
	return *b, nil
}

func (a kwArgs) str(key string) (string, error) {
	v, ok := a.kw[key]
	if !ok {
		return "", nil
	}
	s, err := toKeywordString(v)
	if err != nil {
		return "", fmt.Errorf("%s: %s: %w", a.fn, key, err)
	}
	return s, nil
}

func (a kwArgs) vec(key string) (geom.Vec3, error) {
	v, ok := a.kw[key]
	if !ok {
		return geom.Vec3{}, nil
	}
	p, err := toVec3(v)
	if err != nil {
		return geom.Vec3{}, fmt.Errorf("%s: %s: %w", a.fn, key, err)
	}
	return p, nil
}

// list returns the keyword's value as a slice, nil when absent.
func (a kwArgs) list(key string) ([]zygo.Sexp, error) {
	v, ok := a.kw[key]
	if !ok {
		return nil, nil
	}
	items, err := sexpListToSlice(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", a.fn, key, err)
	}
	return items, nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", s.SexpString(nil))
}

// toKeywordString accepts :name and "name" alike.
func toKeywordString(s zygo.Sexp) (string, error) {
	if name, ok := isKW(s); ok {
		return name, nil
	}
	str, err := toString(s)
	if err != nil {
		return "", fmt.Errorf("expected keyword or string, got %s", s.SexpString(nil))
	}
	return str, nil
}

func toVec3(s zygo.Sexp) (geom.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec3{}, fmt.Errorf("expected vec3, got %s", s.SexpString(nil))
}

// sexpListToSlice accepts a list, an array, or the empty list.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %s", s.SexpString(nil))
}
