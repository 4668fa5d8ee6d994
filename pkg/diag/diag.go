// Package diag defines the error taxonomy shared by the generators.
//
// A ConfigError is fatal to one build call. A Degeneracy is never fatal:
// the affected primitive is dropped and the occurrence is handed to a
// Reporter. A missing port is not an error at all; lookups return a
// boolean.
package diag

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrConfiguration matches every ConfigError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigError describes invalid input detected at the start of a build.
type ConfigError struct {
	Component string // e.g. "profile", "helix", "route"
	Field     string // offending field, if any
	Message   string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Component, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Message)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// Configf returns a ConfigError with a formatted message.
func Configf(component, field, format string, args ...any) error {
	return &ConfigError{Component: component, Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// Degeneracy records one primitive that was omitted because a computed
// value was not finite.
type Degeneracy struct {
	Component string // builder family, e.g. "stairway/treads"
	Instance  string // node name of the omitted primitive
	Reason    string
}

func (d Degeneracy) String() string {
	return fmt.Sprintf("%s: omitted %s: %s", d.Component, d.Instance, d.Reason)
}

// Reporter receives degeneracy notices. Implementations must be safe for
// concurrent use; builds of independent equipment may share one.
type Reporter interface {
	Report(d Degeneracy)
}

// Discard drops every report.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Report(Degeneracy) {}

// SlogReporter logs each degeneracy as a warning.
type SlogReporter struct {
	Logger *slog.Logger
}

// NewSlogReporter returns a reporter logging to l, or to slog.Default
// when l is nil.
func NewSlogReporter(l *slog.Logger) *SlogReporter {
	if l == nil {
		l = slog.Default()
	}
	return &SlogReporter{Logger: l}
}

func (r *SlogReporter) Report(d Degeneracy) {
	r.Logger.Warn("numeric degeneracy",
		"component", d.Component,
		"instance", d.Instance,
		"reason", d.Reason)
}

// Collector keeps every report in memory.
type Collector struct {
	mu      sync.Mutex
	reports []Degeneracy
}

func (c *Collector) Report(d Degeneracy) {
	c.mu.Lock()
	c.reports = append(c.reports, d)
	c.mu.Unlock()
}

// Reports returns a copy of the collected reports.
func (c *Collector) Reports() []Degeneracy {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Degeneracy, len(c.reports))
	copy(out, c.reports)
	return out
}

// Len returns the number of collected reports.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reports)
}
