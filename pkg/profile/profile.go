// Package profile implements height-indexed radius functions for tapered
// vessel bodies.
package profile

import (
	"fmt"

	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
)

// RadiusFunc maps a height to an outer body radius.
type RadiusFunc interface {
	Evaluate(height float64) float64
}

// Constant is a RadiusFunc with the same radius at every height.
type Constant float64

func (c Constant) Evaluate(float64) float64 { return float64(c) }

// Section is one linear band of a profile. The band covers
// [HeightStart, HeightEnd).
type Section struct {
	HeightStart float64 `json:"height_start" toml:"height_start" yaml:"height_start"`
	HeightEnd   float64 `json:"height_end" toml:"height_end" yaml:"height_end"`
	RadiusStart float64 `json:"radius_start" toml:"radius_start" yaml:"radius_start"`
	RadiusEnd   float64 `json:"radius_end" toml:"radius_end" yaml:"radius_end"`
}

// Sec is shorthand for a Section literal.
func Sec(h0, h1, r0, r1 float64) Section {
	return Section{HeightStart: h0, HeightEnd: h1, RadiusStart: r0, RadiusEnd: r1}
}

func (s Section) at(height float64) float64 {
	t := (height - s.HeightStart) / (s.HeightEnd - s.HeightStart)
	return s.RadiusStart + (s.RadiusEnd-s.RadiusStart)*t
}

// Profile is an immutable piecewise-linear radius function.
type Profile struct {
	sections []Section
}

// New validates sections and returns the profile. Sections must be given
// in ascending height order and may not overlap; gaps are allowed.
func New(sections ...Section) (*Profile, error) {
	if len(sections) == 0 {
		return nil, diag.Configf("profile", "sections", "at least one section is required")
	}
	for i, s := range sections {
		field := fmt.Sprintf("sections[%d]", i)
		if !geom.Finite(s.HeightStart, s.HeightEnd, s.RadiusStart, s.RadiusEnd) {
			return nil, diag.Configf("profile", field, "non-finite value in %+v", s)
		}
		if s.HeightEnd <= s.HeightStart {
			return nil, diag.Configf("profile", field, "height %.4g..%.4g has no duration", s.HeightStart, s.HeightEnd)
		}
		if s.RadiusStart < 0 || s.RadiusEnd < 0 {
			return nil, diag.Configf("profile", field, "negative radius")
		}
		if i > 0 && s.HeightStart < sections[i-1].HeightEnd {
			return nil, diag.Configf("profile", field, "starts at %.4g inside previous section ending at %.4g",
				s.HeightStart, sections[i-1].HeightEnd)
		}
	}
	p := &Profile{sections: make([]Section, len(sections))}
	copy(p.sections, sections)
	return p, nil
}

// MustNew is like New but panics on error. For fixed, known-good tables.
func MustNew(sections ...Section) *Profile {
	p, err := New(sections...)
	if err != nil {
		panic(err)
	}
	return p
}

// Evaluate returns the radius at height. Outside the profile's domain the
// nearest boundary radius is returned; the profile never extrapolates.
// Inside a gap between sections the previous section's end radius holds.
func (p *Profile) Evaluate(height float64) float64 {
	first := p.sections[0]
	if height < first.HeightStart {
		return first.RadiusStart
	}
	for i, s := range p.sections {
		if height < s.HeightStart {
			return p.sections[i-1].RadiusEnd
		}
		if height < s.HeightEnd {
			return s.at(height)
		}
	}
	return p.sections[len(p.sections)-1].RadiusEnd
}

// Sections returns a copy of the profile's sections.
func (p *Profile) Sections() []Section {
	out := make([]Section, len(p.sections))
	copy(out, p.sections)
	return out
}

// Domain returns the lowest and highest covered heights.
func (p *Profile) Domain() (lo, hi float64) {
	return p.sections[0].HeightStart, p.sections[len(p.sections)-1].HeightEnd
}

// MaxRadius returns the largest radius anywhere on the profile.
func (p *Profile) MaxRadius() float64 {
	m := 0.0
	for _, s := range p.sections {
		m = max(m, s.RadiusStart, s.RadiusEnd)
	}
	return m
}
