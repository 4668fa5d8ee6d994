// Package helix samples an ascending multi-turn helix wrapped around a
// height-varying radius profile.
package helix

import (
	"math"

	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/profile"
)

// Spec parameterizes the sampled helix.
type Spec struct {
	Turns         float64 `json:"turns" toml:"turns" yaml:"turns"`
	StartHeight   float64 `json:"start_height" toml:"start_height" yaml:"start_height"`
	EndHeight     float64 `json:"end_height" toml:"end_height" yaml:"end_height"`
	AngularOffset float64 `json:"angular_offset" toml:"angular_offset" yaml:"angular_offset"` // radians
	StepCount     int     `json:"step_count" toml:"step_count" yaml:"step_count"`
	Clearance     float64 `json:"clearance" toml:"clearance" yaml:"clearance"` // gap between body and helix
}

// DefaultSpec is a two-turn, 200-step helix offset by 45 degrees with a
// 4 m clearance, rising from 0 to height.
func DefaultSpec(height float64) Spec {
	return Spec{
		Turns:         2,
		StartHeight:   0,
		EndHeight:     height,
		AngularOffset: math.Pi / 4,
		StepCount:     200,
		Clearance:     4,
	}
}

// Validate reports a configuration error for unusable specs.
func (s Spec) Validate() error {
	if !geom.Finite(s.Turns, s.StartHeight, s.EndHeight, s.AngularOffset, s.Clearance) {
		return diag.Configf("helix", "", "non-finite parameter in %+v", s)
	}
	if s.StepCount < 1 {
		return diag.Configf("helix", "step_count", "must be at least 1, got %d", s.StepCount)
	}
	if s.EndHeight <= s.StartHeight {
		return diag.Configf("helix", "end_height", "%.4g is not above start height %.4g", s.EndHeight, s.StartHeight)
	}
	return nil
}

// PathSample is one point on the sampled helix.
type PathSample struct {
	Index    int
	Height   float64
	Angle    float64 // radians about +Y, measured from +X towards +Z
	Radius   float64 // body radius plus clearance
	Position geom.Vec3
	Tangent  geom.Vec3 // unit direction towards the next sample
}

// Finite reports whether the sample's scalar and positional values are
// all finite.
func (p PathSample) Finite() bool {
	return geom.Finite(p.Height, p.Angle, p.Radius) && p.Position.IsFinite()
}

// Radial returns the horizontal unit direction from the axis to the sample.
func (p PathSample) Radial() geom.Vec3 {
	return geom.V3(math.Cos(p.Angle), 0, math.Sin(p.Angle))
}

// At returns a point offset from the helix axis at the sample's angle:
// radius dr beyond the sample's radius and dh above its height.
func (p PathSample) At(dr, dh float64) geom.Vec3 {
	r := p.Radius + dr
	return geom.V3(math.Cos(p.Angle)*r, p.Height+dh, math.Sin(p.Angle)*r)
}

// Point returns the helix point at parameter t in [0, 1].
func Point(body profile.RadiusFunc, s Spec, t float64) (height, angle, radius float64, pos geom.Vec3) {
	height = s.StartHeight + t*(s.EndHeight-s.StartHeight)
	if t == 1 {
		height = s.EndHeight
	}
	angle = t*2*math.Pi*s.Turns + s.AngularOffset
	radius = body.Evaluate(height) + s.Clearance
	pos = geom.V3(math.Cos(angle)*radius, height, math.Sin(angle)*radius)
	return height, angle, radius, pos
}

// Sample returns StepCount+1 samples in ascending order. The last sample
// sits exactly at EndHeight.
func Sample(body profile.RadiusFunc, s Spec) ([]PathSample, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	samples := make([]PathSample, s.StepCount+1)
	for i := range samples {
		t := float64(i) / float64(s.StepCount)
		h, a, r, pos := Point(body, s, t)
		samples[i] = PathSample{Index: i, Height: h, Angle: a, Radius: r, Position: pos}
	}

	fallback := geom.Up
	for i := range samples {
		var d geom.Vec3
		if i < len(samples)-1 {
			d = samples[i+1].Position.Sub(samples[i].Position)
		} else {
			d = samples[i].Position.Sub(samples[i-1].Position)
		}
		if n, ok := d.Normalize(); ok {
			fallback = n
		}
		samples[i].Tangent = fallback
	}
	return samples, nil
}

// Every returns the samples whose index is a multiple of k. k < 1 yields
// nothing.
func Every(samples []PathSample, k int) []PathSample {
	if k < 1 {
		return nil
	}
	out := make([]PathSample, 0, len(samples)/k+1)
	for i := 0; i < len(samples); i += k {
		out = append(out, samples[i])
	}
	return out
}

// Positions returns the sample positions in order.
func Positions(samples []PathSample) []geom.Vec3 {
	out := make([]geom.Vec3, len(samples))
	for i, s := range samples {
		out[i] = s.Position
	}
	return out
}
