package duct

import (
	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
)

// Spec sizes every fitting of a duct run from its bore radius.
type Spec struct {
	BoreRadius          float64  `json:"bore_radius" toml:"bore_radius" yaml:"bore_radius"`
	InsulationThickness *float64 `json:"insulation_thickness,omitempty" toml:"insulation_thickness,omitempty" yaml:"insulation_thickness,omitempty"`
	FlangeFactor        float64  `json:"flange_factor" toml:"flange_factor" yaml:"flange_factor"`       // flange radius / bore
	SupportSpacing      float64  `json:"support_spacing" toml:"support_spacing" yaml:"support_spacing"` // 0 disables supports
	BendRadiusFactor    float64  `json:"bend_radius_factor" toml:"bend_radius_factor" yaml:"bend_radius_factor"`

	BoltCount    int      `json:"bolt_count" toml:"bolt_count" yaml:"bolt_count"`
	ValveAt      *float64 `json:"valve_at,omitempty" toml:"valve_at,omitempty" yaml:"valve_at,omitempty"` // fraction of run length
	FlowArrows   int      `json:"flow_arrows" toml:"flow_arrows" yaml:"flow_arrows"`
	SupportPosts bool     `json:"support_posts" toml:"support_posts" yaml:"support_posts"`
	GroundLevel  float64  `json:"ground_level" toml:"ground_level" yaml:"ground_level"`
}

// DefaultSpec returns a bare duct of the given bore with 1.3x flanges,
// 1.5x bends, eight-bolt flanges and a support every 6 m.
func DefaultSpec(bore float64) Spec {
	return Spec{
		BoreRadius:       bore,
		FlangeFactor:     1.3,
		SupportSpacing:   6,
		BendRadiusFactor: 1.5,
		BoltCount:        8,
	}
}

// Validate reports a configuration error for unusable parameters.
func (s Spec) Validate() error {
	if !geom.Finite(s.BoreRadius, s.FlangeFactor, s.SupportSpacing, s.BendRadiusFactor, s.GroundLevel) {
		return diag.Configf("duct", "", "non-finite parameter")
	}
	if s.BoreRadius <= 0 {
		return diag.Configf("duct", "bore_radius", "must be positive, got %g", s.BoreRadius)
	}
	if s.InsulationThickness != nil && !(*s.InsulationThickness > 0 && geom.Finite(*s.InsulationThickness)) {
		return diag.Configf("duct", "insulation_thickness", "must be positive when set")
	}
	if s.FlangeFactor < 1 {
		return diag.Configf("duct", "flange_factor", "flange must be at least as wide as the bore, got %g", s.FlangeFactor)
	}
	if s.BendRadiusFactor <= 1 {
		return diag.Configf("duct", "bend_radius_factor", "must exceed 1, got %g", s.BendRadiusFactor)
	}
	if s.SupportSpacing < 0 {
		return diag.Configf("duct", "support_spacing", "must not be negative")
	}
	if s.BoltCount < 0 || s.FlowArrows < 0 {
		return diag.Configf("duct", "", "bolt and arrow counts must not be negative")
	}
	if s.ValveAt != nil && !(*s.ValveAt >= 0 && *s.ValveAt <= 1) {
		return diag.Configf("duct", "valve_at", "must be within [0, 1], got %g", *s.ValveAt)
	}
	return nil
}

// OuterRadius is the bore plus insulation, if any.
func (s Spec) OuterRadius() float64 {
	if s.InsulationThickness != nil {
		return s.BoreRadius + *s.InsulationThickness
	}
	return s.BoreRadius
}

// BendRadius is the elbow ring radius.
func (s Spec) BendRadius() float64 {
	return s.BendRadiusFactor * s.BoreRadius
}

// FlangeRadius is the terminal disc radius.
func (s Spec) FlangeRadius() float64 {
	return s.FlangeFactor * s.BoreRadius
}

// Float returns a pointer to v, for the optional Spec fields.
func Float(v float64) *float64 {
	return &v
}
