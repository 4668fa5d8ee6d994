package profile

import "github.com/chazu/plantkit/pkg/diag"

// TowerDims describes a three-tier absorber body: a wide lower drum, a
// conical transition, and a narrower middle and upper shell.
type TowerDims struct {
	Height           float64 `json:"height" toml:"height" yaml:"height"`
	LowerRadius      float64 `json:"lower_radius" toml:"lower_radius" yaml:"lower_radius"`
	MiddleRadius     float64 `json:"middle_radius" toml:"middle_radius" yaml:"middle_radius"`
	UpperRadius      float64 `json:"upper_radius" toml:"upper_radius" yaml:"upper_radius"`
	TransitionHeight float64 `json:"transition_height" toml:"transition_height" yaml:"transition_height"`
}

// Tier height fractions of the total body height.
const (
	LowerFraction  = 0.27
	MiddleFraction = 0.33
	UpperFraction  = 0.40
)

// DefaultTowerDims are the proportions of a 30 m absorber.
func DefaultTowerDims() TowerDims {
	return TowerDims{
		Height:           30,
		LowerRadius:      12,
		MiddleRadius:     8,
		UpperRadius:      8,
		TransitionHeight: 2,
	}
}

// Tiered builds the profile for d. The transition cone starts on top of
// the lower drum and eats into the middle tier; the upper tier tapers
// linearly from the middle radius to the upper radius.
func Tiered(d TowerDims) (*Profile, error) {
	lowerTop := d.Height * LowerFraction
	middleTop := d.Height * (LowerFraction + MiddleFraction)
	transTop := lowerTop + d.TransitionHeight
	if d.TransitionHeight <= 0 {
		return nil, diag.Configf("profile", "transition_height", "must be positive")
	}
	if transTop >= middleTop {
		return nil, diag.Configf("profile", "transition_height", "%.4g does not fit in the middle tier", d.TransitionHeight)
	}
	return New(
		Sec(0, lowerTop, d.LowerRadius, d.LowerRadius),
		Sec(lowerTop, transTop, d.LowerRadius, d.MiddleRadius),
		Sec(transTop, middleTop, d.MiddleRadius, d.MiddleRadius),
		Sec(middleTop, d.Height, d.MiddleRadius, d.UpperRadius),
	)
}
