package sweep

import (
	"math"

	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/graph"
	"github.com/chazu/plantkit/pkg/helix"
)

// Config parameterizes a helical stairway. Each fixture family carries
// its own cadence and orientation rule.
type Config struct {
	Name      string         `json:"name" toml:"name" yaml:"name"`
	Helix     helix.Spec     `json:"helix" toml:"helix" yaml:"helix"`
	Spine     SpineSpec      `json:"spine" toml:"spine" yaml:"spine"`
	Treads    TreadSpec      `json:"treads" toml:"treads" yaml:"treads"`
	Handrails RailSpec       `json:"handrails" toml:"handrails" yaml:"handrails"`
	Fixtures  []FixtureSpec  `json:"fixtures" toml:"fixtures" yaml:"fixtures"`
	Platforms []PlatformSpec `json:"platforms" toml:"platforms" yaml:"platforms"`
}

// SpineSpec describes the faceted support spine: one cylinder link per
// consecutive helix sample pair.
type SpineSpec struct {
	Radius  float64 `json:"radius" toml:"radius" yaml:"radius"`
	Overlap float64 `json:"overlap" toml:"overlap" yaml:"overlap"` // link length as a multiple of the chord
}

// TreadSpec describes the flat steps. Count is independent of the helix
// step count.
type TreadSpec struct {
	Count int       `json:"count" toml:"count" yaml:"count"`
	Size  geom.Vec3 `json:"size" toml:"size" yaml:"size"` // X radial, Y thickness, Z along the path

	Arms      bool      `json:"arms" toml:"arms" yaml:"arms"`
	ArmSize   geom.Vec3 `json:"arm_size" toml:"arm_size" yaml:"arm_size"`
	ArmTilt   float64   `json:"arm_tilt" toml:"arm_tilt" yaml:"arm_tilt"`       // radians about the tangential axis
	ArmReach  float64   `json:"arm_reach" toml:"arm_reach" yaml:"arm_reach"`    // fraction of clearance from the body
	ArmDrop   float64   `json:"arm_drop" toml:"arm_drop" yaml:"arm_drop"`       // below the tread
	Stripes   int       `json:"stripes" toml:"stripes" yaml:"stripes"`          // anti-slip stripes per tread
	StripeGap float64   `json:"stripe_gap" toml:"stripe_gap" yaml:"stripe_gap"` // spacing along Z
}

// RailSpec describes the inner and outer handrails.
type RailSpec struct {
	Height      float64 `json:"height" toml:"height" yaml:"height"`                   // above the path
	OuterOffset float64 `json:"outer_offset" toml:"outer_offset" yaml:"outer_offset"` // radially outward
	InnerOffset float64 `json:"inner_offset" toml:"inner_offset" yaml:"inner_offset"` // radially inward
	TubeRadius  float64 `json:"tube_radius" toml:"tube_radius" yaml:"tube_radius"`
	Segments    int     `json:"segments" toml:"segments" yaml:"segments"` // spline samples per rail
	Sides       int     `json:"sides" toml:"sides" yaml:"sides"`
}

// Shape selects a fixture primitive.
type Shape string

const (
	ShapeBox      Shape = "box"
	ShapeCylinder Shape = "cylinder"
)

// FixtureSpec places one primitive at every Every-th helix sample, facing
// radially outward. For cylinders Size.X is the radius and Size.Y the
// length; Horizontal lays the cylinder along the radial direction.
type FixtureSpec struct {
	Name           string     `json:"name" toml:"name" yaml:"name"`
	Role           graph.Role `json:"role" toml:"role" yaml:"role"`
	Every          int        `json:"every" toml:"every" yaml:"every"`
	Shape          Shape      `json:"shape" toml:"shape" yaml:"shape"`
	Size           geom.Vec3  `json:"size" toml:"size" yaml:"size"`
	RadialOffset   float64    `json:"radial_offset" toml:"radial_offset" yaml:"radial_offset"`
	VerticalOffset float64    `json:"vertical_offset" toml:"vertical_offset" yaml:"vertical_offset"`
	Horizontal     bool       `json:"horizontal" toml:"horizontal" yaml:"horizontal"`
}

// PlatformSpec places a landing disc around the body. At is the fraction
// of the helix height range; Lift raises the disc above that height.
type PlatformSpec struct {
	Name        string  `json:"name" toml:"name" yaml:"name"`
	At          float64 `json:"at" toml:"at" yaml:"at"`
	Lift        float64 `json:"lift" toml:"lift" yaml:"lift"`
	RadialExtra float64 `json:"radial_extra" toml:"radial_extra" yaml:"radial_extra"` // beyond body radius plus clearance
	Thickness   float64 `json:"thickness" toml:"thickness" yaml:"thickness"`
}

// StairHeightFraction is the share of the body height the stairway climbs.
const StairHeightFraction = 0.95

// DefaultConfig returns the stairway for a body of the given height: two
// turns, four treads per metre of climb, lights every sixth spine sample
// and rail ties every eighth.
func DefaultConfig(bodyHeight float64) Config {
	climb := bodyHeight * StairHeightFraction
	return Config{
		Name:  "stairway",
		Helix: helix.DefaultSpec(climb),
		Spine: SpineSpec{Radius: 0.15, Overlap: 1.2},
		Treads: TreadSpec{
			Count:     int(math.Floor(climb * 4)),
			Size:      geom.V3(2.2, 0.15, 0.8),
			Arms:      true,
			ArmSize:   geom.V3(0.2, 0.8, 0.15),
			ArmTilt:   math.Pi / 6,
			ArmReach:  0.3,
			ArmDrop:   0.3,
			Stripes:   5,
			StripeGap: 0.15,
		},
		Handrails: RailSpec{
			Height:      1.0,
			OuterOffset: 1.2,
			InnerOffset: 0.3,
			TubeRadius:  0.08,
			Segments:    200,
			Sides:       12,
		},
		Fixtures:  DefaultFixtures(),
		Platforms: DefaultPlatforms(),
	}
}

// DefaultFixtures returns the lighting strips and rail ties.
func DefaultFixtures() []FixtureSpec {
	return []FixtureSpec{
		{
			Name:           "light",
			Role:           graph.RoleLight,
			Every:          6,
			Shape:          ShapeBox,
			Size:           geom.V3(0.8, 0.05, 0.1),
			RadialOffset:   0.1,
			VerticalOffset: -0.1,
		},
		{
			Name:           "rail_tie",
			Role:           graph.RolePost,
			Every:          8,
			Shape:          ShapeCylinder,
			Size:           geom.V3(0.04, 1.5, 0),
			RadialOffset:   0.45,
			VerticalOffset: 1.0,
			Horizontal:     true,
		},
	}
}

// DefaultPlatforms returns base, middle and top landings.
func DefaultPlatforms() []PlatformSpec {
	return []PlatformSpec{
		{Name: "base", At: 0, Lift: 0.2, RadialExtra: 1.5, Thickness: 0.4},
		{Name: "middle", At: 0.5, RadialExtra: 1.0, Thickness: 0.3},
		{Name: "top", At: 1, Lift: 0.2, RadialExtra: 1.5, Thickness: 0.4},
	}
}

// Validate reports a configuration error for unusable parameters.
func (c Config) Validate() error {
	if err := c.Helix.Validate(); err != nil {
		return err
	}
	if !geom.Finite(c.Spine.Radius, c.Spine.Overlap) || c.Spine.Radius <= 0 || c.Spine.Overlap <= 0 {
		return diag.Configf("sweep", "spine", "radius and overlap must be positive")
	}
	if c.Treads.Count < 0 {
		return diag.Configf("sweep", "treads.count", "must not be negative")
	}
	if c.Treads.Count > 0 && !positive(c.Treads.Size) {
		return diag.Configf("sweep", "treads.size", "must be positive, got %v", c.Treads.Size)
	}
	if c.Treads.Arms && !positive(c.Treads.ArmSize) {
		return diag.Configf("sweep", "treads.arm_size", "must be positive, got %v", c.Treads.ArmSize)
	}
	if r := c.Handrails; r.TubeRadius != 0 {
		if !geom.Finite(r.TubeRadius, r.Height, r.OuterOffset, r.InnerOffset) || r.TubeRadius < 0 {
			return diag.Configf("sweep", "handrails", "invalid rail parameters")
		}
		if r.Segments < 1 {
			return diag.Configf("sweep", "handrails.segments", "must be at least 1")
		}
	}
	seen := make(map[string]bool)
	for i, f := range c.Fixtures {
		if f.Name == "" || seen[f.Name] {
			return diag.Configf("sweep", "fixtures", "fixture %d needs a unique name", i)
		}
		seen[f.Name] = true
		if f.Every < 1 {
			return diag.Configf("sweep", "fixtures."+f.Name, "every must be at least 1, got %d", f.Every)
		}
		switch f.Shape {
		case ShapeBox:
			if !positive(f.Size) {
				return diag.Configf("sweep", "fixtures."+f.Name, "box size must be positive")
			}
		case ShapeCylinder:
			if !(f.Size.X > 0 && f.Size.Y > 0) {
				return diag.Configf("sweep", "fixtures."+f.Name, "cylinder radius and length must be positive")
			}
		default:
			return diag.Configf("sweep", "fixtures."+f.Name, "unknown shape %q", f.Shape)
		}
	}
	for _, p := range c.Platforms {
		if p.Thickness <= 0 || p.At < 0 || p.At > 1 {
			return diag.Configf("sweep", "platforms."+p.Name, "needs positive thickness and 0 <= at <= 1")
		}
	}
	return nil
}

func positive(v geom.Vec3) bool {
	return v.IsFinite() && v.X > 0 && v.Y > 0 && v.Z > 0
}
