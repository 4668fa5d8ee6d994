package equipment

import (
	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/graph"
	"github.com/chazu/plantkit/pkg/port"
	"github.com/chazu/plantkit/pkg/profile"
	"github.com/chazu/plantkit/pkg/sweep"
)

// TowerSpec describes an absorber tower: a body of revolution following a
// radius profile, wrapped by a helical stairway.
type TowerSpec struct {
	Name     string    `json:"name" toml:"name" yaml:"name"`
	Position geom.Vec3 `json:"position" toml:"position" yaml:"position"`
	Yaw      float64   `json:"yaw" toml:"yaw" yaml:"yaw"`

	Dims profile.TowerDims `json:"dims" toml:"dims" yaml:"dims"`
	// Sections replaces the tiered Dims profile when non-empty.
	Sections []profile.Section `json:"sections,omitempty" toml:"sections,omitempty" yaml:"sections,omitempty"`

	// Stairway overrides the default stairway for the body height.
	Stairway   *sweep.Config `json:"stairway,omitempty" toml:"stairway,omitempty" yaml:"stairway,omitempty"`
	NoStairway bool          `json:"no_stairway" toml:"no_stairway" yaml:"no_stairway"`

	NozzleRadius float64 `json:"nozzle_radius" toml:"nozzle_radius" yaml:"nozzle_radius"`
}

// Tower port names.
const (
	PortInlet  = "inlet"
	PortOutlet = "outlet"
	PortDrain  = "drain"
)

const (
	towerNozzleLength = 1.5
	towerCapFactor    = 0.2 // cap height as a fraction of the top radius
	towerFoundation   = 0.5
)

// DefaultTowerSpec returns a 30 m tiered absorber named name.
func DefaultTowerSpec(name string) TowerSpec {
	return TowerSpec{
		Name:         name,
		Dims:         profile.DefaultTowerDims(),
		NozzleRadius: 1.0,
	}
}

// Profile returns the body radius profile.
func (s TowerSpec) Profile() (*profile.Profile, error) {
	if len(s.Sections) > 0 {
		return profile.New(s.Sections...)
	}
	return profile.Tiered(s.Dims)
}

// NewTower returns a tower that is built on first use.
func NewTower(s TowerSpec) *Equipment {
	return newEquipment(s.Name, KindTower, Placement{Position: s.Position, Yaw: s.Yaw}, s.build)
}

func (s TowerSpec) build(b *graph.Builder, root graph.NodeID, c *port.Component) error {
	body, err := s.Profile()
	if err != nil {
		return err
	}
	if s.NozzleRadius <= 0 {
		return diag.Configf(s.Name, "nozzle_radius", "must be positive, got %.4g", s.NozzleRadius)
	}
	lo, hi := body.Domain()

	shell := b.Group(root, "body", graph.RoleAssembly, geom.Pose())
	for i, sec := range body.Sections() {
		b.Primitive(shell, graph.Indexed("section", i), graph.RoleBody,
			geom.At(geom.V3(0, (sec.HeightStart+sec.HeightEnd)/2, 0)),
			graph.ConeData{
				RadiusBottom: sec.RadiusStart,
				RadiusTop:    sec.RadiusEnd,
				Length:       sec.HeightEnd - sec.HeightStart,
			})
	}
	top := body.Evaluate(hi)
	capHeight := top * towerCapFactor
	b.Primitive(shell, "cap", graph.RoleCap,
		geom.At(geom.V3(0, hi+capHeight/2, 0)),
		graph.ConeData{RadiusBottom: top, RadiusTop: top * 0.3, Length: capHeight})
	b.Primitive(shell, "foundation", graph.RoleFoundation,
		geom.At(geom.V3(0, lo-towerFoundation/2, 0)),
		graph.CylinderData{Radius: body.Evaluate(lo) + 1, Length: towerFoundation})

	nozzles := b.Group(root, "nozzles", graph.RoleAssembly, geom.Pose())
	inH := lo + 0.15*(hi-lo)
	drainH := lo + 1
	ports := []struct {
		name   string
		offset geom.Vec3
		dir    geom.Vec3
	}{
		{PortInlet, geom.V3(body.Evaluate(inH)+towerNozzleLength, inH, 0), geom.XAxis},
		{PortOutlet, geom.V3(0, hi+capHeight+towerNozzleLength, 0), geom.Up},
		{PortDrain, geom.V3(-(body.Evaluate(drainH) + towerNozzleLength), drainH, 0), geom.XAxis.Neg()},
	}
	for _, p := range ports {
		if err := nozzle(b, nozzles, c, p.name, p.offset, p.dir, s.NozzleRadius, towerNozzleLength); err != nil {
			return err
		}
	}

	if s.NoStairway {
		return nil
	}
	cfg := sweep.DefaultConfig(hi - lo)
	if s.Stairway != nil {
		cfg = *s.Stairway
	}
	_, err = sweep.Build(b, root, body, cfg)
	return err
}
