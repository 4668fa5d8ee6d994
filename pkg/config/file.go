package config

import (
	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/duct"
	"github.com/chazu/plantkit/pkg/equipment"
	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/graph"
	"github.com/chazu/plantkit/pkg/plant"
	"github.com/chazu/plantkit/pkg/port"
	"github.com/chazu/plantkit/pkg/profile"
	"github.com/chazu/plantkit/pkg/route"
	"github.com/chazu/plantkit/pkg/sweep"
)

// File is one plant layout. Angles are in degrees.
type File struct {
	Plant  PlantSection `json:"plant" toml:"plant" yaml:"plant"`
	Mesh   MeshSection  `json:"mesh" toml:"mesh" yaml:"mesh"`
	Towers []Tower      `json:"towers,omitempty" toml:"towers,omitempty" yaml:"towers,omitempty"`
	Tanks  []Tank       `json:"tanks,omitempty" toml:"tanks,omitempty" yaml:"tanks,omitempty"`
	Pumps  []Pump       `json:"pumps,omitempty" toml:"pumps,omitempty" yaml:"pumps,omitempty"`
	Ducts  []Duct       `json:"ducts,omitempty" toml:"ducts,omitempty" yaml:"ducts,omitempty"`
}

// PlantSection names the plant and bounds build parallelism.
type PlantSection struct {
	Name    string `json:"name" toml:"name" yaml:"name"`
	Workers int    `json:"workers" toml:"workers" yaml:"workers"`
}

// MeshSection controls tessellation when the layout is meshed.
type MeshSection struct {
	Resolution int      `json:"resolution" toml:"resolution" yaml:"resolution"`
	Workers    int      `json:"workers" toml:"workers" yaml:"workers"`
	Roles      []string `json:"roles,omitempty" toml:"roles,omitempty" yaml:"roles,omitempty"`
}

// RoleFilter returns the configured roles as graph roles.
func (m MeshSection) RoleFilter() []graph.Role {
	roles := make([]graph.Role, len(m.Roles))
	for i, r := range m.Roles {
		roles[i] = graph.Role(r)
	}
	return roles
}

// Tower is a tower record. Dims or Sections describe the body; both
// empty means the default tiered absorber.
type Tower struct {
	Name         string             `json:"name" toml:"name" yaml:"name"`
	Position     geom.Vec3          `json:"position" toml:"position" yaml:"position"`
	Yaw          float64            `json:"yaw" toml:"yaw" yaml:"yaw"`
	Dims         *profile.TowerDims `json:"dims,omitempty" toml:"dims,omitempty" yaml:"dims,omitempty"`
	Sections     []profile.Section  `json:"sections,omitempty" toml:"sections,omitempty" yaml:"sections,omitempty"`
	NozzleRadius *float64           `json:"nozzle_radius,omitempty" toml:"nozzle_radius,omitempty" yaml:"nozzle_radius,omitempty"`
	Stairway     *Stairway          `json:"stairway,omitempty" toml:"stairway,omitempty" yaml:"stairway,omitempty"`
	NoStairway   bool               `json:"no_stairway,omitempty" toml:"no_stairway,omitempty" yaml:"no_stairway,omitempty"`
}

// Stairway overrides parts of the default stairway. Fixtures and
// Platforms replace the defaults when present.
type Stairway struct {
	Turns         *float64             `json:"turns,omitempty" toml:"turns,omitempty" yaml:"turns,omitempty"`
	Clearance     *float64             `json:"clearance,omitempty" toml:"clearance,omitempty" yaml:"clearance,omitempty"`
	AngularOffset *float64             `json:"angular_offset,omitempty" toml:"angular_offset,omitempty" yaml:"angular_offset,omitempty"`
	StepCount     *int                 `json:"step_count,omitempty" toml:"step_count,omitempty" yaml:"step_count,omitempty"`
	Treads        *int                 `json:"treads,omitempty" toml:"treads,omitempty" yaml:"treads,omitempty"`
	Handrails     *bool                `json:"handrails,omitempty" toml:"handrails,omitempty" yaml:"handrails,omitempty"`
	Fixtures      []sweep.FixtureSpec  `json:"fixtures,omitempty" toml:"fixtures,omitempty" yaml:"fixtures,omitempty"`
	Platforms     []sweep.PlatformSpec `json:"platforms,omitempty" toml:"platforms,omitempty" yaml:"platforms,omitempty"`
}

// Tank is a tank record.
type Tank struct {
	Name     string    `json:"name" toml:"name" yaml:"name"`
	Position geom.Vec3 `json:"position" toml:"position" yaml:"position"`
	Yaw      float64   `json:"yaw" toml:"yaw" yaml:"yaw"`
	Height   *float64  `json:"height,omitempty" toml:"height,omitempty" yaml:"height,omitempty"`
	Diameter *float64  `json:"diameter,omitempty" toml:"diameter,omitempty" yaml:"diameter,omitempty"`
	Ribs     *int      `json:"ribs,omitempty" toml:"ribs,omitempty" yaml:"ribs,omitempty"`
	NoFrame  bool      `json:"no_frame,omitempty" toml:"no_frame,omitempty" yaml:"no_frame,omitempty"`
}

// Pump is a pump record.
type Pump struct {
	Name     string    `json:"name" toml:"name" yaml:"name"`
	Position geom.Vec3 `json:"position" toml:"position" yaml:"position"`
	Yaw      float64   `json:"yaw" toml:"yaw" yaml:"yaw"`
	Scale    *float64  `json:"scale,omitempty" toml:"scale,omitempty" yaml:"scale,omitempty"`
}

// Duct is a duct record. From and To are "component.port" references.
// Spec, when present, replaces the default spec for Bore.
type Duct struct {
	Name      string      `json:"name" toml:"name" yaml:"name"`
	From      string      `json:"from" toml:"from" yaml:"from"`
	To        string      `json:"to" toml:"to" yaml:"to"`
	Bore      float64     `json:"bore" toml:"bore" yaml:"bore"`
	Spec      *duct.Spec  `json:"spec,omitempty" toml:"spec,omitempty" yaml:"spec,omitempty"`
	Waypoints []geom.Vec3 `json:"waypoints,omitempty" toml:"waypoints,omitempty" yaml:"waypoints,omitempty"`
	Obstacle  *geom.Box   `json:"obstacle,omitempty" toml:"obstacle,omitempty" yaml:"obstacle,omitempty"`
	Margin    *float64    `json:"margin,omitempty" toml:"margin,omitempty" yaml:"margin,omitempty"`
	Diagonal  bool        `json:"diagonal,omitempty" toml:"diagonal,omitempty" yaml:"diagonal,omitempty"`
	AxisOrder string      `json:"axis_order,omitempty" toml:"axis_order,omitempty" yaml:"axis_order,omitempty"`
}

// TowerSpec resolves the record against the default tower.
func (t Tower) TowerSpec() (equipment.TowerSpec, error) {
	s := equipment.DefaultTowerSpec(t.Name)
	s.Position = t.Position
	s.Yaw = graph.Deg(t.Yaw)
	s.Sections = t.Sections
	s.NoStairway = t.NoStairway
	if t.Dims != nil {
		s.Dims = *t.Dims
	}
	if t.NozzleRadius != nil {
		s.NozzleRadius = *t.NozzleRadius
	}
	if t.Stairway == nil || t.NoStairway {
		return s, nil
	}

	body, err := s.Profile()
	if err != nil {
		return s, err
	}
	lo, hi := body.Domain()
	cfg := sweep.DefaultConfig(hi - lo)
	t.Stairway.apply(&cfg)
	s.Stairway = &cfg
	return s, nil
}

func (o *Stairway) apply(cfg *sweep.Config) {
	if o.Turns != nil {
		cfg.Helix.Turns = *o.Turns
	}
	if o.Clearance != nil {
		cfg.Helix.Clearance = *o.Clearance
	}
	if o.AngularOffset != nil {
		cfg.Helix.AngularOffset = graph.Deg(*o.AngularOffset)
	}
	if o.StepCount != nil {
		cfg.Helix.StepCount = *o.StepCount
	}
	if o.Treads != nil {
		cfg.Treads.Count = *o.Treads
	}
	if o.Handrails != nil && !*o.Handrails {
		cfg.Handrails.TubeRadius = 0
	}
	if o.Fixtures != nil {
		cfg.Fixtures = o.Fixtures
	}
	if o.Platforms != nil {
		cfg.Platforms = o.Platforms
	}
}

// TankSpec resolves the record against the default tank.
func (t Tank) TankSpec() equipment.TankSpec {
	s := equipment.DefaultTankSpec(t.Name)
	s.Position = t.Position
	s.Yaw = graph.Deg(t.Yaw)
	s.NoFrame = t.NoFrame
	if t.Height != nil {
		s.Height = *t.Height
	}
	if t.Diameter != nil {
		s.Diameter = *t.Diameter
	}
	if t.Ribs != nil {
		s.Ribs = *t.Ribs
	}
	return s
}

// PumpSpec resolves the record against the default pump.
func (p Pump) PumpSpec() equipment.PumpSpec {
	s := equipment.DefaultPumpSpec(p.Name)
	s.Position = p.Position
	s.Yaw = graph.Deg(p.Yaw)
	if p.Scale != nil {
		s.Scale = *p.Scale
	}
	return s
}

// PlantDuct resolves the record into a plant duct.
func (d Duct) PlantDuct() (plant.Duct, error) {
	from, err := port.ParseRef(d.From)
	if err != nil {
		return plant.Duct{}, diag.Configf("config", "ducts."+d.Name+".from", "%v", err)
	}
	to, err := port.ParseRef(d.To)
	if err != nil {
		return plant.Duct{}, diag.Configf("config", "ducts."+d.Name+".to", "%v", err)
	}

	spec := duct.DefaultSpec(d.Bore)
	if d.Spec != nil {
		spec = *d.Spec
		if spec.BoreRadius == 0 {
			spec.BoreRadius = d.Bore
		}
	}

	opts := route.Options{
		Waypoints: d.Waypoints,
		Obstacle:  d.Obstacle,
		Margin:    route.DefaultMargin,
		Diagonal:  d.Diagonal,
	}
	if d.Margin != nil {
		opts.Margin = *d.Margin
	}
	if d.AxisOrder != "" {
		order, err := route.ParseAxisOrder(d.AxisOrder)
		if err != nil {
			return plant.Duct{}, err
		}
		opts.AxisOrder = order
	}
	return plant.Duct{Name: d.Name, From: from, To: to, Route: opts, Spec: spec}, nil
}

// Build turns the layout into a plant. Tower records that fail to
// resolve are configuration errors for the whole file.
func (f *File) Build() (*plant.Plant, error) {
	name := f.Plant.Name
	if name == "" {
		name = "plant"
	}
	p := plant.New(name)
	p.Workers = f.Plant.Workers

	for _, t := range f.Towers {
		spec, err := t.TowerSpec()
		if err != nil {
			return nil, err
		}
		if err := p.Add(equipment.NewTower(spec)); err != nil {
			return nil, err
		}
	}
	for _, t := range f.Tanks {
		if err := p.Add(equipment.NewTank(t.TankSpec())); err != nil {
			return nil, err
		}
	}
	for _, pu := range f.Pumps {
		if err := p.Add(equipment.NewPump(pu.PumpSpec())); err != nil {
			return nil, err
		}
	}
	for _, d := range f.Ducts {
		pd, err := d.PlantDuct()
		if err != nil {
			return nil, err
		}
		if err := p.Connect(pd); err != nil {
			return nil, err
		}
	}
	return p, nil
}
