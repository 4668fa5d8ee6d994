package equipment

import (
	"math"

	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/graph"
	"github.com/chazu/plantkit/pkg/port"
)

// PumpSpec describes a vertical centrifugal pump: pedestal, casing,
// side volute, a horizontal suction inlet and a vertical discharge.
type PumpSpec struct {
	Name     string    `json:"name" toml:"name" yaml:"name"`
	Position geom.Vec3 `json:"position" toml:"position" yaml:"position"`
	Yaw      float64   `json:"yaw" toml:"yaw" yaml:"yaw"`
	Scale    float64   `json:"scale" toml:"scale" yaml:"scale"`
}

// DefaultPumpSpec returns a unit-scale pump named name.
func DefaultPumpSpec(name string) PumpSpec {
	return PumpSpec{Name: name, Scale: 1}
}

// NewPump returns a pump that is built on first use.
func NewPump(s PumpSpec) *Equipment {
	return newEquipment(s.Name, KindPump, Placement{Position: s.Position, Yaw: s.Yaw}, s.build)
}

func (s PumpSpec) build(b *graph.Builder, root graph.NodeID, c *port.Component) error {
	k := s.Scale
	if !geom.Finite(k) || k <= 0 {
		return diag.Configf(s.Name, "scale", "must be positive, got %.4g", k)
	}
	at := func(x, y, z float64) geom.Vec3 { return geom.V3(x, y, z).Scale(k) }

	b.Primitive(root, "pedestal", graph.RoleFoundation, geom.At(at(0, 0.3, 0)),
		graph.ConeData{RadiusBottom: 1.0 * k, RadiusTop: 0.9 * k, Length: 0.6 * k})
	b.Primitive(root, "casing", graph.RoleBody, geom.At(at(0, 1.5, 0)),
		graph.ConeData{RadiusBottom: 0.9 * k, RadiusTop: 0.8 * k, Length: 1.8 * k})
	b.Primitive(root, "trim", graph.RoleRib,
		geom.Placed(at(0, 2.4, 0), geom.AxisAngle(geom.XAxis, math.Pi/2)),
		graph.TorusData{RingRadius: 0.85 * k, TubeRadius: 0.05 * k, Arc: 2 * math.Pi})
	b.Primitive(root, "volute", graph.RoleBody, geom.At(at(0.9, 1.4, 0)),
		graph.SphereData{Radius: 0.7 * k})
	b.Primitive(root, "discharge_elbow", graph.RoleElbow,
		geom.Placed(at(1.5, 1.6, 0), geom.AxisAngle(geom.ZAxis, math.Pi)),
		graph.TorusData{RingRadius: 0.36 * k, TubeRadius: 0.24 * k, Arc: math.Pi / 2})

	if err := nozzle(b, root, c, PortInlet, at(0.2, 0.9, 1.4), geom.ZAxis, 0.26*k, 0.9*k); err != nil {
		return err
	}
	return nozzle(b, root, c, PortOutlet, at(1.5, 2.4, 0), geom.Up, 0.24*k, 0.8*k)
}
