package equipment

import (
	"math"

	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/graph"
	"github.com/chazu/plantkit/pkg/port"
)

// TankSpec describes a vertical ribbed storage tank on a foundation pad,
// with an external frame and a side outlet near the floor.
type TankSpec struct {
	Name     string    `json:"name" toml:"name" yaml:"name"`
	Position geom.Vec3 `json:"position" toml:"position" yaml:"position"`
	Yaw      float64   `json:"yaw" toml:"yaw" yaml:"yaw"`

	Height   float64 `json:"height" toml:"height" yaml:"height"`
	Diameter float64 `json:"diameter" toml:"diameter" yaml:"diameter"`
	Ribs     int     `json:"ribs" toml:"ribs" yaml:"ribs"`
	NoFrame  bool    `json:"no_frame" toml:"no_frame" yaml:"no_frame"`
}

// Tank port names.
const (
	PortBottom = "bottom"
	PortTop    = "top"
)

// tankHead is the shell height given up to the roof.
const tankHead = 0.6

// DefaultTankSpec returns a 24 m tank, 10 m across, with 40 ribs.
func DefaultTankSpec(name string) TankSpec {
	return TankSpec{Name: name, Height: 24, Diameter: 10, Ribs: 40}
}

// NewTank returns a tank that is built on first use.
func NewTank(s TankSpec) *Equipment {
	return newEquipment(s.Name, KindTank, Placement{Position: s.Position, Yaw: s.Yaw}, s.build)
}

func (s TankSpec) validate() error {
	if !geom.Finite(s.Height, s.Diameter) {
		return diag.Configf(s.Name, "", "non-finite dimensions")
	}
	if s.Height <= tankHead {
		return diag.Configf(s.Name, "height", "must exceed %.4g, got %.4g", tankHead, s.Height)
	}
	if s.Diameter <= 0 {
		return diag.Configf(s.Name, "diameter", "must be positive, got %.4g", s.Diameter)
	}
	if s.Ribs < 0 {
		return diag.Configf(s.Name, "ribs", "must not be negative, got %d", s.Ribs)
	}
	return nil
}

func (s TankSpec) build(b *graph.Builder, root graph.NodeID, c *port.Component) error {
	if err := s.validate(); err != nil {
		return err
	}
	h, r := s.Height, s.Diameter/2
	wall := h - tankHead

	b.Primitive(root, "pad", graph.RoleFoundation, geom.At(geom.V3(0, 0.15, 0)),
		graph.CylinderData{Radius: r + 0.35, Length: 0.3})
	b.Primitive(root, "shell", graph.RoleBody, geom.At(geom.V3(0, wall/2, 0)),
		graph.CylinderData{Radius: r, Length: wall})
	roof := r * 1.02 * 0.22
	b.Primitive(root, "roof", graph.RoleCap, geom.At(geom.V3(0, wall+0.15+roof/2, 0)),
		graph.ConeData{RadiusBottom: r * 1.02, RadiusTop: r * 0.2, Length: roof})

	if s.Ribs > 0 {
		ribs := b.Group(root, "ribs", graph.RoleAssembly, geom.Pose())
		for i := 0; i < s.Ribs; i++ {
			a := 2 * math.Pi * float64(i) / float64(s.Ribs)
			pos := geom.V3(math.Cos(a)*(r+0.12), wall/2, math.Sin(a)*(r+0.12))
			b.Primitive(ribs, graph.Indexed("rib", i), graph.RoleRib,
				geom.Placed(pos, geom.AxisAngle(geom.Up, -a)),
				graph.BoxData{Size: geom.V3(0.3, wall, 0.12)})
		}
	}

	if !s.NoFrame {
		frame := b.Group(root, "frame", graph.RoleAssembly, geom.Pose())
		for i, x := range []float64{r + 0.8, -(r + 0.8)} {
			b.Primitive(frame, graph.Indexed("pole", i), graph.RolePost, geom.At(geom.V3(x, h/2, 0)),
				graph.CylinderData{Radius: 0.18, Length: h})
		}
		b.Primitive(frame, "beam", graph.RoleBeam,
			geom.Placed(geom.V3(0, h-0.2, 0), geom.AxisAngle(geom.ZAxis, math.Pi/2)),
			graph.CylinderData{Radius: 0.14, Length: 2*r + 1.6})
	}

	nozzles := b.Group(root, "nozzles", graph.RoleAssembly, geom.Pose())
	if err := nozzle(b, nozzles, c, PortBottom, geom.V3(r+0.98, 0.6, 0), geom.XAxis, 0.18, 0.98); err != nil {
		return err
	}
	return nozzle(b, nozzles, c, PortTop, geom.V3(0, wall+0.15+roof+1.0, 0), geom.Up, 0.4, 1.0+roof)
}
