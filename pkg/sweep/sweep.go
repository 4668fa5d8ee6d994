// Package sweep turns helix samples into a stairway: a faceted spine,
// flat treads, smooth handrails, and periodic fixtures. A non-finite
// sample costs only the fixture instance built from it.
package sweep

import (
	"fmt"
	"math"

	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/graph"
	"github.com/chazu/plantkit/pkg/helix"
	"github.com/chazu/plantkit/pkg/profile"
)

// Build emits the stairway described by cfg under parent and returns its
// group. body is the vessel's radius profile; clearance is added to it.
func Build(b *graph.Builder, parent graph.NodeID, body profile.RadiusFunc, cfg Config) (graph.NodeID, error) {
	if err := cfg.Validate(); err != nil {
		return graph.ZeroID, err
	}
	samples, err := helix.Sample(body, cfg.Helix)
	if err != nil {
		return graph.ZeroID, err
	}

	name := cfg.Name
	if name == "" {
		name = "stairway"
	}
	root := b.Group(parent, name, graph.RoleAssembly, geom.Pose())

	buildSpine(b, root, samples, cfg.Spine)
	if cfg.Treads.Count > 0 {
		buildTreads(b, root, body, cfg)
	}
	if cfg.Handrails.TubeRadius > 0 {
		buildRails(b, root, samples, cfg.Handrails)
	}
	for _, f := range cfg.Fixtures {
		buildFixtures(b, root, samples, f)
	}
	if len(cfg.Platforms) > 0 {
		buildPlatforms(b, root, body, cfg)
	}
	return root, nil
}

// facing returns the yaw that turns local +X towards the radial direction
// at angle. Rotation is about the vertical axis only.
func facing(angle float64) geom.Quat {
	return geom.AxisAngle(geom.Up, -angle)
}

func buildSpine(b *graph.Builder, parent graph.NodeID, samples []helix.PathSample, s SpineSpec) {
	g := b.Group(parent, "spine", graph.RoleAssembly, geom.Pose())
	for i := 0; i+1 < len(samples); i++ {
		cur, next := samples[i], samples[i+1]
		name := graph.Indexed("link", i)
		if !cur.Finite() || !next.Finite() {
			b.Skip(g, name, "non-finite helix sample")
			continue
		}
		chord := cur.Position.Distance(next.Position)
		rot, ok := geom.Direction(cur.Tangent)
		if !ok {
			b.Skip(g, name, "no usable tangent")
			continue
		}
		b.Primitive(g, name, graph.RoleSpine,
			geom.Placed(cur.Position.Lerp(next.Position, 0.5), rot),
			graph.CylinderData{Radius: s.Radius, Length: chord * s.Overlap})
	}
}

func buildTreads(b *graph.Builder, parent graph.NodeID, body profile.RadiusFunc, cfg Config) {
	g := b.Group(parent, "treads", graph.RoleAssembly, geom.Pose())
	t := cfg.Treads
	for i := 0; i < t.Count; i++ {
		name := graph.Indexed("tread", i)
		h, a, r, pos := helix.Point(body, cfg.Helix, float64(i)/float64(t.Count))
		if !geom.Finite(h, a, r) || !pos.IsFinite() {
			b.Skip(g, name, "non-finite tread placement")
			continue
		}
		yaw := facing(a)
		tread := geom.Placed(pos, yaw)
		if _, ok := b.Primitive(g, name, graph.RoleTread, tread, graph.BoxData{Size: t.Size}); !ok {
			continue
		}

		for k := 0; k < t.Stripes; k++ {
			z := (float64(k) - float64(t.Stripes-1)/2) * t.StripeGap
			local := geom.At(geom.V3(0, t.Size.Y/2+0.005, z))
			b.Primitive(g, fmt.Sprintf("%s_stripe_%d", name, k), graph.RoleStripe,
				tread.Compose(local),
				graph.BoxData{Size: geom.V3(t.Size.X*0.8, 0.02, 0.05)})
		}

		if t.Arms {
			armR := r - cfg.Helix.Clearance*(1-t.ArmReach)
			armPos := geom.V3(math.Cos(a)*armR, h-t.ArmDrop, math.Sin(a)*armR)
			tilt := geom.AxisAngle(geom.ZAxis, t.ArmTilt)
			b.Primitive(g, name+"_arm", graph.RoleArm,
				geom.Placed(armPos, yaw.Mul(tilt)),
				graph.BoxData{Size: t.ArmSize})
		}
	}
}

func buildRails(b *graph.Builder, parent graph.NodeID, samples []helix.PathSample, r RailSpec) {
	g := b.Group(parent, "handrails", graph.RoleAssembly, geom.Pose())
	rails := []struct {
		name   string
		offset float64
	}{
		{"outer", r.OuterOffset},
		{"inner", -r.InnerOffset},
	}
	for _, rail := range rails {
		pts := make([]geom.Vec3, 0, len(samples))
		for _, s := range samples {
			p := s.At(rail.offset, r.Height)
			if s.Finite() && p.IsFinite() {
				pts = append(pts, p)
			}
		}
		if dropped := len(samples) - len(pts); dropped > 0 {
			b.Skip(g, rail.name, fmt.Sprintf("dropped %d non-finite control points", dropped))
		}
		if len(pts) < 2 {
			b.Skip(g, rail.name, "fewer than 2 control points")
			continue
		}
		path := geom.NewCatmullRom(pts).Sample(r.Segments)
		b.Primitive(g, rail.name, graph.RoleHandrail, geom.Pose(),
			graph.TubeData{Path: path, Radius: r.TubeRadius, Sides: r.Sides})
	}
}

// horizontal lays a Y-axis cylinder along local +X.
var horizontal = geom.AxisAngle(geom.ZAxis, -math.Pi/2)

func buildFixtures(b *graph.Builder, parent graph.NodeID, samples []helix.PathSample, f FixtureSpec) {
	g := b.Group(parent, f.Name+"s", graph.RoleAssembly, geom.Pose())
	for _, s := range helix.Every(samples, f.Every) {
		name := graph.Indexed(f.Name, s.Index)
		if !s.Finite() {
			b.Skip(g, name, "non-finite helix sample")
			continue
		}
		rot := facing(s.Angle)
		var data graph.NodeData
		switch f.Shape {
		case ShapeCylinder:
			data = graph.CylinderData{Radius: f.Size.X, Length: f.Size.Y}
			if f.Horizontal {
				rot = rot.Mul(horizontal)
			}
		default:
			data = graph.BoxData{Size: f.Size}
		}
		b.Primitive(g, name, f.Role, geom.Placed(s.At(f.RadialOffset, f.VerticalOffset), rot), data)
	}
}

func buildPlatforms(b *graph.Builder, parent graph.NodeID, body profile.RadiusFunc, cfg Config) {
	g := b.Group(parent, "platforms", graph.RoleAssembly, geom.Pose())
	h0, h1 := cfg.Helix.StartHeight, cfg.Helix.EndHeight
	for _, p := range cfg.Platforms {
		h := h0 + p.At*(h1-h0)
		radius := body.Evaluate(h) + cfg.Helix.Clearance + p.RadialExtra
		b.Primitive(g, p.Name, graph.RolePlatform,
			geom.At(geom.V3(0, h+p.Lift, 0)),
			graph.CylinderData{Radius: radius, Length: p.Thickness})
	}
}
