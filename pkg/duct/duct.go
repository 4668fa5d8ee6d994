// Package duct assembles a routed waypoint chain into pipe primitives:
// straight shells, elbow tori, terminal flanges, insulation, and support
// brackets.
package duct

import (
	"math"

	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/graph"
	"github.com/chazu/plantkit/pkg/route"
)

// Build assembles chain into a fresh graph rooted at a group called name.
func Build(name string, chain route.Chain, spec Spec, rep diag.Reporter) (*graph.DesignGraph, error) {
	b := graph.NewBuilder(rep)
	if _, err := Assemble(b, graph.ZeroID, name, chain, spec); err != nil {
		return nil, err
	}
	return b.Graph(), nil
}

// Assemble emits the duct run under parent and returns its group.
// Identical chains and specs produce identical nodes.
func Assemble(b *graph.Builder, parent graph.NodeID, name string, chain route.Chain, spec Spec) (graph.NodeID, error) {
	if err := spec.Validate(); err != nil {
		return graph.ZeroID, err
	}
	if chain.Len() < 2 {
		return graph.ZeroID, diag.Configf("duct", "chain", "need at least 2 waypoints, got %d", chain.Len())
	}

	root := b.Group(parent, name, graph.RoleAssembly, geom.Pose())
	segs := chain.Segments()

	shells(b, root, segs, spec)
	elbows(b, root, chain.Elbows(), spec)
	flanges(b, root, chain, segs, spec)
	if spec.SupportSpacing > 0 {
		supports(b, root, segs, spec)
	}
	if spec.ValveAt != nil {
		valve(b, root, chain, spec)
	}
	if spec.FlowArrows > 0 {
		arrows(b, root, chain, spec)
	}
	return root, nil
}

func shells(b *graph.Builder, parent graph.NodeID, segs []route.Segment, spec Spec) {
	g := b.Group(parent, "shells", graph.RoleAssembly, geom.Pose())
	for _, s := range segs {
		rot, ok := geom.Direction(s.Dir)
		if !ok {
			b.Skip(g, graph.Indexed("shell", s.Index), "no usable segment direction")
			continue
		}
		xf := geom.Placed(s.Midpoint(), rot)
		b.Primitive(g, graph.Indexed("shell", s.Index), graph.RoleShell, xf,
			graph.CylinderData{Radius: spec.BoreRadius, Length: s.Length})
		if spec.InsulationThickness != nil {
			b.Primitive(g, graph.Indexed("insulation", s.Index), graph.RoleInsulation, xf,
				graph.CylinderData{Radius: spec.OuterRadius(), Length: s.Length})
		}
	}
}

// ElbowFrame returns the placement of a torus whose arc, starting on
// local +X and sweeping counter-clockwise about local +Z, joins the
// incoming run to the outgoing run around pivot p. ok is false for a
// reversal, whose bend plane is undefined.
func ElbowFrame(e route.Elbow, bendRadius float64) (geom.Transform, bool) {
	if e.Reversal() {
		return geom.Transform{}, false
	}
	d1, d2 := e.In, e.Out
	n1, ok := d2.Sub(d1.Scale(d2.Dot(d1))).Normalize()
	if !ok {
		return geom.Transform{}, false
	}
	tangentIn := e.Point.Sub(d1.Scale(bendRadius * math.Tan(e.Angle/2)))
	center := tangentIn.Add(n1.Scale(bendRadius))

	x := n1.Neg()
	y := d1
	z := x.Cross(y)
	return geom.Placed(center, geom.FromBasis(x, y, z)), true
}

func elbows(b *graph.Builder, parent graph.NodeID, es []route.Elbow, spec Spec) {
	g := b.Group(parent, "elbows", graph.RoleAssembly, geom.Pose())
	for i, e := range es {
		name := graph.Indexed("elbow", i)
		xf, ok := ElbowFrame(e, spec.BendRadius())
		if !ok {
			b.Skip(g, name, "run reverses direction; bend plane undefined")
			continue
		}
		b.Primitive(g, name, graph.RoleElbow, xf, graph.TorusData{
			RingRadius: spec.BendRadius(),
			TubeRadius: spec.BoreRadius,
			Arc:        e.Angle,
		})
	}
}

func flanges(b *graph.Builder, parent graph.NodeID, chain route.Chain, segs []route.Segment, spec Spec) {
	g := b.Group(parent, "flanges", graph.RoleAssembly, geom.Pose())
	ends := []struct {
		name string
		at   geom.Vec3
		dir  geom.Vec3
	}{
		{"start", chain.Start(), segs[0].Dir},
		{"end", chain.End(), segs[len(segs)-1].Dir},
	}

	thickness := 0.25 * spec.BoreRadius
	flangeR := spec.FlangeRadius()
	boltRing := (spec.BoreRadius + flangeR) / 2
	boltR := (flangeR - spec.BoreRadius) / 4

	for _, end := range ends {
		rot, _ := geom.Direction(end.dir)
		fg := b.Group(g, end.name, graph.RoleAssembly, geom.Placed(end.at, rot))
		b.Primitive(fg, "disc", graph.RoleFlange, geom.Pose(),
			graph.CylinderData{Radius: flangeR, Length: thickness})

		if boltR <= 0 {
			continue
		}
		for k := 0; k < spec.BoltCount; k++ {
			phi := 2 * math.Pi * float64(k) / float64(spec.BoltCount)
			pos := geom.V3(math.Cos(phi)*boltRing, 0, math.Sin(phi)*boltRing)
			b.Primitive(fg, graph.Indexed("bolt", k), graph.RoleBolt, geom.At(pos),
				graph.CylinderData{Radius: boltR, Length: thickness * 1.5})
		}
	}
}

func supports(b *graph.Builder, parent graph.NodeID, segs []route.Segment, spec Spec) {
	g := b.Group(parent, "supports", graph.RoleAssembly, geom.Pose())
	outer := spec.OuterRadius()
	size := geom.V3(2.4*outer, 0.25*spec.BoreRadius, 0.5*spec.BoreRadius)

	for _, s := range segs {
		if s.Vertical() {
			continue
		}
		horiz, ok := geom.V3(s.Dir.X, 0, s.Dir.Z).Normalize()
		if !ok {
			continue
		}
		yaw := geom.AxisAngle(geom.Up, math.Atan2(horiz.X, horiz.Z))

		for k := 1; float64(k)*spec.SupportSpacing < s.Length; k++ {
			name := graph.Indexed(graph.Indexed("bracket", s.Index), k)
			at := s.From.Add(s.Dir.Scale(float64(k) * spec.SupportSpacing))
			center := at.Sub(geom.Up.Scale(outer + size.Y/2))
			if _, ok := b.Primitive(g, name, graph.RoleBracket, geom.Placed(center, yaw), graph.BoxData{Size: size}); !ok {
				continue
			}

			bottom := center.Y - size.Y/2
			if !spec.SupportPosts || bottom <= spec.GroundLevel {
				continue
			}
			h := bottom - spec.GroundLevel
			b.Primitive(g, name+"_post", graph.RolePost,
				geom.At(geom.V3(center.X, spec.GroundLevel+h/2, center.Z)),
				graph.CylinderData{Radius: 0.1 * spec.BoreRadius, Length: h})
		}
	}
}

// valve places an inline valve with its stem pointing up.
func valve(b *graph.Builder, parent graph.NodeID, chain route.Chain, spec Spec) {
	at, _ := chain.PointAt(*spec.ValveAt)
	bore := spec.BoreRadius
	g := b.Group(parent, "valve", graph.RoleAssembly, geom.At(at))

	bodyR := 1.3 * spec.OuterRadius()
	stemLen := 0.8 * bore
	b.Primitive(g, "body", graph.RoleValve, geom.Pose(), graph.SphereData{Radius: bodyR})
	b.Primitive(g, "stem", graph.RoleValve, geom.At(geom.V3(0, bodyR+stemLen/2, 0)),
		graph.CylinderData{Radius: 0.1 * bore, Length: stemLen})
	b.Primitive(g, "handwheel", graph.RoleValve, geom.At(geom.V3(0, bodyR+stemLen, 0)),
		graph.CylinderData{Radius: 0.6 * bore, Length: 0.1 * bore})
}

// arrows marks the flow direction above the run, away from both ends.
func arrows(b *graph.Builder, parent graph.NodeID, chain route.Chain, spec Spec) {
	g := b.Group(parent, "arrows", graph.RoleAssembly, geom.Pose())
	bore := spec.BoreRadius
	n := spec.FlowArrows
	for i := 1; i <= n; i++ {
		f := float64(i)/float64(n+1)*0.8 + 0.1
		at, dir := chain.PointAt(f)
		side, ok := geom.Up.Sub(dir.Scale(dir.Dot(geom.Up))).Normalize()
		if !ok {
			side = geom.XAxis
		}
		rot, _ := geom.Direction(dir)
		pos := at.Add(side.Scale(spec.OuterRadius() + 0.5*bore))
		b.Primitive(g, graph.Indexed("arrow", i-1), graph.RoleArrow, geom.Placed(pos, rot),
			graph.ConeData{RadiusBottom: 0.3 * bore, RadiusTop: 0, Length: 0.8 * bore})
	}
}
