package duct

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/graph"
	"github.com/chazu/plantkit/pkg/route"
)

func chain(t *testing.T, pts ...geom.Vec3) route.Chain {
	t.Helper()
	c, err := route.NewChain(pts)
	require.NoError(t, err)
	return c
}

func bare(bore float64) Spec {
	s := DefaultSpec(bore)
	s.SupportSpacing = 0
	s.BoltCount = 0
	return s
}

func TestTwoPointChain(t *testing.T) {
	g, err := Build("run", chain(t, geom.V3(0, 0, 0), geom.V3(10, 0, 0)), bare(0.5), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, g.CountRole(graph.RoleShell))
	assert.Equal(t, 2, g.CountRole(graph.RoleFlange))
	assert.Equal(t, 0, g.CountRole(graph.RoleElbow))
	assert.Empty(t, graph.ValidateAll(g).Errors)
}

func TestThreePointChain(t *testing.T) {
	g, err := Build("run", chain(t, geom.V3(0, 0, 0), geom.V3(10, 0, 0), geom.V3(10, 8, 0)), bare(0.5), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, g.CountRole(graph.RoleShell))
	assert.Equal(t, 2, g.CountRole(graph.RoleFlange))
	assert.Equal(t, 1, g.CountRole(graph.RoleElbow))
}

func TestCollinearPointIsNotAnElbow(t *testing.T) {
	g, err := Build("run", chain(t, geom.V3(0, 0, 0), geom.V3(4, 0, 0), geom.V3(10, 0, 0)), bare(0.5), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, g.CountRole(graph.RoleShell))
	assert.Equal(t, 0, g.CountRole(graph.RoleElbow))
}

func TestShellPlacement(t *testing.T) {
	g, err := Build("run", chain(t, geom.V3(1, 2, 3), geom.V3(1, 2, 9)), bare(0.4), nil)
	require.NoError(t, err)

	shell := g.MustLookup("run/shells/shell_000")
	c := shell.Data.(graph.CylinderData)
	assert.Equal(t, 0.4, c.Radius)
	assert.InDelta(t, 6, c.Length, 1e-12)
	assert.True(t, shell.Transform.Position.ApproxEqual(geom.V3(1, 2, 6), 1e-12))
	axis := shell.Transform.Rotation.Rotate(geom.Up)
	assert.True(t, axis.ApproxEqual(geom.ZAxis, 1e-9), "axis %v", axis)
}

func TestInsulation(t *testing.T) {
	spec := bare(0.5)
	spec.InsulationThickness = Float(0.1)
	g, err := Build("run", chain(t, geom.V3(0, 0, 0), geom.V3(5, 0, 0), geom.V3(5, 0, 5)), spec, nil)
	require.NoError(t, err)

	ins := g.ByRole(graph.RoleInsulation)
	require.Len(t, ins, 2)
	shell := g.MustLookup("run/shells/shell_000")
	assert.InDelta(t, 0.6, ins[0].Data.(graph.CylinderData).Radius, 1e-12)
	assert.Equal(t, shell.Transform, ins[0].Transform)
}

func TestElbowJoinsAdjacentRuns(t *testing.T) {
	tests := []struct {
		name string
		pts  []geom.Vec3
	}{
		{"right angle", []geom.Vec3{geom.V3(0, 0, 0), geom.V3(10, 0, 0), geom.V3(10, 10, 0)}},
		{"oblique", []geom.Vec3{geom.V3(0, 0, 0), geom.V3(0, 0, 10), geom.V3(6, 3, 14)}},
		{"acute", []geom.Vec3{geom.V3(0, 0, 0), geom.V3(10, 0, 0), geom.V3(2, 0, 3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := chain(t, tt.pts...)
			spec := bare(0.5)
			g, err := Build("run", c, spec, nil)
			require.NoError(t, err)

			n := g.MustLookup("run/elbows/elbow_000")
			torus := n.Data.(graph.TorusData)
			e := c.Elbows()[0]
			R := spec.BendRadius()
			assert.Equal(t, 0.5, torus.TubeRadius)
			assert.InDelta(t, 0.75, torus.RingRadius, 1e-12)
			assert.InDelta(t, e.Angle, torus.Arc, 1e-12)

			arc := func(phi float64) geom.Vec3 {
				return n.Transform.Apply(geom.V3(R*math.Cos(phi), R*math.Sin(phi), 0))
			}
			off := R * math.Tan(e.Angle/2)
			assert.True(t, arc(0).ApproxEqual(e.Point.Sub(e.In.Scale(off)), 1e-9), "arc start")
			assert.True(t, arc(torus.Arc).ApproxEqual(e.Point.Add(e.Out.Scale(off)), 1e-9), "arc end")

			// The bend plane contains both run directions.
			normal := n.Transform.Rotation.Rotate(geom.ZAxis)
			assert.InDelta(t, 0, normal.Dot(e.In), 1e-9)
			assert.InDelta(t, 0, normal.Dot(e.Out), 1e-9)
		})
	}
}

func TestReversalElbowIsSkipped(t *testing.T) {
	var col diag.Collector
	g, err := Build("run", chain(t, geom.V3(0, 0, 0), geom.V3(10, 0, 0), geom.V3(4, 0, 0)), bare(0.5), &col)
	require.NoError(t, err)
	assert.Equal(t, 0, g.CountRole(graph.RoleElbow))
	assert.Equal(t, 2, g.CountRole(graph.RoleShell))
	assert.Equal(t, 1, col.Len())
}

func TestFlangesAndBolts(t *testing.T) {
	spec := DefaultSpec(1.0)
	spec.SupportSpacing = 0
	g, err := Build("run", chain(t, geom.V3(0, 0, 0), geom.V3(0, 10, 0), geom.V3(7, 10, 0)), spec, nil)
	require.NoError(t, err)

	assert.Equal(t, 16, g.CountRole(graph.RoleBolt))
	start := g.MustLookup("run/flanges/start/disc")
	assert.InDelta(t, 1.3, start.Data.(graph.CylinderData).Radius, 1e-12)

	world := g.WorldTransform(start.ID)
	assert.True(t, world.Position.ApproxEqual(geom.Zero, 1e-12))
	assert.True(t, world.Rotation.Rotate(geom.Up).ApproxEqual(geom.Up, 1e-9))

	end := g.MustLookup("run/flanges/end/disc")
	world = g.WorldTransform(end.ID)
	assert.True(t, world.Position.ApproxEqual(geom.V3(7, 10, 0), 1e-12))
	assert.True(t, world.Rotation.Rotate(geom.Up).ApproxEqual(geom.XAxis, 1e-9))

	for _, bolt := range g.ByRole(graph.RoleBolt) {
		p := g.WorldTransform(bolt.ID).Position
		if !strings.HasPrefix(bolt.Name, "run/flanges/start/") {
			continue
		}
		assert.InDelta(t, 1.15, math.Hypot(p.X, p.Z), 1e-9)
		assert.InDelta(t, 0, p.Y, 1e-9)
	}
}

func TestSupportsCradleFromBelow(t *testing.T) {
	spec := bare(0.5)
	spec.SupportSpacing = 4
	spec.SupportPosts = true
	c := chain(t, geom.V3(0, 6, 0), geom.V3(0, 6, 10), geom.V3(0, 20, 10), geom.V3(9, 20, 10))
	g, err := Build("run", c, spec, nil)
	require.NoError(t, err)

	brackets := g.ByRole(graph.RoleBracket)
	// 10 m run: at 4 and 8. Vertical run: none. 9 m run: at 4 and 8.
	require.Len(t, brackets, 4)
	assert.Len(t, g.ByRole(graph.RolePost), 4)

	b0 := g.MustLookup("run/supports/bracket_000_001")
	size := b0.Data.(graph.BoxData).Size
	assert.InDelta(t, 6-0.5-size.Y/2, b0.Transform.Position.Y, 1e-12)
	assert.InDelta(t, 4, b0.Transform.Position.Z, 1e-12)
	// The bracket spans across the run: its local X is horizontal and
	// perpendicular to the run direction.
	across := b0.Transform.Rotation.Rotate(geom.XAxis)
	assert.InDelta(t, 0, across.Dot(geom.ZAxis), 1e-9)
	assert.InDelta(t, 0, across.Y, 1e-9)

	post := g.MustLookup("run/supports/bracket_000_001_post")
	pc := post.Data.(graph.CylinderData)
	bottom := b0.Transform.Position.Y - size.Y/2
	assert.InDelta(t, bottom, pc.Length, 1e-12)
	assert.InDelta(t, bottom/2, post.Transform.Position.Y, 1e-12)
}

func TestShortSegmentsStillBuild(t *testing.T) {
	spec := bare(1)
	// Segments far shorter than twice the 1.5 m bend radius.
	g, err := Build("run", chain(t, geom.V3(0, 0, 0), geom.V3(0.5, 0, 0), geom.V3(0.5, 0.5, 0), geom.V3(1, 0.5, 0)), spec, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, g.CountRole(graph.RoleShell))
	assert.Equal(t, 2, g.CountRole(graph.RoleElbow))
}

func TestValveAndArrows(t *testing.T) {
	spec := bare(0.5)
	spec.ValveAt = Float(0.3)
	spec.FlowArrows = 5
	g, err := Build("run", chain(t, geom.V3(0, 0, 0), geom.V3(10, 0, 0)), spec, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, g.CountRole(graph.RoleValve))
	valve := g.MustLookup("run/valve")
	assert.True(t, valve.Transform.Position.ApproxEqual(geom.V3(3, 0, 0), 1e-12))
	stem := g.WorldTransform(g.MustLookup("run/valve/stem").ID)
	assert.Greater(t, stem.Position.Y, 0.0)

	arrows := g.ByRole(graph.RoleArrow)
	require.Len(t, arrows, 5)
	for _, a := range arrows {
		tip := a.Transform.Rotation.Rotate(geom.Up)
		assert.True(t, tip.ApproxEqual(geom.XAxis, 1e-9), "arrows point downstream")
		assert.Greater(t, a.Transform.Position.Y, 0.5)
		assert.Greater(t, a.Transform.Position.X, 0.5)
		assert.Less(t, a.Transform.Position.X, 9.5)
	}
	assert.Empty(t, graph.ValidateAll(g).Errors)
}

func TestAssembleIsIdempotent(t *testing.T) {
	spec := DefaultSpec(0.8)
	spec.InsulationThickness = Float(0.1)
	spec.ValveAt = Float(0.5)
	spec.FlowArrows = 3
	c := chain(t, geom.V3(0, 3, 0), geom.V3(0, 27, 0), geom.V3(40, 27, 0), geom.V3(40, 25, 0))

	a, err := Build("flue", c, spec, nil)
	require.NoError(t, err)
	b, err := Build("flue", c, spec, nil)
	require.NoError(t, err)

	require.Equal(t, a.NodeCount(), b.NodeCount())
	for _, role := range []graph.Role{graph.RoleShell, graph.RoleElbow, graph.RoleFlange, graph.RoleBracket} {
		assert.Equal(t, a.CountRole(role), b.CountRole(role), role)
	}
	for id, n := range a.Nodes {
		m := b.Get(id)
		require.NotNil(t, m, n.Name)
		assert.Equal(t, n.Transform, m.Transform, n.Name)
		assert.Equal(t, n.Data, m.Data, n.Name)
	}
}

func TestSpecValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
	}{
		{"zero bore", func(s *Spec) { s.BoreRadius = 0 }},
		{"nan bore", func(s *Spec) { s.BoreRadius = math.NaN() }},
		{"narrow flange", func(s *Spec) { s.FlangeFactor = 0.9 }},
		{"tight bend", func(s *Spec) { s.BendRadiusFactor = 1 }},
		{"negative spacing", func(s *Spec) { s.SupportSpacing = -1 }},
		{"zero insulation", func(s *Spec) { s.InsulationThickness = Float(0) }},
		{"valve past end", func(s *Spec) { s.ValveAt = Float(1.5) }},
		{"negative bolts", func(s *Spec) { s.BoltCount = -2 }},
	}
	c := chain(t, geom.Zero, geom.V3(1, 0, 0))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := DefaultSpec(0.5)
			tt.mutate(&spec)
			_, err := Build("run", c, spec, nil)
			assert.ErrorIs(t, err, diag.ErrConfiguration)
		})
	}
}

func TestEmptyChainRejected(t *testing.T) {
	_, err := Build("run", route.Chain{}, DefaultSpec(0.5), nil)
	assert.True(t, diag.IsConfigError(err))
}
