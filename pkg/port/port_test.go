package port

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/plantkit/pkg/geom"
)

func TestResolveComposesAncestors(t *testing.T) {
	site := NewComponent("site", geom.At(geom.V3(100, 0, 0)))
	skid := site.Child("skid", geom.Placed(geom.V3(0, 1, 0), geom.AxisAngle(geom.Up, math.Pi/2)))
	require.NoError(t, skid.AddPort("outlet", geom.V3(2, 0, 0)))

	pos, ok := Resolve(skid, "outlet")
	require.True(t, ok)
	// +X rotated a quarter turn about Y becomes -Z.
	assert.True(t, pos.ApproxEqual(geom.V3(100, 1, -2), 1e-9), "got %v", pos)
}

func TestResolveIsSnapshot(t *testing.T) {
	pump := NewComponent("pump", geom.At(geom.V3(1, 0, 0)))
	require.NoError(t, pump.AddPort("suction", geom.V3(0, 0.5, 0)))

	before, ok := Resolve(pump, "suction")
	require.True(t, ok)
	pump.SetTransform(geom.At(geom.V3(5, 0, 0)))
	after, _ := Resolve(pump, "suction")

	assert.Equal(t, geom.V3(1, 0.5, 0), before, "earlier result must not move")
	assert.Equal(t, geom.V3(5, 0.5, 0), after)
}

func TestResolveMissIsNotAnError(t *testing.T) {
	c := NewComponent("tank", geom.Pose())
	_, ok := Resolve(c, "drain")
	assert.False(t, ok)
	_, ok = Resolve(nil, "drain")
	assert.False(t, ok)
}

func TestAddPortRejectsDuplicates(t *testing.T) {
	c := NewComponent("tank", geom.Pose())
	require.NoError(t, c.AddPort("inlet", geom.Zero))
	assert.Error(t, c.AddPort("inlet", geom.Up))
	assert.Error(t, c.AddPort("", geom.Up))
	require.NoError(t, c.AddPort("outlet", geom.Up))

	ports := c.Ports()
	require.Len(t, ports, 2)
	assert.Equal(t, "inlet", ports[0].Name)
	assert.Equal(t, "outlet", ports[1].Name)
}

func TestResolveDirection(t *testing.T) {
	c := NewComponent("pump", geom.Placed(geom.Zero, geom.AxisAngle(geom.Up, math.Pi)))
	require.NoError(t, c.AddDirectedPort("discharge", geom.V3(1, 0, 0), geom.V3(2, 0, 0)))
	require.NoError(t, c.AddPort("vent", geom.Up))

	dir, ok := ResolveDirection(c, "discharge")
	require.True(t, ok)
	assert.True(t, dir.ApproxEqual(geom.V3(-1, 0, 0), 1e-9))

	_, ok = ResolveDirection(c, "vent")
	assert.False(t, ok, "undirected port")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	tower := NewComponent("absorber", geom.At(geom.V3(0, 0, 0)))
	require.NoError(t, tower.AddPort("flue_out", geom.V3(0, 28, 8)))
	require.NoError(t, r.Register(tower))
	assert.Error(t, r.Register(NewComponent("absorber", geom.Pose())))

	pos, ok := r.Resolve("absorber", "flue_out")
	require.True(t, ok)
	assert.Equal(t, geom.V3(0, 28, 8), pos)

	_, ok = r.Resolve("stack", "inlet")
	assert.False(t, ok)
	assert.Equal(t, []string{"absorber"}, r.Names())
}

func TestRegistryConcurrentUse(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := NewComponent(string(rune('a'+i)), geom.Pose())
			_ = c.AddPort("p", geom.Up)
			_ = r.Register(c)
			r.Resolve(c.Name(), "p")
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.Names(), 16)
}

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("pump.a.discharge")
	require.NoError(t, err)
	assert.Equal(t, Ref{Component: "pump.a", Port: "discharge"}, ref)
	assert.Equal(t, "pump.a.discharge", ref.String())

	for _, bad := range []string{"", "pump", ".x", "pump."} {
		_, err := ParseRef(bad)
		assert.Error(t, err, bad)
	}

	var r Ref
	require.NoError(t, r.UnmarshalText([]byte("tank.inlet")))
	assert.Equal(t, "tank", r.Component)
}
