package tessellate

import (
	"errors"
	"math"

	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/graph"
	"github.com/chazu/plantkit/pkg/kernel"
)

// DefaultTubeSides is used when TubeData.Sides is unset.
const DefaultTubeSides = 12

var errShortTube = errors.New("fewer than two distinct path points")

// sweepTube meshes an open tube directly: a ring of vertices per path
// point, oriented by a parallel-transported frame so the surface does not
// twist along the curve.
func sweepTube(data graph.TubeData, world geom.Transform) (*kernel.Mesh, error) {
	sides := data.Sides
	if sides < 3 {
		sides = DefaultTubeSides
	}

	path := make([]geom.Vec3, 0, len(data.Path))
	for _, p := range data.Path {
		w := world.Apply(p)
		if len(path) > 0 && w.Distance(path[len(path)-1]) < geom.Epsilon {
			continue
		}
		path = append(path, w)
	}
	if len(path) < 2 {
		return nil, errShortTube
	}

	tangents := make([]geom.Vec3, len(path))
	for i := range path {
		a, b := path[max(0, i-1)], path[min(len(path)-1, i+1)]
		t, ok := b.Sub(a).Normalize()
		if !ok {
			t = tangents[max(0, i-1)]
		}
		tangents[i] = t
	}

	normal := initialNormal(tangents[0])
	m := &kernel.Mesh{}
	for i, p := range path {
		if i > 0 {
			normal = geom.FromUnitVectors(tangents[i-1], tangents[i]).Rotate(normal)
			// Re-orthogonalize against drift.
			if n, ok := normal.Sub(tangents[i].Scale(normal.Dot(tangents[i]))).Normalize(); ok {
				normal = n
			}
		}
		binormal := tangents[i].Cross(normal)
		for j := 0; j < sides; j++ {
			theta := 2 * math.Pi * float64(j) / float64(sides)
			dir := normal.Scale(math.Cos(theta)).Add(binormal.Scale(math.Sin(theta)))
			v := p.Add(dir.Scale(data.Radius))
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, float32(dir.X), float32(dir.Y), float32(dir.Z))
		}
	}

	for i := 0; i+1 < len(path); i++ {
		for j := 0; j < sides; j++ {
			a := uint32(i*sides + j)
			b := uint32(i*sides + (j+1)%sides)
			c := uint32((i+1)*sides + j)
			d := uint32((i+1)*sides + (j+1)%sides)
			m.Indices = append(m.Indices, a, b, c, b, d, c)
		}
	}
	return m, nil
}

// initialNormal returns a unit vector perpendicular to t, built from the
// world axis least aligned with it.
func initialNormal(t geom.Vec3) geom.Vec3 {
	ax, ay, az := math.Abs(t.X), math.Abs(t.Y), math.Abs(t.Z)
	ref := geom.XAxis
	switch {
	case ay <= ax && ay <= az:
		ref = geom.Up
	case az <= ax && az <= ay:
		ref = geom.ZAxis
	}
	n, _ := t.Cross(ref).Normalize()
	return n
}
