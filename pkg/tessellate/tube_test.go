package tessellate

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/graph"
)

func TestSweepTubeRadius(t *testing.T) {
	data := graph.TubeData{
		Path:   []geom.Vec3{geom.V3(0, 0, 0), geom.V3(0, 0, 2), geom.V3(0, 0, 4)},
		Radius: 0.5,
		Sides:  6,
	}
	m, err := sweepTube(data, geom.At(geom.V3(1, 0, 0)))
	if err != nil {
		t.Fatalf("sweepTube failed: %v", err)
	}
	for i := 0; i < m.VertexCount(); i++ {
		x, y := float64(m.Vertices[i*3])-1, float64(m.Vertices[i*3+1])
		if r := math.Hypot(x, y); math.Abs(r-0.5) > 1e-5 {
			t.Fatalf("vertex %d at distance %f from axis, want 0.5", i, r)
		}
		n := geom.V3(float64(m.Normals[i*3]), float64(m.Normals[i*3+1]), float64(m.Normals[i*3+2]))
		if math.Abs(n.Length()-1) > 1e-5 {
			t.Fatalf("normal %d not unit: %v", i, n)
		}
	}
}

func TestSweepTubeOutwardWinding(t *testing.T) {
	data := graph.TubeData{
		Path:   []geom.Vec3{geom.V3(0, 0, 0), geom.V3(0, 1, 0)},
		Radius: 1,
		Sides:  4,
	}
	m, err := sweepTube(data, geom.Pose())
	if err != nil {
		t.Fatalf("sweepTube failed: %v", err)
	}
	vert := func(i uint32) geom.Vec3 {
		return geom.V3(float64(m.Vertices[i*3]), float64(m.Vertices[i*3+1]), float64(m.Vertices[i*3+2]))
	}
	for tri := 0; tri < m.TriangleCount(); tri++ {
		a, b, c := vert(m.Indices[tri*3]), vert(m.Indices[tri*3+1]), vert(m.Indices[tri*3+2])
		face := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Scale(1.0 / 3)
		radial := geom.V3(centroid.X, 0, centroid.Z)
		if face.Dot(radial) <= 0 {
			t.Fatalf("triangle %d faces inward", tri)
		}
	}
}

func TestSweepTubeDropsDuplicatePoints(t *testing.T) {
	data := graph.TubeData{
		Path:   []geom.Vec3{geom.V3(0, 0, 0), geom.V3(0, 0, 0), geom.V3(1, 0, 0)},
		Radius: 0.1,
	}
	m, err := sweepTube(data, geom.Pose())
	if err != nil {
		t.Fatalf("sweepTube failed: %v", err)
	}
	if m.VertexCount() != 2*DefaultTubeSides {
		t.Errorf("vertex count = %d, want %d", m.VertexCount(), 2*DefaultTubeSides)
	}
}

func TestSweepTubeTooShort(t *testing.T) {
	data := graph.TubeData{
		Path:   []geom.Vec3{geom.V3(1, 1, 1), geom.V3(1, 1, 1)},
		Radius: 0.1,
	}
	if _, err := sweepTube(data, geom.Pose()); !errors.Is(err, errShortTube) {
		t.Errorf("err = %v, want errShortTube", err)
	}
}

func TestInitialNormalIsPerpendicular(t *testing.T) {
	for _, d := range []geom.Vec3{geom.Up, geom.XAxis, geom.ZAxis, geom.V3(1, 1, 1), geom.V3(-0.2, 0.1, 0.9)} {
		tn, _ := d.Normalize()
		n := initialNormal(tn)
		if math.Abs(n.Dot(tn)) > 1e-9 || math.Abs(n.Length()-1) > 1e-9 {
			t.Errorf("initialNormal(%v) = %v", tn, n)
		}
	}
}
