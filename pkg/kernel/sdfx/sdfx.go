// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/plantkit/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution along
// the longest bounding box axis.
const DefaultMeshCells = 64

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel at the default mesh resolution.
func New() *SdfxKernel {
	return &SdfxKernel{cells: DefaultMeshCells}
}

// NewWithResolution returns a kernel that meshes with the given number of
// marching cubes cells. Non-positive values fall back to the default.
func NewWithResolution(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// Resolution reports the marching cubes cell count.
func (k *SdfxKernel) Resolution() int { return k.cells }

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// must panics on constructor errors. Callers validate dimensions before
// reaching the kernel, so an error here is a programming bug.
func must(op string, s sdf.SDF3, err error) sdf.SDF3 {
	if err != nil {
		panic(fmt.Sprintf("sdfx.%s: %v", op, err))
	}
	return s
}

// alongY turns a solid built along Z so that its axis runs along +Y.
func alongY(s sdf.SDF3) sdf.SDF3 {
	return sdf.Transform3D(s, sdf.RotateX(-math.Pi/2))
}

// Box creates a box centered on the origin.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	return wrap(must("Box3D", s, err))
}

// Cylinder creates a cylinder of the given length along Y.
func (k *SdfxKernel) Cylinder(length, radius float64) kernel.Solid {
	s, err := sdf.Cylinder3D(length, radius, 0)
	return wrap(alongY(must("Cylinder3D", s, err)))
}

// Cone creates a truncated cone along Y, radiusBottom at -Y.
func (k *SdfxKernel) Cone(length, radiusBottom, radiusTop float64) kernel.Solid {
	s, err := sdf.Cone3D(length, radiusBottom, radiusTop, 0)
	return wrap(alongY(must("Cone3D", s, err)))
}

// Sphere creates a sphere centered on the origin.
func (k *SdfxKernel) Sphere(radius float64) kernel.Solid {
	s, err := sdf.Sphere3D(radius)
	return wrap(must("Sphere3D", s, err))
}

// Torus creates a torus (or torus section) in the XY plane. The arc starts
// on +X and sweeps counter-clockwise about +Z.
func (k *SdfxKernel) Torus(ringRadius, tubeRadius, arc float64) kernel.Solid {
	c, err := sdf.Circle2D(tubeRadius)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Circle2D: %v", err))
	}
	profile := sdf.Transform2D(c, sdf.Translate2d(v2.Vec{X: ringRadius, Y: 0}))
	if arc >= 2*math.Pi {
		s, err := sdf.Revolve3D(profile)
		return wrap(must("Revolve3D", s, err))
	}
	s, err := sdf.RevolveTheta3D(profile, arc)
	return wrap(must("RevolveTheta3D", s, err))
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by angle radians about axis.
func (k *SdfxKernel) Rotate(s kernel.Solid, axis [3]float64, angle float64) kernel.Solid {
	if angle == 0 {
		return s
	}
	m := sdf.Rotate3d(v3.Vec{X: axis[0], Y: axis[1], Z: axis[2]}, angle)
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	cells := k.cells
	if cells <= 0 {
		cells = DefaultMeshCells
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(unwrap(s), renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
