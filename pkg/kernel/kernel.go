// Package kernel defines the abstract geometry kernel interface.
// Implementations provide solid modeling and meshing behind this
// interface, so the tessellator never depends on a specific backend.
//
// Every primitive is centered on the origin. Primitives with a principal
// axis (cylinder, cone) run along +Y. The torus ring lies in the XY plane
// and its arc starts on +X, sweeping counter-clockwise about +Z.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(length, radius float64) Solid
	Cone(length, radiusBottom, radiusTop float64) Solid
	Sphere(radius float64) Solid
	Torus(ringRadius, tubeRadius, arc float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, axis [3]float64, angle float64) Solid // radians, right hand rule

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
