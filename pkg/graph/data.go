package graph

import "github.com/chazu/plantkit/pkg/geom"

// All primitives are centered on their local origin. Primitives with a
// principal axis (cylinders, cones) run along local +Y.

// BoxData is a rectangular solid with full edge lengths Size.
type BoxData struct {
	Size geom.Vec3 `json:"size"`
}

func (BoxData) nodeData() {}

// CylinderData is a solid cylinder along local Y.
type CylinderData struct {
	Radius float64 `json:"radius"`
	Length float64 `json:"length"`
}

func (CylinderData) nodeData() {}

// ConeData is a truncated cone along local Y; RadiusBottom sits at -Length/2.
type ConeData struct {
	RadiusBottom float64 `json:"radius_bottom"`
	RadiusTop    float64 `json:"radius_top"`
	Length       float64 `json:"length"`
}

func (ConeData) nodeData() {}

// SphereData is a solid sphere.
type SphereData struct {
	Radius float64 `json:"radius"`
}

func (SphereData) nodeData() {}

// TorusData is a partial torus whose ring lies in the local XY plane. The
// arc starts on +X and sweeps Arc radians counter-clockwise about +Z.
type TorusData struct {
	RingRadius float64 `json:"ring_radius"`
	TubeRadius float64 `json:"tube_radius"`
	Arc        float64 `json:"arc"`
}

func (TorusData) nodeData() {}

// TubeData is a constant-radius tube swept along a polyline that was
// sampled from a smooth curve. Path points are in the node's local frame.
type TubeData struct {
	Path   []geom.Vec3 `json:"path"`
	Radius float64     `json:"radius"`
	Sides  int         `json:"sides"` // radial segments when meshed
}

func (TubeData) nodeData() {}

// GroupData annotates a group node.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
