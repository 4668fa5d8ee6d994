// Package geom provides the small 3D math vocabulary shared by the
// generators: vectors, quaternions, rigid transforms, splines and boxes.
// The world is Y-up; Up is the canonical reference axis for every
// primitive that has a principal direction.
package geom

import (
	"fmt"
	"math"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

// Vec3 is a 3D vector or point.
type Vec3 struct {
	X float64 `json:"x" toml:"x" yaml:"x"`
	Y float64 `json:"y" toml:"y" yaml:"y"`
	Z float64 `json:"z" toml:"z" yaml:"z"`
}

var (
	Zero  = Vec3{}
	Up    = Vec3{0, 1, 0}
	XAxis = Vec3{1, 0, 0}
	ZAxis = Vec3{0, 0, 1}
)

// V3 is shorthand for Vec3{x, y, z}.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Distance returns the Euclidean distance between two points.
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}

// Normalize returns the unit vector in the direction of v. The second
// result is false when v is too short (or non-finite) to have a direction.
func (v Vec3) Normalize() (Vec3, bool) {
	l := v.Length()
	if !Finite(l) || l < Epsilon {
		return Vec3{}, false
	}
	return v.Scale(1 / l), true
}

// Lerp interpolates between v and o; t=0 yields v, t=1 yields o.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}

// IsFinite reports whether every component is a finite number.
func (v Vec3) IsFinite() bool {
	return Finite(v.X, v.Y, v.Z)
}

// ApproxEqual reports whether v and o are within tol on every axis.
func (v Vec3) ApproxEqual(o Vec3, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol && math.Abs(v.Y-o.Y) <= tol && math.Abs(v.Z-o.Z) <= tol
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", v.X, v.Y, v.Z)
}

// Finite reports whether all values are neither NaN nor infinite. It is
// the one numeric-degeneracy predicate the generators rely on.
func Finite(vals ...float64) bool {
	for _, f := range vals {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
