package geom

import "math"

// Quat is a rotation quaternion with X, Y, Z and W components.
type Quat struct {
	X, Y, Z, W float64
}

// Identity returns the identity rotation.
func Identity() Quat {
	return Quat{W: 1}
}

// AxisAngle returns the rotation of angle radians about axis (right hand rule).
// The axis need not be normalized.
func AxisAngle(axis Vec3, angle float64) Quat {
	n, ok := axis.Normalize()
	if !ok {
		return Identity()
	}
	s := math.Sin(angle / 2)
	return Quat{n.X * s, n.Y * s, n.Z * s, math.Cos(angle / 2)}
}

// FromUnitVectors returns the rotation that maps unit vector from onto
// unit vector to. Antiparallel inputs rotate half a turn about an axis
// perpendicular to from.
func FromUnitVectors(from, to Vec3) Quat {
	r := from.Dot(to) + 1
	var v Vec3
	if r < 1e-6 {
		r = 0
		if math.Abs(from.X) > math.Abs(from.Z) {
			v = Vec3{-from.Y, from.X, 0}
		} else {
			v = Vec3{0, -from.Z, from.Y}
		}
	} else {
		v = from.Cross(to)
	}
	return Quat{v.X, v.Y, v.Z, r}.Normalize()
}

// Direction returns the rotation that maps the canonical Up axis onto dir.
// ok is false when dir has no usable direction.
func Direction(dir Vec3) (q Quat, ok bool) {
	n, ok := dir.Normalize()
	if !ok {
		return Identity(), false
	}
	return FromUnitVectors(Up, n), true
}

// FromBasis returns the rotation whose local X, Y and Z axes map onto the
// given orthonormal, right-handed basis vectors.
func FromBasis(x, y, z Vec3) Quat {
	m11, m12, m13 := x.X, y.X, z.X
	m21, m22, m23 := x.Y, y.Y, z.Y
	m31, m32, m33 := x.Z, y.Z, z.Z
	trace := m11 + m22 + m33

	var q Quat
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q.W = 0.25 / s
		q.X = (m32 - m23) * s
		q.Y = (m13 - m31) * s
		q.Z = (m21 - m12) * s
	case m11 > m22 && m11 > m33:
		s := 2 * math.Sqrt(1+m11-m22-m33)
		q.W = (m32 - m23) / s
		q.X = 0.25 * s
		q.Y = (m12 + m21) / s
		q.Z = (m13 + m31) / s
	case m22 > m33:
		s := 2 * math.Sqrt(1+m22-m11-m33)
		q.W = (m13 - m31) / s
		q.X = (m12 + m21) / s
		q.Y = 0.25 * s
		q.Z = (m23 + m32) / s
	default:
		s := 2 * math.Sqrt(1+m33-m11-m22)
		q.W = (m21 - m12) / s
		q.X = (m13 + m31) / s
		q.Y = (m23 + m32) / s
		q.Z = 0.25 * s
	}
	return q.Normalize()
}

// Mul returns q*o, the rotation that applies o first and then q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

func (q Quat) Length() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalize returns q scaled to unit length. A zero quaternion becomes
// the identity.
func (q Quat) Normalize() Quat {
	l := q.Length()
	if l == 0 || !Finite(l) {
		return Identity()
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Conjugate returns the inverse of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{-q.X, -q.Y, -q.Z, q.W}
}

// ToAxisAngle returns the rotation axis and angle in radians. The identity
// rotation reports the Up axis and a zero angle.
func (q Quat) ToAxisAngle() (Vec3, float64) {
	if q.W < 0 {
		q = Quat{-q.X, -q.Y, -q.Z, -q.W}
	}
	w := math.Min(1, q.W)
	angle := 2 * math.Acos(w)
	s := math.Sqrt(1 - w*w)
	if s < 1e-9 {
		return Up, 0
	}
	return Vec3{q.X / s, q.Y / s, q.Z / s}, angle
}

// IsIdentity reports whether q applies no rotation (within tolerance).
func (q Quat) IsIdentity() bool {
	return math.Abs(math.Abs(q.W)-1) < 1e-12
}

func (q Quat) IsFinite() bool {
	return Finite(q.X, q.Y, q.Z, q.W)
}
