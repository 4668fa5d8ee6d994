package geom

// Transform is a rigid placement: rotate about the local origin, then
// translate to Position.
type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Quat `json:"rotation"`
}

// Pose returns the identity transform.
func Pose() Transform {
	return Transform{Rotation: Identity()}
}

// At returns an unrotated transform placed at p.
func At(p Vec3) Transform {
	return Transform{Position: p, Rotation: Identity()}
}

// Placed returns a transform at p with rotation q.
func Placed(p Vec3, q Quat) Transform {
	return Transform{Position: p, Rotation: q}
}

// Compose returns the transform that applies child in the frame of t.
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		Position: t.Apply(child.Position),
		Rotation: t.rotation().Mul(child.rotation()).Normalize(),
	}
}

// Apply maps a point from the local frame into the parent frame.
func (t Transform) Apply(p Vec3) Vec3 {
	return t.rotation().Rotate(p).Add(t.Position)
}

// ApplyDir maps a direction; translation does not apply.
func (t Transform) ApplyDir(d Vec3) Vec3 {
	return t.rotation().Rotate(d)
}

func (t Transform) IsFinite() bool {
	return t.Position.IsFinite() && t.Rotation.IsFinite()
}

// rotation treats the zero value as identity so that Transform{} is usable.
func (t Transform) rotation() Quat {
	if t.Rotation == (Quat{}) {
		return Identity()
	}
	return t.Rotation
}
