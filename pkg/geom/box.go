package geom

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vec3 `json:"min" toml:"min" yaml:"min"`
	Max Vec3 `json:"max" toml:"max" yaml:"max"`
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Extend returns the smallest box containing b and p.
func (b Box) Extend(p Vec3) Box {
	return Box{
		Min: Vec3{min(b.Min.X, p.X), min(b.Min.Y, p.Y), min(b.Min.Z, p.Z)},
		Max: Vec3{max(b.Max.X, p.X), max(b.Max.Y, p.Y), max(b.Max.Z, p.Z)},
	}
}

func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

func (b Box) Center() Vec3 {
	return b.Min.Lerp(b.Max, 0.5)
}
