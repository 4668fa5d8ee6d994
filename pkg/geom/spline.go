package geom

import "math"

// CatmullRom is a centripetal Catmull-Rom curve through its control
// points. Endpoints are extrapolated so the curve passes through the
// first and last point.
type CatmullRom struct {
	points []Vec3
}

// NewCatmullRom returns a curve through points. At least two points are
// required for a curve; fewer yield a curve that samples to its input.
func NewCatmullRom(points []Vec3) *CatmullRom {
	cp := make([]Vec3, len(points))
	copy(cp, points)
	return &CatmullRom{points: cp}
}

// Sample returns n+1 points evenly spaced in curve parameter from the
// first control point to the last.
func (c *CatmullRom) Sample(n int) []Vec3 {
	if len(c.points) < 2 || n < 1 {
		out := make([]Vec3, len(c.points))
		copy(out, c.points)
		return out
	}
	out := make([]Vec3, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, c.At(float64(i)/float64(n)))
	}
	return out
}

// At evaluates the curve at t in [0, 1].
func (c *CatmullRom) At(t float64) Vec3 {
	pts := c.points
	l := len(pts)
	switch l {
	case 0:
		return Vec3{}
	case 1:
		return pts[0]
	}
	t = math.Max(0, math.Min(1, t))

	p := float64(l-1) * t
	seg := int(math.Floor(p))
	weight := p - float64(seg)
	if seg >= l-1 {
		seg = l - 2
		weight = 1
	}

	p1 := pts[seg]
	p2 := pts[seg+1]
	var p0, p3 Vec3
	if seg > 0 {
		p0 = pts[seg-1]
	} else {
		p0 = p1.Sub(p2.Sub(p1))
	}
	if seg+2 < l {
		p3 = pts[seg+2]
	} else {
		p3 = p2.Add(p2.Sub(p1))
	}

	dt0 := math.Pow(p0.Sub(p1).Dot(p0.Sub(p1)), 0.25)
	dt1 := math.Pow(p1.Sub(p2).Dot(p1.Sub(p2)), 0.25)
	dt2 := math.Pow(p2.Sub(p3).Dot(p2.Sub(p3)), 0.25)
	// safety for repeated points
	if dt1 < 1e-4 {
		dt1 = 1
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}

	return Vec3{
		X: nonuniform(p0.X, p1.X, p2.X, p3.X, dt0, dt1, dt2, weight),
		Y: nonuniform(p0.Y, p1.Y, p2.Y, p3.Y, dt0, dt1, dt2, weight),
		Z: nonuniform(p0.Z, p1.Z, p2.Z, p3.Z, dt0, dt1, dt2, weight),
	}
}

// nonuniform evaluates one axis of a Catmull-Rom segment with knot
// intervals dt0, dt1, dt2 as a cubic Hermite between x1 and x2.
func nonuniform(x0, x1, x2, x3, dt0, dt1, dt2, t float64) float64 {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
	t1 *= dt1
	t2 *= dt1

	c0 := x1
	c1 := t1
	c2 := -3*x1 + 3*x2 - 2*t1 - t2
	c3 := 2*x1 - 2*x2 + t1 + t2
	return c0 + c1*t + c2*t*t + c3*t*t*t
}
