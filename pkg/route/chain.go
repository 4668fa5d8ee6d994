package route

import (
	"math"

	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
)

// CoincideTol is the distance below which consecutive waypoints are the
// same point.
const CoincideTol = 1e-6

// straightTol is the angle, in radians, below which a waypoint is not a
// direction change.
const straightTol = 1e-6

// Chain is an ordered waypoint list with at least two points and no two
// consecutive points coinciding. The zero Chain is empty and invalid.
type Chain struct {
	points []geom.Vec3
}

// NewChain validates points, drops consecutive duplicates, and returns the
// chain. The input slice is not retained.
func NewChain(points []geom.Vec3) (Chain, error) {
	if len(points) < 2 {
		return Chain{}, diag.Configf("route", "waypoints", "need at least 2 points, got %d", len(points))
	}
	out := make([]geom.Vec3, 0, len(points))
	for i, p := range points {
		if !p.IsFinite() {
			return Chain{}, diag.Configf("route", "waypoints", "point %d is not finite: %v", i, p)
		}
		if len(out) > 0 && out[len(out)-1].Distance(p) <= CoincideTol {
			continue
		}
		out = append(out, p)
	}
	if len(out) < 2 {
		return Chain{}, diag.Configf("route", "waypoints", "all %d points coincide", len(points))
	}
	return Chain{points: out}, nil
}

// Points returns a copy of the waypoints.
func (c Chain) Points() []geom.Vec3 {
	out := make([]geom.Vec3, len(c.points))
	copy(out, c.points)
	return out
}

// Len returns the number of waypoints.
func (c Chain) Len() int { return len(c.points) }

// Start returns the first waypoint.
func (c Chain) Start() geom.Vec3 { return c.points[0] }

// End returns the last waypoint.
func (c Chain) End() geom.Vec3 { return c.points[len(c.points)-1] }

// Segment is one straight run between consecutive waypoints.
type Segment struct {
	Index  int
	From   geom.Vec3
	To     geom.Vec3
	Dir    geom.Vec3 // unit
	Length float64
}

// Midpoint returns the center of the segment.
func (s Segment) Midpoint() geom.Vec3 {
	return s.From.Lerp(s.To, 0.5)
}

// Vertical reports whether the segment runs (nearly) along the Y axis.
func (s Segment) Vertical() bool {
	return math.Abs(s.Dir.Y) > 1-1e-9
}

// Segments returns the chain's straight runs in order.
func (c Chain) Segments() []Segment {
	if len(c.points) < 2 {
		return nil
	}
	segs := make([]Segment, len(c.points)-1)
	for i := range segs {
		a, b := c.points[i], c.points[i+1]
		d := b.Sub(a)
		l := d.Length()
		segs[i] = Segment{Index: i, From: a, To: b, Dir: d.Scale(1 / l), Length: l}
	}
	return segs
}

// Elbow is an interior waypoint where the chain changes direction.
type Elbow struct {
	Index int       // waypoint index in the chain
	Point geom.Vec3 // the pivot
	In    geom.Vec3 // unit direction arriving at Point
	Out   geom.Vec3 // unit direction leaving Point
	Angle float64   // bend angle in radians, in (0, pi]
}

// Reversal reports whether the chain doubles back on itself at the
// elbow, leaving the bend plane undefined.
func (e Elbow) Reversal() bool {
	return math.Pi-e.Angle < straightTol
}

// Elbows returns every interior direction change. Collinear interior
// points are not elbows.
func (c Chain) Elbows() []Elbow {
	segs := c.Segments()
	var out []Elbow
	for i := 1; i < len(segs); i++ {
		in, outDir := segs[i-1].Dir, segs[i].Dir
		angle := math.Acos(math.Max(-1, math.Min(1, in.Dot(outDir))))
		if angle < straightTol {
			continue
		}
		out = append(out, Elbow{Index: i, Point: c.points[i], In: in, Out: outDir, Angle: angle})
	}
	return out
}

// Length returns the total path length.
func (c Chain) Length() float64 {
	total := 0.0
	for i := 1; i < len(c.points); i++ {
		total += c.points[i-1].Distance(c.points[i])
	}
	return total
}

// PointAt returns the point at fraction f of the path length, clamped to
// [0, 1], and the unit direction of the segment containing it.
func (c Chain) PointAt(f float64) (geom.Vec3, geom.Vec3) {
	segs := c.Segments()
	if len(segs) == 0 {
		return geom.Vec3{}, geom.Up
	}
	f = math.Max(0, math.Min(1, f))
	remaining := f * c.Length()
	for _, s := range segs {
		if remaining <= s.Length {
			return s.From.Add(s.Dir.Scale(remaining)), s.Dir
		}
		remaining -= s.Length
	}
	last := segs[len(segs)-1]
	return last.To, last.Dir
}
