// Package route turns two endpoints into a waypoint chain for a pipe or
// duct run.
//
// An explicit waypoint list always wins and is used as given. Without
// one, a run either detours over an obstacle box, goes straight when a
// diagonal is requested, or is staged one axis at a time.
package route

import (
	"fmt"
	"strings"

	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
)

// Axis names a world axis.
type Axis byte

const (
	AxisX Axis = 'x'
	AxisY Axis = 'y'
	AxisZ Axis = 'z'
)

// DefaultAxisOrder rises or drops first, then runs along X, then Z.
var DefaultAxisOrder = []Axis{AxisY, AxisX, AxisZ}

// DefaultMargin is the clearance kept above an obstacle.
const DefaultMargin = 1.0

// Options selects the routing strategy.
type Options struct {
	// Waypoints, when non-empty, is the complete chain including both
	// endpoints. All other options are ignored.
	Waypoints []geom.Vec3

	// Obstacle, when set, makes the run rise above the box.
	Obstacle *geom.Box
	Margin   float64

	// Diagonal requests a direct two-point run.
	Diagonal bool

	// AxisOrder for staged routing; nil means DefaultAxisOrder.
	AxisOrder []Axis
}

// Build returns the chain from start to end under opts.
func Build(start, end geom.Vec3, opts Options) (Chain, error) {
	if len(opts.Waypoints) > 0 {
		return NewChain(opts.Waypoints)
	}
	if !start.IsFinite() || !end.IsFinite() {
		return Chain{}, diag.Configf("route", "endpoints", "non-finite endpoint %v -> %v", start, end)
	}
	switch {
	case opts.Obstacle != nil:
		if !geom.Finite(opts.Margin) || opts.Margin < 0 {
			return Chain{}, diag.Configf("route", "margin", "must be a non-negative number, got %v", opts.Margin)
		}
		return NewChain(Detour(start, end, *opts.Obstacle, opts.Margin))
	case opts.Diagonal:
		return NewChain([]geom.Vec3{start, end})
	default:
		order := opts.AxisOrder
		if len(order) == 0 {
			order = DefaultAxisOrder
		}
		pts, err := Staged(start, end, order)
		if err != nil {
			return Chain{}, err
		}
		return NewChain(pts)
	}
}

// Detour rises from start to clear box by margin, runs along X then Z at
// that height, and descends onto end. The result may contain duplicate
// points; NewChain collapses them.
func Detour(start, end geom.Vec3, box geom.Box, margin float64) []geom.Vec3 {
	h := max(start.Y, end.Y, box.Max.Y) + margin
	return []geom.Vec3{
		start,
		geom.V3(start.X, h, start.Z),
		geom.V3(end.X, h, start.Z),
		geom.V3(end.X, h, end.Z),
		end,
	}
}

// Staged moves from start to end along one axis at a time in the given
// order. Every axis must appear exactly once.
func Staged(start, end geom.Vec3, order []Axis) ([]geom.Vec3, error) {
	if err := checkOrder(order); err != nil {
		return nil, err
	}
	pts := []geom.Vec3{start}
	cur := start
	for _, a := range order {
		switch a {
		case AxisX:
			cur.X = end.X
		case AxisY:
			cur.Y = end.Y
		case AxisZ:
			cur.Z = end.Z
		}
		pts = append(pts, cur)
	}
	// Land exactly on end regardless of accumulated assignments.
	pts[len(pts)-1] = end
	return pts, nil
}

func checkOrder(order []Axis) error {
	seen := map[Axis]bool{}
	for _, a := range order {
		if a != AxisX && a != AxisY && a != AxisZ {
			return diag.Configf("route", "axis_order", "unknown axis %q", string(a))
		}
		if seen[a] {
			return diag.Configf("route", "axis_order", "axis %q repeated", string(a))
		}
		seen[a] = true
	}
	if len(seen) != 3 {
		return diag.Configf("route", "axis_order", "need all of x, y, z; got %q", orderString(order))
	}
	return nil
}

func orderString(order []Axis) string {
	var sb strings.Builder
	for _, a := range order {
		sb.WriteByte(byte(a))
	}
	return sb.String()
}

// ParseAxisOrder parses strings such as "yxz".
func ParseAxisOrder(s string) ([]Axis, error) {
	order := make([]Axis, 0, len(s))
	for _, r := range strings.ToLower(s) {
		order = append(order, Axis(r))
	}
	if err := checkOrder(order); err != nil {
		return nil, fmt.Errorf("parse axis order %q: %w", s, err)
	}
	return order, nil
}
