package graph

import (
	"fmt"
	"math"

	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
)

// Builder emits nodes into a DesignGraph during one build call. Node names
// are full slash-separated paths, so they are unique across the graph and
// the content-addressed IDs are stable between runs.
//
// Primitive is the single place where the numeric degeneracy rule is
// enforced: a primitive with a non-finite transform or dimension is
// dropped and reported, and the build carries on.
type Builder struct {
	g   *DesignGraph
	rep diag.Reporter
}

// NewBuilder returns a builder writing into a fresh graph.
func NewBuilder(rep diag.Reporter) *Builder {
	return NewBuilderFor(New(), rep)
}

// NewBuilderFor returns a builder writing into an existing graph.
func NewBuilderFor(g *DesignGraph, rep diag.Reporter) *Builder {
	if rep == nil {
		rep = diag.Discard
	}
	return &Builder{g: g, rep: rep}
}

// Graph returns the graph under construction.
func (b *Builder) Graph() *DesignGraph {
	return b.g
}

// Reporter returns the degeneracy reporter in use.
func (b *Builder) Reporter() diag.Reporter {
	return b.rep
}

// Path returns the full name a child called name would receive under parent.
func (b *Builder) Path(parent NodeID, name string) string {
	if p := b.g.Get(parent); p != nil {
		return p.Name + "/" + name
	}
	return name
}

// Group adds a group node under parent (or as a root when parent is
// ZeroID). A group with a non-finite transform falls back to the
// identity pose, so that its children are still reachable.
func (b *Builder) Group(parent NodeID, name string, role Role, xf geom.Transform) NodeID {
	path := b.Path(parent, name)
	if !xf.IsFinite() {
		b.rep.Report(diag.Degeneracy{Component: componentOf(path), Instance: path, Reason: "non-finite group transform"})
		xf = geom.Pose()
	}
	id := NewNodeID(path)
	b.g.AddNode(&Node{
		ID:        id,
		Kind:      NodeGroup,
		Name:      path,
		Role:      role,
		Transform: xf,
		Data:      GroupData{},
	})
	b.link(parent, id)
	return id
}

// Primitive adds a primitive under parent. ok is false when the
// primitive was omitted because of a non-finite value.
func (b *Builder) Primitive(parent NodeID, name string, role Role, xf geom.Transform, data NodeData) (NodeID, bool) {
	path := b.Path(parent, name)
	if reason := degenerate(xf, data); reason != "" {
		b.rep.Report(diag.Degeneracy{Component: componentOf(path), Instance: path, Reason: reason})
		return ZeroID, false
	}
	id := NewNodeID(path)
	b.g.AddNode(&Node{
		ID:        id,
		Kind:      NodePrimitive,
		Name:      path,
		Role:      role,
		Transform: xf,
		Data:      data,
	})
	b.link(parent, id)
	return id, true
}

// Skip reports a fixture instance the caller chose not to emit.
func (b *Builder) Skip(parent NodeID, name, reason string) {
	path := b.Path(parent, name)
	b.rep.Report(diag.Degeneracy{Component: componentOf(path), Instance: path, Reason: reason})
}

func (b *Builder) link(parent, id NodeID) {
	if parent.IsZero() {
		b.g.AddRoot(id)
		return
	}
	b.g.attach(parent, id)
}

// degenerate returns a reason when xf or data contains a non-finite value.
func degenerate(xf geom.Transform, data NodeData) string {
	if !xf.Position.IsFinite() {
		return fmt.Sprintf("non-finite position %v", xf.Position)
	}
	if !xf.Rotation.IsFinite() {
		return "non-finite rotation"
	}
	if !dataFinite(data) {
		return "non-finite dimensions"
	}
	return ""
}

func dataFinite(data NodeData) bool {
	switch d := data.(type) {
	case BoxData:
		return d.Size.IsFinite()
	case CylinderData:
		return geom.Finite(d.Radius, d.Length)
	case ConeData:
		return geom.Finite(d.RadiusBottom, d.RadiusTop, d.Length)
	case SphereData:
		return geom.Finite(d.Radius)
	case TorusData:
		return geom.Finite(d.RingRadius, d.TubeRadius, d.Arc)
	case TubeData:
		if !geom.Finite(d.Radius) {
			return false
		}
		for _, p := range d.Path {
			if !p.IsFinite() {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// componentOf strips the last path element: "a/b/c" -> "a/b".
func componentOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return path
}

// Indexed formats a zero-padded instance name such as "tread_007".
func Indexed(prefix string, i int) string {
	return fmt.Sprintf("%s_%03d", prefix, i)
}

// Deg converts degrees to radians.
func Deg(d float64) float64 {
	return d * math.Pi / 180
}
