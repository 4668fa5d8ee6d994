// Package equipment builds placed pieces of plant equipment (absorber
// towers, storage tanks, pumps). Each piece owns a primitive subtree and
// a port component, and is constructed at most once behind a Gate.
package equipment

import (
	"context"

	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/graph"
	"github.com/chazu/plantkit/pkg/port"
)

// Kind names an equipment family.
type Kind string

const (
	KindTower Kind = "tower"
	KindTank  Kind = "tank"
	KindPump  Kind = "pump"
)

// Placement positions a piece of equipment on the plant floor. Yaw turns
// it about the vertical axis, in radians.
type Placement struct {
	Position geom.Vec3 `json:"position" toml:"position" yaml:"position"`
	Yaw      float64   `json:"yaw" toml:"yaw" yaml:"yaw"`
}

// Transform returns the rigid placement.
func (p Placement) Transform() geom.Transform {
	return geom.Placed(p.Position, geom.AxisAngle(geom.Up, p.Yaw))
}

// Built is the result of constructing one piece of equipment.
type Built struct {
	Name      string
	Kind      Kind
	Component *port.Component
	Graph     *graph.DesignGraph
	Root      graph.NodeID
	// Reports lists primitives dropped or skipped during the build.
	Reports []diag.Degeneracy
}

// bodyFunc emits equipment geometry under root and declares ports on c.
// Port offsets are in the equipment's local frame.
type bodyFunc func(b *graph.Builder, root graph.NodeID, c *port.Component) error

// Equipment is a named, placed piece of equipment whose construction is
// deferred until the first Build call.
type Equipment struct {
	name  string
	kind  Kind
	place Placement
	gate  *Gate[*Built]
}

func newEquipment(name string, kind Kind, place Placement, body bodyFunc) *Equipment {
	e := &Equipment{name: name, kind: kind, place: place}
	e.gate = NewGate(func() (*Built, error) {
		return e.construct(body)
	})
	return e
}

func (e *Equipment) construct(body bodyFunc) (*Built, error) {
	if e.name == "" {
		return nil, diag.Configf(string(e.kind), "name", "must not be empty")
	}
	xf := e.place.Transform()
	if !xf.IsFinite() {
		return nil, diag.Configf(e.name, "position", "non-finite placement %v", e.place.Position)
	}

	var reports diag.Collector
	b := graph.NewBuilder(&reports)
	c := port.NewComponent(e.name, xf)
	root := b.Group(graph.ZeroID, e.name, graph.RoleAssembly, xf)
	if err := body(b, root, c); err != nil {
		return nil, err
	}
	return &Built{
		Name:      e.name,
		Kind:      e.kind,
		Component: c,
		Graph:     b.Graph(),
		Root:      root,
		Reports:   reports.Reports(),
	}, nil
}

// Name returns the equipment name.
func (e *Equipment) Name() string { return e.name }

// Kind returns the equipment family.
func (e *Equipment) Kind() Kind { return e.kind }

// Placement returns where the equipment stands.
func (e *Equipment) Placement() Placement { return e.place }

// Build waits for the equipment's one-shot construction. Concurrent
// callers share a single build and observe the same result.
func (e *Equipment) Build(ctx context.Context) (*Built, error) {
	return e.gate.Wait(ctx)
}

// Ready reports whether construction has finished, successfully or not.
func (e *Equipment) Ready() bool {
	return e.gate.Done()
}

// nozzle emits a short pipe stub ending at a port and registers the port.
// The stub runs from offset-dir*length to offset.
func nozzle(b *graph.Builder, parent graph.NodeID, c *port.Component, name string, offset, dir geom.Vec3, radius, length float64) error {
	rot, ok := geom.Direction(dir)
	if !ok {
		return diag.Configf(c.Name(), name, "port direction %v has no length", dir)
	}
	unit, _ := dir.Normalize()
	center := offset.Sub(unit.Scale(length / 2))
	b.Primitive(parent, name+"_nozzle", graph.RoleNozzle, geom.Placed(center, rot),
		graph.CylinderData{Radius: radius, Length: length})
	b.Primitive(parent, name+"_flange", graph.RoleFlange, geom.Placed(offset, rot),
		graph.CylinderData{Radius: radius * 1.6, Length: radius * 0.4})
	return c.AddDirectedPort(name, offset, unit)
}
