// Package port resolves named anchor points on equipment components to
// world coordinates.
//
// Resolution is a snapshot: the result reflects the component's placement
// at call time and does not follow later moves.
package port

import (
	"fmt"
	"sort"
	"sync"

	"github.com/chazu/plantkit/pkg/geom"
)

// Port is a named anchor in its component's local frame.
type Port struct {
	Name   string    `json:"name"`
	Offset geom.Vec3 `json:"offset"`
	// Direction is the outward flow direction in the local frame; zero
	// when unspecified.
	Direction geom.Vec3 `json:"direction,omitempty"`
}

// Component is a node in a placement hierarchy that owns ports.
type Component struct {
	mu        sync.RWMutex
	name      string
	transform geom.Transform
	parent    *Component
	ports     map[string]Port
	order     []string
}

// NewComponent returns a root component placed at xf.
func NewComponent(name string, xf geom.Transform) *Component {
	return &Component{name: name, transform: xf, ports: make(map[string]Port)}
}

// Child creates a component placed at xf relative to c.
func (c *Component) Child(name string, xf geom.Transform) *Component {
	child := NewComponent(name, xf)
	child.parent = c
	return child
}

func (c *Component) Name() string { return c.name }

// Parent returns the parent component, or nil for roots.
func (c *Component) Parent() *Component { return c.parent }

// SetTransform moves the component relative to its parent.
func (c *Component) SetTransform(xf geom.Transform) {
	c.mu.Lock()
	c.transform = xf
	c.mu.Unlock()
}

// Transform returns the component's transform relative to its parent.
func (c *Component) Transform() geom.Transform {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transform
}

// AddPort registers a port at a local offset. Port names are unique per
// component.
func (c *Component) AddPort(name string, offset geom.Vec3) error {
	return c.AddDirectedPort(name, offset, geom.Vec3{})
}

// AddDirectedPort registers a port with an outward flow direction.
func (c *Component) AddDirectedPort(name string, offset, dir geom.Vec3) error {
	if name == "" {
		return fmt.Errorf("port: component %q: empty port name", c.name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.ports[name]; dup {
		return fmt.Errorf("port: component %q: duplicate port %q", c.name, name)
	}
	c.ports[name] = Port{Name: name, Offset: offset, Direction: dir}
	c.order = append(c.order, name)
	return nil
}

// Port returns the named port in local coordinates.
func (c *Component) Port(name string) (Port, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.ports[name]
	return p, ok
}

// Ports returns the component's ports in registration order.
func (c *Component) Ports() []Port {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Port, len(c.order))
	for i, n := range c.order {
		out[i] = c.ports[n]
	}
	return out
}

// WorldTransform composes this component's transform with every
// ancestor's, as of now.
func (c *Component) WorldTransform() geom.Transform {
	var chain []geom.Transform
	for n := c; n != nil; n = n.parent {
		chain = append(chain, n.Transform())
	}
	world := geom.Pose()
	for i := len(chain) - 1; i >= 0; i-- {
		world = world.Compose(chain[i])
	}
	return world
}

// Resolve returns the world position of the named port. ok is false when
// the component has no such port.
func Resolve(c *Component, name string) (pos geom.Vec3, ok bool) {
	if c == nil {
		return geom.Vec3{}, false
	}
	p, ok := c.Port(name)
	if !ok {
		return geom.Vec3{}, false
	}
	return c.WorldTransform().Apply(p.Offset), true
}

// ResolveDirection returns the world outward direction of the named port.
// ok is false when the port is missing or has no direction.
func ResolveDirection(c *Component, name string) (geom.Vec3, bool) {
	if c == nil {
		return geom.Vec3{}, false
	}
	p, ok := c.Port(name)
	if !ok {
		return geom.Vec3{}, false
	}
	return c.WorldTransform().ApplyDir(p.Direction).Normalize()
}

// Registry maps component names to components. It replaces any global
// lookup: code that wires equipment together receives a Registry.
type Registry struct {
	mu         sync.RWMutex
	components map[string]*Component
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]*Component)}
}

// Register adds c under its name.
func (r *Registry) Register(c *Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.components[c.name]; dup {
		return fmt.Errorf("port: duplicate component %q", c.name)
	}
	r.components[c.name] = c
	return nil
}

// Lookup returns the named component.
func (r *Registry) Lookup(name string) (*Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c, ok
}

// Resolve resolves "component" + "port" to a world position.
func (r *Registry) Resolve(component, portName string) (geom.Vec3, bool) {
	c, ok := r.Lookup(component)
	if !ok {
		return geom.Vec3{}, false
	}
	return Resolve(c, portName)
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for n := range r.components {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
