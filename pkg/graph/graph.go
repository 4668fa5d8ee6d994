package graph

import (
	"fmt"
	"sort"

	"github.com/chazu/plantkit/pkg/geom"
)

// DesignGraph is the primitive tree emitted by one build. It is never
// mutated after the build returns.
type DesignGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Version   uint64            `json:"version"`

	parents map[NodeID]NodeID
}

// New creates an empty DesignGraph.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		parents:   make(map[NodeID]NodeID),
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *DesignGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
	for _, c := range n.Children {
		g.parents[c] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *DesignGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// attach appends child to parent's children list.
func (g *DesignGraph) attach(parent, child NodeID) {
	p := g.Nodes[parent]
	if p == nil {
		return
	}
	p.Children = append(p.Children, child)
	g.parents[child] = parent
}

// Lookup returns the node with the given name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Children returns the child nodes of the given node.
func (g *DesignGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// Parent returns the parent of id, or nil for roots.
func (g *DesignGraph) Parent(id NodeID) *Node {
	pid, ok := g.parents[id]
	if !ok {
		return nil
	}
	return g.Nodes[pid]
}

// WorldTransform composes the transforms from the root down to id.
func (g *DesignGraph) WorldTransform(id NodeID) geom.Transform {
	var chain []geom.Transform
	for n := g.Nodes[id]; n != nil; n = g.Parent(n.ID) {
		chain = append(chain, n.Transform)
	}
	world := geom.Pose()
	for i := len(chain) - 1; i >= 0; i-- {
		world = world.Compose(chain[i])
	}
	return world
}

// Primitives returns all primitive nodes sorted by name.
func (g *DesignGraph) Primitives() []*Node {
	var prims []*Node
	for _, n := range g.Nodes {
		if n.Kind == NodePrimitive {
			prims = append(prims, n)
		}
	}
	sort.Slice(prims, func(i, j int) bool { return prims[i].Name < prims[j].Name })
	return prims
}

// ByRole returns the primitives tagged with role, sorted by name.
func (g *DesignGraph) ByRole(role Role) []*Node {
	var out []*Node
	for _, n := range g.Primitives() {
		if n.Role == role {
			out = append(out, n)
		}
	}
	return out
}

// CountRole returns the number of primitives tagged with role.
func (g *DesignGraph) CountRole(role Role) int {
	count := 0
	for _, n := range g.Nodes {
		if n.Kind == NodePrimitive && n.Role == role {
			count++
		}
	}
	return count
}

// NodeCount returns the total number of nodes.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}

// Merge copies every node of o into g, keeping o's roots as roots.
func (g *DesignGraph) Merge(o *DesignGraph) {
	if o == nil {
		return
	}
	for _, n := range o.Nodes {
		g.AddNode(n)
	}
	g.Roots = append(g.Roots, o.Roots...)
}
