// Package tessellate walks a design graph and produces triangle meshes
// using a geometry kernel. One mesh is produced per primitive.
package tessellate

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/graph"
	"github.com/chazu/plantkit/pkg/kernel"
)

// Options narrows and parallelizes tessellation.
type Options struct {
	// Roles limits output to primitives carrying one of these roles.
	// Empty means every primitive.
	Roles []graph.Role
	// Workers bounds concurrent kernel meshing. Values below 1 mean 1.
	Workers int
}

func (o Options) wants(n *graph.Node) bool {
	return len(o.Roles) == 0 || slices.Contains(o.Roles, n.Role)
}

// transformStack accumulates rigid placements during graph traversal.
type transformStack struct {
	frames []geom.Transform
}

func newTransformStack() *transformStack {
	return &transformStack{frames: []geom.Transform{geom.Pose()}}
}

func (ts *transformStack) push(t geom.Transform) {
	ts.frames = append(ts.frames, ts.top().Compose(t))
}

func (ts *transformStack) pop() {
	if len(ts.frames) > 1 {
		ts.frames = ts.frames[:len(ts.frames)-1]
	}
}

func (ts *transformStack) top() geom.Transform {
	return ts.frames[len(ts.frames)-1]
}

// job is one primitive with its resolved world placement.
type job struct {
	node  *graph.Node
	world geom.Transform
}

// Tessellate walks the design graph and produces one triangle mesh per
// primitive using the provided geometry kernel. The tessellator is
// read-only and never mutates the graph.
func Tessellate(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	return TessellateWith(context.Background(), g, k, Options{})
}

// TessellateWith is Tessellate with role filtering and bounded parallel
// meshing. Output order follows graph traversal order regardless of
// Workers.
func TessellateWith(ctx context.Context, g *graph.DesignGraph, k kernel.Kernel, opts Options) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	var jobs []job
	ts := newTransformStack()
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		if err := walkNode(g, root, ts, opts, &jobs); err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
	}

	meshes := make([]*kernel.Mesh, len(jobs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, opts.Workers))
	for i, j := range jobs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := meshPrimitive(k, j.node, j.world)
			if err != nil {
				return err
			}
			meshes[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return meshes, nil
}

// walkNode recursively traverses a node and its children, collecting jobs.
func walkNode(g *graph.DesignGraph, n *graph.Node, ts *transformStack, opts Options, jobs *[]job) error {
	switch n.Kind {
	case graph.NodePrimitive:
		if opts.wants(n) {
			*jobs = append(*jobs, job{node: n, world: ts.top().Compose(n.Transform)})
		}
		return nil

	case graph.NodeGroup:
		ts.push(n.Transform)
		defer ts.pop()
		for _, child := range g.Children(n) {
			if err := walkNode(g, child, ts, opts, jobs); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// meshPrimitive creates geometry for a primitive node at its world placement.
func meshPrimitive(k kernel.Kernel, n *graph.Node, world geom.Transform) (*kernel.Mesh, error) {
	var mesh *kernel.Mesh

	if data, ok := n.Data.(graph.TubeData); ok {
		m, err := sweepTube(data, world)
		if err != nil {
			return nil, fmt.Errorf("tessellate: tube %s: %w", n.Name, err)
		}
		mesh = m
	} else {
		solid, err := solidFor(k, n)
		if err != nil {
			return nil, err
		}
		axis, angle := world.Rotation.ToAxisAngle()
		if world.Rotation != (geom.Quat{}) && angle != 0 {
			solid = k.Rotate(solid, [3]float64{axis.X, axis.Y, axis.Z}, angle)
		}
		p := world.Position
		if p != geom.Zero {
			solid = k.Translate(solid, p.X, p.Y, p.Z)
		}
		mesh, err = k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.Name, err)
		}
	}

	// Prefer the node's Name, fall back to short ID.
	if n.Name != "" {
		mesh.PartName = n.Name
	} else {
		mesh.PartName = n.ID.Short()
	}
	mesh.Role = string(n.Role)
	return mesh, nil
}

func solidFor(k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	switch data := n.Data.(type) {
	case graph.BoxData:
		return k.Box(data.Size.X, data.Size.Y, data.Size.Z), nil
	case graph.CylinderData:
		return k.Cylinder(data.Length, data.Radius), nil
	case graph.ConeData:
		return k.Cone(data.Length, data.RadiusBottom, data.RadiusTop), nil
	case graph.SphereData:
		return k.Sphere(data.Radius), nil
	case graph.TorusData:
		return k.Torus(data.RingRadius, data.TubeRadius, data.Arc), nil
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.Name, n.Data)
	}
}
