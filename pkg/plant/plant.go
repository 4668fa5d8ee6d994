// Package plant places equipment, builds it concurrently, and wires duct
// runs between equipment ports through an explicit registry.
//
// One failing piece of equipment or duct does not stop the others: its
// error is recorded in the Result and everything that can still be built
// is.
package plant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/duct"
	"github.com/chazu/plantkit/pkg/equipment"
	"github.com/chazu/plantkit/pkg/geom"
	"github.com/chazu/plantkit/pkg/graph"
	"github.com/chazu/plantkit/pkg/port"
	"github.com/chazu/plantkit/pkg/route"
)

// ErrUnresolvedPort is returned (wrapped) when a duct names a component
// or port that is not available.
var ErrUnresolvedPort = errors.New("plant: unresolved port")

// DuctsGroup is the root group holding every duct run.
const DuctsGroup = "ducts"

// Duct connects two equipment ports.
type Duct struct {
	Name  string
	From  port.Ref
	To    port.Ref
	Route route.Options
	Spec  duct.Spec
}

// Failure records one piece of equipment or duct that could not be built.
type Failure struct {
	Name string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Name, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result is the outcome of a plant build.
type Result struct {
	Graph    *graph.DesignGraph
	Registry *port.Registry
	Built    []*equipment.Built
	Failures []Failure
	Reports  []diag.Degeneracy
}

// Err joins every failure, or returns nil when the build was clean.
func (r *Result) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Plant is a set of equipment and the ducts between them.
type Plant struct {
	Name string
	// Workers bounds concurrent equipment builds. Values below 1 mean one
	// worker per piece of equipment.
	Workers int
	Logger  *slog.Logger
	// Reporter receives every degeneracy in addition to Result.Reports.
	Reporter diag.Reporter

	equipment []*equipment.Equipment
	names     map[string]bool
	ducts     []Duct
	ductNames map[string]bool
}

// New returns an empty plant.
func New(name string) *Plant {
	return &Plant{Name: name, names: make(map[string]bool), ductNames: make(map[string]bool)}
}

// Add places equipment in the plant. Names must be unique and may not
// be DuctsGroup.
func (p *Plant) Add(es ...*equipment.Equipment) error {
	for _, e := range es {
		if e.Name() == DuctsGroup {
			return diag.Configf("plant", "equipment", "name %q is reserved for duct runs", e.Name())
		}
		if p.names[e.Name()] {
			return diag.Configf("plant", "equipment", "duplicate name %q", e.Name())
		}
		p.names[e.Name()] = true
		p.equipment = append(p.equipment, e)
	}
	return nil
}

// Connect adds a duct run. Duct names must be unique; endpoints are
// resolved at build time.
func (p *Plant) Connect(d Duct) error {
	if d.Name == "" {
		return diag.Configf("plant", "duct", "name is empty")
	}
	if p.ductNames[d.Name] {
		return diag.Configf("plant", "duct", "duplicate name %q", d.Name)
	}
	p.ductNames[d.Name] = true
	p.ducts = append(p.ducts, d)
	return nil
}

// Equipment returns the placed equipment in insertion order.
func (p *Plant) Equipment() []*equipment.Equipment {
	return p.equipment
}

// Ducts returns the duct runs in insertion order.
func (p *Plant) Ducts() []Duct {
	return p.ducts
}

func (p *Plant) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Build constructs every piece of equipment, registers its ports, and
// assembles the ducts. The returned error is non-nil only when ctx ends;
// individual failures are in Result.Failures.
func (p *Plant) Build(ctx context.Context) (*Result, error) {
	log := p.logger().With("plant", p.Name)

	built := make([]*equipment.Built, len(p.equipment))
	errs := make([]error, len(p.equipment))

	eg, ctx := errgroup.WithContext(ctx)
	if p.Workers > 0 {
		eg.SetLimit(p.Workers)
	}
	for i, e := range p.equipment {
		eg.Go(func() error {
			b, err := e.Build(ctx)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			built[i], errs[i] = b, err
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Graph: graph.New(), Registry: port.NewRegistry()}
	var reports diag.Collector
	for i, e := range p.equipment {
		if errs[i] != nil {
			log.Warn("equipment failed", "equipment", e.Name(), "kind", e.Kind(), "err", errs[i])
			res.Failures = append(res.Failures, Failure{Name: e.Name(), Err: errs[i]})
			continue
		}
		b := built[i]
		res.Graph.Merge(b.Graph)
		if err := res.Registry.Register(b.Component); err != nil {
			res.Failures = append(res.Failures, Failure{Name: e.Name(), Err: err})
			continue
		}
		res.Built = append(res.Built, b)
		for _, d := range b.Reports {
			reports.Report(d)
		}
		log.Debug("equipment built", "equipment", e.Name(), "kind", e.Kind(), "nodes", b.Graph.NodeCount())
	}

	if len(p.ducts) > 0 {
		b := graph.NewBuilderFor(res.Graph, &reports)
		group := b.Group(graph.ZeroID, DuctsGroup, graph.RoleAssembly, geom.Pose())
		for _, d := range p.ducts {
			if err := p.connect(b, group, res.Registry, d); err != nil {
				log.Warn("duct failed", "duct", d.Name, "err", err)
				res.Failures = append(res.Failures, Failure{Name: d.Name, Err: err})
			}
		}
	}

	res.Reports = reports.Reports()
	if p.Reporter != nil {
		for _, d := range res.Reports {
			p.Reporter.Report(d)
		}
	}
	log.Info("plant built",
		"equipment", len(res.Built),
		"ducts", len(p.ducts),
		"failures", len(res.Failures),
		"degeneracies", len(res.Reports),
		"nodes", res.Graph.NodeCount())
	return res, nil
}

// connect resolves a duct's endpoints, routes it, and assembles it.
func (p *Plant) connect(b *graph.Builder, parent graph.NodeID, reg *port.Registry, d Duct) error {
	if d.Name == "" {
		return diag.Configf("plant", "duct", "duct name must not be empty")
	}
	start, err := resolve(reg, d.From)
	if err != nil {
		return err
	}
	end, err := resolve(reg, d.To)
	if err != nil {
		return err
	}
	chain, err := route.Build(start, end, d.Route)
	if err != nil {
		return err
	}
	_, err = duct.Assemble(b, parent, d.Name, chain, d.Spec)
	return err
}

func resolve(reg *port.Registry, ref port.Ref) (geom.Vec3, error) {
	pos, ok := reg.Resolve(ref.Component, ref.Port)
	if !ok {
		return geom.Vec3{}, fmt.Errorf("%w: %s", ErrUnresolvedPort, ref)
	}
	return pos, nil
}
