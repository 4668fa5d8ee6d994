package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/plantkit/pkg/config"
	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/engine"
	"github.com/chazu/plantkit/pkg/graph"
	"github.com/chazu/plantkit/pkg/kernel/sdfx"
	"github.com/chazu/plantkit/pkg/tessellate"
)

// ScriptExt marks layout scripts; any other extension goes to pkg/config.
const ScriptExt = ".zy"

// roleColors gives related parts a shared color.
var roleColors = map[graph.Role]string{
	graph.RoleBody:       "#B0B7BF",
	graph.RoleCap:        "#8E969E",
	graph.RoleFoundation: "#7F7F7F",
	graph.RoleTread:      "#4A90D9",
	graph.RoleStripe:     "#F1C40F",
	graph.RoleHandrail:   "#F39C12",
	graph.RoleLight:      "#FFFFFF",
	graph.RoleShell:      "#2ECC71",
	graph.RoleInsulation: "#D5DBDB",
	graph.RoleElbow:      "#27AE60",
	graph.RoleFlange:     "#E67E22",
	graph.RoleValve:      "#E74C3C",
	graph.RoleArrow:      "#3498DB",
	graph.RoleNozzle:     "#9B59B6",
}

// colorPalette covers roles without a fixed color.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// colorFor returns the role's color, or a palette entry picked by the
// role name so a role keeps its color across runs.
func colorFor(role string) string {
	if c, ok := roleColors[graph.Role(role)]; ok {
		return c
	}
	var h uint32
	for i := 0; i < len(role); i++ {
		h = h*31 + uint32(role[i])
	}
	return colorPalette[h%uint32(len(colorPalette))]
}

// App runs a layout through the whole pipeline: layout, plant build,
// validation and meshing.
type App struct {
	engine *engine.Engine
	logger *slog.Logger
}

// MeshData is the JSON mesh format written by the CLI.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Role     string    `json:"role"`
	Color    string    `json:"color"`
}

// EvalErrorData is an error or warning with an optional script position.
type EvalErrorData struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
}

// Stats summarizes one run.
type Stats struct {
	Equipment  int `json:"equipment"`
	Ducts      int `json:"ducts"`
	Nodes      int `json:"nodes"`
	Primitives int `json:"primitives"`
	Meshes     int `json:"meshes"`
	Triangles  int `json:"triangles"`
}

// EvalResult is everything a run produced.
type EvalResult struct {
	Plant    string          `json:"plant"`
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Stats    Stats           `json:"stats"`
}

// OK reports whether the run finished without errors.
func (r *EvalResult) OK() bool { return len(r.Errors) == 0 }

func (r *EvalResult) fail(msg string) {
	r.Errors = append(r.Errors, EvalErrorData{Message: msg})
}

// RenderOptions override the layout's mesh section.
type RenderOptions struct {
	NoMesh     bool
	Resolution int
	Workers    int
	Roles      []graph.Role
}

// NewApp returns an App logging to logger, or to slog's default when nil.
func NewApp(logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{engine: engine.NewEngine(), logger: logger}
}

// Evaluate runs a layout script.
func (a *App) Evaluate(ctx context.Context, source string, opts RenderOptions) EvalResult {
	f, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.logger.Error("evaluate", "err", err)
		res := newResult()
		res.fail(err.Error())
		return res
	}
	if len(evalErrs) > 0 {
		res := newResult()
		for _, e := range evalErrs {
			res.Errors = append(res.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return res
	}
	return a.Render(ctx, f, opts)
}

// Open loads a layout file or script by extension and renders it.
func (a *App) Open(ctx context.Context, path string, opts RenderOptions) EvalResult {
	f, res, ok := a.Load(path)
	if !ok {
		return res
	}
	return a.Render(ctx, f, opts)
}

// Load reads a layout without building it. ok is false when res carries
// the errors that stopped it.
func (a *App) Load(path string) (f *config.File, res EvalResult, ok bool) {
	res = newResult()
	if strings.EqualFold(filepath.Ext(path), ScriptExt) {
		src, err := os.ReadFile(path)
		if err != nil {
			res.fail(err.Error())
			return nil, res, false
		}
		script, evalErrs, err := a.engine.Evaluate(string(src))
		if err != nil {
			res.fail(err.Error())
			return nil, res, false
		}
		for _, e := range evalErrs {
			res.Errors = append(res.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: path + ": " + e.Message})
		}
		return script, res, len(evalErrs) == 0
	}
	f, err := config.Load(path)
	if err != nil {
		res.fail(err.Error())
		return nil, res, false
	}
	return f, res, true
}

// Render builds the layout into a plant, validates it, and meshes it
// unless opts.NoMesh is set. Equipment or ducts that fail are reported
// as errors while the rest still render.
func (a *App) Render(ctx context.Context, f *config.File, opts RenderOptions) EvalResult {
	res := newResult()
	p, err := f.Build()
	if err != nil {
		res.fail(err.Error())
		return res
	}
	p.Logger = a.logger
	p.Reporter = diag.NewSlogReporter(a.logger)
	res.Plant = p.Name
	res.Stats.Equipment = len(p.Equipment())
	res.Stats.Ducts = len(p.Ducts())

	built, err := p.Build(ctx)
	if err != nil {
		res.fail(err.Error())
		return res
	}
	for _, fl := range built.Failures {
		res.fail(fl.Error())
	}
	for _, d := range built.Reports {
		res.Warnings = append(res.Warnings, EvalErrorData{Message: d.String()})
	}

	g := built.Graph
	res.Stats.Nodes = g.NodeCount()
	res.Stats.Primitives = len(g.Primitives())
	v := graph.ValidateAll(g)
	for _, e := range v.Errors {
		res.fail(e.Error())
	}
	for _, w := range v.Warnings {
		res.Warnings = append(res.Warnings, EvalErrorData{Message: w.Message})
	}
	if opts.NoMesh || !v.OK() {
		return res
	}

	topts := tessellate.Options{Roles: f.Mesh.RoleFilter(), Workers: f.Mesh.Workers}
	if len(opts.Roles) > 0 {
		topts.Roles = opts.Roles
	}
	if opts.Workers > 0 {
		topts.Workers = opts.Workers
	}
	cells := f.Mesh.Resolution
	if opts.Resolution > 0 {
		cells = opts.Resolution
	}

	meshes, err := tessellate.TessellateWith(ctx, g, sdfx.NewWithResolution(cells), topts)
	if err != nil {
		a.logger.Error("tessellate", "plant", p.Name, "err", err)
		res.fail("tessellation failed: " + err.Error())
		return res
	}
	for _, m := range meshes {
		res.Meshes = append(res.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Role:     m.Role,
			Color:    colorFor(m.Role),
		})
		res.Stats.Triangles += m.TriangleCount()
	}
	res.Stats.Meshes = len(res.Meshes)
	a.logger.Info("rendered", "plant", p.Name, "meshes", res.Stats.Meshes, "triangles", res.Stats.Triangles)
	return res
}

func newResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}
