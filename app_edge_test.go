package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/plantkit/pkg/config"
	"github.com/chazu/plantkit/pkg/graph"
)

// ---------------------------------------------------------------------------
// Empty input: no meshes, no errors, JSON-friendly empty slices.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := NewApp(nil)
	result := app.Evaluate(context.Background(), "", RenderOptions{})

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Slices must be non-nil so JSON encodes [] rather than null.
	if result.Meshes == nil || result.Errors == nil || result.Warnings == nil {
		t.Error("result slices should be non-nil")
	}
}

func TestE2ECommentsOnly(t *testing.T) {
	app := NewApp(nil)
	result := app.Evaluate(context.Background(), ";; nothing here\n; still nothing\n", RenderOptions{})
	if !result.OK() {
		t.Fatalf("comments should evaluate cleanly: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// Script errors stop before the plant is built.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := NewApp(nil)

	source := "(pump \"p\")\n(tank \"t\""
	result := app.Evaluate(context.Background(), source, RenderOptions{})

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}
	if result.Errors[0].Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
}

func TestE2EUnknownKeyword(t *testing.T) {
	app := NewApp(nil)
	result := app.Evaluate(context.Background(), `(tank "t" :volume 3)`, RenderOptions{})
	if result.OK() {
		t.Fatal("expected an error for an unknown keyword")
	}
	if !strings.Contains(result.Errors[0].Message, ":volume") {
		t.Errorf("error should name the keyword, got %q", result.Errors[0].Message)
	}
}

// ---------------------------------------------------------------------------
// Bad equipment or ducts are reported while the rest still renders.
// ---------------------------------------------------------------------------

func TestE2EBadTankIsIsolated(t *testing.T) {
	app := NewApp(nil)
	source := `
(tank "bad" :height 0.1)
(pump "p")
`
	result := app.Evaluate(context.Background(), source, RenderOptions{Resolution: 12})

	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "bad") {
		t.Errorf("error should name the tank, got %q", result.Errors[0].Message)
	}
	if result.Stats.Primitives == 0 {
		t.Error("the pump should still be built")
	}
}

func TestE2EUnresolvedPort(t *testing.T) {
	app := NewApp(nil)
	source := `
(pump "p")
(duct "d" :from "p.outlet" :to "ghost.inlet" :bore 0.2)
`
	result := app.Evaluate(context.Background(), source, RenderOptions{NoMesh: true})
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "ghost") {
		t.Errorf("error should name the missing component, got %q", result.Errors[0].Message)
	}
}

func TestE2EDuplicateNames(t *testing.T) {
	app := NewApp(nil)
	result := app.Evaluate(context.Background(), `(tank "x") (pump "x")`, RenderOptions{})
	if result.OK() {
		t.Fatal("expected an error for a duplicate name")
	}
}

// ---------------------------------------------------------------------------
// Repeated evaluation on one App: no panics, no leaked state.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	app := NewApp(nil)

	sources := []string{
		`(pump "ok")`,
		`(tank "broken"`,
		``,
		`(duct "d" :from "a.b" :to "c.d")`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(pump "ok")`,
		`(undefined-func 1 2 3)`,
		`(pump "ok" :scale 0.5)`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			app.Evaluate(context.Background(), source, RenderOptions{NoMesh: true})
		}()
	}

	// A name used in an earlier run is free again.
	result := app.Evaluate(context.Background(), `(pump "ok")`, RenderOptions{NoMesh: true})
	if !result.OK() {
		t.Errorf("fresh run failed: %v", result.Errors)
	}
}

// ---------------------------------------------------------------------------
// Render options.
// ---------------------------------------------------------------------------

func TestE2ERoleFilter(t *testing.T) {
	app := NewApp(nil)
	result := app.Evaluate(context.Background(), smallLayout, RenderOptions{
		Roles:   []graph.Role{graph.RoleShell, graph.RoleElbow},
		Workers: 4,
	})
	if !result.OK() {
		t.Fatalf("errors: %v", result.Errors)
	}
	// Three duct shells, two duct elbows and the pump's discharge elbow.
	if len(result.Meshes) != 6 {
		t.Errorf("expected 6 meshes, got %d", len(result.Meshes))
	}
	for _, m := range result.Meshes {
		if m.Role != "shell" && m.Role != "elbow" {
			t.Errorf("unexpected role %q on %q", m.Role, m.PartName)
		}
	}
}

func TestE2ECancelledContext(t *testing.T) {
	app := NewApp(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := app.Evaluate(ctx, smallLayout, RenderOptions{})
	if result.OK() {
		t.Fatal("expected an error for a cancelled run")
	}
}

func TestE2ETowerWithoutStairwayMeshes(t *testing.T) {
	app := NewApp(nil)
	source := `(tower "t" :no-stairway true :height 12)`
	result := app.Evaluate(context.Background(), source, RenderOptions{Resolution: 12})
	if !result.OK() {
		t.Fatalf("errors: %v", result.Errors)
	}
	roles := map[string]int{}
	for _, m := range result.Meshes {
		roles[m.Role]++
	}
	if roles["tread"] != 0 {
		t.Errorf("expected no treads, got %d", roles["tread"])
	}
	if roles["body"] != 4 {
		t.Errorf("expected 4 body sections, got %d", roles["body"])
	}
	if roles["nozzle"] != 3 {
		t.Errorf("expected 3 nozzles, got %d", roles["nozzle"])
	}
}

// ---------------------------------------------------------------------------
// Loading by extension.
// ---------------------------------------------------------------------------

func TestE2EOpenByExtension(t *testing.T) {
	app := NewApp(nil)
	dir := t.TempDir()

	layout := &config.File{Plant: config.PlantSection{Name: "yaml-skid"}, Pumps: []config.Pump{{Name: "p"}}}
	data, err := config.Encode(layout, config.FormatYAML)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	yml := filepath.Join(dir, "skid.yml")
	if err := os.WriteFile(yml, data, 0o644); err != nil {
		t.Fatal(err)
	}
	result := app.Open(context.Background(), yml, RenderOptions{NoMesh: true})
	if !result.OK() || result.Plant != "yaml-skid" {
		t.Errorf("yaml layout: plant %q, errors %v", result.Plant, result.Errors)
	}

	script := filepath.Join(dir, "broken.zy")
	if err := os.WriteFile(script, []byte("(pump"), 0o644); err != nil {
		t.Fatal(err)
	}
	result = app.Open(context.Background(), script, RenderOptions{})
	if result.OK() {
		t.Error("expected a script error")
	} else if !strings.Contains(result.Errors[0].Message, "broken.zy") {
		t.Errorf("script errors should name the file, got %q", result.Errors[0].Message)
	}

	result = app.Open(context.Background(), filepath.Join(dir, "layout.json"), RenderOptions{})
	if result.OK() {
		t.Error("expected an error for an unknown extension")
	}
}

func TestColorFor(t *testing.T) {
	if colorFor("shell") != roleColors[graph.RoleShell] {
		t.Error("known roles use their fixed color")
	}
	if colorFor("custom") == "" || colorFor("custom") != colorFor("custom") {
		t.Error("unknown roles get a stable palette color")
	}
}
