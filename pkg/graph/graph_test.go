package graph

import (
	"math"
	"testing"

	"github.com/chazu/plantkit/pkg/diag"
	"github.com/chazu/plantkit/pkg/geom"
)

func TestNewDesignGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if g.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestNodeIDDeterministic(t *testing.T) {
	a := NewNodeID("absorber/stairway/tread_000")
	b := NewNodeID("absorber/stairway/tread_000")
	c := NewNodeID("absorber/stairway/tread_001")
	if a != b {
		t.Error("same path should hash to the same ID")
	}
	if a == c {
		t.Error("different paths should hash to different IDs")
	}
	if len(a.Short()) != 8 {
		t.Errorf("Short() = %q, want 8 hex digits", a.Short())
	}
	if ZeroID.IsZero() != true || a.IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()

	id := NewNodeID("duct/shell_000")
	g.AddNode(&Node{
		ID:   id,
		Kind: NodePrimitive,
		Name: "duct/shell_000",
		Role: RoleShell,
		Data: CylinderData{Radius: 0.5, Length: 4},
	})
	g.AddRoot(id)

	if g.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", g.NodeCount())
	}
	found := g.Lookup("duct/shell_000")
	if found == nil || found.ID != id {
		t.Fatal("Lookup returned wrong node")
	}
	if g.MustLookup("duct/shell_000").ID != id {
		t.Error("MustLookup returned wrong node")
	}
	if g.Lookup("nonexistent") != nil {
		t.Error("Lookup should return nil for missing name")
	}
	if got := g.Get(id); got == nil || got.Role != RoleShell {
		t.Error("Get by ID failed")
	}
	if len(g.Roots) != 1 || g.Roots[0] != id {
		t.Errorf("roots = %v, want [%s]", g.Roots, id.Short())
	}
}

func TestMustLookupPanics(t *testing.T) {
	g := New()
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup should panic for missing name")
		}
	}()
	g.MustLookup("nonexistent")
}

func TestNodeKindString(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{NodePrimitive, "primitive"},
		{NodeGroup, "group"},
		{NodeKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("NodeKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Builder
// ---------------------------------------------------------------------------

func TestBuilderPathsAndHierarchy(t *testing.T) {
	b := NewBuilder(nil)
	root := b.Group(ZeroID, "absorber", RoleAssembly, geom.At(geom.V3(10, 0, 0)))
	stair := b.Group(root, "stairway", RoleAssembly, geom.Pose())
	id, ok := b.Primitive(stair, Indexed("tread", 3), RoleTread, geom.At(geom.V3(1, 2, 0)), BoxData{Size: geom.V3(1, 0.1, 0.3)})
	if !ok {
		t.Fatal("finite primitive should be emitted")
	}

	g := b.Graph()
	n := g.Get(id)
	if n.Name != "absorber/stairway/tread_003" {
		t.Errorf("name = %q", n.Name)
	}
	if n.ID != NewNodeID("absorber/stairway/tread_003") {
		t.Error("ID should be the hash of the full path")
	}
	if p := g.Parent(id); p == nil || p.ID != stair {
		t.Error("parent of tread should be the stairway group")
	}
	if len(g.Roots) != 1 || g.Roots[0] != root {
		t.Errorf("roots = %d, want 1", len(g.Roots))
	}

	world := g.WorldTransform(id)
	if !world.Position.ApproxEqual(geom.V3(11, 2, 0), 1e-9) {
		t.Errorf("world position = %v, want (11,2,0)", world.Position)
	}

	if errs := Validate(g); len(errs) != 0 {
		t.Errorf("builder output should validate, got %v", errs)
	}
}

func TestBuilderDropsNonFinitePrimitive(t *testing.T) {
	var col diag.Collector
	b := NewBuilder(&col)
	root := b.Group(ZeroID, "duct", RoleAssembly, geom.Pose())

	_, ok := b.Primitive(root, "shell_000", RoleShell, geom.At(geom.V3(math.NaN(), 0, 0)), CylinderData{Radius: 1, Length: 1})
	if ok {
		t.Error("NaN position should be dropped")
	}
	_, ok = b.Primitive(root, "shell_001", RoleShell, geom.Pose(), CylinderData{Radius: math.Inf(1), Length: 1})
	if ok {
		t.Error("infinite radius should be dropped")
	}
	_, ok = b.Primitive(root, "tube", RoleHandrail, geom.Pose(), TubeData{Radius: 0.02, Path: []geom.Vec3{geom.Zero, geom.V3(math.NaN(), 0, 0)}})
	if ok {
		t.Error("tube with NaN control point should be dropped")
	}

	if col.Len() != 3 {
		t.Fatalf("reports = %d, want 3", col.Len())
	}
	if got := col.Reports()[0]; got.Component != "duct" || got.Instance != "duct/shell_000" {
		t.Errorf("report = %+v", got)
	}
	if n := b.Graph().NodeCount(); n != 1 {
		t.Errorf("node count = %d, want only the group", n)
	}
}

func TestCountRoleAndPrimitives(t *testing.T) {
	b := NewBuilder(nil)
	root := b.Group(ZeroID, "run", RoleAssembly, geom.Pose())
	b.Primitive(root, "flange_b", RoleFlange, geom.Pose(), CylinderData{Radius: 1, Length: 0.1})
	b.Primitive(root, "flange_a", RoleFlange, geom.Pose(), CylinderData{Radius: 1, Length: 0.1})
	b.Primitive(root, "shell_000", RoleShell, geom.Pose(), CylinderData{Radius: 0.5, Length: 3})

	g := b.Graph()
	if got := g.CountRole(RoleFlange); got != 2 {
		t.Errorf("flanges = %d, want 2", got)
	}
	flanges := g.ByRole(RoleFlange)
	if len(flanges) != 2 || flanges[0].Name != "run/flange_a" {
		t.Errorf("ByRole should sort by name, got %v", flanges)
	}
	if got := len(g.Primitives()); got != 3 {
		t.Errorf("primitives = %d, want 3", got)
	}
}

func TestMerge(t *testing.T) {
	a := NewBuilder(nil)
	a.Group(ZeroID, "tower", RoleAssembly, geom.Pose())
	b := NewBuilder(nil)
	b.Group(ZeroID, "duct", RoleAssembly, geom.Pose())

	g := New()
	g.Merge(a.Graph())
	g.Merge(b.Graph())
	g.Merge(nil)
	if g.NodeCount() != 2 || len(g.Roots) != 2 {
		t.Errorf("merged graph = %d nodes, %d roots", g.NodeCount(), len(g.Roots))
	}
}
