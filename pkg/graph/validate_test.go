package graph

import (
	"strings"
	"testing"

	"github.com/chazu/plantkit/pkg/geom"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// buildValidRun creates a small duct run: a group with two flanges and a
// shell, all reachable from the root.
func buildValidRun() *DesignGraph {
	g := New()

	shellID := NewNodeID("run/shell_000")
	inletID := NewNodeID("run/flange_in")
	outletID := NewNodeID("run/flange_out")
	groupID := NewNodeID("run")

	g.AddNode(&Node{
		ID: shellID, Kind: NodePrimitive, Name: "run/shell_000", Role: RoleShell,
		Data: CylinderData{Radius: 0.5, Length: 10},
	})
	g.AddNode(&Node{
		ID: inletID, Kind: NodePrimitive, Name: "run/flange_in", Role: RoleFlange,
		Transform: geom.At(geom.V3(0, -5, 0)),
		Data:      CylinderData{Radius: 0.65, Length: 0.25},
	})
	g.AddNode(&Node{
		ID: outletID, Kind: NodePrimitive, Name: "run/flange_out", Role: RoleFlange,
		Transform: geom.At(geom.V3(0, 5, 0)),
		Data:      CylinderData{Radius: 0.65, Length: 0.25},
	})
	g.AddNode(&Node{
		ID:       groupID,
		Kind:     NodeGroup,
		Name:     "run",
		Children: []NodeID{shellID, inletID, outletID},
		Data:     GroupData{Description: "straight run"},
	})
	g.AddRoot(groupID)

	return g
}

// hasError returns true if errs contains at least one error-severity finding
// whose message contains substr.
func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// hasWarning returns true if errs contains at least one warning-severity
// finding whose message contains substr.
func hasWarning(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityWarning && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// errorCount returns the number of error-severity findings.
func errorCount(errs []ValidationError) int {
	n := 0
	for _, e := range errs {
		if e.Severity == SeverityError {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestValidate_ValidGraph(t *testing.T) {
	g := buildValidRun()
	for _, e := range Validate(g) {
		t.Errorf("unexpected validation error: %s", e)
	}
}

func TestValidate_EmptyGraph(t *testing.T) {
	for _, e := range Validate(New()) {
		t.Errorf("unexpected validation error on empty graph: %s", e)
	}
}

func TestValidate_CycleDetection(t *testing.T) {
	g := New()
	aID := NewNodeID("a")
	bID := NewNodeID("b")
	g.AddNode(&Node{ID: aID, Kind: NodeGroup, Name: "a", Children: []NodeID{bID}, Data: GroupData{}})
	g.AddNode(&Node{ID: bID, Kind: NodeGroup, Name: "b", Children: []NodeID{aID}, Data: GroupData{}})
	g.AddRoot(aID)

	errs := Validate(g)
	if !hasError(errs, "cycle detected") {
		t.Errorf("expected cycle error, got %v", errs)
	}
}

func TestValidate_DanglingReference(t *testing.T) {
	g := buildValidRun()
	g.MustLookup("run").Children = append(g.MustLookup("run").Children, NewNodeID("ghost"))

	if !hasError(Validate(g), "does not exist") {
		t.Error("expected dangling child error")
	}
}

func TestValidate_DuplicateName(t *testing.T) {
	g := buildValidRun()
	extra := NewNodeID("run/other")
	g.Nodes[extra] = &Node{ID: extra, Kind: NodePrimitive, Name: "run/shell_000", Data: SphereData{Radius: 1}}
	g.MustLookup("run").Children = append(g.MustLookup("run").Children, extra)

	if !hasError(Validate(g), "duplicate name") {
		t.Error("expected duplicate name error")
	}
}

func TestValidate_NodeUnderTwoGroups(t *testing.T) {
	g := buildValidRun()
	other := NewNodeID("other")
	g.AddNode(&Node{ID: other, Kind: NodeGroup, Name: "other", Data: GroupData{},
		Children: []NodeID{NewNodeID("run/shell_000")}})
	g.AddRoot(other)

	if !hasError(Validate(g), "hangs under both") {
		t.Errorf("expected shared child error, got %v", Validate(g))
	}
}

func TestValidate_ChildListedTwice(t *testing.T) {
	g := buildValidRun()
	run := g.MustLookup("run")
	run.Children = append(run.Children, NewNodeID("run/shell_000"))

	errs := Validate(g)
	if !hasWarning(errs, "listed more than once") {
		t.Errorf("expected repeated child warning, got %v", errs)
	}
	if errorCount(errs) != 0 {
		t.Errorf("a repeated child should only warn, got %v", errs)
	}
}

func TestValidate_OrphanedCycle(t *testing.T) {
	g := buildValidRun()
	aID := NewNodeID("a")
	bID := NewNodeID("b")
	g.AddNode(&Node{ID: aID, Kind: NodeGroup, Name: "a", Children: []NodeID{bID}, Data: GroupData{}})
	g.AddNode(&Node{ID: bID, Kind: NodeGroup, Name: "b", Children: []NodeID{aID}, Data: GroupData{}})

	errs := Validate(g)
	if !hasError(errs, "cycle detected") {
		t.Errorf("expected cycle error among orphans, got %v", errs)
	}
	if !hasWarning(errs, "orphan") {
		t.Error("expected orphan warnings")
	}
}

func TestValidate_OrphanNode(t *testing.T) {
	g := buildValidRun()
	orphan := NewNodeID("loose")
	g.AddNode(&Node{ID: orphan, Kind: NodePrimitive, Name: "loose", Data: SphereData{Radius: 1}})

	errs := Validate(g)
	if !hasWarning(errs, "orphan") {
		t.Error("expected orphan warning")
	}
	if errorCount(errs) != 0 {
		t.Errorf("orphan should not be an error, got %v", errs)
	}
}

func TestValidate_NameIndexPointsToMissingNode(t *testing.T) {
	g := buildValidRun()
	g.NameIndex["phantom"] = NewNodeID("phantom")
	if !hasError(Validate(g), "non-existent node") {
		t.Error("expected name index error")
	}
}

func TestValidate_RootReferencesNonExistentNode(t *testing.T) {
	g := buildValidRun()
	g.AddRoot(NewNodeID("nowhere"))
	if !hasError(Validate(g), "root reference") {
		t.Error("expected root reference error")
	}
}

func TestValidate_KindMismatch(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{
			name: "group with solid payload",
			node: &Node{Kind: NodeGroup, Data: BoxData{Size: geom.V3(1, 1, 1)}},
			want: "group node carries",
		},
		{
			name: "primitive without payload",
			node: &Node{Kind: NodePrimitive},
			want: "no solid payload",
		},
		{
			name: "primitive with children",
			node: &Node{Kind: NodePrimitive, Data: SphereData{Radius: 1}, Children: []NodeID{NewNodeID("run/shell_000")}},
			want: "children",
		},
		{
			name: "unknown kind",
			node: &Node{Kind: NodeKind(7), Data: SphereData{Radius: 1}},
			want: "unknown node kind",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildValidRun()
			tt.node.ID = NewNodeID("run/bad")
			tt.node.Name = "run/bad"
			g.AddNode(tt.node)
			g.MustLookup("run").Children = append(g.MustLookup("run").Children, tt.node.ID)
			if !hasError(Validate(g), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, Validate(g))
			}
		})
	}
}

func TestValidationError_String(t *testing.T) {
	graphLevel := ValidationError{Message: "bad", Severity: SeverityError}
	if got := graphLevel.Error(); got != "[error] bad" {
		t.Errorf("Error() = %q", got)
	}
	id := NewNodeID("x")
	nodeLevel := ValidationError{NodeID: id, Message: "thin", Severity: SeverityWarning}
	if got := nodeLevel.Error(); got != "[warning] node "+id.Short()+": thin" {
		t.Errorf("Error() = %q", got)
	}
	if got := ValidationSeverity(5).String(); got != "ValidationSeverity(5)" {
		t.Errorf("String() = %q", got)
	}
}
