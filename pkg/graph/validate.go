package graph

import (
	"fmt"
	"sort"
)

// ValidationSeverity says whether a finding stops meshing.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks rendering
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError is one finding. NodeID is zero for findings about the
// tree as a whole.
type ValidationError struct {
	NodeID   NodeID
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning is a finding that does not stop meshing.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult holds the findings of every tier, split by severity.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether the result carries no errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks the tree's shape: every root and child exists, each
// node hangs under exactly one parent, names are unique, and payloads
// match node kinds. It never mutates g.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, walkTree(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateKinds(g)...)
	return errs
}

// ValidateAll runs the structural and geometric tiers and separates
// errors from warnings.
func ValidateAll(g *DesignGraph) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{NodeID: e.NodeID, Message: e.Message})
			continue
		}
		result.Errors = append(result.Errors, e)
	}
	geoErrs, geoWarnings := validateGeometry(g)
	result.Errors = append(result.Errors, geoErrs...)
	result.Warnings = append(result.Warnings, geoWarnings...)
	return result
}

// label names a node for messages.
func label(g *DesignGraph, id NodeID) string {
	if n := g.Nodes[id]; n != nil && n.Name != "" {
		return n.Name
	}
	return id.Short()
}

// treeWalk records where each node was first reached from.
type treeWalk struct {
	g      *DesignGraph
	parent map[NodeID]NodeID
	onPath map[NodeID]bool
	errs   []ValidationError
}

func (w *treeWalk) add(id NodeID, sev ValidationSeverity, format string, args ...any) {
	w.errs = append(w.errs, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: sev})
}

// reach claims child for parent and reports whether to descend into it.
// Roots are claimed by ZeroID.
func (w *treeWalk) reach(parent, child NodeID) bool {
	if w.onPath[child] {
		w.add(child, SeverityError, "cycle detected: %q contains itself", label(w.g, child))
		return false
	}
	prev, seen := w.parent[child]
	switch {
	case !seen:
		w.parent[child] = parent
		return true
	case prev == parent && parent.IsZero():
		w.add(child, SeverityWarning, "root %q is listed more than once", label(w.g, child))
	case prev == parent:
		w.add(child, SeverityWarning, "%q is listed more than once under %q", label(w.g, child), label(w.g, parent))
	case prev.IsZero() || parent.IsZero():
		other := prev
		if other.IsZero() {
			other = parent
		}
		w.add(child, SeverityError, "root %q is also a child of %q", label(w.g, child), label(w.g, other))
	default:
		w.add(child, SeverityError, "%q hangs under both %q and %q", label(w.g, child), label(w.g, prev), label(w.g, parent))
	}
	return false
}

func (w *treeWalk) descend(id NodeID) {
	w.onPath[id] = true
	for _, c := range w.g.Nodes[id].Children {
		if _, ok := w.g.Nodes[c]; !ok {
			w.add(id, SeverityError, "group %q lists child %s that does not exist", label(w.g, id), c.Short())
			continue
		}
		if w.reach(id, c) {
			w.descend(c)
		}
	}
	w.onPath[id] = false
}

// walkTree descends from every root, then from the tops of orphaned
// subtrees, then from whatever is left (unrooted cycles).
func walkTree(g *DesignGraph) []ValidationError {
	w := &treeWalk{g: g, parent: make(map[NodeID]NodeID), onPath: make(map[NodeID]bool)}
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			w.add(ZeroID, SeverityError, "root reference %s does not exist", rid.Short())
			continue
		}
		if w.reach(ZeroID, rid) {
			w.descend(rid)
		}
	}

	var orphans []NodeID
	for id := range g.Nodes {
		if _, ok := w.parent[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return label(g, orphans[i]) < label(g, orphans[j]) })
	for _, id := range orphans {
		w.add(id, SeverityWarning, "%q is not reachable from any root (orphan)", label(g, id))
	}

	listed := make(map[NodeID]bool)
	for _, n := range g.Nodes {
		for _, c := range n.Children {
			listed[c] = true
		}
	}
	for _, tops := range []bool{true, false} {
		for _, id := range orphans {
			if _, ok := w.parent[id]; ok || (tops && listed[id]) {
				continue
			}
			w.parent[id] = ZeroID
			w.descend(id)
		}
	}
	return w.errs
}

// validateNames checks that the name index and the nodes agree.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q points at non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	count := make(map[string]int)
	for _, n := range g.Nodes {
		if n.Name != "" {
			count[n.Name]++
		}
	}
	for name, n := range count {
		if n > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q on %d nodes", name, n),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateKinds checks that groups carry GroupData and primitives carry a
// solid payload and no children.
func validateKinds(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	bad := func(n *Node, format string, args ...any) {
		errs = append(errs, ValidationError{NodeID: n.ID, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}
	for _, n := range g.Nodes {
		_, isGroup := n.Data.(GroupData)
		switch n.Kind {
		case NodeGroup:
			if n.Data != nil && !isGroup {
				bad(n, "group node carries %T payload", n.Data)
			}
		case NodePrimitive:
			if n.Data == nil || isGroup {
				bad(n, "primitive %q has no solid payload", n.Name)
			}
			if len(n.Children) > 0 {
				bad(n, "primitive %q has %d children", n.Name, len(n.Children))
			}
		default:
			bad(n, "unknown node kind %d", int(n.Kind))
		}
	}
	return errs
}
