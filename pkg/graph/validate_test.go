package graph

import (
	"strings"
	"testing"

	"github.com/printforge/nodeslicer/pkg/nodes"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// testNode builds a node with the given id, type, and parameters.
func testNode(id, typ string, params map[string]any) *Node {
	return &Node{ID: NodeID(id), Type: typ, Params: params}
}

// flow builds an execution-flow edge between the standard out/in ports.
func flow(id, from, to string) *Edge {
	return &Edge{
		ID:         EdgeID(id),
		Source:     NodeID(from),
		SourcePort: "out",
		Target:     NodeID(to),
		TargetPort: "in",
	}
}

// buildLinearGraph creates the minimal useful graph:
// Start -> LinearMove(10,10,0.2) -> End.
func buildLinearGraph() *Graph {
	g := New()
	g.AddNode(testNode("start", "Start", nil))
	g.AddNode(testNode("move", "LinearMove", map[string]any{
		"x": 10.0, "y": 10.0, "z": 0.2,
	}))
	g.AddNode(testNode("end", "End", nil))
	g.AddEdge(flow("e1", "start", "move"))
	g.AddEdge(flow("e2", "move", "end"))
	return g
}

// hasError reports whether findings contain an error-severity finding
// whose message contains substr.
func hasError(findings []Finding, substr string) bool {
	for _, f := range findings {
		if f.Severity == SeverityError && strings.Contains(f.Message, substr) {
			return true
		}
	}
	return false
}

// hasWarning reports whether findings contain a warning-severity finding
// whose message contains substr.
func hasWarning(findings []Finding, substr string) bool {
	for _, f := range findings {
		if f.Severity == SeverityWarning && strings.Contains(f.Message, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestValidate_ValidGraph(t *testing.T) {
	res := Validate(buildLinearGraph(), nodes.Builtin())
	if !res.Clean() {
		for _, f := range append(res.Errors, res.Warnings...) {
			t.Errorf("unexpected finding: %s", f.Error())
		}
	}
}

func TestValidate_EmptyGraph(t *testing.T) {
	res := Validate(New(), nodes.Builtin())
	if !hasError(res.Errors, "empty") {
		t.Error("expected empty-graph error, got none")
	}
}

func TestValidate_UnknownNodeType(t *testing.T) {
	g := buildLinearGraph()
	g.AddNode(testNode("bogus", "Frobnicate", nil))

	res := Validate(g, nodes.Builtin())
	if !hasError(res.Errors, `unknown node type "Frobnicate"`) {
		t.Error("expected unknown-type error, got none")
	}
}

func TestValidate_DuplicateNodeID(t *testing.T) {
	g := buildLinearGraph()
	g.AddNode(testNode("move", "Comment", nil))

	res := Validate(g, nodes.Builtin())
	if !hasError(res.Errors, "duplicate node id") {
		t.Error("expected duplicate-id error, got none")
	}
}

func TestValidate_DuplicateEdgeID(t *testing.T) {
	g := buildLinearGraph()
	g.AddNode(testNode("c", "Comment", nil))
	dup := flow("e1", "move", "c")
	g.AddEdge(dup)

	res := Validate(g, nodes.Builtin())
	if !hasError(res.Errors, "duplicate edge id") {
		t.Error("expected duplicate edge id error, got none")
	}
}

func TestValidate_DanglingEdge(t *testing.T) {
	g := buildLinearGraph()
	g.AddEdge(flow("e3", "move", "ghost"))

	res := Validate(g, nodes.Builtin())
	if !hasError(res.Errors, "non-existent target") {
		t.Error("expected dangling-target error, got none")
	}
}

func TestValidate_UnknownPort(t *testing.T) {
	g := buildLinearGraph()
	g.AddNode(testNode("c", "Comment", nil))
	g.AddEdge(&Edge{
		ID: "e3", Source: "move", SourcePort: "sideways",
		Target: "c", TargetPort: "in",
	})

	res := Validate(g, nodes.Builtin())
	if !hasError(res.Errors, `no output port "sideways"`) {
		t.Error("expected unknown-port error, got none")
	}
}

func TestValidate_IncompatiblePortKinds(t *testing.T) {
	g := buildLinearGraph()
	g.AddNode(testNode("c", "Comment", nil))
	// Position output into an execution input.
	g.AddEdge(&Edge{
		ID: "e3", Source: "move", SourcePort: "position",
		Target: "c", TargetPort: "in",
	})

	res := Validate(g, nodes.Builtin())
	if !hasError(res.Errors, "incompatible port kinds") {
		t.Error("expected kind-mismatch error, got none")
	}
}

func TestValidate_MultipleFlowIntoExecPort(t *testing.T) {
	g := buildLinearGraph()
	g.AddNode(testNode("c", "Comment", nil))
	g.AddEdge(flow("e3", "start", "c"))
	g.AddEdge(flow("e4", "c", "end")) // end.in already fed by e2

	res := Validate(g, nodes.Builtin())
	if !hasError(res.Errors, "at most one allowed") {
		t.Error("expected multiple-flow error, got none")
	}
}

func TestValidate_MissingEntry(t *testing.T) {
	g := New()
	g.AddNode(testNode("c", "Comment", nil))
	g.AddNode(testNode("end", "End", nil))
	g.AddEdge(flow("e1", "c", "end"))

	res := Validate(g, nodes.Builtin())
	if !hasError(res.Errors, "exactly one entry node") {
		t.Error("expected missing-entry error, got none")
	}
}

func TestValidate_MultipleEntries(t *testing.T) {
	g := buildLinearGraph()
	g.AddNode(testNode("start2", "Start", nil))

	res := Validate(g, nodes.Builtin())
	if !hasError(res.Errors, "entry nodes") {
		t.Error("expected multiple-entry error, got none")
	}
}

func TestValidate_MissingExitWarns(t *testing.T) {
	g := New()
	g.AddNode(testNode("start", "Start", nil))
	g.AddNode(testNode("move", "LinearMove", nil))
	g.AddEdge(flow("e1", "start", "move"))

	res := Validate(g, nodes.Builtin())
	if !res.OK() {
		for _, f := range res.Errors {
			t.Errorf("unexpected error: %s", f.Error())
		}
	}
	if !hasWarning(res.Warnings, "no exit node") {
		t.Error("expected no-exit warning, got none")
	}
}

func TestValidate_CycleReportsFullPath(t *testing.T) {
	// entry -> a -> b -> a
	g := New()
	g.AddNode(testNode("start", "Start", nil))
	g.AddNode(testNode("a", "Comment", nil))
	g.AddNode(testNode("b", "Comment", nil))
	g.AddEdge(flow("e1", "start", "a"))
	g.AddEdge(flow("e2", "a", "b"))
	g.AddEdge(flow("e3", "b", "a"))

	res := Validate(g, nodes.Builtin())
	if !hasError(res.Errors, "cycle") {
		t.Fatal("expected cycle error, got none")
	}

	var found *Finding
	for i := range res.Errors {
		if len(res.Errors[i].Cycle) > 0 {
			found = &res.Errors[i]
			break
		}
	}
	if found == nil {
		t.Fatal("cycle finding carries no path")
	}
	if !strings.Contains(found.Message, "a -> b -> a") {
		t.Errorf("cycle message %q does not spell out the path", found.Message)
	}
	if first, last := found.Cycle[0], found.Cycle[len(found.Cycle)-1]; first != last {
		t.Errorf("cycle path should close on itself, got %v", found.Cycle)
	}
}

func TestValidate_UnreachableNodeWarns(t *testing.T) {
	g := buildLinearGraph()
	g.AddNode(testNode("lonely", "Comment", nil))
	g.AddNode(testNode("lonely2", "Comment", nil))
	g.AddEdge(flow("e3", "lonely", "lonely2"))

	res := Validate(g, nodes.Builtin())
	if !res.OK() {
		for _, f := range res.Errors {
			t.Errorf("unexpected error: %s", f.Error())
		}
	}
	if !hasWarning(res.Warnings, "unreachable") {
		t.Error("expected unreachable warning, got none")
	}
}

func TestValidate_IsolatedNodeWarns(t *testing.T) {
	g := buildLinearGraph()
	g.AddNode(testNode("floating", "Comment", nil))

	res := Validate(g, nodes.Builtin())
	if !hasWarning(res.Warnings, "no connections") {
		t.Error("expected isolated-node warning, got none")
	}
}

func TestValidate_ParamOutOfBounds(t *testing.T) {
	cases := []struct {
		name   string
		typ    string
		params map[string]any
	}{
		{"hotend above max", "SetHotend", map[string]any{"temperature": 350.0}},
		{"bed above max", "SetBed", map[string]any{"temperature": 200.0}},
		{"fan above max", "SetFan", map[string]any{"speed": 150.0}},
		{"negative fan", "SetFan", map[string]any{"speed": -5.0}},
		{"fractional tool", "SetTool", map[string]any{"tool": 1.5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := buildLinearGraph()
			g.AddNode(testNode("bad", tc.typ, tc.params))
			g.AddEdge(flow("e9", "start", "bad"))

			res := Validate(g, nodes.Builtin())
			if res.OK() {
				t.Errorf("expected a parameter error for %s %v", tc.typ, tc.params)
			}
		})
	}
}

func TestValidate_CollectsAllFindings(t *testing.T) {
	// One graph, several independent problems: validation must report
	// them all in a single pass.
	g := New()
	g.AddNode(testNode("a", "Frobnicate", nil))
	g.AddNode(testNode("hot", "SetHotend", map[string]any{"temperature": 999.0}))
	g.AddEdge(flow("e1", "a", "ghost"))

	res := Validate(g, nodes.Builtin())
	if len(res.Errors) < 3 {
		t.Errorf("expected at least 3 errors (unknown type, dangling edge, param bounds, entry), got %d", len(res.Errors))
	}
}

func TestEntryNode(t *testing.T) {
	g := buildLinearGraph()
	reg := nodes.Builtin()
	if n := EntryNode(g, reg); n == nil || n.ID != "start" {
		t.Errorf("EntryNode = %v, want start", n)
	}
	if !HasExit(g, reg) {
		t.Error("HasExit = false, want true")
	}
}
