package graph

import (
	"fmt"
	"strings"

	"github.com/printforge/nodeslicer/pkg/nodes"
)

// Severity indicates whether a validation finding blocks compilation or
// is merely advisory.
type Severity int

const (
	SeverityError   Severity = iota // blocks compile and export
	SeverityWarning                 // blocks export only
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding describes a single validation problem with enough context for a
// caller to render it without re-deriving anything.
type Finding struct {
	Severity Severity
	NodeID   NodeID   // offending node, if any
	EdgeID   EdgeID   // offending edge, if any
	Field    string   // offending parameter or port, if any
	Message  string   // human-readable description
	Cycle    []NodeID // full cycle path for cycle findings
}

func (f Finding) Error() string {
	where := ""
	if f.NodeID != "" {
		where = fmt.Sprintf(" node %s:", f.NodeID)
	} else if f.EdgeID != "" {
		where = fmt.Sprintf(" edge %s:", f.EdgeID)
	}
	return fmt.Sprintf("[%s]%s %s", f.Severity, where, f.Message)
}

// ValidationResult bundles errors (blocking) and warnings (advisory).
// Compile proceeds when Errors is empty; export requires both empty.
type ValidationResult struct {
	Errors   []Finding
	Warnings []Finding
}

// OK reports whether the graph passed with no errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Clean reports whether the graph passed with no errors and no warnings.
func (r ValidationResult) Clean() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

func (r *ValidationResult) add(findings ...Finding) {
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			r.Warnings = append(r.Warnings, f)
		} else {
			r.Errors = append(r.Errors, f)
		}
	}
}

// Validate runs every structural and semantic check against the graph.
// Checks are independent and all executed; validation never stops at the
// first problem, so a single pass surfaces everything. The graph is never
// mutated.
func Validate(g *Graph, reg *nodes.Registry) ValidationResult {
	var result ValidationResult

	result.add(checkNonEmpty(g)...)
	result.add(checkNodes(g, reg)...)
	result.add(checkEdges(g, reg)...)
	result.add(checkEntry(g, reg)...)
	result.add(checkExit(g, reg)...)
	result.add(checkCycles(g)...)
	result.add(checkReachability(g, reg)...)
	result.add(checkParams(g, reg)...)
	result.add(checkIsolated(g, reg)...)

	return result
}

// checkNonEmpty rejects the empty graph.
func checkNonEmpty(g *Graph) []Finding {
	if len(g.Nodes) == 0 {
		return []Finding{{Severity: SeverityError, Message: "graph is empty"}}
	}
	return nil
}

// checkNodes verifies that every node type resolves in the registry and
// that node IDs are unique.
func checkNodes(g *Graph, reg *nodes.Registry) []Finding {
	var findings []Finding

	seen := make(map[NodeID]int, len(g.Nodes))
	for _, n := range g.Nodes {
		seen[n.ID]++
	}
	reported := make(map[NodeID]bool)
	for _, n := range g.Nodes {
		if seen[n.ID] > 1 && !reported[n.ID] {
			reported[n.ID] = true
			findings = append(findings, Finding{
				Severity: SeverityError,
				NodeID:   n.ID,
				Message:  fmt.Sprintf("duplicate node id %q (%d occurrences)", n.ID, seen[n.ID]),
			})
		}
		if _, ok := reg.Lookup(n.Type); !ok {
			findings = append(findings, Finding{
				Severity: SeverityError,
				NodeID:   n.ID,
				Message:  fmt.Sprintf("unknown node type %q", n.Type),
			})
		}
	}

	return findings
}

// checkEdges verifies edge endpoints, port existence and direction, port
// kind compatibility, duplicate edge IDs, and the one-incoming-flow-edge
// rule on execution targets.
func checkEdges(g *Graph, reg *nodes.Registry) []Finding {
	var findings []Finding

	if len(g.Edges) == 0 && len(g.Nodes) > 1 {
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			Message:  "graph has nodes but no connections",
		})
	}

	seen := make(map[EdgeID]int, len(g.Edges))
	for _, e := range g.Edges {
		seen[e.ID]++
	}
	reported := make(map[EdgeID]bool)

	// Incoming edge count per (target node, exec input port).
	type flowTarget struct {
		node NodeID
		port string
	}
	flowIn := make(map[flowTarget]int)

	for _, e := range g.Edges {
		if seen[e.ID] > 1 && !reported[e.ID] {
			reported[e.ID] = true
			findings = append(findings, Finding{
				Severity: SeverityError,
				EdgeID:   e.ID,
				Message:  fmt.Sprintf("duplicate edge id %q (%d occurrences)", e.ID, seen[e.ID]),
			})
		}

		source := g.Node(e.Source)
		if source == nil {
			findings = append(findings, Finding{
				Severity: SeverityError,
				EdgeID:   e.ID,
				Message:  fmt.Sprintf("edge references non-existent source node %q", e.Source),
			})
		}
		target := g.Node(e.Target)
		if target == nil {
			findings = append(findings, Finding{
				Severity: SeverityError,
				EdgeID:   e.ID,
				Message:  fmt.Sprintf("edge references non-existent target node %q", e.Target),
			})
		}
		if source == nil || target == nil {
			continue
		}

		sourceDef, sourceOK := reg.Lookup(source.Type)
		targetDef, targetOK := reg.Lookup(target.Type)
		if !sourceOK || !targetOK {
			// Unknown types already reported by checkNodes.
			continue
		}

		sourcePort, ok := sourceDef.Output(e.SourcePort)
		if !ok {
			findings = append(findings, Finding{
				Severity: SeverityError,
				EdgeID:   e.ID,
				Field:    e.SourcePort,
				Message: fmt.Sprintf("source node %q (%s) has no output port %q",
					source.ID, source.Type, e.SourcePort),
			})
			continue
		}
		targetPort, ok := targetDef.Input(e.TargetPort)
		if !ok {
			findings = append(findings, Finding{
				Severity: SeverityError,
				EdgeID:   e.ID,
				Field:    e.TargetPort,
				Message: fmt.Sprintf("target node %q (%s) has no input port %q",
					target.ID, target.Type, e.TargetPort),
			})
			continue
		}

		if !sourcePort.Kind.Compatible(targetPort.Kind) {
			findings = append(findings, Finding{
				Severity: SeverityError,
				EdgeID:   e.ID,
				Message: fmt.Sprintf("incompatible port kinds: cannot connect %s output to %s input",
					sourcePort.Kind, targetPort.Kind),
			})
		}

		if targetPort.Kind == nodes.Exec {
			flowIn[flowTarget{e.Target, e.TargetPort}]++
		}
	}

	// Report exec targets with more than one incoming flow edge. Iterate
	// edges rather than the map for deterministic output.
	reportedFlow := make(map[flowTarget]bool)
	for _, e := range g.Edges {
		ft := flowTarget{e.Target, e.TargetPort}
		if flowIn[ft] > 1 && !reportedFlow[ft] {
			reportedFlow[ft] = true
			findings = append(findings, Finding{
				Severity: SeverityError,
				NodeID:   e.Target,
				Field:    e.TargetPort,
				Message: fmt.Sprintf("execution input %q on node %q has %d incoming edges, at most one allowed",
					e.TargetPort, e.Target, flowIn[ft]),
			})
		}
	}

	return findings
}

// checkEntry requires exactly one entry-role node.
func checkEntry(g *Graph, reg *nodes.Registry) []Finding {
	entries := nodesWithRole(g, reg, nodes.RoleEntry)
	switch len(entries) {
	case 0:
		if len(g.Nodes) == 0 {
			return nil // empty graph already reported
		}
		return []Finding{{
			Severity: SeverityError,
			Message:  "graph must have exactly one entry node",
		}}
	case 1:
		return nil
	default:
		ids := make([]string, len(entries))
		for i, n := range entries {
			ids[i] = string(n.ID)
		}
		return []Finding{{
			Severity: SeverityError,
			Message: fmt.Sprintf("graph has %d entry nodes (%s), exactly one allowed",
				len(entries), strings.Join(ids, ", ")),
		}}
	}
}

// checkExit warns when no exit-role node exists. The graph may still be
// compiled and inspected, but export requires an exit node.
func checkExit(g *Graph, reg *nodes.Registry) []Finding {
	if len(g.Nodes) == 0 {
		return nil
	}
	if len(nodesWithRole(g, reg, nodes.RoleExit)) == 0 {
		return []Finding{{
			Severity: SeverityWarning,
			Message:  "graph has no exit node",
		}}
	}
	return nil
}

// checkCycles detects directed cycles with an iterative 3-color DFS.
// White = unvisited, gray = on the current DFS path, black = done. A gray
// successor means a back-edge; the finding reports the full cycle path.
// The traversal uses an explicit stack so recursion depth never bounds
// the graph size.
func checkCycles(g *Graph) []Finding {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int, len(g.Nodes))

	type frame struct {
		id   NodeID
		succ []NodeID
		next int
	}

	for _, start := range g.Nodes {
		if color[start.ID] != white {
			continue
		}

		stack := []frame{{id: start.ID, succ: g.Successors(start.ID)}}
		color[start.ID] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next >= len(top.succ) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}

			next := top.succ[top.next]
			top.next++

			switch color[next] {
			case white:
				if g.Node(next) == nil {
					// Dangling edge target; checkEdges reports it.
					color[next] = black
					continue
				}
				color[next] = gray
				stack = append(stack, frame{id: next, succ: g.Successors(next)})
			case gray:
				// Back-edge: the cycle runs from next's stack position
				// through the top of the stack and back to next.
				var cycle []NodeID
				for i := range stack {
					if len(cycle) > 0 || stack[i].id == next {
						cycle = append(cycle, stack[i].id)
					}
				}
				cycle = append(cycle, next)

				path := make([]string, len(cycle))
				for i, id := range cycle {
					path[i] = string(id)
				}
				return []Finding{{
					Severity: SeverityError,
					NodeID:   next,
					Cycle:    cycle,
					Message:  fmt.Sprintf("graph contains a cycle: %s", strings.Join(path, " -> ")),
				}}
			}
		}
	}

	return nil
}

// checkReachability warns about nodes not reachable from the entry node
// via BFS. Skipped unless exactly one entry node exists; the entry check
// already reported the problem otherwise.
func checkReachability(g *Graph, reg *nodes.Registry) []Finding {
	entries := nodesWithRole(g, reg, nodes.RoleEntry)
	if len(entries) != 1 {
		return nil
	}

	reachable := make(map[NodeID]bool, len(g.Nodes))
	queue := []NodeID{entries[0].ID}
	reachable[entries[0].ID] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, succ := range g.Successors(current) {
			if !reachable[succ] {
				reachable[succ] = true
				queue = append(queue, succ)
			}
		}
	}

	var findings []Finding
	for _, n := range g.Nodes {
		if !reachable[n.ID] {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				NodeID:   n.ID,
				Message:  fmt.Sprintf("node %q (%s) is unreachable from the entry node", n.ID, n.Type),
			})
		}
	}
	return findings
}

// checkParams validates every supplied parameter value against its
// schema bounds.
func checkParams(g *Graph, reg *nodes.Registry) []Finding {
	var findings []Finding

	for _, n := range g.Nodes {
		def, ok := reg.Lookup(n.Type)
		if !ok {
			continue
		}
		for _, pd := range def.Params {
			value := n.Params[pd.ID] // nil when unset
			if err := pd.Check(value); err != nil {
				findings = append(findings, Finding{
					Severity: SeverityError,
					NodeID:   n.ID,
					Field:    pd.ID,
					Message:  err.Error(),
				})
			}
		}
	}

	return findings
}

// checkIsolated warns about nodes with no edges at all. Entry and exit
// nodes are exempt; a bare Start/End pair is a legitimate skeleton.
func checkIsolated(g *Graph, reg *nodes.Registry) []Finding {
	connected := make(map[NodeID]bool)
	for _, e := range g.Edges {
		connected[e.Source] = true
		connected[e.Target] = true
	}

	var findings []Finding
	for _, n := range g.Nodes {
		if connected[n.ID] {
			continue
		}
		if def, ok := reg.Lookup(n.Type); ok && def.Role != nodes.RoleNone {
			continue
		}
		findings = append(findings, Finding{
			Severity: SeverityWarning,
			NodeID:   n.ID,
			Message:  fmt.Sprintf("node %q (%s) has no connections", n.ID, n.Type),
		})
	}
	return findings
}

// nodesWithRole returns all nodes whose resolved type has the given role,
// in document order.
func nodesWithRole(g *Graph, reg *nodes.Registry, role nodes.Role) []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if def, ok := reg.Lookup(n.Type); ok && def.Role == role {
			out = append(out, n)
		}
	}
	return out
}

// EntryNode returns the unique entry node, or nil when the graph does not
// have exactly one.
func EntryNode(g *Graph, reg *nodes.Registry) *Node {
	entries := nodesWithRole(g, reg, nodes.RoleEntry)
	if len(entries) != 1 {
		return nil
	}
	return entries[0]
}

// HasExit reports whether the graph contains at least one exit-role node.
func HasExit(g *Graph, reg *nodes.Registry) bool {
	return len(nodesWithRole(g, reg, nodes.RoleExit)) > 0
}
