package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/printforge/nodeslicer/pkg/nodes"
)

// CycleError is returned when linearization cannot consume every node.
// The validator rejects cycles first, so reaching this from a validated
// graph signals a caller bug; the linearizer re-detects independently and
// fails closed rather than trusting that validation ran.
type CycleError struct {
	Remaining []NodeID // nodes left with unresolved flow predecessors
}

func (e *CycleError) Error() string {
	ids := make([]string, len(e.Remaining))
	for i, id := range e.Remaining {
		ids[i] = string(id)
	}
	return fmt.Sprintf("graph: cycle prevents linearization, unresolved nodes: %s",
		strings.Join(ids, ", "))
}

// flowEdge reports whether an edge constrains execution order. Only
// edges into an execution-flow input port sequence nodes; value edges
// (position, temperature, number) carry data without ordering them.
func flowEdge(g *Graph, reg *nodes.Registry, e *Edge) bool {
	target := g.Node(e.Target)
	if target == nil {
		return false
	}
	def, ok := reg.Lookup(target.Type)
	if !ok {
		return false
	}
	port, ok := def.Input(e.TargetPort)
	return ok && port.Kind == nodes.Exec
}

// Linearize produces a deterministic execution order for the graph using
// in-degree elimination (Kahn's algorithm) over execution-flow edges.
// When several nodes are ready simultaneously they are processed in
// ascending node-id order, so the output is stable and testable.
func Linearize(g *Graph, reg *nodes.Registry) ([]NodeID, error) {
	inDegree := make(map[NodeID]int, len(g.Nodes))
	for _, n := range g.Nodes {
		inDegree[n.ID] = 0
	}

	succ := make(map[NodeID][]NodeID, len(g.Nodes))
	for _, e := range g.Edges {
		if !flowEdge(g, reg, e) {
			continue
		}
		if _, ok := inDegree[e.Source]; !ok {
			continue // dangling source; validator reports it
		}
		inDegree[e.Target]++
		succ[e.Source] = append(succ[e.Source], e.Target)
	}

	// Ready queue kept sorted ascending; popping the minimum makes
	// tie-breaks deterministic.
	var ready []NodeID
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	order := make([]NodeID, 0, len(g.Nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, next := range succ[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = insertSorted(ready, next)
			}
		}
	}

	if len(order) != len(g.Nodes) {
		consumed := make(map[NodeID]bool, len(order))
		for _, id := range order {
			consumed[id] = true
		}
		var remaining []NodeID
		for _, n := range g.Nodes {
			if !consumed[n.ID] {
				remaining = append(remaining, n.ID)
			}
		}
		return nil, &CycleError{Remaining: remaining}
	}

	return order, nil
}

// insertSorted inserts id into the sorted queue, keeping ascending order.
func insertSorted(queue []NodeID, id NodeID) []NodeID {
	i := sort.Search(len(queue), func(i int) bool { return queue[i] >= id })
	queue = append(queue, "")
	copy(queue[i+1:], queue[i:])
	queue[i] = id
	return queue
}
