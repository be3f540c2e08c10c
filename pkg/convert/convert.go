// Package convert lowers a validated, linearized node graph into a flat
// toolpath step sequence. Conversion is a pure function of the graph, the
// execution order, and the registry; it holds no state between calls.
package convert

import (
	"fmt"

	"github.com/printforge/nodeslicer/pkg/graph"
	"github.com/printforge/nodeslicer/pkg/nodes"
	"github.com/printforge/nodeslicer/pkg/toolpath"
)

// Convert lowers each node, in execution order, into zero or more
// toolpath steps and concatenates them. Per node it resolves the schema,
// binds parameter values (schema defaults fill unset ones), and resolves
// input port values from connected upstream nodes' declared outputs.
//
// The lowering is one-way and lossy: steps carry no identifiers back to
// their source nodes.
func Convert(g *graph.Graph, order []graph.NodeID, reg *nodes.Registry) ([]toolpath.Step, error) {
	var steps []toolpath.Step

	for _, id := range order {
		n := g.Node(id)
		if n == nil {
			return nil, fmt.Errorf("convert: order references unknown node %q", id)
		}
		def, ok := reg.Lookup(n.Type)
		if !ok {
			// The validator rejects unknown types; the converter still
			// refuses to guess rather than trusting the caller.
			return nil, fmt.Errorf("convert: node %q has unknown type %q", n.ID, n.Type)
		}

		params := nodes.NewParams(def, n.Params)
		inputs, err := resolveInputs(g, reg, n)
		if err != nil {
			return nil, err
		}

		if def.Lower != nil {
			steps = append(steps, def.Lower(params, inputs)...)
		}
	}

	return steps, nil
}

// resolveInputs gathers values for a node's non-exec input ports from the
// output values declared by connected upstream nodes.
func resolveInputs(g *graph.Graph, reg *nodes.Registry, n *graph.Node) (nodes.Inputs, error) {
	var inputs nodes.Inputs

	for _, e := range g.Incoming(n.ID) {
		def, ok := reg.Lookup(n.Type)
		if !ok {
			break
		}
		port, ok := def.Input(e.TargetPort)
		if !ok || port.Kind == nodes.Exec {
			continue
		}

		source := g.Node(e.Source)
		if source == nil {
			return nil, fmt.Errorf("convert: edge %q references unknown source node %q", e.ID, e.Source)
		}
		sourceDef, ok := reg.Lookup(source.Type)
		if !ok || sourceDef.OutputValue == nil {
			continue
		}

		value, ok := sourceDef.OutputValue(nodes.NewParams(sourceDef, source.Params), e.SourcePort)
		if !ok {
			continue
		}
		if inputs == nil {
			inputs = make(nodes.Inputs)
		}
		inputs[e.TargetPort] = value
	}

	return inputs, nil
}
