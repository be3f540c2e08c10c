// Package nodes defines node type schemas and the registry that maps graph
// type names to their behavior. The registry is an explicit immutable value
// passed to every pipeline stage, never ambient state.
package nodes

import (
	"fmt"

	"github.com/printforge/nodeslicer/pkg/toolpath"
)

// PortKind is the type of value that flows through a port.
type PortKind int

const (
	Exec PortKind = iota // execution flow; determines ordering, carries no data
	Position
	Temperature
	Number
	Any
)

func (k PortKind) String() string {
	switch k {
	case Exec:
		return "exec"
	case Position:
		return "position"
	case Temperature:
		return "temperature"
	case Number:
		return "number"
	case Any:
		return "any"
	default:
		return fmt.Sprintf("PortKind(%d)", int(k))
	}
}

// Compatible reports whether a value of kind k may flow into a port of
// kind other. Any accepts and supplies everything.
func (k PortKind) Compatible(other PortKind) bool {
	if k == Any || other == Any {
		return true
	}
	return k == other
}

// Direction distinguishes input from output ports.
type Direction int

const (
	In Direction = iota
	Out
)

// PortDef declares a connection point on a node type.
type PortDef struct {
	ID       string
	Label    string
	Kind     PortKind
	Required bool
}

// Role marks node types with a distinguished position in the graph.
type Role int

const (
	RoleNone  Role = iota
	RoleEntry      // exactly one per graph
	RoleExit       // at least one required for export
)

// Category groups node types for presentation.
type Category string

const (
	CategoryControl     Category = "control"
	CategoryMovement    Category = "movement"
	CategoryTemperature Category = "temperature"
	CategoryHardware    Category = "hardware"
	CategoryUtility     Category = "utility"
)

// Def is the schema and behavior of one node type.
type Def struct {
	Name     string
	Label    string
	Category Category
	Role     Role
	Inputs   []PortDef
	Outputs  []PortDef
	Params   []ParamDef

	// Lower produces the toolpath steps for one node instance. It must be
	// pure: same params and inputs, same steps.
	Lower func(p Params, in Inputs) []toolpath.Step

	// OutputValue supplies the value carried by a non-exec output port,
	// consumed by downstream nodes' Lower via Inputs. Nil when the type
	// has no value outputs.
	OutputValue func(p Params, portID string) (any, bool)
}

// Input returns the input port with the given ID.
func (d *Def) Input(id string) (PortDef, bool) {
	for _, p := range d.Inputs {
		if p.ID == id {
			return p, true
		}
	}
	return PortDef{}, false
}

// Output returns the output port with the given ID.
func (d *Def) Output(id string) (PortDef, bool) {
	for _, p := range d.Outputs {
		if p.ID == id {
			return p, true
		}
	}
	return PortDef{}, false
}

// Param returns the parameter definition with the given ID.
func (d *Def) Param(id string) (ParamDef, bool) {
	for _, p := range d.Params {
		if p.ID == id {
			return p, true
		}
	}
	return ParamDef{}, false
}

// Inputs maps input port IDs to values resolved from upstream nodes.
type Inputs map[string]any
