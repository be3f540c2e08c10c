package nodes

import "github.com/printforge/nodeslicer/pkg/toolpath"

// Temperature and hardware limits for the builtin catalogue. These bound
// parameter values at validation time; the device profile enforces its own
// limits again at emission time.
const (
	maxHotendTemp = 300
	maxBedTemp    = 120
	maxToolIndex  = 3
)

func ptr(f float64) *float64 { return &f }

// execIn is the standard execution-flow input port.
func execIn() PortDef {
	return PortDef{ID: "in", Label: "In", Kind: Exec, Required: true}
}

// execOut is the standard execution-flow output port.
func execOut() PortDef {
	return PortDef{ID: "out", Label: "Out", Kind: Exec}
}

// xyzParams declares the coordinate parameters shared by move nodes.
func xyzParams() []ParamDef {
	return []ParamDef{
		{ID: "x", Label: "X", Kind: ParamNumber, Default: 0.0},
		{ID: "y", Label: "Y", Kind: ParamNumber, Default: 0.0},
		{ID: "z", Label: "Z", Kind: ParamNumber, Default: 0.0},
	}
}

// Builtin returns the full builtin node catalogue. Each call builds a
// fresh registry so tests may construct reduced fixtures without
// process-wide side effects.
func Builtin() *Registry {
	return NewRegistry(
		startDef(),
		endDef(),
		homeDef(),
		linearMoveDef(),
		extrudeMoveDef(),
		setHotendDef(),
		waitHotendDef(),
		setBedDef(),
		waitBedDef(),
		setFanDef(),
		setToolDef(),
		layerChangeDef(),
		commentDef(),
		customGCodeDef(),
	)
}

func startDef() *Def {
	return &Def{
		Name:     "Start",
		Label:    "Start",
		Category: CategoryControl,
		Role:     RoleEntry,
		Outputs:  []PortDef{execOut()},
		Lower: func(p Params, in Inputs) []toolpath.Step {
			// Entry marker only; the emitter owns the start procedure.
			return nil
		},
	}
}

func endDef() *Def {
	return &Def{
		Name:     "End",
		Label:    "End",
		Category: CategoryControl,
		Role:     RoleExit,
		Inputs:   []PortDef{execIn()},
		Lower: func(p Params, in Inputs) []toolpath.Step {
			return []toolpath.Step{toolpath.Comment{Text: "End of print"}}
		},
	}
}

func homeDef() *Def {
	return &Def{
		Name:     "Home",
		Label:    "Home Axes",
		Category: CategoryMovement,
		Inputs:   []PortDef{execIn()},
		Outputs:  []PortDef{execOut()},
		Params: []ParamDef{
			{
				ID: "axes", Label: "Axes", Kind: ParamEnum, Default: "XYZ",
				Options: []string{"X", "Y", "Z", "XY", "XZ", "YZ", "XYZ"},
			},
		},
		Lower: func(p Params, in Inputs) []toolpath.Step {
			return []toolpath.Step{toolpath.Home{Axes: p.String("axes")}}
		},
	}
}

func linearMoveDef() *Def {
	return &Def{
		Name:     "LinearMove",
		Label:    "Linear Move",
		Category: CategoryMovement,
		Inputs:   []PortDef{execIn()},
		Outputs: []PortDef{
			execOut(),
			{ID: "position", Label: "Position", Kind: Position},
		},
		Params: xyzParams(),
		Lower: func(p Params, in Inputs) []toolpath.Step {
			return []toolpath.Step{toolpath.Move{
				X: p.Float("x"), Y: p.Float("y"), Z: p.Float("z"),
			}}
		},
		OutputValue: positionOutput,
	}
}

func extrudeMoveDef() *Def {
	params := append(xyzParams(), ParamDef{
		ID: "e", Label: "Extrusion (mm)", Kind: ParamNumber, Default: 0.0,
		Min: ptr(0),
	})
	return &Def{
		Name:     "ExtrudeMove",
		Label:    "Extrude Move",
		Category: CategoryMovement,
		Inputs:   []PortDef{execIn()},
		Outputs: []PortDef{
			execOut(),
			{ID: "position", Label: "Position", Kind: Position},
		},
		Params: params,
		Lower: func(p Params, in Inputs) []toolpath.Step {
			return []toolpath.Step{toolpath.ExtrudeMove{
				X: p.Float("x"), Y: p.Float("y"), Z: p.Float("z"),
				Amount: p.Float("e"),
			}}
		},
		OutputValue: positionOutput,
	}
}

// positionOutput exposes a move node's target as its position output.
func positionOutput(p Params, portID string) (any, bool) {
	if portID != "position" {
		return nil, false
	}
	return [3]float64{p.Float("x"), p.Float("y"), p.Float("z")}, true
}

func setHotendDef() *Def {
	return &Def{
		Name:     "SetHotend",
		Label:    "Set Hotend Temp",
		Category: CategoryTemperature,
		Inputs:   []PortDef{execIn()},
		Outputs: []PortDef{
			execOut(),
			{ID: "temp", Label: "Temperature", Kind: Temperature},
		},
		Params: []ParamDef{
			{
				ID: "temperature", Label: "Temperature", Kind: ParamInteger,
				Default: 200.0, Min: ptr(0), Max: ptr(maxHotendTemp),
			},
			{ID: "wait", Label: "Wait for Temperature", Kind: ParamBoolean, Default: false},
		},
		Lower: func(p Params, in Inputs) []toolpath.Step {
			t := p.Float("temperature")
			steps := []toolpath.Step{
				toolpath.SetTemperature{Target: toolpath.Hotend, Celsius: t},
			}
			if p.Bool("wait") {
				steps = append(steps, toolpath.WaitTemperature{Target: toolpath.Hotend, Celsius: t})
			}
			return steps
		},
		OutputValue: temperatureOutput,
	}
}

func waitHotendDef() *Def {
	return &Def{
		Name:     "WaitHotend",
		Label:    "Wait for Hotend",
		Category: CategoryTemperature,
		Inputs:   []PortDef{execIn()},
		Outputs:  []PortDef{execOut()},
		Params: []ParamDef{
			{
				ID: "temperature", Label: "Temperature", Kind: ParamInteger,
				Default: 200.0, Min: ptr(0), Max: ptr(maxHotendTemp),
			},
		},
		Lower: func(p Params, in Inputs) []toolpath.Step {
			return []toolpath.Step{toolpath.WaitTemperature{
				Target: toolpath.Hotend, Celsius: p.Float("temperature"),
			}}
		},
	}
}

func setBedDef() *Def {
	return &Def{
		Name:     "SetBed",
		Label:    "Set Bed Temp",
		Category: CategoryTemperature,
		Inputs:   []PortDef{execIn()},
		Outputs: []PortDef{
			execOut(),
			{ID: "temp", Label: "Temperature", Kind: Temperature},
		},
		Params: []ParamDef{
			{
				ID: "temperature", Label: "Temperature", Kind: ParamInteger,
				Default: 60.0, Min: ptr(0), Max: ptr(maxBedTemp),
			},
			{ID: "wait", Label: "Wait for Temperature", Kind: ParamBoolean, Default: false},
		},
		Lower: func(p Params, in Inputs) []toolpath.Step {
			t := p.Float("temperature")
			steps := []toolpath.Step{
				toolpath.SetTemperature{Target: toolpath.Bed, Celsius: t},
			}
			if p.Bool("wait") {
				steps = append(steps, toolpath.WaitTemperature{Target: toolpath.Bed, Celsius: t})
			}
			return steps
		},
		OutputValue: temperatureOutput,
	}
}

func waitBedDef() *Def {
	return &Def{
		Name:     "WaitBed",
		Label:    "Wait for Bed",
		Category: CategoryTemperature,
		Inputs:   []PortDef{execIn()},
		Outputs:  []PortDef{execOut()},
		Params: []ParamDef{
			{
				ID: "temperature", Label: "Temperature", Kind: ParamInteger,
				Default: 60.0, Min: ptr(0), Max: ptr(maxBedTemp),
			},
		},
		Lower: func(p Params, in Inputs) []toolpath.Step {
			return []toolpath.Step{toolpath.WaitTemperature{
				Target: toolpath.Bed, Celsius: p.Float("temperature"),
			}}
		},
	}
}

// temperatureOutput exposes a heater node's target as its temp output.
func temperatureOutput(p Params, portID string) (any, bool) {
	if portID != "temp" {
		return nil, false
	}
	return p.Float("temperature"), true
}

func setFanDef() *Def {
	return &Def{
		Name:     "SetFan",
		Label:    "Set Fan Speed",
		Category: CategoryHardware,
		Inputs:   []PortDef{execIn()},
		Outputs:  []PortDef{execOut()},
		Params: []ParamDef{
			{
				ID: "speed", Label: "Fan Speed", Kind: ParamInteger,
				Default: 100.0, Min: ptr(0), Max: ptr(100),
			},
		},
		Lower: func(p Params, in Inputs) []toolpath.Step {
			return []toolpath.Step{toolpath.SetFan{Percent: p.Float("speed")}}
		},
	}
}

func setToolDef() *Def {
	return &Def{
		Name:     "SetTool",
		Label:    "Select Tool",
		Category: CategoryHardware,
		Inputs:   []PortDef{execIn()},
		Outputs:  []PortDef{execOut()},
		Params: []ParamDef{
			{
				ID: "tool", Label: "Tool", Kind: ParamInteger,
				Default: 0.0, Min: ptr(0), Max: ptr(maxToolIndex),
			},
		},
		Lower: func(p Params, in Inputs) []toolpath.Step {
			return []toolpath.Step{toolpath.ToolChange{Tool: p.Int("tool")}}
		},
	}
}

func layerChangeDef() *Def {
	return &Def{
		Name:     "LayerChange",
		Label:    "Layer Change",
		Category: CategoryMovement,
		Inputs:   []PortDef{execIn()},
		Outputs:  []PortDef{execOut()},
		Params: []ParamDef{
			{ID: "layer", Label: "Layer", Kind: ParamInteger, Default: 1.0, Min: ptr(0)},
			{ID: "z", Label: "Z Height", Kind: ParamNumber, Default: 0.2, Min: ptr(0)},
		},
		Lower: func(p Params, in Inputs) []toolpath.Step {
			return []toolpath.Step{toolpath.LayerChange{
				Layer: p.Int("layer"), Z: p.Float("z"),
			}}
		},
	}
}

func commentDef() *Def {
	return &Def{
		Name:     "Comment",
		Label:    "Comment",
		Category: CategoryUtility,
		Inputs:   []PortDef{execIn()},
		Outputs:  []PortDef{execOut()},
		Params: []ParamDef{
			{ID: "text", Label: "Comment Text", Kind: ParamString, Default: ""},
		},
		Lower: func(p Params, in Inputs) []toolpath.Step {
			return []toolpath.Step{toolpath.Comment{Text: p.String("text")}}
		},
	}
}

func customGCodeDef() *Def {
	return &Def{
		Name:     "CustomGCode",
		Label:    "Custom G-Code",
		Category: CategoryUtility,
		Inputs:   []PortDef{execIn()},
		Outputs:  []PortDef{execOut()},
		Params: []ParamDef{
			{ID: "gcode", Label: "G-Code", Kind: ParamString, Default: ""},
		},
		Lower: func(p Params, in Inputs) []toolpath.Step {
			return []toolpath.Step{toolpath.Raw{Text: p.String("gcode")}}
		},
	}
}
