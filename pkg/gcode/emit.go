package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/printforge/nodeslicer/pkg/toolpath"
)

// EmissionError reports a step that violates the device's declared
// bounds. It is raised only during emission, after validation has already
// passed, and signals a device-profile mismatch rather than a graph
// error.
type EmissionError struct {
	Step  string  // step kind, e.g. "set-temperature"
	Field string  // violated field, e.g. "hotend"
	Value float64 // requested value
	Bound float64 // device limit
}

func (e *EmissionError) Error() string {
	return fmt.Sprintf("gcode: %s %s=%g exceeds device bound %g",
		e.Step, e.Field, e.Value, e.Bound)
}

// Transition folds one step into the printer state and returns the lines
// to emit. It implements the per-step rules: non-blocking temperature and
// fan commands are suppressed when the target matches the last commanded
// value, blocking waits and moves are always emitted, and tool changes
// fire only on an index change, followed by the purge sequence.
func Transition(p DeviceProfile, st PrinterState, step toolpath.Step) (PrinterState, []string, error) {
	switch s := step.(type) {
	case toolpath.Move:
		if err := checkPosition(p, "move", s.X, s.Y, s.Z); err != nil {
			return st, nil, err
		}
		st.TravelMM += st.distanceTo(s.X, s.Y, s.Z)
		st = st.moveTo(s.X, s.Y, s.Z)
		line := fmt.Sprintf("G0 X%s Y%s Z%s F%.0f", num(s.X), num(s.Y), num(s.Z), p.TravelSpeed)
		return st, []string{line}, nil

	case toolpath.ExtrudeMove:
		if err := checkPosition(p, "extrude-move", s.X, s.Y, s.Z); err != nil {
			return st, nil, err
		}
		dist := st.distanceTo(s.X, s.Y, s.Z)
		amount := s.Amount
		if amount <= 0 {
			// Derive from travel distance; the node left it to the device.
			amount = dist * p.FlowRatio
		}
		st.PrintMM += dist
		st.ExtrudedMM += amount
		st = st.moveTo(s.X, s.Y, s.Z)
		line := fmt.Sprintf("G1 X%s Y%s Z%s E%.5f F%.0f", num(s.X), num(s.Y), num(s.Z), amount, p.PrintSpeed)
		return st, []string{line}, nil

	case toolpath.SetTemperature:
		max, last := p.MaxHotendTemp, &st.HotendTemp
		code := "M104"
		if s.Target == toolpath.Bed {
			max, last = p.MaxBedTemp, &st.BedTemp
			code = "M140"
		}
		if s.Celsius < 0 || s.Celsius > max {
			return st, nil, &EmissionError{Step: "set-temperature", Field: s.Target.String(), Value: s.Celsius, Bound: max}
		}
		if *last == s.Celsius {
			return st, nil, nil // already commanded; suppress
		}
		*last = s.Celsius
		return st, []string{fmt.Sprintf("%s S%.0f ; set %s temp", code, s.Celsius, s.Target)}, nil

	case toolpath.WaitTemperature:
		max := p.MaxHotendTemp
		code := "M109"
		if s.Target == toolpath.Bed {
			max = p.MaxBedTemp
			code = "M190"
		}
		if s.Celsius < 0 || s.Celsius > max {
			return st, nil, &EmissionError{Step: "wait-temperature", Field: s.Target.String(), Value: s.Celsius, Bound: max}
		}
		// Waits are never suppressed: the hardware temperature may lag
		// the commanded target, and correctness requires the block.
		if s.Target == toolpath.Bed {
			st.BedTemp = s.Celsius
		} else {
			st.HotendTemp = s.Celsius
		}
		return st, []string{fmt.Sprintf("%s S%.0f ; wait for %s temp", code, s.Celsius, s.Target)}, nil

	case toolpath.SetFan:
		if s.Percent < 0 || s.Percent > 100 {
			return st, nil, &EmissionError{Step: "set-fan", Field: "percent", Value: s.Percent, Bound: 100}
		}
		if st.FanPercent == s.Percent {
			return st, nil, nil
		}
		st.FanPercent = s.Percent
		pwm := math.Round(s.Percent * 2.55)
		return st, []string{fmt.Sprintf("M106 S%.0f ; fan %.0f%%", pwm, s.Percent)}, nil

	case toolpath.Home:
		axes := s.Axes
		if axes == "" {
			axes = "XYZ"
		}
		st = st.moveTo(0, 0, 0)
		return st, []string{fmt.Sprintf("G28 %s ; home", axes)}, nil

	case toolpath.ToolChange:
		if s.Tool < 0 || s.Tool > p.MaxTool {
			return st, nil, &EmissionError{Step: "tool-change", Field: "tool", Value: float64(s.Tool), Bound: float64(p.MaxTool)}
		}
		if st.Tool == s.Tool {
			return st, nil, nil
		}
		st.Tool = s.Tool
		st.ExtrudedMM += p.PurgeLength
		lines := []string{
			fmt.Sprintf("; AMS filament change to T%d", s.Tool),
			fmt.Sprintf("T%d ; switch tool", s.Tool),
			"G92 E0 ; reset extruder",
			fmt.Sprintf("G1 E%.1f F300 ; purge filament", p.PurgeLength),
			"G92 E0 ; reset extruder",
			"G4 P500 ; dwell 500ms",
		}
		return st, lines, nil

	case toolpath.LayerChange:
		if s.Z > p.MaxZ {
			return st, nil, &EmissionError{Step: "layer-change", Field: "z", Value: s.Z, Bound: p.MaxZ}
		}
		st.Layers++
		if s.Z > st.TopZ {
			st.TopZ = s.Z
		}
		lines := []string{
			"; LAYER_CHANGE",
			fmt.Sprintf("; Z:%.2f", s.Z),
			fmt.Sprintf("; LAYER:%d", s.Layer),
		}
		return st, lines, nil

	case toolpath.Comment:
		return st, []string{"; " + s.Text}, nil

	case toolpath.Raw:
		if strings.TrimSpace(s.Text) == "" {
			return st, nil, nil
		}
		return st, strings.Split(strings.TrimRight(s.Text, "\n"), "\n"), nil

	default:
		return st, nil, fmt.Errorf("gcode: unsupported step %T", step)
	}
}

// checkPosition rejects targets outside the build volume.
func checkPosition(p DeviceProfile, kind string, x, y, z float64) error {
	switch {
	case x < 0 || x > p.BedX:
		return &EmissionError{Step: kind, Field: "x", Value: x, Bound: p.BedX}
	case y < 0 || y > p.BedY:
		return &EmissionError{Step: kind, Field: "y", Value: y, Bound: p.BedY}
	case z < 0 || z > p.MaxZ:
		return &EmissionError{Step: kind, Field: "z", Value: z, Bound: p.MaxZ}
	}
	return nil
}

// distanceTo returns the euclidean distance from the current position,
// or zero when the printer has not been positioned yet.
func (st PrinterState) distanceTo(x, y, z float64) float64 {
	if !st.Positioned {
		return 0
	}
	dx, dy, dz := x-st.X, y-st.Y, z-st.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func (st PrinterState) moveTo(x, y, z float64) PrinterState {
	st.X, st.Y, st.Z = x, y, z
	st.Positioned = true
	if z > st.TopZ {
		st.TopZ = z
	}
	return st
}

// num formats a coordinate with up to three decimals, trimming trailing
// zeros the way slicers conventionally do.
func num(f float64) string {
	s := fmt.Sprintf("%.3f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
