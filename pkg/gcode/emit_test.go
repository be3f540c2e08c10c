package gcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/printforge/nodeslicer/pkg/toolpath"
)

// emitAll folds a step sequence and returns every emitted line.
func emitAll(t *testing.T, p DeviceProfile, steps ...toolpath.Step) ([]string, PrinterState) {
	t.Helper()
	st := NewPrinterState()
	var lines []string
	for _, s := range steps {
		next, out, err := Transition(p, st, s)
		if err != nil {
			t.Fatalf("Transition(%#v): %v", s, err)
		}
		st = next
		lines = append(lines, out...)
	}
	return lines, st
}

func TestTransition_Move(t *testing.T) {
	p := DefaultProfile()
	lines, st := emitAll(t, p, toolpath.Move{X: 10, Y: 10, Z: 0.2})
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	want := "G0 X10 Y10 Z0.2 F9000"
	if lines[0] != want {
		t.Errorf("line = %q, want %q", lines[0], want)
	}
	if !st.Positioned || st.X != 10 || st.Z != 0.2 {
		t.Errorf("state = %+v", st)
	}
}

func TestTransition_MoveOutOfBounds(t *testing.T) {
	p := DefaultProfile()
	cases := []toolpath.Step{
		toolpath.Move{X: p.BedX + 1},
		toolpath.Move{Y: -0.5},
		toolpath.Move{Z: p.MaxZ + 10},
		toolpath.ExtrudeMove{X: p.BedX + 1},
	}
	for _, s := range cases {
		_, _, err := Transition(p, NewPrinterState(), s)
		var emitErr *EmissionError
		if !errors.As(err, &emitErr) {
			t.Errorf("Transition(%#v) = %v, want EmissionError", s, err)
		}
	}
}

func TestTransition_ExtrudeDerivesAmount(t *testing.T) {
	p := DefaultProfile()
	st := NewPrinterState()
	st, _, err := Transition(p, st, toolpath.Move{X: 0, Y: 0, Z: 0.2})
	if err != nil {
		t.Fatal(err)
	}

	// 10mm travel at the profile flow ratio.
	next, lines, err := Transition(p, st, toolpath.ExtrudeMove{X: 10, Y: 0, Z: 0.2})
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "G1 ") {
		t.Fatalf("lines = %v", lines)
	}
	wantE := 10 * p.FlowRatio
	if next.ExtrudedMM != wantE {
		t.Errorf("ExtrudedMM = %g, want %g", next.ExtrudedMM, wantE)
	}
	if next.PrintMM != 10 {
		t.Errorf("PrintMM = %g, want 10", next.PrintMM)
	}
}

func TestTransition_ExplicitExtrusionWins(t *testing.T) {
	p := DefaultProfile()
	_, st := emitAll(t, p,
		toolpath.Move{X: 0, Y: 0, Z: 0.2},
		toolpath.ExtrudeMove{X: 10, Y: 0, Z: 0.2, Amount: 2.5},
	)
	if st.ExtrudedMM != 2.5 {
		t.Errorf("ExtrudedMM = %g, want 2.5", st.ExtrudedMM)
	}
}

func TestTransition_TemperatureDeduplication(t *testing.T) {
	p := DefaultProfile()
	lines, _ := emitAll(t, p,
		toolpath.SetTemperature{Target: toolpath.Hotend, Celsius: 210},
		toolpath.SetTemperature{Target: toolpath.Hotend, Celsius: 210},
		toolpath.SetTemperature{Target: toolpath.Hotend, Celsius: 215},
	)
	if len(lines) != 2 {
		t.Fatalf("lines = %v, want set 210 then set 215 only", lines)
	}
	if !strings.HasPrefix(lines[0], "M104 S210") || !strings.HasPrefix(lines[1], "M104 S215") {
		t.Errorf("lines = %v", lines)
	}
}

func TestTransition_WaitNeverSuppressed(t *testing.T) {
	p := DefaultProfile()
	lines, _ := emitAll(t, p,
		toolpath.SetTemperature{Target: toolpath.Hotend, Celsius: 210},
		toolpath.WaitTemperature{Target: toolpath.Hotend, Celsius: 210},
		toolpath.WaitTemperature{Target: toolpath.Hotend, Celsius: 210},
	)
	waits := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "M109 ") {
			waits++
		}
	}
	if waits != 2 {
		t.Errorf("wait lines = %d, want every wait emitted: %v", waits, lines)
	}
}

func TestTransition_BedUsesBedCodes(t *testing.T) {
	p := DefaultProfile()
	lines, _ := emitAll(t, p,
		toolpath.SetTemperature{Target: toolpath.Bed, Celsius: 60},
		toolpath.WaitTemperature{Target: toolpath.Bed, Celsius: 60},
	)
	if !strings.HasPrefix(lines[0], "M140 S60") {
		t.Errorf("set bed = %q, want M140", lines[0])
	}
	if !strings.HasPrefix(lines[1], "M190 S60") {
		t.Errorf("wait bed = %q, want M190", lines[1])
	}
}

func TestTransition_TemperatureAboveDeviceLimit(t *testing.T) {
	p := DefaultProfile()
	_, _, err := Transition(p, NewPrinterState(),
		toolpath.SetTemperature{Target: toolpath.Hotend, Celsius: p.MaxHotendTemp + 1})
	var emitErr *EmissionError
	if !errors.As(err, &emitErr) {
		t.Fatalf("err = %v, want EmissionError", err)
	}
	if emitErr.Bound != p.MaxHotendTemp {
		t.Errorf("Bound = %g, want %g", emitErr.Bound, p.MaxHotendTemp)
	}
}

func TestTransition_FanScalingAndDeduplication(t *testing.T) {
	p := DefaultProfile()
	lines, _ := emitAll(t, p,
		toolpath.SetFan{Percent: 100},
		toolpath.SetFan{Percent: 100},
		toolpath.SetFan{Percent: 0},
	)
	if len(lines) != 2 {
		t.Fatalf("lines = %v, want two fan commands", lines)
	}
	if !strings.HasPrefix(lines[0], "M106 S255") {
		t.Errorf("full fan = %q, want M106 S255", lines[0])
	}
	if !strings.HasPrefix(lines[1], "M106 S0") {
		t.Errorf("fan off = %q, want M106 S0", lines[1])
	}
}

func TestTransition_Home(t *testing.T) {
	p := DefaultProfile()
	lines, st := emitAll(t, p,
		toolpath.Move{X: 50, Y: 50, Z: 1},
		toolpath.Home{},
	)
	if got := lines[len(lines)-1]; got != "G28 XYZ ; home" {
		t.Errorf("home line = %q", got)
	}
	if st.X != 0 || st.Y != 0 || st.Z != 0 {
		t.Errorf("home should reset position, state = %+v", st)
	}
}

func TestTransition_ToolChange(t *testing.T) {
	p := DefaultProfile()

	// First change to tool 1 emits the purge sequence.
	st := NewPrinterState()
	st, lines, err := Transition(p, st, toolpath.ToolChange{Tool: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) == 0 {
		t.Fatal("expected purge sequence")
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "T1 ") {
		t.Errorf("missing tool select: %v", lines)
	}
	if st.ExtrudedMM != p.PurgeLength {
		t.Errorf("purge not accounted: ExtrudedMM = %g", st.ExtrudedMM)
	}

	// Re-selecting the same tool is a no-op.
	_, lines, err = Transition(p, st, toolpath.ToolChange{Tool: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 {
		t.Errorf("same-tool change emitted %v", lines)
	}

	// Out-of-range tool index fails.
	if _, _, err := Transition(p, st, toolpath.ToolChange{Tool: p.MaxTool + 1}); err == nil {
		t.Error("expected error for tool index above device limit")
	}
}

func TestTransition_LayerChange(t *testing.T) {
	p := DefaultProfile()
	lines, st := emitAll(t, p,
		toolpath.LayerChange{Layer: 1, Z: 0.2},
		toolpath.LayerChange{Layer: 2, Z: 0.4},
	)
	if st.Layers != 2 {
		t.Errorf("Layers = %d, want 2", st.Layers)
	}
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"; LAYER_CHANGE", "; Z:0.20", "; LAYER:1", "; Z:0.40", "; LAYER:2"} {
		if !strings.Contains(joined, want) {
			t.Errorf("output missing %q:\n%s", want, joined)
		}
	}
}

func TestTransition_CommentAndRaw(t *testing.T) {
	p := DefaultProfile()
	lines, _ := emitAll(t, p,
		toolpath.Comment{Text: "hello"},
		toolpath.Raw{Text: "G4 P100\nM400"},
		toolpath.Raw{Text: "   "},
	)
	want := []string{"; hello", "G4 P100", "M400"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestNum_TrimsTrailingZeros(t *testing.T) {
	cases := map[float64]string{
		10:    "10",
		0.2:   "0.2",
		1.25:  "1.25",
		0:     "0",
		100.5: "100.5",
	}
	for in, want := range cases {
		if got := num(in); got != want {
			t.Errorf("num(%g) = %q, want %q", in, got, want)
		}
	}
}
