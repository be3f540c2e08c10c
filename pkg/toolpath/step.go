// Package toolpath defines the device-agnostic instruction units produced
// by lowering graph nodes. Steps form a flat ordered sequence; they carry
// no references back to the nodes that produced them.
package toolpath

import "fmt"

// HeatTarget identifies which heater a temperature step addresses.
type HeatTarget int

const (
	Hotend HeatTarget = iota
	Bed
)

func (t HeatTarget) String() string {
	switch t {
	case Hotend:
		return "hotend"
	case Bed:
		return "bed"
	default:
		return fmt.Sprintf("HeatTarget(%d)", int(t))
	}
}

// Step is the interface for toolpath step variants. The set of
// implementations is closed; the marker method restricts it to this package.
type Step interface {
	step()
}

// Move is a travel move to an absolute position without extrusion.
type Move struct {
	X, Y, Z float64
}

func (Move) step() {}

// ExtrudeMove is a printing move to an absolute position. Amount is the
// filament length in mm; zero or negative means the emitter derives it
// from the travel distance and the device profile.
type ExtrudeMove struct {
	X, Y, Z float64
	Amount  float64
}

func (ExtrudeMove) step() {}

// SetTemperature commands a heater target without blocking.
type SetTemperature struct {
	Target  HeatTarget
	Celsius float64
}

func (SetTemperature) step() {}

// WaitTemperature blocks until a heater reaches the target.
type WaitTemperature struct {
	Target  HeatTarget
	Celsius float64
}

func (WaitTemperature) step() {}

// SetFan sets the part-cooling fan speed as a percentage.
type SetFan struct {
	Percent float64
}

func (SetFan) step() {}

// Home zeroes the named axes, e.g. "XYZ".
type Home struct {
	Axes string
}

func (Home) step() {}

// ToolChange selects the active tool (AMS slot).
type ToolChange struct {
	Tool int
}

func (ToolChange) step() {}

// LayerChange marks the start of a new layer at the given height.
// The emitter uses these as the cadence for progress reporting.
type LayerChange struct {
	Layer int
	Z     float64
}

func (LayerChange) step() {}

// Comment is a human-readable annotation in the output.
type Comment struct {
	Text string
}

func (Comment) step() {}

// Raw passes device instructions through verbatim.
type Raw struct {
	Text string
}

func (Raw) step() {}
