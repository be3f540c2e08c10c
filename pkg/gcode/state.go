package gcode

// Unknown marks a state field that has not been commanded yet, so the
// first command is never suppressed by deduplication.
const Unknown = -1

// PrinterState is the device state the emitter tracks while folding over
// a step sequence: last known position, last commanded temperatures, fan
// and tool, plus the running accumulators behind the header statistics.
// It is created fresh per compile, threaded through the fold as a value,
// and discarded after emission.
type PrinterState struct {
	// Last commanded position. Positioned is false until the first move
	// or home, so distance-based extrusion has a defined starting point.
	X, Y, Z    float64
	Positioned bool

	// Last commanded targets; Unknown until first set.
	HotendTemp float64
	BedTemp    float64
	FanPercent float64
	Tool       int

	// Accumulators.
	ExtrudedMM float64 // filament length, printing moves + purges
	TravelMM   float64 // travel move distance
	PrintMM    float64 // printing move distance
	Layers     int     // layer-change steps seen
	TopZ       float64 // highest commanded Z
}

// NewPrinterState returns the initial state for one emission pass.
func NewPrinterState() PrinterState {
	return PrinterState{
		HotendTemp: Unknown,
		BedTemp:    Unknown,
		FanPercent: Unknown,
		Tool:       Unknown,
	}
}
