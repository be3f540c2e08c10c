// Package gcode renders toolpath steps into device instructions. The
// emitter is a state machine over an explicit PrinterState value: each
// step folds (state, step) into (state, lines), which keeps every
// transition deterministic and independently testable.
package gcode

// DeviceProfile declares the target machine's physical bounds and the
// fixed knobs of its start/end procedures. The emitter enforces the
// bounds as the last point where physically invalid instructions can be
// rejected before they reach hardware.
type DeviceProfile struct {
	Name string

	// Build volume in mm.
	BedX float64
	BedY float64
	MaxZ float64

	// Heater limits in °C.
	MaxHotendTemp float64
	MaxBedTemp    float64

	// Hardware geometry.
	NozzleDiameter   float64 // mm
	FilamentDiameter float64 // mm
	FilamentDensity  float64 // g/cm³
	FilamentType     string
	FilamentVendor   string

	// Start-procedure temperatures.
	HotendTemp float64
	BedTemp    float64

	// Feed rates in mm/min.
	TravelSpeed float64
	PrintSpeed  float64

	// Percent overrides applied in the start procedure.
	SpeedFactor int
	FlowFactor  int

	// Retraction used by the ending procedure.
	RetractionLength float64
	RetractionSpeed  float64

	// FlowRatio is mm of filament per mm of travel, used to derive the
	// extrusion amount for printing moves that do not specify one.
	FlowRatio float64

	// Multi-material.
	MaxTool     int     // highest selectable tool index
	PurgeLength float64 // filament purged after a tool change, mm

	RelativeE bool
	AuxFan    bool
}

// DefaultProfile describes a Bambu Lab X1 Carbon with a 0.4mm nozzle and
// generic PLA.
func DefaultProfile() DeviceProfile {
	return DeviceProfile{
		Name:             "Bambu Lab X1 Carbon",
		BedX:             256,
		BedY:             256,
		MaxZ:             250,
		MaxHotendTemp:    300,
		MaxBedTemp:       120,
		NozzleDiameter:   0.4,
		FilamentDiameter: 1.75,
		FilamentDensity:  1.24,
		FilamentType:     "PLA",
		FilamentVendor:   "Generic",
		HotendTemp:       210,
		BedTemp:          60,
		TravelSpeed:      9000,
		PrintSpeed:       3600,
		SpeedFactor:      100,
		FlowFactor:       100,
		RetractionLength: 0.8,
		RetractionSpeed:  3000,
		FlowRatio:        0.033, // 0.4 nozzle, 0.2 layer, 1.75 filament
		MaxTool:          3,
		PurgeLength:      50,
		RelativeE:        true,
		AuxFan:           true,
	}
}
