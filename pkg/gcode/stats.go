package gcode

import (
	"fmt"
	"math"
	"time"
)

// FilamentStats summarizes filament consumption accumulated during
// emission.
type FilamentStats struct {
	LengthMM  float64
	VolumeCM3 float64
	WeightG   float64
}

// filamentStats converts the accumulated filament length into volume and
// weight using the profile's filament geometry and density.
func filamentStats(p DeviceProfile, lengthMM float64) FilamentStats {
	radius := p.FilamentDiameter / 2
	volumeMM3 := lengthMM * math.Pi * radius * radius
	volumeCM3 := volumeMM3 / 1000
	return FilamentStats{
		LengthMM:  lengthMM,
		VolumeCM3: volumeCM3,
		WeightG:   volumeCM3 * p.FilamentDensity,
	}
}

// estimateTime converts accumulated travel and print distances into a
// coarse duration using the profile feed rates.
func estimateTime(p DeviceProfile, st PrinterState) time.Duration {
	seconds := 0.0
	if p.TravelSpeed > 0 {
		seconds += st.TravelMM / (p.TravelSpeed / 60)
	}
	if p.PrintSpeed > 0 {
		seconds += st.PrintMM / (p.PrintSpeed / 60)
	}
	return time.Duration(seconds * float64(time.Second))
}

// formatDuration renders a duration as "1h 2m 3s", dropping leading zero
// units, matching the header convention.
func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
