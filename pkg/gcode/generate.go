package gcode

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/printforge/nodeslicer/pkg/toolpath"
)

// Generator metadata embedded in the output header.
const (
	generatorName    = "NodeSlicer"
	generatorVersion = "0.1.0"
)

// Generator renders a step sequence into a complete instruction file:
// header and config blocks, the device starting procedure, the emitted
// body with progress markers, and the ending procedure.
type Generator struct {
	Profile DeviceProfile

	// ProgressPerLayer interleaves an M73 progress line at every
	// layer-change step. The final M73 P100 is always emitted.
	ProgressPerLayer bool

	// Clock supplies the header timestamp; tests pin it for byte-stable
	// output. Nil means time.Now.
	Clock func() time.Time
}

// NewGenerator returns a generator with per-layer progress enabled.
func NewGenerator(p DeviceProfile) *Generator {
	return &Generator{Profile: p, ProgressPerLayer: true}
}

// Result is the rendered output plus the statistics gathered while
// emitting it.
type Result struct {
	Lines      []string
	Stats      FilamentStats
	LayerCount int
	Estimated  time.Duration
}

// Text returns the newline-terminated instruction text.
func (r *Result) Text() string {
	return strings.Join(r.Lines, "\n") + "\n"
}

// Generate renders the full instruction file. The body is emitted first
// so the header can carry the layer count, time estimate, and filament
// statistics accumulated during the fold.
func (g *Generator) Generate(steps []toolpath.Step) (*Result, error) {
	// Total layers are needed up front for percent-complete markers.
	totalLayers := 0
	for _, s := range steps {
		if _, ok := s.(toolpath.LayerChange); ok {
			totalLayers++
		}
	}

	st := NewPrinterState()
	var body []string
	layersSeen := 0
	for _, step := range steps {
		next, lines, err := Transition(g.Profile, st, step)
		if err != nil {
			return nil, err
		}
		st = next
		body = append(body, lines...)

		if lc, ok := step.(toolpath.LayerChange); ok && g.ProgressPerLayer && totalLayers > 0 {
			layersSeen++
			percent := layersSeen * 100 / totalLayers
			body = append(body, fmt.Sprintf("M73 P%d L%d ; update progress", percent, lc.Layer))
		}
	}

	stats := filamentStats(g.Profile, st.ExtrudedMM)
	estimated := estimateTime(g.Profile, st)

	var lines []string
	lines = append(lines, g.header(st, stats, estimated)...)
	lines = append(lines, g.configBlock()...)
	lines = append(lines, g.startingProcedure()...)
	lines = append(lines, "; EXECUTABLE_BLOCK_START", "")
	lines = append(lines, body...)
	lines = append(lines, "", "; EXECUTABLE_BLOCK_END")
	lines = append(lines, "M73 P100 ; update progress")
	lines = append(lines, g.endingProcedure()...)

	return &Result{
		Lines:      lines,
		Stats:      stats,
		LayerCount: st.Layers,
		Estimated:  estimated,
	}, nil
}

// header builds the HEADER_BLOCK comment section.
func (g *Generator) header(st PrinterState, stats FilamentStats, estimated time.Duration) []string {
	clock := g.Clock
	if clock == nil {
		clock = time.Now
	}
	p := g.Profile

	lines := []string{
		"; HEADER_BLOCK_START",
		fmt.Sprintf("; %s %s", generatorName, generatorVersion),
		fmt.Sprintf("; Generated: %s", clock().Format("2006-01-02 15:04:05")),
		fmt.Sprintf("; model printing time: %s", formatDuration(estimated)),
		fmt.Sprintf("; total layer number: %d", st.Layers),
	}
	if stats.LengthMM > 0 {
		lines = append(lines,
			fmt.Sprintf("; total filament length [mm]: %.2f", stats.LengthMM),
			fmt.Sprintf("; total filament volume [cm^3]: %.2f", stats.VolumeCM3),
			fmt.Sprintf("; total filament weight [g]: %.2f", stats.WeightG),
		)
	}
	lines = append(lines,
		fmt.Sprintf("; filament_density: %g", p.FilamentDensity),
		fmt.Sprintf("; filament_diameter: %g", p.FilamentDiameter),
		fmt.Sprintf("; filament_type: %s", p.FilamentType),
		fmt.Sprintf("; nozzle_diameter: %g", p.NozzleDiameter),
		fmt.Sprintf("; max_z_height: %g", p.MaxZ),
		"; HEADER_BLOCK_END",
		"",
	)
	return lines
}

// configBlock emits slicer settings as a sorted key/value comment block.
func (g *Generator) configBlock() []string {
	p := g.Profile
	relE := 0
	if p.RelativeE {
		relE = 1
	}
	entries := map[string]string{
		"curr_bed_type":            "Textured PEI Plate",
		"default_filament_profile": fmt.Sprintf("Generic %s", p.FilamentType),
		"filament_type":            p.FilamentType,
		"filament_vendor":          p.FilamentVendor,
		"nozzle_diameter":          fmt.Sprintf("%g", p.NozzleDiameter),
		"printer_model":            p.Name,
		"use_relative_e_distances": fmt.Sprintf("%d", relE),
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := []string{"; CONFIG_BLOCK_START"}
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("; %s = %s", k, entries[k]))
	}
	return append(lines, "; CONFIG_BLOCK_END", "")
}

// startingProcedure heats, homes, primes, and applies overrides.
func (g *Generator) startingProcedure() []string {
	p := g.Profile
	lines := []string{
		"; STARTING_PROCEDURE_START",
		fmt.Sprintf("M140 S%.0f ; set bed temp", p.BedTemp),
		"M104 S150 ; preheat nozzle",
		fmt.Sprintf("M190 S%.0f ; wait for bed temp", p.BedTemp),
		"M109 S150 ; wait for nozzle preheat",
		"G28 ; home all axes",
		"G90 ; absolute positioning",
		"G21 ; units millimeters",
	}
	if p.RelativeE {
		lines = append(lines, "M83 ; extruder relative mode")
	} else {
		lines = append(lines, "M82 ; extruder absolute mode")
	}
	if p.AuxFan {
		lines = append(lines, "M106 P2 S255 ; enable auxiliary fan")
	}
	lines = append(lines,
		fmt.Sprintf("M109 S%.0f ; wait for hotend temp", p.HotendTemp),
		"G92 E0 ; reset extruder",
		"G1 E50 F250 ; prime nozzle",
		"G92 E0 ; reset extruder",
		fmt.Sprintf("M220 S%d ; speed factor", p.SpeedFactor),
		fmt.Sprintf("M221 S%d ; flow factor", p.FlowFactor),
		"; STARTING_PROCEDURE_END",
		"",
	)
	return lines
}

// endingProcedure retracts, cools down, and releases the motors.
func (g *Generator) endingProcedure() []string {
	p := g.Profile
	lines := []string{
		"",
		"; ENDING_PROCEDURE_START",
		"M83 ; relative extrusion",
		fmt.Sprintf("G1 E-%.1f F%.0f ; retract", p.RetractionLength, p.RetractionSpeed),
		"G91 ; relative positioning",
		"G1 Z20 F8000 ; drop bed",
		"G90 ; absolute positioning",
		"M140 S0 ; bed off",
		"M104 S0 ; hotend off",
		"M106 S0 ; fan off",
	}
	if p.AuxFan {
		lines = append(lines, "M106 P2 S0 ; auxiliary fan off")
	}
	lines = append(lines,
		"M220 S100 ; reset speed factor",
		"M221 S100 ; reset flow factor",
		"M84 ; disable steppers",
		"; ENDING_PROCEDURE_END",
	)
	return lines
}
