// Package compiler is the pipeline facade: validate a node graph,
// linearize and lower it to toolpath steps, render instruction text,
// and package the result into a printable archive.
package compiler

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/printforge/nodeslicer/pkg/convert"
	"github.com/printforge/nodeslicer/pkg/gcode"
	"github.com/printforge/nodeslicer/pkg/graph"
	"github.com/printforge/nodeslicer/pkg/mesh"
	"github.com/printforge/nodeslicer/pkg/nodes"
	"github.com/printforge/nodeslicer/pkg/preview"
	"github.com/printforge/nodeslicer/pkg/threemf"
	"github.com/printforge/nodeslicer/pkg/toolpath"
)

// CompileError wraps a stage failure with the stage that produced it.
type CompileError struct {
	Stage string
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile: %s: %v", e.Stage, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// ValidationError is returned when a graph fails validation. It
// carries the full result so callers can present every finding.
type ValidationError struct {
	Result graph.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d error(s), %d warning(s)",
		len(e.Result.Errors), len(e.Result.Warnings))
}

// Artifact is the output of a successful compilation.
type Artifact struct {
	Order      []graph.NodeID
	Steps      []toolpath.Step
	GCode      string
	Stats      gcode.FilamentStats
	LayerCount int
	Estimated  time.Duration
	Findings   graph.ValidationResult
}

// Compiler runs the pipeline against a fixed registry, device profile,
// and export configuration. Zero-value dependencies fall back to the
// builtin registry, the default profile, and slog.Default.
type Compiler struct {
	registry *nodes.Registry
	profile  gcode.DeviceProfile
	export   threemf.ExportConfig
	log      *slog.Logger

	// Clock is forwarded to the instruction generator so exports can be
	// made byte-stable in tests. Nil means time.Now.
	Clock func() time.Time
}

// New creates a compiler. reg may be nil for the builtin registry,
// logger may be nil for slog.Default.
func New(reg *nodes.Registry, profile gcode.DeviceProfile, export threemf.ExportConfig, logger *slog.Logger) *Compiler {
	if reg == nil {
		reg = nodes.Builtin()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{registry: reg, profile: profile, export: export, log: logger}
}

// Registry returns the node registry the compiler validates against.
func (c *Compiler) Registry() *nodes.Registry { return c.registry }

// Validate checks the graph and returns every finding. It never blocks
// on severity; callers decide what errors and warnings mean for them.
func (c *Compiler) Validate(g *graph.Graph) graph.ValidationResult {
	res := graph.Validate(g, c.registry)
	c.log.Debug("validated graph",
		"nodes", g.NodeCount(),
		"errors", len(res.Errors),
		"warnings", len(res.Warnings))
	return res
}

// Compile validates, linearizes, lowers, and renders the graph.
// Validation errors block compilation; warnings pass through on the
// artifact.
func (c *Compiler) Compile(g *graph.Graph) (*Artifact, error) {
	res := c.Validate(g)
	if !res.OK() {
		return nil, &CompileError{Stage: "validate", Err: &ValidationError{Result: res}}
	}
	return c.compile(g, res)
}

// compile runs the post-validation stages.
func (c *Compiler) compile(g *graph.Graph, res graph.ValidationResult) (*Artifact, error) {
	order, err := graph.Linearize(g, c.registry)
	if err != nil {
		return nil, &CompileError{Stage: "linearize", Err: err}
	}
	c.log.Debug("linearized graph", "order", len(order))

	steps, err := convert.Convert(g, order, c.registry)
	if err != nil {
		return nil, &CompileError{Stage: "lower", Err: err}
	}

	gen := gcode.NewGenerator(c.profile)
	gen.Clock = c.Clock
	out, err := gen.Generate(steps)
	if err != nil {
		return nil, &CompileError{Stage: "emit", Err: err}
	}
	c.log.Debug("generated instructions",
		"lines", len(out.Lines), "layers", out.LayerCount)

	return &Artifact{
		Order:      order,
		Steps:      steps,
		GCode:      out.Text(),
		Stats:      out.Stats,
		LayerCount: out.LayerCount,
		Estimated:  out.Estimated,
		Findings:   res,
	}, nil
}

// Export compiles the graph and packages the result as a 3MF archive.
// Unlike Compile, warnings also block: an export must come from a graph
// with no findings at all.
func (c *Compiler) Export(g *graph.Graph) ([]byte, error) {
	res := c.Validate(g)
	if !res.Clean() {
		return nil, &CompileError{Stage: "validate", Err: &ValidationError{Result: res}}
	}

	art, err := c.compile(g, res)
	if err != nil {
		return nil, err
	}

	plateMesh, err := mesh.Plate(art.Steps)
	if err != nil {
		return nil, &CompileError{Stage: "mesh", Err: err}
	}

	thumb, err := preview.Render(art.Steps, preview.SizePlate)
	if err != nil {
		return nil, &CompileError{Stage: "preview", Err: err}
	}
	thumbSmall, err := preview.Render(art.Steps, preview.SizePlateSmall)
	if err != nil {
		return nil, &CompileError{Stage: "preview", Err: err}
	}
	pick, err := preview.Render(art.Steps, preview.SizePick)
	if err != nil {
		return nil, &CompileError{Stage: "preview", Err: err}
	}

	plate := threemf.Plate{
		Number:            1,
		GCode:             []byte(art.GCode),
		Thumbnail:         thumb,
		ThumbnailSmall:    thumbSmall,
		Pick:              pick,
		PredictionSeconds: int(art.Estimated.Seconds()),
		WeightG:           art.Stats.WeightG,
		FilamentUsedM:     art.Stats.LengthMM / 1000,
	}

	archive, err := threemf.Build(c.export, plateMesh, plate)
	if err != nil {
		return nil, &CompileError{Stage: "package", Err: err}
	}

	var buf bytes.Buffer
	if err := archive.Write(&buf); err != nil {
		return nil, &CompileError{Stage: "package", Err: err}
	}
	c.log.Debug("packaged archive", "bytes", buf.Len(), "parts", archive.Manifest.Len())
	return buf.Bytes(), nil
}
