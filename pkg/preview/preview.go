// Package preview renders toolpath thumbnails for exported archives.
// The toolpath is projected onto the XY plane: extrusion moves are
// drawn as solid strokes, travel moves as faint ones.
package preview

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"github.com/printforge/nodeslicer/pkg/toolpath"
)

// Thumbnail sizes expected by the archive layout, in pixels (square).
const (
	SizePlate      = 256
	SizePlateSmall = 64
	SizePick       = 128
)

// margin is the fraction of the canvas left blank around the toolpath.
const margin = 0.1

type point struct {
	x, y    float64
	extrude bool
}

// Render draws the toolpath as a size x size PNG. A toolpath with no
// motion yields a plain placeholder image.
func Render(steps []toolpath.Step, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("preview: invalid size %d", size)
	}

	pts := project(steps)

	dc := gg.NewContext(size, size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if len(pts) >= 2 {
		drawPath(dc, pts, size)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("preview: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// project flattens motion steps onto the XY plane, tagging each segment
// endpoint with whether the segment into it extrudes.
func project(steps []toolpath.Step) []point {
	var pts []point
	for _, s := range steps {
		switch m := s.(type) {
		case toolpath.Move:
			pts = append(pts, point{x: m.X, y: m.Y})
		case toolpath.ExtrudeMove:
			pts = append(pts, point{x: m.X, y: m.Y, extrude: true})
		case toolpath.Home:
			pts = append(pts, point{x: 0, y: 0})
		}
	}
	return pts
}

func drawPath(dc *gg.Context, pts []point, size int) {
	minX, minY := pts[0].x, pts[0].y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		if p.x < minX {
			minX = p.x
		}
		if p.x > maxX {
			maxX = p.x
		}
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
		}
	}

	spanX := maxX - minX
	spanY := maxY - minY
	span := spanX
	if spanY > span {
		span = spanY
	}
	if span == 0 {
		span = 1
	}

	usable := float64(size) * (1 - 2*margin)
	scale := usable / span
	offX := (float64(size) - spanX*scale) / 2
	offY := (float64(size) - spanY*scale) / 2

	// Image Y grows downward, machine Y grows upward.
	toCanvas := func(p point) (float64, float64) {
		return offX + (p.x-minX)*scale, float64(size) - (offY + (p.y-minY)*scale)
	}

	for i := 1; i < len(pts); i++ {
		x0, y0 := toCanvas(pts[i-1])
		x1, y1 := toCanvas(pts[i])
		if pts[i].extrude {
			dc.SetRGB(0.1, 0.4, 0.1)
			dc.SetLineWidth(2)
		} else {
			dc.SetRGB(0.8, 0.8, 0.8)
			dc.SetLineWidth(1)
		}
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()
	}
}
