// Package mesh produces the placeholder plate geometry embedded in
// exported archives. The model document needs a mesh object for its
// build item; since the toolpath, not the mesh, is what prints, the
// placeholder is a box covering the toolpath's bounding volume,
// tessellated with the sdfx marching-cubes renderer.
package mesh

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/printforge/nodeslicer/pkg/toolpath"
)

// defaultCells controls marching cubes tessellation resolution. The
// placeholder is a box, so a coarse grid is plenty.
const defaultCells = 32

// Mesh is a triangle mesh in flat-array form: three floats per vertex,
// three indices per triangle.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Vertex returns the i-th vertex.
func (m *Mesh) Vertex(i int) (x, y, z float32) {
	return m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]
}

// Bounds computes the axis-aligned bounding box of all motion steps.
// ok is false when the sequence contains no positioned motion.
func Bounds(steps []toolpath.Step) (min, max [3]float64, ok bool) {
	extend := func(x, y, z float64) {
		if !ok {
			min = [3]float64{x, y, z}
			max = min
			ok = true
			return
		}
		for i, v := range [3]float64{x, y, z} {
			if v < min[i] {
				min[i] = v
			}
			if v > max[i] {
				max[i] = v
			}
		}
	}

	for _, s := range steps {
		switch m := s.(type) {
		case toolpath.Move:
			extend(m.X, m.Y, m.Z)
		case toolpath.ExtrudeMove:
			extend(m.X, m.Y, m.Z)
		}
	}
	return min, max, ok
}

// Plate builds the placeholder mesh for one build plate: a box spanning
// the toolpath bounds, or a small default slab when the toolpath has no
// motion. Degenerate extents are padded so the SDF stays well-defined.
func Plate(steps []toolpath.Step) (*Mesh, error) {
	min, max, ok := Bounds(steps)
	if !ok {
		min = [3]float64{0, 0, 0}
		max = [3]float64{10, 10, 0.2}
	}

	size := v3.Vec{
		X: pad(max[0] - min[0]),
		Y: pad(max[1] - min[1]),
		Z: pad(max[2] - min[2]),
	}

	box, err := sdf.Box3D(size, 0)
	if err != nil {
		return nil, fmt.Errorf("mesh: box: %w", err)
	}
	// Box3D centers at the origin; shift so the minimum corner lands on
	// the toolpath's minimum.
	shift := sdf.Translate3d(v3.Vec{
		X: min[0] + size.X/2,
		Y: min[1] + size.Y/2,
		Z: min[2] + size.Z/2,
	})
	solid := sdf.Transform3D(box, shift)

	renderer := render.NewMarchingCubesUniform(defaultCells)
	triangles := render.ToTriangles(solid, renderer)

	m := &Mesh{
		Vertices: make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
	}
	for i, tri := range triangles {
		for j := 0; j < 3; j++ {
			v := tri[j]
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m, nil
}

// pad keeps every box extent at least 1mm so flat toolpaths still
// produce a solid.
func pad(extent float64) float64 {
	if extent < 1 {
		return 1
	}
	return extent
}
