package kernel

import "github.com/chazu/blockmesh/pkg/collision"

// Mesh is a triangle mesh suitable for rendering or export.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, uvs has 2 floats per vertex, colors
// has one packed 0xAARRGGBB per vertex and indices has 3 uint32s per
// triangle.
type Mesh struct {
	Vertices  []float32       `json:"vertices"`
	Normals   []float32       `json:"normals"`
	UVs       []float32       `json:"uvs,omitempty"`
	Colors    []uint32        `json:"colors,omitempty"`
	Indices   []uint32        `json:"indices"`
	ModelName string          `json:"modelName"`
	Boxes     []collision.Box `json:"boxes,omitempty"` // collision boxes, when requested
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the bounding box of every vertex. ok is false for an
// empty mesh.
func (m *Mesh) Bounds() (min, max [3]float32, ok bool) {
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		for a := 0; a < 3; a++ {
			v := m.Vertices[i+a]
			if !ok || v < min[a] {
				min[a] = v
			}
			if !ok || v > max[a] {
				max[a] = v
			}
		}
		ok = true
	}
	return min, max, ok
}
