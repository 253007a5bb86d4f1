package kernel

import "github.com/chazu/nodal/pkg/graph"

// Mesh is a triangle mesh. All arrays are flat: vertices has 3 floats per
// vertex (x,y,z), normals has 3 floats per vertex, indices has 3 uint32s
// per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // node that produced the solid
}

var _ graph.Geometry = (*Mesh)(nil)

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

// Points returns the distinct vertices projected onto the XY plane, in
// first-seen order. This is the mesh's plan view.
func (m *Mesh) Points() []graph.Point {
	seen := make(map[graph.Point]bool)
	var pts []graph.Point
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		p := graph.Point{X: float64(m.Vertices[i]), Y: float64(m.Vertices[i+1])}
		if !seen[p] {
			seen[p] = true
			pts = append(pts, p)
		}
	}
	return pts
}
