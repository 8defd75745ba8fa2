// Package geometry builds the CPU-side meshes the viewer draws: the unit cube
// every scene node is rendered with, and the tessellated ground plane.
package geometry

import (
	"github.com/taigrr/diorama/pkg/math3d"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Faces    [][3]int // counter-clockwise when seen from the front

	// Bounding box (updated by CalculateBounds)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Vertex holds the attributes of one mesh vertex.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// AddQuad appends four vertices and the two triangles (a, b, c) and (a, c, d).
// The corners must be given counter-clockwise as seen from the front.
func (m *Mesh) AddQuad(a, b, c, d math3d.Vec3) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices,
		Vertex{Position: a},
		Vertex{Position: b},
		Vertex{Position: c},
		Vertex{Position: d},
	)
	m.Faces = append(m.Faces,
		[3]int{base, base + 1, base + 2},
		[3]int{base, base + 2, base + 3},
	)
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// CalculateNormals assigns every vertex the normal of the face that uses it.
// Meshes built with AddQuad do not share vertices between faces, so the
// result is flat shading.
func (m *Mesh) CalculateNormals() {
	for _, f := range m.Faces {
		v0 := m.Vertices[f[0]].Position
		v1 := m.Vertices[f[1]].Position
		v2 := m.Vertices[f[2]].Position

		normal := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		m.Vertices[f[0]].Normal = normal
		m.Vertices[f[1]].Normal = normal
		m.Vertices[f[2]].Normal = normal
	}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// GetVertex returns the position and normal of vertex i.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3) {
	v := m.Vertices[i]
	return v.Position, v.Normal
}

// GetFace returns the vertex indices of face i.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i]
}

// GetBounds returns the axis-aligned bounding box.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}
