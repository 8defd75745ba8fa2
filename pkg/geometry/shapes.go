package geometry

import (
	"github.com/taigrr/diorama/pkg/math3d"
)

// MakeCube returns an axis-aligned cube of the given edge length centered on
// the origin. Each face has its own four vertices so normals stay flat.
func MakeCube(size float64) *Mesh {
	h := size / 2
	c := [8]math3d.Vec3{
		{X: -h, Y: -h, Z: -h}, // 0: left-bottom-back
		{X: h, Y: -h, Z: -h},  // 1: right-bottom-back
		{X: h, Y: h, Z: -h},   // 2: right-top-back
		{X: -h, Y: h, Z: -h},  // 3: left-top-back
		{X: -h, Y: -h, Z: h},  // 4: left-bottom-front
		{X: h, Y: -h, Z: h},   // 5: right-bottom-front
		{X: h, Y: h, Z: h},    // 6: right-top-front
		{X: -h, Y: h, Z: h},   // 7: left-top-front
	}
	faces := [6][4]int{
		{3, 2, 1, 0}, // Back   (-Z)
		{6, 7, 4, 5}, // Front  (+Z)
		{7, 3, 0, 4}, // Left   (-X)
		{2, 6, 5, 1}, // Right  (+X)
		{7, 6, 2, 3}, // Top    (+Y)
		{0, 1, 5, 4}, // Bottom (-Y)
	}

	m := NewMesh("cube")
	for _, f := range faces {
		m.AddQuad(c[f[0]], c[f[1]], c[f[2]], c[f[3]])
	}
	m.CalculateNormals()
	m.CalculateBounds()
	return m
}

// MakeGround returns a horizontal square facing +Y at height y, spanning
// [-halfSize, halfSize] on X and Z, split into divisions x divisions quads.
// Smaller triangles keep near-plane clipping and per-vertex lighting accurate
// when the camera sits close to the plane.
func MakeGround(halfSize, y float64, divisions int) *Mesh {
	divisions = max(divisions, 1)
	step := 2 * halfSize / float64(divisions)

	m := NewMesh("ground")
	for i := range divisions {
		x0 := -halfSize + float64(i)*step
		x1 := x0 + step
		for j := range divisions {
			z0 := -halfSize + float64(j)*step
			z1 := z0 + step
			m.AddQuad(
				math3d.V3(x0, y, z0),
				math3d.V3(x0, y, z1),
				math3d.V3(x1, y, z1),
				math3d.V3(x1, y, z0),
			)
		}
	}
	m.CalculateNormals()
	m.CalculateBounds()
	return m
}
