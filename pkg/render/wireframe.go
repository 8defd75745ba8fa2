package render

import (
	"github.com/taigrr/diorama/pkg/math3d"
)

// DrawLine3D draws a world-space line segment without depth testing. The
// segment is clipped against the near plane before projection.
func (r *Rasterizer) DrawLine3D(p0, p1 math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()
	a := clipVertex{pos: viewProj.MulVec4(math3d.V4FromV3(p0, 1)), color: color}
	b := clipVertex{pos: viewProj.MulVec4(math3d.V4FromV3(p1, 1)), color: color}

	da, db := a.nearDistance(), b.nearDistance()
	switch {
	case da < 0 && db < 0:
		return
	case da < 0:
		a = lerpClip(a, b, da/(da-db))
	case db < 0:
		b = lerpClip(a, b, da/(da-db))
	}

	sa, sb := r.toScreen(a), r.toScreen(b)
	r.fb.DrawLine(int(sa.X), int(sa.Y), int(sb.X), int(sb.Y), color)
}

// DrawMeshWireframe draws every triangle edge of a mesh.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	if r.culled(mesh, transform) {
		return
	}

	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		var v [3]math3d.Vec3
		for k, idx := range face {
			p, _ := mesh.GetVertex(idx)
			v[k] = transform.MulVec3(p)
		}
		r.DrawLine3D(v[0], v[1], color)
		r.DrawLine3D(v[1], v[2], color)
		r.DrawLine3D(v[2], v[0], color)
	}
}

// DrawAxes draws the X, Y and Z axes of a frame (red, green, blue) from its
// origin, each length units long in the frame's own coordinates.
func (r *Rasterizer) DrawAxes(transform math3d.Mat4, length float64) {
	origin := transform.MulVec3(math3d.Zero3())
	r.DrawLine3D(origin, transform.MulVec3(math3d.V3(length, 0, 0)), ColorRed)
	r.DrawLine3D(origin, transform.MulVec3(math3d.V3(0, length, 0)), ColorGreen)
	r.DrawLine3D(origin, transform.MulVec3(math3d.V3(0, 0, length)), ColorBlue)
}
