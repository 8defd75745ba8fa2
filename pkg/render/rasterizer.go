package render

import (
	"math"

	"github.com/taigrr/diorama/pkg/math3d"
)

// Vertex is a world-space triangle corner.
type Vertex struct {
	Position math3d.Vec3
	Color    Color
}

// Triangle is a triangle to be rasterized, counter-clockwise when front
// facing.
type Triangle struct {
	V [3]Vertex
}

// MeshRenderer is the read-only view of a mesh the rasterizer needs.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with a local bounding box used
// for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// Rasterizer draws triangles and lines into a Framebuffer with a depth
// buffer, using the camera's view-projection.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64 // row-major, NDC depth

	frustum   Frustum
	frustumVP math3d.Mat4 // view-projection the frustum was extracted from
	hasFrust  bool

	CullingStats           CullingStats
	DisableBackfaceCulling bool

	// Lights are point light positions in world space. Diffuse terms of all
	// lights are summed with Ambient and clamped to 1.
	Lights  []math3d.Vec3
	Ambient float64
}

// CullingStats counts frustum culling decisions since the last reset.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
}

// NewRasterizer creates a rasterizer with two default lights.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:  camera,
		fb:      fb,
		Lights:  []math3d.Vec3{math3d.V3(2, 3, 14), math3d.V3(-2, -3, -5)},
		Ambient: 0.15,
	}
	r.Resize()
	return r
}

// Resize matches the depth buffer to the framebuffer size.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	if n := r.fb.Width * r.fb.Height; n <= cap(r.zbuffer) {
		r.zbuffer = r.zbuffer[:n]
	} else {
		r.zbuffer = make([]float64, n)
	}
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the depth buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	// copy doubling
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// Frustum returns the camera frustum, re-extracting it when the camera's
// view-projection changed.
func (r *Rasterizer) Frustum() Frustum {
	vp := r.camera.ViewProjectionMatrix()
	if !r.hasFrust || vp != r.frustumVP {
		r.frustum = NewFrustumFromMatrix(vp)
		r.frustumVP = vp
		r.hasFrust = true
	}
	return r.frustum
}

// ResetCullingStats resets the culling statistics (call once per frame).
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// IsVisible tests a world-space box against the frustum.
func (r *Rasterizer) IsVisible(worldBounds AABB) bool {
	return r.Frustum().IntersectAABB(worldBounds)
}

// culled reports whether a bounded mesh lies entirely outside the frustum
// under transform. Meshes without bounds are never culled.
func (r *Rasterizer) culled(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}

	r.CullingStats.MeshesTested++
	lo, hi := bounded.GetBounds()
	if !r.IsVisible(AABB{Min: lo, Max: hi}.Transform(transform)) {
		r.CullingStats.MeshesCulled++
		return true
	}
	r.CullingStats.MeshesDrawn++
	return false
}

// Shade returns base lit by the rasterizer's lights at a surface point with
// the given unit normal.
func (r *Rasterizer) Shade(pos, normal math3d.Vec3, base Color) Color {
	intensity := r.Ambient
	for _, l := range r.Lights {
		intensity += math.Max(0, normal.Dot(l.Sub(pos).Normalize()))
	}
	return MultiplyColor(base, intensity)
}

// DrawMesh renders a mesh with flat diffuse lighting. Normals go through the
// transform's normal matrix so non-uniform scale keeps them perpendicular.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	if r.culled(mesh, transform) {
		return
	}

	normalMat := transform.NormalMatrix()
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		p0, n := mesh.GetVertex(face[0])
		p1, _ := mesh.GetVertex(face[1])
		p2, _ := mesh.GetVertex(face[2])

		v0 := transform.MulVec3(p0)
		v1 := transform.MulVec3(p1)
		v2 := transform.MulVec3(p2)

		centroid := v0.Add(v1).Add(v2).Scale(1.0 / 3)
		lit := r.Shade(centroid, normalMat.MulVec3Dir(n).Normalize(), color)

		r.DrawTriangle(Triangle{V: [3]Vertex{
			{Position: v0, Color: lit},
			{Position: v1, Color: lit},
			{Position: v2, Color: lit},
		}})
	}
}

// DrawTriangle clips a world-space triangle against the near plane and
// rasterizes what remains.
func (r *Rasterizer) DrawTriangle(tri Triangle) {
	viewProj := r.camera.ViewProjectionMatrix()

	var in [3]clipVertex
	for i, v := range tri.V {
		in[i] = clipVertex{
			pos:   viewProj.MulVec4(math3d.V4FromV3(v.Position, 1)),
			color: v.Color,
		}
	}

	var buf [4]clipVertex
	poly := clipNear(in, buf[:0])
	for i := 1; i+1 < len(poly); i++ {
		r.fillTriangle(poly[0], poly[i], poly[i+1])
	}
}

// clipVertex is a vertex in clip space.
type clipVertex struct {
	pos   math3d.Vec4
	color Color
}

// nearDistance is the signed distance to the OpenGL near plane (z = -w).
func (v clipVertex) nearDistance() float64 {
	return v.pos.Z + v.pos.W
}

func lerpClip(a, b clipVertex, t float64) clipVertex {
	return clipVertex{
		pos: math3d.Vec4{
			X: a.pos.X + (b.pos.X-a.pos.X)*t,
			Y: a.pos.Y + (b.pos.Y-a.pos.Y)*t,
			Z: a.pos.Z + (b.pos.Z-a.pos.Z)*t,
			W: a.pos.W + (b.pos.W-a.pos.W)*t,
		},
		color: lerpColor(a.color, b.color, t),
	}
}

// clipNear clips a triangle against the near plane (Sutherland-Hodgman),
// appending the resulting convex polygon (0, 3 or 4 vertices) to out.
func clipNear(tri [3]clipVertex, out []clipVertex) []clipVertex {
	for i := range 3 {
		a, b := tri[i], tri[(i+1)%3]
		da, db := a.nearDistance(), b.nearDistance()
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, lerpClip(a, b, da/(da-db)))
		}
	}
	return out
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y  float64 // pixels, Y down
	Z     float64 // NDC depth
	Color Color
}

func (r *Rasterizer) toScreen(v clipVertex) screenVertex {
	ndc := v.pos.PerspectiveDivide()
	return screenVertex{
		X:     (ndc.X + 1) * 0.5 * float64(r.Width()),
		Y:     (1 - ndc.Y) * 0.5 * float64(r.Height()),
		Z:     ndc.Z,
		Color: v.color,
	}
}

// fillTriangle rasterizes a clipped triangle with incremental edge
// functions, interpolating depth and color.
func (r *Rasterizer) fillTriangle(a, b, c clipVertex) {
	sv := [3]screenVertex{r.toScreen(a), r.toScreen(b), r.toScreen(c)}

	// Counter-clockwise in NDC is clockwise on the Y-down screen, so front
	// faces have a negative cross product here.
	e1 := math3d.V2(sv[1].X-sv[0].X, sv[1].Y-sv[0].Y)
	e2 := math3d.V2(sv[2].X-sv[0].X, sv[2].Y-sv[0].Y)
	area2 := e1.Cross(e2)
	switch {
	case area2 == 0:
		return
	case area2 > 0 && !r.DisableBackfaceCulling:
		return
	case area2 < 0:
		sv[1], sv[2] = sv[2], sv[1]
		area2 = -area2
	}

	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	a0, b0, c0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	a1, b1, c1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	a2, b2, c2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)
	invArea := 1 / area2

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := edgeFunc(a0, b0, c0, px, py)
	w1Row := edgeFunc(a1, b1, c1, px, py)
	w2Row := edgeFunc(a2, b2, c2, px, py)

	width := r.Width()
	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		row := y * width

		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				bc := math3d.V3(w0*invArea, w1*invArea, w2*invArea)
				z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
				if z < r.zbuffer[row+x] {
					r.zbuffer[row+x] = z
					r.fb.Pixels[row+x] = interpolateColor3(sv[0].Color, sv[1].Color, sv[2].Color, bc)
				}
			}
			w0 += a0
			w1 += a1
			w2 += a2
		}
		w0Row += b0
		w1Row += b1
		w2Row += b2
	}
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C of the edge
// (x0, y0) -> (x1, y1). For a triangle with positive screen-space area the
// three edge functions are non-negative exactly on its interior.
func edgeCoeffs(x0, y0, x1, y1 float64) (a, b, c float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

func edgeFunc(a, b, c, x, y float64) float64 {
	return a*x + b*y + c
}

// interpolateColor3 blends three colors with barycentric weights.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	mix := func(a, b, c uint8) uint8 {
		return uint8(math3d.Clamp(float64(a)*bc.X+float64(b)*bc.Y+float64(c)*bc.Z+0.5, 0, 255))
	}
	return Color{
		R: mix(c0.R, c1.R, c2.R),
		G: mix(c0.G, c1.G, c2.G),
		B: mix(c0.B, c1.B, c2.B),
		A: 255,
	}
}

func lerpColor(a, b Color, t float64) Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math3d.Clamp(float64(x)+(float64(y)-float64(x))*t+0.5, 0, 255))
	}
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
