package render

import (
	"github.com/taigrr/diorama/pkg/geometry"
	"github.com/taigrr/diorama/pkg/scene"
)

// Renderer draws scene frames: the ground, a unit cube per cube node and an
// axis gizmo per pivot node.
type Renderer struct {
	Camera *Camera
	FB     *Framebuffer
	Raster *Rasterizer

	Cube   *geometry.Mesh
	Ground *geometry.Mesh

	Background Color
	Wireframe  bool    // draw cubes as edges only
	PivotSize  float64 // gizmo axis length in the pivot's frame
}

// NewRenderer creates a renderer for a width x height pixel target. The
// ground mesh is drawn under each frame's ground transform.
func NewRenderer(width, height int, ground *geometry.Mesh) *Renderer {
	fb := NewFramebuffer(width, height)
	cam := NewCamera()
	cam.SetViewport(width, height)
	return &Renderer{
		Camera:     cam,
		FB:         fb,
		Raster:     NewRasterizer(cam, fb),
		Cube:       geometry.MakeCube(1),
		Ground:     ground,
		Background: ColorBlack,
		PivotSize:  0.5,
	}
}

// Resize changes the pixel size of the target.
func (r *Renderer) Resize(width, height int) {
	r.FB.Resize(width, height)
	r.Raster.Resize()
	r.Camera.SetViewport(width, height)
}

// Render draws f into the framebuffer.
func (r *Renderer) Render(f scene.Frame) {
	r.Camera.SetEye(f.Eye)
	r.FB.Clear(r.Background)
	r.Raster.ClearDepth()
	r.Raster.ResetCullingStats()

	if r.Ground != nil {
		r.Raster.DrawMesh(r.Ground, f.Ground.World, f.Ground.Color.ToRGBA())
	}

	for _, item := range f.Items {
		color := item.Color.ToRGBA()
		switch item.Shape {
		case scene.ShapePivot:
			if item.Selected {
				r.Raster.DrawMeshWireframe(r.Cube, item.World, color)
			}
			r.Raster.DrawAxes(item.World, r.PivotSize)
		default:
			if r.Wireframe {
				r.Raster.DrawMeshWireframe(r.Cube, item.World, color)
			} else {
				r.Raster.DrawMesh(r.Cube, item.World, color)
			}
		}
	}
}
