package render

import (
	"math"

	"github.com/taigrr/diorama/pkg/math3d"
)

// Camera is a perspective camera placed by an eye transform. The eye frame
// looks down its own -Z axis with +Y up; the view matrix is the inverse of
// the eye transform.
type Camera struct {
	// Projection parameters
	MinFOV float64 // smallest field of view on either axis, in radians
	Near   float64 // positive distance to the near plane
	Far    float64 // positive distance to the far plane

	eye    math3d.Mat4
	width  int
	height int
	fovY   float64

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	vpDirty        bool
}

// NewCamera creates a camera at the origin with a 60 degree minimum field of
// view and a 16:9 viewport.
func NewCamera() *Camera {
	c := &Camera{
		MinFOV: math3d.Radians(60),
		Near:   0.1,
		Far:    50,
		eye:    math3d.Identity(),
	}
	c.SetViewport(16, 9)
	c.viewDirty = true
	return c
}

// SetEye places the camera.
func (c *Camera) SetEye(eye math3d.Mat4) {
	if eye == c.eye {
		return
	}
	c.eye = eye
	c.viewDirty = true
}

// Eye returns the eye transform.
func (c *Camera) Eye() math3d.Mat4 {
	return c.eye
}

// Position returns the eye position in world space.
func (c *Camera) Position() math3d.Vec3 {
	return c.eye.Translation()
}

// SetViewport records the target size in pixels and updates the vertical
// field of view. On a viewport taller than it is wide the vertical FOV grows
// so the horizontal FOV stays at MinFOV.
func (c *Camera) SetViewport(width, height int) {
	c.width, c.height = max(width, 1), max(height, 1)
	c.updateFovY()
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping distances.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// SetMinFOV sets the minimum field of view (radians).
func (c *Camera) SetMinFOV(fov float64) {
	c.MinFOV = fov
	c.updateFovY()
	c.projDirty = true
}

// AspectRatio returns width / height of the viewport.
func (c *Camera) AspectRatio() float64 {
	return float64(c.width) / float64(c.height)
}

func (c *Camera) updateFovY() {
	if c.width >= c.height {
		c.fovY = c.MinFOV
		return
	}
	half := c.MinFOV / 2
	c.fovY = 2 * math.Atan2(math.Sin(half)*float64(c.height)/float64(c.width), math.Cos(half))
}

// ViewMatrix returns the world-to-eye matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = c.eye.Inverse()
		c.viewDirty = false
		c.vpDirty = true
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.fovY, c.AspectRatio(), c.Near, c.Far)
		c.projDirty = false
		c.vpDirty = true
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	proj, view := c.ProjectionMatrix(), c.ViewMatrix()
	if c.vpDirty {
		c.viewProjMatrix = proj.Mul(view)
		c.vpDirty = false
	}
	return c.viewProjMatrix
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	return x, y, ndc.Z, true
}
