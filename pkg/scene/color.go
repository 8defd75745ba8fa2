package scene

import (
	"fmt"
	"image/color"

	"github.com/taigrr/diorama/pkg/math3d"
)

// Color is a linear RGB triple with components in [0, 1].
type Color struct {
	R, G, B float64
}

// RGB creates a Color.
func RGB(r, g, b float64) Color {
	return Color{r, g, b}
}

// ColorFromArray converts a [3]float64 (as found in scene files) to a Color.
func ColorFromArray(a [3]float64) Color {
	return Color{a[0], a[1], a[2]}
}

// Array returns the components as a [3]float64.
func (c Color) Array() [3]float64 {
	return [3]float64{c.R, c.G, c.B}
}

// ToRGBA converts to an opaque 8-bit color, clamping out-of-range components.
func (c Color) ToRGBA() color.RGBA {
	to8 := func(v float64) uint8 {
		return uint8(math3d.Clamp(v, 0, 1)*255 + 0.5)
	}
	return color.RGBA{to8(c.R), to8(c.G), to8(c.B), 255}
}

// Lerp blends from c toward o by t. t = 0 gives c and t = 1 gives o exactly.
func (c Color) Lerp(o Color, t float64) Color {
	s := 1 - t
	return Color{
		c.R*s + o.R*t,
		c.G*s + o.G*t,
		c.B*s + o.B*t,
	}
}

func (c Color) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", c.R, c.G, c.B)
}
