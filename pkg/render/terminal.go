package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw implements uv.Drawable. Terminal row r shows framebuffer rows 2r
// (foreground of ▀) and 2r+1 (background).
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, botY)),
				},
			})
		}
	}
}

// rgbaToColor maps fully transparent pixels to the terminal default.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorRed   = color.RGBA{255, 0, 0, 255}
	ColorGreen = color.RGBA{0, 255, 0, 255}
	ColorBlue  = color.RGBA{0, 0, 255, 255}
	ColorSky   = color.RGBA{135, 206, 235, 255}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// MultiplyColor scales the RGB channels by f (clamped to [0, 1]) and keeps
// alpha.
func MultiplyColor(c color.RGBA, f float64) color.RGBA {
	f = min(max(f, 0), 1)
	return color.RGBA{
		uint8(float64(c.R)*f + 0.5),
		uint8(float64(c.G)*f + 0.5),
		uint8(float64(c.B)*f + 0.5),
		c.A,
	}
}
