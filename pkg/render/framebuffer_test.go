package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramebufferPixels(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	fb.Clear(ColorBlue)
	fb.SetPixel(1, 2, ColorRed)
	fb.SetPixel(10, 10, ColorRed) // ignored

	assert.Equal(t, ColorRed, fb.GetPixel(1, 2))
	assert.Equal(t, ColorBlue, fb.GetPixel(0, 0))
	assert.Zero(t, fb.GetPixel(-1, 0).A, "out of range reads are transparent")
}

func TestFramebufferDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           [][2]int
	}{
		{"horizontal", 0, 1, 3, 1, [][2]int{{0, 1}, {1, 1}, {2, 1}, {3, 1}}},
		{"vertical reversed", 2, 3, 2, 0, [][2]int{{2, 0}, {2, 1}, {2, 2}, {2, 3}}},
		{"diagonal", 0, 0, 3, 3, [][2]int{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"clipped", -2, 0, 1, 0, [][2]int{{0, 0}, {1, 0}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(4, 4)
			fb.DrawLine(tc.x0, tc.y0, tc.x1, tc.y1, ColorWhite)
			for _, p := range tc.want {
				assert.Equal(t, ColorWhite, fb.GetPixel(p[0], p[1]), "pixel %v", p)
			}
		})
	}
}

func TestFramebufferResize(t *testing.T) {
	fb := NewFramebuffer(10, 10)
	fb.Resize(4, 5)
	assert.Equal(t, 4, fb.Width)
	assert.Equal(t, 5, fb.Height)
	assert.Len(t, fb.Pixels, 20)

	fb.Resize(20, 20)
	assert.Len(t, fb.Pixels, 400)
}

func TestSavePNGScaled(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Clear(ColorBlack)
	fb.SetPixel(2, 1, ColorRed)

	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, fb.SavePNG(path, 4))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	b := img.Bounds()
	require.Equal(t, 12, b.Dx())
	require.Equal(t, 8, b.Dy())

	r, g, _, _ := img.At(11, 7).RGBA()
	assert.Equal(t, uint32(255), r>>8, "scaled corner pixel is red")
	assert.Zero(t, g)
	r, _, _, _ = img.At(7, 7).RGBA()
	assert.Zero(t, r, "pixel left of the red block is black")
}

func TestFramebufferDrawHalfBlocks(t *testing.T) {
	fb := NewFramebuffer(2, 4)
	fb.Clear(ColorBlack)
	fb.SetPixel(0, 0, ColorRed)  // row 0 top
	fb.SetPixel(0, 1, ColorBlue) // row 0 bottom
	fb.SetPixel(1, 3, ColorSky)  // row 1 bottom

	scr := uv.NewScreenBuffer(2, 2)
	fb.Draw(scr, uv.Rect(0, 0, 2, 2))

	tests := []struct {
		name   string
		x, y   int
		fg, bg Color
	}{
		{"top left", 0, 0, ColorRed, ColorBlue},
		{"bottom right", 1, 1, ColorBlack, ColorSky},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cell := scr.CellAt(tc.x, tc.y)
			require.NotNil(t, cell)
			require.Equal(t, "▀", cell.Content)
			assert.Equal(t, tc.fg, cell.Style.Fg)
			assert.Equal(t, tc.bg, cell.Style.Bg)
		})
	}
}

func TestMultiplyColor(t *testing.T) {
	tests := []struct {
		f    float64
		want Color
	}{
		{1, RGB(200, 100, 50)},
		{0.5, RGB(100, 50, 25)},
		{2, RGB(200, 100, 50)},
		{-1, RGB(0, 0, 0)},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, MultiplyColor(RGB(200, 100, 50), tc.f), "MultiplyColor(%v)", tc.f)
	}
}
