package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/diorama/internal/config"
	"github.com/taigrr/diorama/internal/logging"
	"github.com/taigrr/diorama/pkg/scene"
	"github.com/taigrr/diorama/pkg/scenefile"
)

var (
	keySpace     = uv.KeyPressEvent{Code: uv.KeySpace, Text: " "}
	keyBackspace = uv.KeyPressEvent{Code: uv.KeyBackspace}
	keyR         = uv.KeyPressEvent{Code: 'r', Text: "r"}
	keyX         = uv.KeyPressEvent{Code: 'x', Text: "x"}
	keyP         = uv.KeyPressEvent{Code: 'p', Text: "p"}
	keyHelp      = uv.KeyPressEvent{Code: '?', Text: "?"}
	keyEsc       = uv.KeyPressEvent{Code: uv.KeyEscape}
)

func newTestViewer(t *testing.T, source string) *viewer {
	t.Helper()
	cfg := config.Default()
	cfg.Screenshot.Dir = t.TempDir()
	cfg.Screenshot.Scale = 2

	s := scenefile.DefaultScene()
	if source != "" {
		var err error
		s, err = scenefile.Open(source)
		require.NoError(t, err)
	}
	v := newViewer(cfg, s, source, logging.Discard())
	v.resize(40, 20)
	return v
}

func press(t *testing.T, v *viewer, keys ...uv.KeyPressEvent) {
	t.Helper()
	for _, k := range keys {
		quit, err := v.handleKey(k)
		require.NoError(t, err, "handleKey(%v)", k)
		require.False(t, quit, "handleKey(%v) quit", k)
	}
}

func rowText(scr uv.Screen, y, width int) string {
	var b strings.Builder
	for x := range width {
		if c := scr.CellAt(x, y); c != nil {
			b.WriteString(c.Content)
		}
	}
	return b.String()
}

func TestViewerSelectAndRotate(t *testing.T) {
	v := newTestViewer(t, "")

	for range 10 {
		press(t, v, keySpace)
	}
	sel := v.driver.Selected()
	require.NotNil(t, sel)
	require.Equal(t, "seat", sel.Name())

	before := sel.Local()
	press(t, v, keyR)
	assert.NotEqual(t, before, sel.Local(), "rotate key did not change the selected node")
}

func TestViewerToggles(t *testing.T) {
	v := newTestViewer(t, "")

	press(t, v, keyX)
	assert.True(t, v.renderer.Wireframe, "x enables wireframe")
	press(t, v, keyHelp)
	assert.False(t, v.hud.visible, "? hides the HUD")

	quit, err := v.handleKey(keyEsc)
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestViewerRenderAndDraw(t *testing.T) {
	v := newTestViewer(t, "")
	press(t, v, keySpace)

	require.NoError(t, v.render(time.Now()))
	require.Equal(t, 40, v.renderer.FB.Width)
	require.Equal(t, 40, v.renderer.FB.Height)

	scr := uv.NewScreenBuffer(40, 20)
	v.Draw(scr, scr.Bounds())

	assert.Contains(t, rowText(scr, 0, 40), "FPS")
	assert.Contains(t, rowText(scr, 19, 40), "selected: chair")
	cell := scr.CellAt(20, 10)
	require.NotNil(t, cell)
	assert.Equal(t, "▀", cell.Content)
}

func TestViewerMarksSelection(t *testing.T) {
	v := newTestViewer(t, "")
	press(t, v, keySpace)
	require.NoError(t, v.render(time.Now()))

	// The chair pivot sits at the origin, a quarter unit below the eye, so it
	// projects to the middle column just under the middle row.
	require.NotNil(t, v.hud.marker)
	assert.Equal(t, marker{name: "chair", col: 20, row: 11}, *v.hud.marker)

	scr := uv.NewScreenBuffer(40, 20)
	v.Draw(scr, scr.Bounds())
	assert.Contains(t, rowText(scr, 11, 40), "◆ chair")

	press(t, v, keyBackspace)
	require.NoError(t, v.render(time.Now()))
	assert.Nil(t, v.hud.marker, "cleared selection keeps a marker")
}

func TestViewerScreenshot(t *testing.T) {
	v := newTestViewer(t, "")
	require.NoError(t, v.render(time.Now()))
	press(t, v, keyP)

	matches, err := filepath.Glob(filepath.Join(v.cfg.Screenshot.Dir, "diorama-*.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.True(t, strings.HasPrefix(v.hud.status, "saved diorama-"), "status = %q", v.hud.status)
}

func TestViewerReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, scenefile.DefaultSource(), 0o644))
	v := newTestViewer(t, path)
	seat, _ := v.driver.Scene().Lookup("seat")
	require.NoError(t, v.driver.Select(seat))

	require.NoError(t, os.WriteFile(path, []byte("[[node]\n"), 0o644))
	v.reload()
	assert.Equal(t, 12, v.driver.Scene().Len(), "bad file replaced the scene")
	assert.True(t, strings.HasPrefix(v.hud.status, "reload failed"), "status = %q", v.hud.status)

	s := scene.New()
	s.MustAdd(scene.NodeSpec{Name: "seat", Color: scene.RGB(0, 0, 1)})
	var buf bytes.Buffer
	require.NoError(t, scenefile.Encode(&buf, s))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	v.reload()
	require.Equal(t, 1, v.driver.Scene().Len())
	sel := v.driver.Selected()
	require.NotNil(t, sel, "selection not kept across reload")
	assert.Equal(t, "seat", sel.Name())
}
