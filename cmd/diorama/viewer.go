package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/google/uuid"

	"github.com/taigrr/diorama/internal/config"
	"github.com/taigrr/diorama/pkg/geometry"
	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/render"
	"github.com/taigrr/diorama/pkg/scene"
	"github.com/taigrr/diorama/pkg/scenefile"
)

// viewer holds everything the terminal loop drives. All methods run on the
// loop goroutine.
type viewer struct {
	cfg      config.Config
	log      *log.Logger
	driver   *scene.Driver
	renderer *render.Renderer
	hud      *hud
	pulse    *pulse
	source   string // scene file, empty for the built-in chair
}

func newViewer(cfg config.Config, s *scene.Scene, source string, logger *log.Logger) *viewer {
	r := render.NewRenderer(1, 2, geometry.MakeGround(cfg.Ground.HalfSize, cfg.Ground.Height, cfg.Ground.Divisions))
	r.Background = scene.ColorFromArray(cfg.Background).ToRGBA()
	r.Raster.Lights = cfg.LightPositions()
	r.Raster.Ambient = cfg.Ambient
	r.Camera.SetMinFOV(math3d.Radians(cfg.Camera.MinFOV))
	r.Camera.SetClipPlanes(cfg.Camera.Near, cfg.Camera.Far)

	title := "chair"
	if source != "" {
		title = filepath.Base(source)
	}
	v := &viewer{
		cfg:      cfg,
		log:      logger,
		driver:   scene.NewDriver(s, cfg.Options()),
		renderer: r,
		hud:      newHUD(title, time.Now()),
		source:   source,
	}
	if cfg.Pulse {
		v.pulse = newPulse(cfg.FPS)
	}
	return v
}

// resize fits the framebuffer to a terminal of cols x rows cells. Each cell
// shows two pixels stacked vertically.
func (v *viewer) resize(cols, rows int) {
	v.renderer.Resize(max(cols, 1), max(rows*2, 2))
	v.log.Debug("resize", "cols", cols, "rows", rows)
}

// handleKey applies one key press. It reports whether the viewer should quit.
func (v *viewer) handleKey(ev uv.KeyPressEvent) (bool, error) {
	cmd, action := keyCommand(ev)
	v.log.Debug("key", "key", ev.String(), "command", cmd, "action", action)

	switch action {
	case uiQuit:
		return true, nil
	case uiToggleWireframe:
		v.renderer.Wireframe = !v.renderer.Wireframe
		return false, nil
	case uiToggleHUD:
		v.hud.visible = !v.hud.visible
		return false, nil
	case uiScreenshot:
		path, err := v.screenshot()
		if err != nil {
			v.log.Error("screenshot", "err", err)
			v.hud.setStatus("screenshot failed: %v", err)
			return false, nil
		}
		v.log.Info("screenshot", "path", path)
		v.hud.setStatus("saved %s", filepath.Base(path))
		return false, nil
	}
	if cmd == scene.CmdNone {
		return false, nil
	}

	before := v.driver.State().Selected
	if err := v.driver.Apply(cmd); err != nil {
		return false, err
	}
	if sel := v.driver.State().Selected; sel != before {
		if v.pulse != nil {
			v.pulse.Reset()
		}
		if n := v.driver.Selected(); n != nil {
			v.log.Debug("selected", "node", n.Name(), "handle", sel)
		}
	}
	return false, nil
}

// render draws the current frame into the framebuffer.
func (v *viewer) render(now time.Time) error {
	f, err := v.driver.Frame()
	if err != nil {
		return err
	}
	if v.pulse != nil {
		level := v.pulse.Update()
		for i := range f.Items {
			if f.Items[i].Selected {
				f.Items[i].Color = f.Items[i].Base.Lerp(f.Items[i].Color, level)
			}
		}
	}
	v.renderer.Render(f)
	v.hud.marker = v.selectionMarker(f)
	v.hud.tick(now)
	return nil
}

// selectionMarker projects the selected node's origin onto a terminal cell.
// It returns nil when nothing is selected or the origin is off screen.
func (v *viewer) selectionMarker(f scene.Frame) *marker {
	fb := v.renderer.FB
	for _, item := range f.Items {
		if !item.Selected {
			continue
		}
		x, y, _, ok := v.renderer.Camera.WorldToScreen(item.World.Translation(), fb.Width, fb.Height)
		if !ok {
			return nil
		}
		return &marker{name: item.Name, col: int(x), row: int(y) / 2}
	}
	return nil
}

// Draw implements uv.Drawable.
func (v *viewer) Draw(scr uv.Screen, area uv.Rectangle) {
	v.renderer.FB.Draw(scr, area)
	v.hud.draw(scr, area, v.driver, v.renderer.Wireframe)
}

// screenshot saves the framebuffer as a PNG with a unique name.
func (v *viewer) screenshot() (string, error) {
	dir := v.cfg.Screenshot.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	path := filepath.Join(dir, "diorama-"+uuid.NewString()+".png")
	if err := v.renderer.FB.SavePNG(path, v.cfg.Screenshot.Scale); err != nil {
		return "", err
	}
	return path, nil
}

// reload replaces the scene with the current contents of the source file.
// A file that fails to load leaves the current scene in place.
func (v *viewer) reload() {
	if v.source == "" {
		return
	}
	s, err := scenefile.Open(v.source)
	if err != nil {
		v.log.Warn("reload failed", "path", v.source, "err", err)
		v.hud.setStatus("reload failed: %v", err)
		return
	}
	v.driver.Replace(s)
	v.log.Info("reloaded", "path", v.source, "nodes", s.Len())
	v.hud.setStatus("reloaded %s", filepath.Base(v.source))
}

// run owns the terminal until ctx is done or the user quits. Terminal input
// and file watching arrive over channels; everything else happens here.
func (v *viewer) run(ctx context.Context, watch bool) error {
	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			v.log.Error("shutdown terminal", "err", err)
		}
	}()
	term.EnterAltScreen()
	term.HideCursor()
	if err := term.Resize(width, height); err != nil {
		return fmt.Errorf("resize terminal: %w", err)
	}
	v.resize(width, height)

	var (
		changed <-chan struct{}
		werrs   <-chan error
	)
	if watch && v.source != "" {
		w, err := scenefile.Watch(v.source)
		if err != nil {
			return err
		}
		defer w.Close()
		changed, werrs = w.Changed(), w.Errors()
		v.log.Info("watching", "path", w.Path())
	}

	ticker := time.NewTicker(time.Second / time.Duration(v.cfg.FPS))
	defer ticker.Stop()

	events := term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				term.Erase()
				if err := term.Resize(ev.Width, ev.Height); err != nil {
					return fmt.Errorf("resize terminal: %w", err)
				}
				v.resize(ev.Width, ev.Height)
			case uv.KeyPressEvent:
				quit, err := v.handleKey(ev)
				if err != nil {
					return err
				}
				if quit {
					return nil
				}
			}

		case <-changed:
			v.reload()

		case err := <-werrs:
			v.log.Warn("watch", "err", err)

		case now := <-ticker.C:
			if err := v.render(now); err != nil {
				return err
			}
			term.Draw(v)
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
