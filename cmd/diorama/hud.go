package main

import (
	"fmt"
	"time"
	"unicode/utf8"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/diorama/pkg/scene"
)

const (
	ansiReset   = "\x1b[0m"
	ansiBold    = "\x1b[1m"
	ansiBgBlack = "\x1b[40m"
	ansiFgWhite = "\x1b[97m"
	ansiFgGreen = "\x1b[92m"
	ansiFgCyan  = "\x1b[96m"
	ansiFgYell  = "\x1b[93m"
)

// marker labels the selected node at its projected origin.
type marker struct {
	name     string
	col, row int
}

// hud is the text overlay on the first and last terminal rows, plus the
// selection marker.
type hud struct {
	title   string
	visible bool
	status  string
	marker  *marker

	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func newHUD(title string, now time.Time) *hud {
	return &hud{title: title, visible: true, fpsTime: now}
}

// tick counts a rendered frame.
func (h *hud) tick(now time.Time) {
	h.fpsFrames++
	if elapsed := now.Sub(h.fpsTime); elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = now
	}
}

// setStatus shows msg on the bottom row until the next status.
func (h *hud) setStatus(format string, args ...any) {
	h.status = fmt.Sprintf(format, args...)
}

func (h *hud) topLine(nodes int) string {
	return fmt.Sprintf("%s%s %.0f FPS %s%s%s %s %s%s%s %d nodes %s",
		ansiBgBlack, ansiFgGreen, h.fps, ansiReset,
		ansiBold+ansiBgBlack, ansiFgWhite, h.title, ansiReset,
		ansiBgBlack, ansiFgCyan, nodes, ansiReset)
}

func (h *hud) bottomLine(sel *scene.Node, wireframe bool) string {
	selected := "none"
	if sel != nil {
		selected = fmt.Sprintf("%s %s", sel.Name(), sel.Color())
	}
	check := "[ ]"
	if wireframe {
		check = "[x]"
	}
	line := fmt.Sprintf("%s%s selected: %s  %s wireframe %s",
		ansiBgBlack, ansiFgWhite, selected, check, ansiReset)
	if h.status != "" {
		line += fmt.Sprintf("%s%s %s %s", ansiBgBlack, ansiFgYell, h.status, ansiReset)
	}
	return line
}

// draw renders the overlay. The status line stays visible when the rest of
// the HUD is hidden.
func (h *hud) draw(scr uv.Screen, area uv.Rectangle, d *scene.Driver, wireframe bool) {
	if area.Dy() < 1 {
		return
	}
	bottom := uv.Rect(area.Min.X, area.Max.Y-1, area.Dx(), 1)
	if !h.visible {
		if h.status != "" {
			uv.NewStyledString(fmt.Sprintf("%s%s %s %s", ansiBgBlack, ansiFgYell, h.status, ansiReset)).Draw(scr, bottom)
		}
		return
	}
	h.drawMarker(scr, area)
	uv.NewStyledString(h.topLine(d.Scene().Len())).Draw(scr, uv.Rect(area.Min.X, area.Min.Y, area.Dx(), 1))
	if area.Dy() > 1 {
		uv.NewStyledString(h.bottomLine(d.Selected(), wireframe)).Draw(scr, bottom)
	}
}

func (h *hud) drawMarker(scr uv.Screen, area uv.Rectangle) {
	m := h.marker
	if m == nil {
		return
	}
	col, row := area.Min.X+m.col, area.Min.Y+m.row
	if col < area.Min.X || col >= area.Max.X || row < area.Min.Y || row >= area.Max.Y {
		return
	}
	text := "◆ " + m.name
	width := min(utf8.RuneCountInString(text), area.Max.X-col)
	label := fmt.Sprintf("%s%s%s%s", ansiBgBlack, ansiFgYell, text, ansiReset)
	uv.NewStyledString(label).Draw(scr, uv.Rect(col, row, width, 1))
}
