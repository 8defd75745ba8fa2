package main

import (
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/diorama/pkg/scene"
)

// uiAction is a key that changes the viewer rather than the scene.
type uiAction int

const (
	uiNone uiAction = iota
	uiQuit
	uiToggleWireframe
	uiToggleHUD
	uiScreenshot
)

func (a uiAction) String() string {
	switch a {
	case uiQuit:
		return "quit"
	case uiToggleWireframe:
		return "toggle-wireframe"
	case uiToggleHUD:
		return "toggle-hud"
	case uiScreenshot:
		return "screenshot"
	default:
		return "none"
	}
}

// keyCommand maps a key press to a scene command or a viewer action. At most
// one of the two results is set.
func keyCommand(ev uv.KeyPressEvent) (scene.Command, uiAction) {
	switch {
	case ev.MatchString("esc", "ctrl+c"):
		return scene.CmdNone, uiQuit
	case ev.MatchString("space", "tab"):
		return scene.CmdSelectNext, uiNone
	case ev.MatchString("backspace"):
		return scene.CmdClearSelection, uiNone
	case ev.MatchString("R", "shift+r"):
		return scene.CmdRotateNeg, uiNone
	case ev.MatchString("r"):
		return scene.CmdRotatePos, uiNone
	case ev.MatchString("c"):
		return scene.CmdCycleColor, uiNone
	case ev.MatchString("0", "home"):
		return scene.CmdResetCamera, uiNone
	case ev.MatchString("up"):
		return scene.CmdPanUp, uiNone
	case ev.MatchString("down"):
		return scene.CmdPanDown, uiNone
	case ev.MatchString("left"):
		return scene.CmdPanLeft, uiNone
	case ev.MatchString("right"):
		return scene.CmdPanRight, uiNone
	case ev.MatchString("w"):
		return scene.CmdPanForward, uiNone
	case ev.MatchString("s"):
		return scene.CmdPanBack, uiNone
	case ev.MatchString("x"):
		return scene.CmdNone, uiToggleWireframe
	case ev.MatchString("?", "shift+/"):
		return scene.CmdNone, uiToggleHUD
	case ev.MatchString("p"):
		return scene.CmdNone, uiScreenshot
	}
	return scene.CmdNone, uiNone
}
