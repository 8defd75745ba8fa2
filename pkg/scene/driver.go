package scene

import (
	"fmt"

	"github.com/taigrr/diorama/pkg/math3d"
)

// Command is a discrete viewer input.
type Command int

const (
	CmdNone Command = iota
	CmdSelectNext
	CmdClearSelection
	CmdRotatePos
	CmdRotateNeg
	CmdCycleColor
	CmdResetCamera
	CmdPanUp
	CmdPanDown
	CmdPanLeft
	CmdPanRight
	CmdPanForward
	CmdPanBack
)

var commandNames = [...]string{
	CmdNone:           "none",
	CmdSelectNext:     "select-next",
	CmdClearSelection: "clear-selection",
	CmdRotatePos:      "rotate+",
	CmdRotateNeg:      "rotate-",
	CmdCycleColor:     "cycle-color",
	CmdResetCamera:    "reset-camera",
	CmdPanUp:          "pan-up",
	CmdPanDown:        "pan-down",
	CmdPanLeft:        "pan-left",
	CmdPanRight:       "pan-right",
	CmdPanForward:     "pan-forward",
	CmdPanBack:        "pan-back",
}

func (c Command) String() string {
	if c >= 0 && int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// Options holds the tunables of the driver.
type Options struct {
	PanStep    float64     // camera translation per pan command
	RotateStep float64     // degrees per rotate command
	RotateAxis math3d.Vec3 // axis in the selected node's local frame
	Highlight  Color       // substituted for the selected node's color
	Palette    []Color     // colors walked by CmdCycleColor
	Eye        math3d.Mat4 // default eye transform

	GroundColor     Color
	GroundTransform math3d.Mat4
}

// DefaultOptions returns the settings of the original chair viewer.
func DefaultOptions() Options {
	return Options{
		PanStep:    0.25,
		RotateStep: 45,
		RotateAxis: math3d.UnitY(),
		Highlight:  RGB(0, 1, 0),
		Palette: []Color{
			RGB(1, 0, 0),
			RGB(1, 1, 1),
			RGB(0.2, 0.4, 1),
			RGB(1, 0.8, 0.1),
			RGB(0.6, 0.3, 0.1),
		},
		Eye:             math3d.Translate(math3d.V3(0, 0.25, 4)),
		GroundColor:     RGB(0.1, 0.95, 0.1),
		GroundTransform: math3d.Identity(),
	}
}

// State is the mutable viewer state that lives outside the scene: the eye
// transform and the selected node (Nil when nothing is selected).
type State struct {
	Eye      math3d.Mat4
	Selected Handle
}

// Advance returns the cursor position after index in a list of count items,
// wrapping from the last item back to 0. It returns 0 for an out-of-range
// index and -1 when count is 0.
func Advance(index, count int) int {
	if count <= 0 {
		return -1
	}
	if index < 0 || index >= count {
		return 0
	}
	return (index + 1) % count
}

// NextSelection returns the node after cur in insertion order, wrapping to the
// first node. A Nil or stale cur selects the first node. An empty scene
// yields Nil.
func NextSelection(s *Scene, cur Handle) Handle {
	next := Advance(s.IndexOf(cur), s.Len())
	h, _ := s.At(next)
	return h
}

// NextColor returns the palette entry after c, or the first entry if c is not
// in the palette.
func NextColor(palette []Color, c Color) Color {
	if len(palette) == 0 {
		return c
	}
	for i, p := range palette {
		if p == c {
			return palette[Advance(i, len(palette))]
		}
	}
	return palette[0]
}

// Apply executes one command against the scene and returns the new state.
// Node edits (rotate, recolor) mutate the selected node in place and are a
// no-op when nothing is selected.
func Apply(s *Scene, st State, cmd Command, opts Options) (State, error) {
	pan := func(d math3d.Vec3) State {
		st.Eye = st.Eye.Mul(math3d.Translate(d.Scale(opts.PanStep)))
		return st
	}

	switch cmd {
	case CmdNone:
		return st, nil
	case CmdSelectNext:
		st.Selected = NextSelection(s, st.Selected)
		return st, nil
	case CmdClearSelection:
		st.Selected = Nil
		return st, nil
	case CmdRotatePos, CmdRotateNeg:
		n, ok := s.Node(st.Selected)
		if !ok {
			return st, nil
		}
		angle := opts.RotateStep
		if cmd == CmdRotateNeg {
			angle = -angle
		}
		n.SetTransform(math3d.RotateDeg(opts.RotateAxis, angle))
		return st, nil
	case CmdCycleColor:
		if n, ok := s.Node(st.Selected); ok {
			n.SetColor(NextColor(opts.Palette, n.Color()))
		}
		return st, nil
	case CmdResetCamera:
		st.Eye = opts.Eye
		return st, nil
	case CmdPanUp:
		return pan(math3d.UnitY()), nil
	case CmdPanDown:
		return pan(math3d.UnitY().Negate()), nil
	case CmdPanLeft:
		return pan(math3d.UnitX().Negate()), nil
	case CmdPanRight:
		return pan(math3d.UnitX()), nil
	case CmdPanForward:
		return pan(math3d.UnitZ().Negate()), nil
	case CmdPanBack:
		return pan(math3d.UnitZ()), nil
	}
	return st, fmt.Errorf("apply: unknown command %v", cmd)
}

// DrawItem is one node's contribution to a frame.
type DrawItem struct {
	Handle   Handle
	Name     string
	Shape    Shape
	World    math3d.Mat4
	Base     Color // the node's own color
	Color    Color // color to draw with (Highlight when selected)
	Selected bool
}

// Frame is everything the renderer needs for one redraw.
type Frame struct {
	Eye    math3d.Mat4
	View   math3d.Mat4 // inverse of Eye
	Ground DrawItem
	Items  []DrawItem // in scene insertion order
}

// BuildFrame resolves every node's world transform and color.
func BuildFrame(s *Scene, st State, opts Options) (Frame, error) {
	f := Frame{
		Eye:  st.Eye,
		View: st.Eye.Inverse(),
		Ground: DrawItem{
			Name:  "ground",
			World: opts.GroundTransform,
			Base:  opts.GroundColor,
			Color: opts.GroundColor,
		},
		Items: make([]DrawItem, 0, s.Len()),
	}
	for n := range s.All() {
		world, err := n.Transform()
		if err != nil {
			return Frame{}, fmt.Errorf("build frame: %w", err)
		}
		item := DrawItem{
			Handle: n.Handle(),
			Name:   n.Name(),
			Shape:  n.Shape(),
			World:  world,
			Base:   n.Color(),
			Color:  n.Color(),
		}
		if n.Handle() == st.Selected {
			item.Selected = true
			item.Color = opts.Highlight
		}
		f.Items = append(f.Items, item)
	}
	return f, nil
}

// Driver bundles a scene, its options and the viewer state.
type Driver struct {
	scene *Scene
	opts  Options
	state State
}

// NewDriver creates a driver with the eye at opts.Eye and nothing selected.
func NewDriver(s *Scene, opts Options) *Driver {
	return &Driver{
		scene: s,
		opts:  opts,
		state: State{Eye: opts.Eye},
	}
}

// Scene returns the driven scene.
func (d *Driver) Scene() *Scene { return d.scene }

// Options returns the driver options.
func (d *Driver) Options() Options { return d.opts }

// State returns the current eye and selection.
func (d *Driver) State() State { return d.state }

// Selected returns the selected node, or nil.
func (d *Driver) Selected() *Node {
	n, _ := d.scene.Node(d.state.Selected)
	return n
}

// Select selects h. Nil clears the selection.
func (d *Driver) Select(h Handle) error {
	if !h.IsNil() {
		if _, ok := d.scene.Node(h); !ok {
			return fmt.Errorf("select %v: %w", h, ErrStaleHandle)
		}
	}
	d.state.Selected = h
	return nil
}

// Apply executes one command.
func (d *Driver) Apply(cmd Command) error {
	st, err := Apply(d.scene, d.state, cmd, d.opts)
	if err != nil {
		return err
	}
	d.state = st
	return nil
}

// Frame builds the draw list for the current state.
func (d *Driver) Frame() (Frame, error) {
	return BuildFrame(d.scene, d.state, d.opts)
}

// Replace swaps in a new scene, for example after the scene file changed.
// The selection follows the selected node's name when the new scene has it.
func (d *Driver) Replace(s *Scene) {
	var name string
	if n := d.Selected(); n != nil {
		name = n.Name()
	}
	d.scene = s
	d.state.Selected = Nil
	if name != "" {
		if h, ok := s.Lookup(name); ok {
			d.state.Selected = h
		}
	}
}
