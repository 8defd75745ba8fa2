package scene

import (
	"fmt"
	"strings"

	"github.com/taigrr/diorama/pkg/math3d"
)

// Handle identifies a node in a Scene. Handles stay valid until the node is
// removed; afterwards they are reported as stale, even if the slot is reused.
type Handle struct {
	index uint32
	gen   uint32
}

// Nil is the zero Handle and never refers to a node.
var Nil Handle

// IsNil reports whether h is the zero Handle.
func (h Handle) IsNil() bool {
	return h == Nil
}

func (h Handle) String() string {
	if h.IsNil() {
		return "#nil"
	}
	return fmt.Sprintf("#%d.%d", h.index, h.gen)
}

// Shape selects how a node is drawn.
type Shape int

const (
	ShapeCube  Shape = iota // unit cube under the world transform
	ShapePivot              // grouping node; drawn as an axis gizmo
)

func (s Shape) String() string {
	switch s {
	case ShapeCube:
		return "cube"
	case ShapePivot:
		return "pivot"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape parses "cube" or "pivot". The empty string is a cube.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cube":
		return ShapeCube, nil
	case "pivot":
		return ShapePivot, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

// NodeSpec describes a node to add to a Scene.
type NodeSpec struct {
	Name   string
	Local  math3d.Mat4 // zero value means identity
	Color  Color
	Parent Handle
	Shape  Shape
}

// Node is a scene graph node: a local transform, a color and an optional
// reference to a parent node. The parent is not owned; the Scene owns every
// node's lifetime.
type Node struct {
	scene  *Scene
	handle Handle
	name   string
	local  math3d.Mat4
	color  Color
	parent Handle
	shape  Shape
}

// Handle returns the node's handle.
func (n *Node) Handle() Handle { return n.handle }

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Shape returns how the node is drawn.
func (n *Node) Shape() Shape { return n.shape }

// Parent returns the parent handle. It may be Nil, or stale if the parent
// was removed; either way the node's frame is then world space.
func (n *Node) Parent() Handle { return n.parent }

// Local returns the transform relative to the parent's frame.
func (n *Node) Local() math3d.Mat4 { return n.local }

// SetTransform composes an incremental transform onto the local one:
// local = local * delta. Repeated calls accumulate in the node's current frame.
func (n *Node) SetTransform(delta math3d.Mat4) {
	n.local = n.local.Mul(delta)
}

// Color returns the node's color.
func (n *Node) Color() Color { return n.color }

// SetColor replaces the node's color.
func (n *Node) SetColor(c Color) { n.color = c }

// Transform returns the world transform: the product of the local transforms
// of every ancestor, root first, and then this node's own. It is recomputed on
// every call. A parent chain longer than the scene itself means a cycle and
// returns ErrCycle.
func (n *Node) Transform() (math3d.Mat4, error) {
	if n.scene == nil {
		return n.local, nil
	}
	return n.scene.world(n)
}

// SetParent re-parents the node. See Scene.SetParent.
func (n *Node) SetParent(parent Handle) error {
	if n.scene == nil {
		return fmt.Errorf("set parent of %q: %w", n.name, ErrStaleHandle)
	}
	return n.scene.SetParent(n.handle, parent)
}
