// Package scene implements the scene graph: nodes with local transforms and
// optional parents, the driver that applies viewer commands, and the per-frame
// draw list handed to the renderer.
package scene

import (
	"fmt"
	"iter"

	"github.com/taigrr/diorama/pkg/math3d"
)

type slot struct {
	node *Node
	gen  uint32
}

// Scene owns a set of nodes. Insertion order is the draw order and the order
// the selection cursor walks.
type Scene struct {
	slots []slot
	free  []uint32
	order []Handle
	names map[string]Handle
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{names: make(map[string]Handle)}
}

// Len returns the number of live nodes.
func (s *Scene) Len() int {
	return len(s.order)
}

// Add inserts a node and returns its handle. Names must be unique when set.
// The parent, when not Nil, must be a live node.
func (s *Scene) Add(spec NodeSpec) (Handle, error) {
	if spec.Name != "" {
		if _, dup := s.names[spec.Name]; dup {
			return Nil, fmt.Errorf("add %q: %w", spec.Name, ErrDuplicateName)
		}
	}
	if !spec.Parent.IsNil() {
		if _, ok := s.Node(spec.Parent); !ok {
			return Nil, fmt.Errorf("add %q: parent %v: %w", spec.Name, spec.Parent, ErrStaleHandle)
		}
	}
	if spec.Local == (math3d.Mat4{}) {
		spec.Local = math3d.Identity()
	}

	var h Handle
	if n := len(s.free); n > 0 {
		idx := s.free[n-1]
		s.free = s.free[:n-1]
		h = Handle{index: idx, gen: s.slots[idx].gen}
	} else {
		s.slots = append(s.slots, slot{gen: 1})
		h = Handle{index: uint32(len(s.slots) - 1), gen: 1}
	}

	s.slots[h.index].node = &Node{
		scene:  s,
		handle: h,
		name:   spec.Name,
		local:  spec.Local,
		color:  spec.Color,
		parent: spec.Parent,
		shape:  spec.Shape,
	}
	s.order = append(s.order, h)
	if spec.Name != "" {
		s.names[spec.Name] = h
	}
	return h, nil
}

// MustAdd is Add for statically known scenes; it panics on error.
func (s *Scene) MustAdd(spec NodeSpec) Handle {
	h, err := s.Add(spec)
	if err != nil {
		panic(err)
	}
	return h
}

// Node returns the node for h, or false if h is Nil or stale.
func (s *Scene) Node(h Handle) (*Node, bool) {
	if h.IsNil() || int(h.index) >= len(s.slots) {
		return nil, false
	}
	sl := s.slots[h.index]
	if sl.node == nil || sl.gen != h.gen {
		return nil, false
	}
	return sl.node, true
}

// Lookup finds a node by name.
func (s *Scene) Lookup(name string) (Handle, bool) {
	h, ok := s.names[name]
	return h, ok
}

// Handles returns the live handles in insertion order.
func (s *Scene) Handles() []Handle {
	out := make([]Handle, len(s.order))
	copy(out, s.order)
	return out
}

// At returns the handle at position i of the insertion order.
func (s *Scene) At(i int) (Handle, bool) {
	if i < 0 || i >= len(s.order) {
		return Nil, false
	}
	return s.order[i], true
}

// IndexOf returns the position of h in the insertion order, or -1.
func (s *Scene) IndexOf(h Handle) int {
	for i, o := range s.order {
		if o == h {
			return i
		}
	}
	return -1
}

// All yields the live nodes in insertion order.
func (s *Scene) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, h := range s.order {
			if !yield(s.slots[h.index].node) {
				return
			}
		}
	}
}

// Children returns the nodes whose parent is h, in insertion order.
func (s *Scene) Children(h Handle) []Handle {
	var out []Handle
	for _, c := range s.order {
		if s.slots[c.index].node.parent == h {
			out = append(out, c)
		}
	}
	return out
}

// Remove deletes a node. Its handle becomes stale. Children keep their
// (now stale) parent reference and resolve as roots.
func (s *Scene) Remove(h Handle) error {
	n, ok := s.Node(h)
	if !ok {
		return fmt.Errorf("remove %v: %w", h, ErrStaleHandle)
	}
	if i := s.IndexOf(h); i >= 0 {
		s.order = append(s.order[:i], s.order[i+1:]...)
	}
	if n.name != "" {
		delete(s.names, n.name)
	}
	n.scene = nil
	s.slots[h.index] = slot{gen: h.gen + 1}
	s.free = append(s.free, h.index)
	return nil
}

// SetParent makes parent the parent of child. A Nil parent detaches the node.
// Parenting a node to itself or to one of its descendants is rejected and the
// previous parent is kept.
func (s *Scene) SetParent(child, parent Handle) error {
	c, ok := s.Node(child)
	if !ok {
		return fmt.Errorf("set parent of %v: %w", child, ErrStaleHandle)
	}
	if parent.IsNil() {
		c.parent = Nil
		return nil
	}
	if parent == child {
		return fmt.Errorf("set parent of %q: %w", c.name, ErrSelfParent)
	}
	p, ok := s.Node(parent)
	if !ok {
		return fmt.Errorf("set parent of %q to %v: %w", c.name, parent, ErrStaleHandle)
	}

	budget := len(s.order)
	for a := p; a != nil; a = s.parentOf(a) {
		if a == c {
			return fmt.Errorf("set parent of %q to %q: %w", c.name, p.name, ErrCycle)
		}
		if budget--; budget < 0 {
			return fmt.Errorf("set parent of %q to %q: ancestors of %q: %w", c.name, p.name, p.name, ErrCycle)
		}
	}
	c.parent = parent
	return nil
}

// Transform returns the world transform of the node h.
func (s *Scene) Transform(h Handle) (math3d.Mat4, error) {
	n, ok := s.Node(h)
	if !ok {
		return math3d.Mat4{}, fmt.Errorf("transform of %v: %w", h, ErrStaleHandle)
	}
	return s.world(n)
}

// Walk visits every node depth first, parents before children. Roots (nodes
// without a live parent) and siblings are visited in insertion order.
// Returning a non-nil error from fn stops the walk.
func (s *Scene) Walk(fn func(n *Node, depth int) error) error {
	children := make(map[Handle][]*Node, len(s.order))
	var roots []*Node
	for n := range s.All() {
		if p := s.parentOf(n); p != nil {
			children[p.handle] = append(children[p.handle], n)
		} else {
			roots = append(roots, n)
		}
	}

	var visit func(n *Node, depth int) error
	visit = func(n *Node, depth int) error {
		if depth > len(s.order) {
			return fmt.Errorf("walk %q: %w", n.name, ErrCycle)
		}
		if err := fn(n, depth); err != nil {
			return err
		}
		for _, c := range children[n.handle] {
			if err := visit(c, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range roots {
		if err := visit(r, 0); err != nil {
			return err
		}
	}
	return nil
}

// parentOf returns the live parent of n, or nil.
func (s *Scene) parentOf(n *Node) *Node {
	p, ok := s.Node(n.parent)
	if !ok {
		return nil
	}
	return p
}

// world walks from n to its root, left-multiplying each ancestor's local
// transform. A chain can have at most Len()-1 ancestors.
func (s *Scene) world(n *Node) (math3d.Mat4, error) {
	m := n.local
	budget := len(s.order) - 1
	for p := s.parentOf(n); p != nil; p = s.parentOf(p) {
		if budget--; budget < 0 {
			return math3d.Mat4{}, fmt.Errorf("transform of %q: %w", n.name, ErrCycle)
		}
		m = p.local.Mul(m)
	}
	return m, nil
}
