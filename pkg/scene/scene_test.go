package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/diorama/pkg/math3d"
)

const tol = 1e-9

func translate(x, y, z float64) math3d.Mat4 {
	return math3d.Translate(math3d.V3(x, y, z))
}

// chain builds root -> n1 -> ... with the given local transforms.
func chain(t *testing.T, locals ...math3d.Mat4) (*Scene, []Handle) {
	t.Helper()
	s := New()
	var hs []Handle
	parent := Nil
	for _, l := range locals {
		h, err := s.Add(NodeSpec{Local: l, Parent: parent})
		require.NoError(t, err)
		hs = append(hs, h)
		parent = h
	}
	return s, hs
}

func TestRootTransformIsLocal(t *testing.T) {
	local := math3d.TRS(math3d.V3(1, 2, 3), math3d.V3(10, 20, 30), math3d.V3(1, 2, 1))
	s, hs := chain(t, local)
	n, ok := s.Node(hs[0])
	require.True(t, ok)

	world, err := n.Transform()
	require.NoError(t, err)
	assert.Equal(t, local, world)
}

func TestThreeLevelScenario(t *testing.T) {
	s := New()
	r := s.MustAdd(NodeSpec{Name: "R"})
	a := s.MustAdd(NodeSpec{Name: "A", Local: translate(1, 0, 0), Parent: r})
	b := s.MustAdd(NodeSpec{Name: "B", Local: translate(0, 1, 0), Parent: a})

	world, err := s.Transform(b)
	require.NoError(t, err)
	got := world.MulVec3(math3d.Zero3())
	assert.True(t, got.ApproxEqual(math3d.V3(1, 1, 0), tol), "got %v", got)
}

func TestChainIsProductOfLocals(t *testing.T) {
	locals := []math3d.Mat4{
		math3d.TRS(math3d.V3(0, -1, 0), math3d.V3(0, 30, 0), math3d.V3(2, 2, 2)),
		math3d.TRS(math3d.V3(1, 0, 0), math3d.V3(45, 0, 0), math3d.V3(1, 0.5, 1)),
		math3d.RotateZ(math.Pi / 3),
		translate(0, 0, 5),
	}
	s, hs := chain(t, locals...)

	want := math3d.Identity()
	for i, l := range locals {
		want = want.Mul(l)
		got, err := s.Transform(hs[i])
		require.NoError(t, err)
		assert.True(t, got.ApproxEqual(want, tol), "depth %d", i)
	}
}

func TestSetTransformAccumulates(t *testing.T) {
	d1 := math3d.RotateY(0.7)
	d2 := translate(0, 0, 2)

	s := New()
	h := s.MustAdd(NodeSpec{Local: translate(1, 0, 0)})
	n, _ := s.Node(h)
	n.SetTransform(d1)
	n.SetTransform(d2)

	once := New()
	ho := once.MustAdd(NodeSpec{Local: translate(1, 0, 0)})
	no, _ := once.Node(ho)
	no.SetTransform(d1.Mul(d2))

	assert.True(t, n.Local().ApproxEqual(no.Local(), tol))
}

func TestSetTransformComposesInLocalFrame(t *testing.T) {
	s := New()
	h := s.MustAdd(NodeSpec{Local: translate(5, 0, 0)})
	n, _ := s.Node(h)

	// Rotating in place keeps the node's origin where it was.
	n.SetTransform(math3d.RotateDeg(math3d.UnitY(), 45))
	n.SetTransform(math3d.RotateDeg(math3d.UnitY(), 45))
	world, err := n.Transform()
	require.NoError(t, err)
	assert.True(t, world.Translation().ApproxEqual(math3d.V3(5, 0, 0), tol))
	assert.True(t, world.MulVec3Dir(math3d.UnitZ()).ApproxEqual(math3d.UnitX(), tol))
}

func TestParentChangeVisibleImmediately(t *testing.T) {
	s := New()
	p := s.MustAdd(NodeSpec{Name: "p", Local: translate(1, 0, 0)})
	c := s.MustAdd(NodeSpec{Name: "c", Local: translate(0, 1, 0), Parent: p})
	child, _ := s.Node(c)
	parent, _ := s.Node(p)

	w, err := child.Transform()
	require.NoError(t, err)
	assert.True(t, w.Translation().ApproxEqual(math3d.V3(1, 1, 0), tol))

	parent.SetTransform(translate(0, 0, 3))
	w, err = child.Transform()
	require.NoError(t, err)
	assert.True(t, w.Translation().ApproxEqual(math3d.V3(1, 1, 3), tol))

	q := s.MustAdd(NodeSpec{Name: "q", Local: translate(-4, 0, 0)})
	require.NoError(t, child.SetParent(q))
	w, err = child.Transform()
	require.NoError(t, err)
	assert.True(t, w.Translation().ApproxEqual(math3d.V3(-4, 1, 0), tol))

	require.NoError(t, child.SetParent(Nil))
	w, err = child.Transform()
	require.NoError(t, err)
	assert.Equal(t, child.Local(), w)
}

func TestSetParentRejectsSelfAndCycles(t *testing.T) {
	s, hs := chain(t, translate(1, 0, 0), translate(0, 1, 0), translate(0, 0, 1))
	root, mid, leaf := hs[0], hs[1], hs[2]

	err := s.SetParent(mid, mid)
	assert.ErrorIs(t, err, ErrSelfParent)

	err = s.SetParent(root, leaf)
	assert.ErrorIs(t, err, ErrCycle)

	err = s.SetParent(mid, leaf)
	assert.ErrorIs(t, err, ErrCycle)

	// Failed calls keep the old parent.
	n, _ := s.Node(root)
	assert.True(t, n.Parent().IsNil())
	n, _ = s.Node(mid)
	assert.Equal(t, root, n.Parent())
}

func TestTransformDetectsCorruptedCycle(t *testing.T) {
	s, hs := chain(t, translate(1, 0, 0), translate(0, 1, 0), translate(0, 0, 1))

	// Bypass SetParent to build root -> mid -> leaf -> root.
	root, _ := s.Node(hs[0])
	root.parent = hs[2]

	for _, h := range hs {
		_, err := s.Transform(h)
		assert.ErrorIs(t, err, ErrCycle)
	}

	leaf, _ := s.Node(hs[2])
	_, err := leaf.Transform()
	assert.ErrorIs(t, err, ErrCycle)

	_, err = BuildFrame(s, State{Eye: math3d.Identity()}, DefaultOptions())
	assert.ErrorIs(t, err, ErrCycle)

	// A self-loop is caught the same way.
	s2 := New()
	h := s2.MustAdd(NodeSpec{Name: "loop"})
	n, _ := s2.Node(h)
	n.parent = h
	_, err = n.Transform()
	assert.ErrorIs(t, err, ErrCycle)
}

func TestRemoveMakesHandlesStale(t *testing.T) {
	s := New()
	p := s.MustAdd(NodeSpec{Name: "p", Local: translate(2, 0, 0)})
	c := s.MustAdd(NodeSpec{Name: "c", Local: translate(0, 1, 0), Parent: p})

	require.NoError(t, s.Remove(p))
	_, ok := s.Node(p)
	assert.False(t, ok)
	_, ok = s.Lookup("p")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
	assert.ErrorIs(t, s.Remove(p), ErrStaleHandle)

	// The orphan resolves in world space.
	w, err := s.Transform(c)
	require.NoError(t, err)
	assert.True(t, w.Translation().ApproxEqual(math3d.V3(0, 1, 0), tol))

	// Reusing the slot does not revive the old handle.
	p2 := s.MustAdd(NodeSpec{Name: "p2", Local: translate(9, 9, 9)})
	assert.Equal(t, p.index, p2.index)
	assert.NotEqual(t, p, p2)
	w, err = s.Transform(c)
	require.NoError(t, err)
	assert.True(t, w.Translation().ApproxEqual(math3d.V3(0, 1, 0), tol))

	assert.ErrorIs(t, s.SetParent(c, p), ErrStaleHandle)
}

func TestAddValidation(t *testing.T) {
	s := New()
	s.MustAdd(NodeSpec{Name: "a"})

	_, err := s.Add(NodeSpec{Name: "a"})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = s.Add(NodeSpec{Name: "b", Parent: Handle{index: 7, gen: 1}})
	assert.ErrorIs(t, err, ErrStaleHandle)

	h, err := s.Add(NodeSpec{})
	require.NoError(t, err)
	n, _ := s.Node(h)
	assert.Equal(t, math3d.Identity(), n.Local(), "zero local defaults to identity")
}

func TestWalkVisitsParentsFirst(t *testing.T) {
	s := New()
	chair := s.MustAdd(NodeSpec{Name: "chair", Shape: ShapePivot})
	s.MustAdd(NodeSpec{Name: "lamp"})
	back := s.MustAdd(NodeSpec{Name: "back", Parent: chair})
	s.MustAdd(NodeSpec{Name: "crest", Parent: back})
	s.MustAdd(NodeSpec{Name: "seat", Parent: chair})

	var got []string
	var depths []int
	err := s.Walk(func(n *Node, depth int) error {
		got = append(got, n.Name())
		depths = append(depths, depth)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"chair", "back", "crest", "seat", "lamp"}, got)
	assert.Equal(t, []int{0, 1, 2, 1, 0}, depths)
	assert.Equal(t, []Handle{back, s.Handles()[4]}, s.Children(chair))
}

func TestParseShape(t *testing.T) {
	for in, want := range map[string]Shape{"": ShapeCube, "cube": ShapeCube, "Pivot": ShapePivot} {
		got, err := ParseShape(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseShape("sphere")
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestColorToRGBA(t *testing.T) {
	c := RGB(1, 0.5, 2).ToRGBA()
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(128), c.G)
	assert.Equal(t, uint8(255), c.B, "out of range components are clamped")
	assert.Equal(t, uint8(255), c.A)
}

func TestColorLerp(t *testing.T) {
	base, hi := RGB(0.1, 0.7, 1), RGB(0.3, 0.2, 0)

	assert.Equal(t, base, base.Lerp(hi, 0))
	assert.Equal(t, hi, base.Lerp(hi, 1))

	mid := base.Lerp(hi, 0.5)
	assert.InDelta(t, 0.2, mid.R, 1e-12)
	assert.InDelta(t, 0.45, mid.G, 1e-12)
	assert.InDelta(t, 0.5, mid.B, 1e-12)
}
