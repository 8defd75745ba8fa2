package math3d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func assertVec(t *testing.T, want, got Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.ApproxEqual(want, eps), append([]any{"got %v, want %v", got, want}, msgAndArgs...)...)
}

func assertMat(t *testing.T, want, got Mat4, msg string) {
	t.Helper()
	assert.True(t, got.ApproxEqual(want, eps), "%s: got %v, want %v", msg, got, want)
}

func TestTranslateMovesPoint(t *testing.T) {
	m := Translate(V3(1, 2, 3))
	assertVec(t, V3(2, 3, 4), m.MulVec3(V3(1, 1, 1)))
	assertVec(t, V3(1, 0, 0), m.MulVec3Dir(V3(1, 0, 0)), "directions ignore translation")
}

func TestRotations(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		in   Vec3
		want Vec3
	}{
		{"x 90", RotateX(math.Pi / 2), V3(0, 1, 0), V3(0, 0, 1)},
		{"y 90", RotateY(math.Pi / 2), V3(0, 0, 1), V3(1, 0, 0)},
		{"z 90", RotateZ(math.Pi / 2), V3(1, 0, 0), V3(0, 1, 0)},
		{"axis y 90", Rotate(UnitY(), math.Pi/2), V3(0, 0, 1), V3(1, 0, 0)},
		{"deg z 180", RotateDeg(UnitZ(), 180), V3(1, 0, 0), V3(-1, 0, 0)},
		{"zero axis", Rotate(Zero3(), 1), V3(1, 2, 3), V3(1, 2, 3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertVec(t, tc.want, tc.m.MulVec3(tc.in))
		})
	}
}

func TestRotateMatchesAxisConstructors(t *testing.T) {
	for _, angle := range []float64{0.3, -1.2, math.Pi / 4} {
		assertMat(t, RotateX(angle), Rotate(UnitX(), angle), "X axis")
		assertMat(t, RotateY(angle), Rotate(UnitY(), angle), "Y axis")
		assertMat(t, RotateZ(angle), Rotate(UnitZ(), angle), "Z axis")
	}
}

func TestFromQuat(t *testing.T) {
	h := math.Sqrt2 / 2
	tests := []struct {
		name       string
		x, y, z, w float64
		want       Mat4
	}{
		{"identity", 0, 0, 0, 1, Identity()},
		{"zero", 0, 0, 0, 0, Identity()},
		{"90 about Z", 0, 0, h, h, RotateZ(math.Pi / 2)},
		{"unnormalized 90 about X", 2, 0, 0, 2, RotateX(math.Pi / 2)},
		{"axis angle", 0, math.Sin(0.35), 0, math.Cos(0.35), Rotate(UnitY(), 0.7)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertMat(t, tc.want, FromQuat(tc.x, tc.y, tc.z, tc.w), tc.name)
		})
	}
}

func TestMulOrder(t *testing.T) {
	// T * S scales first, then translates.
	m := Translate(V3(1, 0, 0)).Mul(Scale(V3(2, 2, 2)))
	assertVec(t, V3(3, 0, 0), m.MulVec3(V3(1, 0, 0)))
}

func TestInverse(t *testing.T) {
	mats := map[string]Mat4{
		"identity":  Identity(),
		"translate": Translate(V3(3, -2, 7)),
		"trs":       TRS(V3(1, 2, 3), V3(10, 20, 30), V3(2, 0.5, 1.5)),
		"perspective": Perspective(math.Pi/3, 1.5, 0.1, 50).
			Mul(Translate(V3(0, 0, -4))),
	}

	for name, m := range mats {
		t.Run(name, func(t *testing.T) {
			assertMat(t, Identity(), m.Mul(m.Inverse()), "m * inverse(m)")
			assertMat(t, Identity(), m.Inverse().Mul(m), "inverse(m) * m")
		})
	}

	var singular Mat4
	assert.Equal(t, Identity(), singular.Inverse(), "singular matrices invert to identity")
}

func TestTranspose(t *testing.T) {
	m := TRS(V3(1, 2, 3), V3(5, 6, 7), V3(1, 2, 3))
	assert.Equal(t, m, m.Transpose().Transpose())
	assert.Equal(t, m.Get(0, 3), m.Transpose().Get(3, 0))
}

func TestNormalMatrixKeepsNormalsPerpendicular(t *testing.T) {
	m := Scale(V3(4, 1, 1)).Mul(RotateZ(math.Pi / 4))
	surface := V3(1, -1, 0) // tangent of the 45° plane with normal (1,1,0)
	normal := V3(1, 1, 0)

	ts := m.MulVec3Dir(surface)
	tn := m.NormalMatrix().MulVec3Dir(normal)
	assert.InDelta(t, 0, ts.Dot(tn), eps)
}

func TestTRS(t *testing.T) {
	m := TRS(V3(0, 1, 0), V3(0, 0, 90), V3(2, 1, 1))
	// Scale (1,0,0) -> (2,0,0), rotate Z 90 -> (0,2,0), translate -> (0,3,0).
	assertVec(t, V3(0, 3, 0), m.MulVec3(V3(1, 0, 0)))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, Clamp(5, 0, 3))
	assert.Equal(t, 0, Clamp(-1, 0, 3))
	assert.Equal(t, 2, Clamp(2, 0, 3))
	assert.Equal(t, 1.0, Clamp(0.5, 1.0, 2.0))
}

func TestDegreesRadians(t *testing.T) {
	assert.InDelta(t, math.Pi, Radians(180), eps)
	assert.InDelta(t, 90, Degrees(math.Pi/2), eps)
}
