package mathutil

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerspectiveTanMatchesMathgl(t *testing.T) {
	tl, tr, tb, tt := 0.9, 0.7, 0.8, 1.1
	near, far := 0.1, 100.0

	got := PerspectiveTan(tl, tr, tb, tt, near, far)
	want := mgl32.Frustum(float32(-tl*near), float32(tr*near), float32(-tb*near), float32(tt*near), float32(near), float32(far))

	// mgl32 is column-major: At(row, col).
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			assert.InDelta(t, float64(want.At(r, c)), got[r*4+c], 1e-4, "element %d,%d", r, c)
		}
	}
}

func TestMat4InverseRoundTrip(t *testing.T) {
	m := Mat4Mul(
		PerspectiveTan(1, 1, 1, 1, 0.1, 100),
		Mat4Mul(Translate(Vec3{0.03, 0, 0}), QuatToMat4(QuatFromYawPitchRoll(0.3, -0.2, 0.1))),
	)
	assert.True(t, Mat4Mul(m, m.Inverse()).ApproxEqual(Mat4Identity(), 1e-9))
	assert.True(t, Mat4Mul(m.Inverse(), m).ApproxEqual(Mat4Identity(), 1e-9))
}

func TestMat4InverseSingular(t *testing.T) {
	var zero Mat4
	assert.True(t, zero.Inverse().IsIdentity())
}

func TestTranslate(t *testing.T) {
	m := Translate(Vec3{0.03, -1, 2})
	assert.Equal(t, Vec3{0.03, -1, 2}, m.Translation())
	assert.Equal(t, Vec3{1.03, 0, 3}, m.MulPoint(Vec3{1, 1, 1}))
}

func TestProjectionDividesToNDCEdges(t *testing.T) {
	p := PerspectiveTan(0.5, 0.75, 1, 2, 0.1, 100)
	// A point on the right edge of the frustum at depth 3 lands at x_ndc = 1.
	clip := p.MulVec4(Vec3{0.75 * 3, 0, -3}.Point())
	ndc := clip.PerspectiveDivide()
	assert.InDelta(t, 1.0, ndc[0], 1e-12)

	clip = p.MulVec4(Vec3{0, -1 * 5, -5}.Point())
	ndc = clip.PerspectiveDivide()
	assert.InDelta(t, -1.0, ndc[1], 1e-12)
}

func TestQuaternionYaw(t *testing.T) {
	q := QuatFromYawPitchRoll(math.Pi/2, 0, 0)
	v := QuatToMat4(q).MulPoint(Vec3{0, 0, -1})
	require.InDelta(t, -1.0, v[0], 1e-12)
	require.InDelta(t, 0.0, v[2], 1e-12)

	id := Mat3Identity()
	back := QuatToMat3(QuatMul(q, q.Conjugate()))
	assert.InDeltaSlice(t, id[:], back[:], 1e-12)
}

func TestMat3FromMat4(t *testing.T) {
	r := QuatToMat3(QuatFromYawPitchRoll(0.4, 0.1, 0))
	assert.Equal(t, r, Mat3FromMat4(FromMat3Translation(r, Vec3{1, 2, 3})))
	assert.Equal(t, Mat3Diag(2, 3, 4), Mat3FromMat4(Scale(Vec3{2, 3, 4})))
}
