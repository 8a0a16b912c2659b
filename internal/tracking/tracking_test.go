package tracking

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vr-vddc-renderer/internal/mathutil"
)

func TestIdentity(t *testing.T) {
	assert.True(t, Identity{}.HeadSpaceFromStartSpaceRotation(time.Now()).IsIdentity())
}

func TestFixedIsInverseOfOrientation(t *testing.T) {
	f := NewFixed(0.3, -0.2, 0.1)
	m := f.HeadSpaceFromStartSpaceRotation(time.Time{})
	orient := mathutil.QuatToMat4(f.Orientation)
	assert.True(t, mathutil.Mat4Mul(m, orient).ApproxEqual(mathutil.Mat4Identity(), 1e-12))
}

func TestSweepYaw(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Sweep{Start: start, YawRate: math.Pi / 2}

	assert.True(t, s.HeadSpaceFromStartSpaceRotation(start).ApproxEqual(mathutil.Mat4Identity(), 1e-12))

	// After one second the head has turned 90° to the left, so a point
	// straight ahead in start space sits to the head's right.
	m := s.HeadSpaceFromStartSpaceRotation(start.Add(time.Second))
	p := m.MulPoint(mathutil.Vec3{0, 0, -1})
	assert.InDelta(t, 1, p[0], 1e-12)
	assert.InDelta(t, 0, p[1], 1e-12)
	assert.InDelta(t, 0, p[2], 1e-12)
}

func TestSweepPitchPeriod(t *testing.T) {
	start := time.Unix(0, 0)
	s := Sweep{Start: start, PitchAmplitude: 0.2, PitchPeriod: 4 * time.Second}
	a := s.Orientation(start)
	b := s.Orientation(start.Add(4 * time.Second))
	for i := range a {
		assert.InDelta(t, a[i], b[i], 1e-12)
	}
}

func TestProviderFunc(t *testing.T) {
	called := false
	var p Provider = ProviderFunc(func(time.Time) mathutil.Mat4 {
		called = true
		return mathutil.Translate(mathutil.Vec3{1, 2, 3})
	})
	m := p.HeadSpaceFromStartSpaceRotation(time.Now())
	assert.True(t, called)
	assert.Equal(t, mathutil.Vec3{1, 2, 3}, m.Translation())
}
