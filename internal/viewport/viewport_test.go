package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"vr-vddc-renderer/internal/distortion"
	"vr-vddc-renderer/internal/headset"
	"vr-vddc-renderer/internal/mathutil"
)

// screenLimited has a device FOV wide enough that the screen edges bound
// the frustum.
func screenLimited(k []float64) headset.Params {
	return headset.Params{
		ScreenWidthMeters:            0.12,
		ScreenHeightMeters:           0.07,
		ScreenToLensDistance:         0.04,
		InterLensDistance:            0.06,
		VerticalAlignment:            headset.AlignCenter,
		VerticalDistanceToLensCenter: 0.035,
		FOV:                          []float64{60, 60, 60, 60},
		KN:                           k,
		ScreenWidthPixels:            1920,
		ScreenHeightPixels:           1080,
	}
}

func TestReverseFOVSelfInverse(t *testing.T) {
	f := FOV{0.1, 0.2, 0.3, 0.4}
	r := ReverseFOV(f)
	assert.Equal(t, FOV{0.2, 0.1, 0.3, 0.4}, r)
	assert.Equal(t, f, ReverseFOV(r))
}

func TestYEyeOffsetMeters(t *testing.T) {
	assert.InDelta(t, 0.035-DefaultBorderSizeMeters, YEyeOffsetMeters(headset.AlignBottom, 0.035, 0.062), 1e-12)
	assert.InDelta(t, 0.031, YEyeOffsetMeters(headset.AlignCenter, 0.035, 0.062), 1e-12)
	assert.InDelta(t, 0.062-0.035-DefaultBorderSizeMeters, YEyeOffsetMeters(headset.AlignTop, 0.035, 0.062), 1e-12)
	// Unknown values fall back to centered.
	assert.InDelta(t, 0.031, YEyeOffsetMeters(headset.VerticalAlignment(7), 0.035, 0.062), 1e-12)
}

func TestCalculateFOVScreenLimited(t *testing.T) {
	p := screenLimited(nil)
	y := YEyeOffsetMeters(p.VerticalAlignment, p.VerticalDistanceToLensCenter, p.ScreenHeightMeters)
	fov := CalculateFOV(p, y, p.Distortion())

	tan := fov.Tan()
	assert.InDelta(t, 0.75, tan[0], 1e-12)
	assert.InDelta(t, 0.75, tan[1], 1e-12)
	assert.InDelta(t, 0.875, tan[2], 1e-12)
	assert.InDelta(t, 0.875, tan[3], 1e-12)
}

func TestCalculateFOVDeviceLimited(t *testing.T) {
	p, err := headset.Preset("cardboard-v1")
	assert.NoError(t, err)
	y := YEyeOffsetMeters(p.VerticalAlignment, p.VerticalDistanceToLensCenter, p.ScreenHeightMeters)
	fov := CalculateFOV(p, y, p.Distortion())

	deg := fov.Degrees()
	for i, a := range deg {
		assert.LessOrEqual(t, a, 40.0+1e-9, "side %d", i)
		assert.Greater(t, a, 0.0, "side %d", i)
	}
	// Inner edge: 0.03/0.042 tan-angle distorted by the lens exceeds tan(40°).
	assert.InDelta(t, 40.0, deg[1], 1e-9)
}

func TestCalculateFOVUsesDistortion(t *testing.T) {
	plain := screenLimited(nil)
	lens := screenLimited([]float64{0.1})
	y := YEyeOffsetMeters(plain.VerticalAlignment, plain.VerticalDistanceToLensCenter, plain.ScreenHeightMeters)

	a := CalculateFOV(plain, y, plain.Distortion())
	b := CalculateFOV(lens, y, lens.Distortion())
	want := math.Atan(distortion.New([]float64{0.1}).DistortRadius(0.75))
	assert.InDelta(t, want, b[0], 1e-12)
	assert.Greater(t, b[0], a[0])
}

func TestCalculateParamsMatchWhenScreenLimited(t *testing.T) {
	p := screenLimited(nil)
	y := YEyeOffsetMeters(p.VerticalAlignment, p.VerticalDistanceToLensCenter, p.ScreenHeightMeters)
	left := CalculateFOV(p, y, p.Distortion())
	fovs := [2]FOV{left, ReverseFOV(left)}

	for _, eye := range Eyes {
		screen, texture := CalculateParams(eye, y, p, fovs[eye])
		assert.InDelta(t, screen.Width, texture.Width, 1e-12, eye.String())
		assert.InDelta(t, screen.Height, texture.Height, 1e-12, eye.String())
		assert.InDelta(t, screen.XEyeOffset, texture.XEyeOffset, 1e-12, eye.String())
		assert.InDelta(t, screen.YEyeOffset, texture.YEyeOffset, 1e-12, eye.String())
	}
}

func TestCalculateParamsEyeOffsets(t *testing.T) {
	p, err := headset.Preset("cardboard-v2")
	assert.NoError(t, err)
	y := YEyeOffsetMeters(p.VerticalAlignment, p.VerticalDistanceToLensCenter, p.ScreenHeightMeters)
	fov := CalculateFOV(p, y, p.Distortion())

	ls, lt := CalculateParams(Left, y, p, fov)
	rs, rt := CalculateParams(Right, y, p, ReverseFOV(fov))

	// Both lens centers are IPD apart on the full screen.
	leftCenter := ls.XEyeOffset
	rightCenter := rs.Width + rs.XEyeOffset
	assert.InDelta(t, p.InterLensDistance/p.ScreenToLensDistance, rightCenter-leftCenter, 1e-12)

	// The right eye texture is the mirror of the left one.
	assert.InDelta(t, lt.Width, rt.Width, 1e-12)
	assert.InDelta(t, lt.Width-lt.XEyeOffset, rt.XEyeOffset, 1e-12)
}

func TestParamsTanAngleRoundTrip(t *testing.T) {
	p := Params{Width: 1.5, Height: 1.75, XEyeOffset: 0.75, YEyeOffset: 0.875}
	n := mathutil.Vec2{0.25, 0.8}
	back := p.FromTanAngle(p.ToTanAngle(n))
	assert.InDelta(t, n[0], back[0], 1e-15)
	assert.InDelta(t, n[1], back[1], 1e-15)
	assert.Equal(t, mathutil.Vec2{0, 0}, p.ToTanAngle(mathutil.Vec2{0.5, 0.5}))
}
