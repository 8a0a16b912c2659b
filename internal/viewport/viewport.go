// Package viewport derives per-eye field of view and the affine maps between
// normalized eye coordinates and tan-angle space from headset optics.
package viewport

import (
	"fmt"
	"math"

	"vr-vddc-renderer/internal/distortion"
	"vr-vddc-renderer/internal/headset"
	"vr-vddc-renderer/internal/mathutil"
)

// Eye indexes per-eye state. Left is 0, Right is 1.
type Eye int

const (
	Left Eye = iota
	Right
)

// Eyes lists both eyes in render order.
var Eyes = [2]Eye{Left, Right}

func (e Eye) String() string {
	switch e {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Eye(%d)", int(e))
}

// DefaultBorderSizeMeters is the bezel between the tray and the active screen area.
const DefaultBorderSizeMeters = 0.003

// FOV holds frustum half-angles in radians: left, right, bottom, top.
type FOV [4]float64

// Tan returns the tan-angle extents of the frustum.
func (f FOV) Tan() [4]float64 {
	return [4]float64{math.Tan(f[0]), math.Tan(f[1]), math.Tan(f[2]), math.Tan(f[3])}
}

// Degrees returns the angles in degrees, for diagnostics.
func (f FOV) Degrees() [4]float64 {
	return [4]float64{
		mathutil.Rad2Deg(f[0]), mathutil.Rad2Deg(f[1]),
		mathutil.Rad2Deg(f[2]), mathutil.Rad2Deg(f[3]),
	}
}

// ReverseFOV mirrors a left-eye FOV into the right eye by swapping the
// horizontal entries. Applying it twice is the identity.
func ReverseFOV(f FOV) FOV {
	return FOV{f[1], f[0], f[2], f[3]}
}

// Params maps a normalized [0,1] coordinate inside one eye's half of the
// screen (screen params) or inside the eye's frustum (texture params) to
// tan-angle units centered on the lens:
//
//	tan = normalized*Width - EyeOffset
type Params struct {
	Width      float64
	Height     float64
	XEyeOffset float64
	YEyeOffset float64
}

// ToTanAngle maps normalized [0,1] coordinates to tan-angle units.
func (p Params) ToTanAngle(n mathutil.Vec2) mathutil.Vec2 {
	return mathutil.Vec2{n[0]*p.Width - p.XEyeOffset, n[1]*p.Height - p.YEyeOffset}
}

// FromTanAngle is the inverse of ToTanAngle.
func (p Params) FromTanAngle(t mathutil.Vec2) mathutil.Vec2 {
	return mathutil.Vec2{(t[0] + p.XEyeOffset) / p.Width, (t[1] + p.YEyeOffset) / p.Height}
}

// YEyeOffsetMeters returns the height of the lens center above the bottom
// edge of the screen.
func YEyeOffsetMeters(alignment headset.VerticalAlignment, trayToLens, screenHeight float64) float64 {
	switch alignment {
	case headset.AlignBottom:
		return trayToLens - DefaultBorderSizeMeters
	case headset.AlignTop:
		return screenHeight - trayToLens - DefaultBorderSizeMeters
	default:
		return screenHeight / 2
	}
}

// CalculateFOV returns the left-eye FOV: for each side the angle at which the
// screen edge is seen through the lens, limited by the device FOV.
func CalculateFOV(p headset.Params, yEyeOffset float64, d distortion.Polynomial) FOV {
	device := p.FOVArray()
	eyeToScreen := p.ScreenToLensDistance

	outer := (p.ScreenWidthMeters - p.InterLensDistance) / 2
	inner := p.InterLensDistance / 2
	bottom := yEyeOffset
	top := p.ScreenHeightMeters - bottom

	outerAngle := math.Atan(d.Distort(mathutil.Vec2{outer / eyeToScreen, 0})[0])
	innerAngle := math.Atan(d.Distort(mathutil.Vec2{inner / eyeToScreen, 0})[0])
	bottomAngle := math.Atan(d.Distort(mathutil.Vec2{0, bottom / eyeToScreen})[1])
	topAngle := math.Atan(d.Distort(mathutil.Vec2{0, top / eyeToScreen})[1])

	return FOV{
		math.Min(outerAngle, mathutil.Deg2Rad(device[0])),
		math.Min(innerAngle, mathutil.Deg2Rad(device[1])),
		math.Min(bottomAngle, mathutil.Deg2Rad(device[2])),
		math.Min(topAngle, mathutil.Deg2Rad(device[3])),
	}
}

// CalculateParams returns the screen and texture maps for one eye. Screen
// params cover the eye's half of the physical screen; texture params cover
// the eye's frustum.
func CalculateParams(eye Eye, yEyeOffset float64, p headset.Params, fov FOV) (screen, texture Params) {
	d := p.ScreenToLensDistance
	screen.Width = (p.ScreenWidthMeters / 2) / d
	screen.Height = p.ScreenHeightMeters / d
	if eye == Left {
		screen.XEyeOffset = ((p.ScreenWidthMeters - p.InterLensDistance) / 2) / d
	} else {
		screen.XEyeOffset = (p.InterLensDistance / 2) / d
	}
	screen.YEyeOffset = yEyeOffset / d

	t := fov.Tan()
	texture.Width = t[0] + t[1]
	texture.Height = t[2] + t[3]
	texture.XEyeOffset = t[0]
	texture.YEyeOffset = t[2]
	return screen, texture
}
