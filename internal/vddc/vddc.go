// Package vddc implements vertex displacement distortion correction: it maps
// positions rendered for an eye's frustum to where they must be drawn on the
// physical screen so that the lens shows them undistorted.
//
// Coordinates flow NDC → normalized [0,1] → tan-angle (texture params) →
// inverse lens distortion → normalized → NDC (screen params). The lens maps
// a screen point s to the perceived direction Distort(s), so a direction t
// is drawn at DistortInverse(t).
package vddc

import (
	"math"

	"vr-vddc-renderer/internal/distortion"
	"vr-vddc-renderer/internal/mathutil"
	"vr-vddc-renderer/internal/mesh"
	"vr-vddc-renderer/internal/viewport"
)

// Data is everything the undistortion needs for both eyes.
type Data struct {
	// Distortion is the forward lens model, used by the analytic path.
	Distortion distortion.Polynomial
	// Inverse is the fitted inverse, used by the polynomial path.
	Inverse distortion.Polynomial
	// MaxRadiusSquared clamps the polynomial path to the fitted range.
	MaxRadiusSquared float64
	Screen           [2]viewport.Params
	Texture          [2]viewport.Params
}

// identityParams maps NDC onto itself.
var identityParams = viewport.Params{Width: 2, Height: 2, XEyeOffset: 1, YEyeOffset: 1}

// Identity returns Data that leaves every point where it is.
func Identity() Data {
	return Data{
		MaxRadiusSquared: distortion.CalibrationMaxRadiusSquared,
		Screen:           [2]viewport.Params{identityParams, identityParams},
		Texture:          [2]viewport.Params{identityParams, identityParams},
	}
}

func ndcToNormalized(ndc mathutil.Vec2) mathutil.Vec2 {
	return mathutil.Vec2{(ndc[0] + 1) / 2, (ndc[1] + 1) / 2}
}

func normalizedToNDC(n mathutil.Vec2) mathutil.Vec2 {
	return mathutil.Vec2{n[0]*2 - 1, n[1]*2 - 1}
}

// UndistortedNDCForDistortedNDC maps an NDC position inside the eye's
// frustum to the NDC position inside the eye's half of the screen, using
// the iterative inverse. Exact but slow.
func (d Data) UndistortedNDCForDistortedNDC(ndc mathutil.Vec2, eye viewport.Eye) mathutil.Vec2 {
	t := d.Texture[eye].ToTanAngle(ndcToNormalized(ndc))
	s := d.Distortion.DistortInverse(t)
	return normalizedToNDC(d.Screen[eye].FromTanAngle(s))
}

// PolynomialNDCForDistortedNDC is UndistortedNDCForDistortedNDC evaluated
// with the fitted inverse, the way a vertex shader does it. r² is clamped
// to MaxRadiusSquared.
func (d Data) PolynomialNDCForDistortedNDC(ndc mathutil.Vec2, eye viewport.Eye) mathutil.Vec2 {
	t := d.Texture[eye].ToTanAngle(ndcToNormalized(ndc))
	r2 := math.Min(t.LenSq(), d.MaxRadiusSquared)
	s := t.Scale(d.Inverse.Factor(r2))
	return normalizedToNDC(d.Screen[eye].FromTanAngle(s))
}

// VisibleThroughLens reports whether a screen position, in NDC of the eye's
// half of the screen, shows a direction inside the eye's frustum. Pixels
// outside are never reached by corrected geometry.
func (d Data) VisibleThroughLens(screenNDC mathutil.Vec2, eye viewport.Eye) bool {
	s := d.Screen[eye].ToTanAngle(ndcToNormalized(screenNDC))
	n := d.Texture[eye].FromTanAngle(d.Distortion.Distort(s))
	return n[0] >= 0 && n[0] <= 1 && n[1] >= 0 && n[1] <= 1
}

// Transform is the per-eye camera: projection and eye-from-head offset.
type Transform struct {
	Projection  mathutil.Mat4
	EyeFromHead mathutil.Mat4
}

func (tr Transform) modelView(headRotation mathutil.Mat4) mathutil.Mat4 {
	return mathutil.Mat4Mul(tr.EyeFromHead, headRotation)
}

// undistortClip projects p and returns the clip position with x and y
// replaced by their undistorted counterparts. Points at or behind the eye
// plane (w <= 0) are returned as projected.
func undistortClip(d Data, eye viewport.Eye, mv, projection mathutil.Mat4, p mathutil.Vec3) mathutil.Vec4 {
	clip := projection.MulVec4(mv.MulVec4(p.Point()))
	if clip[3] <= 0 {
		return clip
	}
	ndc := clip.PerspectiveDivide()
	u := d.UndistortedNDCForDistortedNDC(ndc.XY(), eye)
	return mathutil.Vec4{u[0] * clip[3], u[1] * clip[3], clip[2], clip[3]}
}

// UndistortedNDCFor3DPoint runs the full per-vertex pipeline for p and
// returns its undistorted position in NDC.
func UndistortedNDCFor3DPoint(d Data, eye viewport.Eye, tr Transform, p mathutil.Vec3, headRotation mathutil.Mat4) mathutil.Vec3 {
	return undistortClip(d, eye, tr.modelView(headRotation), tr.Projection, p).PerspectiveDivide()
}

// UndistortedPointFor3DPoint is UndistortedNDCFor3DPoint mapped back
// through the inverse projection and model-view, so the result can be drawn
// with the plain (uncorrected) pipeline and lands on the corrected pixel.
// Points at or behind the eye plane are returned unchanged, matching the
// vertex stage, and are left for the rasterizer to drop.
func UndistortedPointFor3DPoint(d Data, eye viewport.Eye, tr Transform, p mathutil.Vec3, headRotation mathutil.Mat4) mathutil.Vec3 {
	mv := tr.modelView(headRotation)
	clip := undistortClip(d, eye, mv, tr.Projection, p)
	if clip[3] <= 0 {
		return p
	}
	view := tr.Projection.Inverse().MulVec4(clip).PerspectiveDivide()
	return mv.Inverse().MulPoint(view)
}

// DistortMesh returns a copy of m with every position replaced by its
// undistorted position for eye, seen with an identity head rotation. UVs
// and indices are copied unchanged.
func DistortMesh(d Data, eye viewport.Eye, tr Transform, m mesh.TexturedMesh) mesh.TexturedMesh {
	out := m.Clone()
	head := mathutil.Mat4Identity()
	for i, v := range out.Vertices {
		out.Vertices[i] = v.WithPosition(UndistortedPointFor3DPoint(d, eye, tr, v.Position(), head))
	}
	return out
}
