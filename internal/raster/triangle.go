package raster

import (
	"image"
	"image/color"
	"math"
)

// ScreenVertex is a vertex after the viewport transform. X and Y are in
// pixels, Z is NDC depth and InvW is 1/w of the clip position, used for
// perspective-correct texture coordinates.
type ScreenVertex struct {
	X, Y, Z float64
	InvW    float64
	U, V    float64
}

// RasterizeTriangle rasterizes a single triangle with texture mapping,
// depth test and source-over alpha blending, scissored to fb.Viewport.
// A nil tex draws the triangle in tint.
//
// This is the HOT PATH: no allocation in the inner loop.
func RasterizeTriangle(fb *FrameBuffer, tri [3]ScreenVertex, tex *image.NRGBA, mode WrapMode, tint color.NRGBA) {
	x0, y0, z0 := tri[0].X, tri[0].Y, tri[0].Z
	x1, y1, z1 := tri[1].X, tri[1].Y, tri[1].Z
	x2, y2, z2 := tri[2].X, tri[2].Y, tri[2].Z

	// Perspective-correct attributes: interpolate u/w, v/w and 1/w.
	iw0, iw1, iw2 := tri[0].InvW, tri[1].InvW, tri[2].InvW
	u0, v0 := tri[0].U*iw0, tri[0].V*iw0
	u1, v1 := tri[1].U*iw1, tri[1].V*iw1
	u2, v2 := tri[2].U*iw2, tri[2].V*iw2

	// Bounding box
	vp := fb.Viewport
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < vp.Min.X {
		minX = vp.Min.X
	}
	if maxX > vp.Max.X-1 {
		maxX = vp.Max.X - 1
	}
	if minY < vp.Min.Y {
		minY = vp.Min.Y
	}
	if maxY > vp.Max.Y-1 {
		maxY = vp.Max.Y - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	stride := fb.Width
	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * stride
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -1e-9 || w1 < -1e-9 || w2 < -1e-9 {
				continue
			}

			// NDC depth is affine in screen space.
			z := w0*z0 + w1*z1 + w2*z2
			if z < -1 || z > 1 {
				continue
			}
			zIdx := rowOff + sx
			if z >= fb.ZBuf[zIdx] {
				continue
			}

			cr, cg, cb, ca := tint.R, tint.G, tint.B, tint.A
			if tex != nil {
				iw := w0*iw0 + w1*iw1 + w2*iw2
				u := (w0*u0 + w1*u1 + w2*u2) / iw
				v := (w0*v0 + w1*v1 + w2*v2) / iw
				cr, cg, cb, ca = SampleTexture(tex, u, v, mode)
			}

			// Skip transparent texels
			if ca < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			if ca == 255 {
				fb.Color[pxIdx] = cr
				fb.Color[pxIdx+1] = cg
				fb.Color[pxIdx+2] = cb
				fb.Color[pxIdx+3] = 255
				continue
			}
			a := float64(ca) / 255
			fb.Color[pxIdx] = clamp255(float64(cr)*a + float64(fb.Color[pxIdx])*(1-a))
			fb.Color[pxIdx+1] = clamp255(float64(cg)*a + float64(fb.Color[pxIdx+1])*(1-a))
			fb.Color[pxIdx+2] = clamp255(float64(cb)*a + float64(fb.Color[pxIdx+2])*(1-a))
			fb.Color[pxIdx+3] = clamp255(float64(ca) + float64(fb.Color[pxIdx+3])*(1-a))
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
