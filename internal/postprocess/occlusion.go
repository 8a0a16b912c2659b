package postprocess

import (
	"image"
	"image/color"

	"vr-vddc-renderer/internal/mathutil"
)

// Occlude paints every pixel of r in c for which visible returns false.
// visible receives the pixel center in NDC of r, y up. Returns the number
// of pixels painted.
func Occlude(img *image.NRGBA, r image.Rectangle, visible func(ndc mathutil.Vec2) bool, c color.NRGBA) int {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return 0
	}
	w, h := float64(r.Dx()), float64(r.Dy())
	painted := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		ny := 1 - 2*(float64(y-r.Min.Y)+0.5)/h
		for x := r.Min.X; x < r.Max.X; x++ {
			nx := 2*(float64(x-r.Min.X)+0.5)/w - 1
			if visible(mathutil.Vec2{nx, ny}) {
				continue
			}
			i := img.PixOffset(x, y)
			img.Pix[i] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
			painted++
		}
	}
	return painted
}
