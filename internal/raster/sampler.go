package raster

import "image"

// WrapMode selects how UVs outside [0,1] are resolved.
type WrapMode int

const (
	// ClampToEdge repeats the border texels, the layer default.
	ClampToEdge WrapMode = iota
	// Repeat tiles the texture.
	Repeat
)

// SampleTexture performs bilinear filtering. v runs from the bottom row
// (v=0) to the top row (v=1). Accesses tex.Pix directly for performance.
func SampleTexture(tex *image.NRGBA, u, v float64, mode WrapMode) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	switch mode {
	case Repeat:
		u = u - float64(int(u))
		if u < 0 {
			u += 1.0
		}
		v = v - float64(int(v))
		if v < 0 {
			v += 1.0
		}
	default:
		u = clamp01(u)
		v = clamp01(v)
	}

	fx := u * float64(w-1)
	fy := (1 - v) * float64(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1, y1 := x0+1, y0+1
	if mode == Repeat {
		x1 %= w
		y1 %= h
	} else {
		if x1 >= w {
			x1 = w - 1
		}
		if y1 >= h {
			y1 = h - 1
		}
	}
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	stride := tex.Stride
	pix := tex.Pix

	// Four texels
	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	fr := float64(pix[i00])*w00 + float64(pix[i10])*w10 + float64(pix[i01])*w01 + float64(pix[i11])*w11
	fg := float64(pix[i00+1])*w00 + float64(pix[i10+1])*w10 + float64(pix[i01+1])*w01 + float64(pix[i11+1])*w11
	fb := float64(pix[i00+2])*w00 + float64(pix[i10+2])*w10 + float64(pix[i01+2])*w01 + float64(pix[i11+2])*w11
	fa := float64(pix[i00+3])*w00 + float64(pix[i10+3])*w10 + float64(pix[i01+3])*w01 + float64(pix[i11+3])*w11

	return uint8(fr + 0.5), uint8(fg + 0.5), uint8(fb + 0.5), uint8(fa + 0.5)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
