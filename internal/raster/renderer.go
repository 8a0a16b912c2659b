package raster

import (
	"image"
	"image/color"

	"vr-vddc-renderer/internal/mathutil"
	"vr-vddc-renderer/internal/mesh"
)

// minClipW rejects vertices on or behind the eye plane.
const minClipW = 1e-6

// VertexStage maps an object-space position to clip space. It plays the
// part of a vertex shader.
type VertexStage func(p mathutil.Vec3) mathutil.Vec4

// MVPStage is the plain pipeline: clip = mvp × p.
func MVPStage(mvp mathutil.Mat4) VertexStage {
	return func(p mathutil.Vec3) mathutil.Vec4 {
		return mvp.MulVec4(p.Point())
	}
}

// DrawOptions controls how DrawMesh fills triangles.
type DrawOptions struct {
	Wrap WrapMode
	// Tint is used when no texture is bound.
	Tint color.NRGBA
}

// DrawMesh runs every vertex of m through stage, maps the result onto
// fb.Viewport and rasterizes the triangles. Triangles with a vertex behind
// the eye are dropped rather than clipped. Returns the number of triangles
// submitted to the rasterizer.
func DrawMesh(fb *FrameBuffer, m mesh.TexturedMesh, stage VertexStage, tex *image.NRGBA, opts DrawOptions) int {
	vp := fb.Viewport
	if vp.Empty() {
		return 0
	}
	screen := make([]ScreenVertex, len(m.Vertices))
	visible := make([]bool, len(m.Vertices))
	for i, v := range m.Vertices {
		clip := stage(v.Position())
		if clip[3] < minClipW {
			continue
		}
		ndc := clip.PerspectiveDivide()
		screen[i] = ScreenVertex{
			X:    float64(vp.Min.X) + (ndc[0]+1)/2*float64(vp.Dx()),
			Y:    float64(vp.Min.Y) + (1-ndc[1])/2*float64(vp.Dy()),
			Z:    ndc[2],
			InvW: 1 / clip[3],
			U:    float64(v.U),
			V:    float64(v.V),
		}
		visible[i] = true
	}

	drawn := 0
	n := len(m.Vertices)
	for t := 0; t < m.TriangleCount(); t++ {
		idx := m.Triangle(t)
		ok := true
		for _, i := range idx {
			if i < 0 || i >= n || !visible[i] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		RasterizeTriangle(fb, [3]ScreenVertex{screen[idx[0]], screen[idx[1]], screen[idx[2]]}, tex, opts.Wrap, opts.Tint)
		drawn++
	}
	return drawn
}

// AverageColor returns the mean opaque color of img, used as a cheap frame
// fingerprint in manifests.
func AverageColor(img *image.NRGBA) color.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return color.NRGBA{}
	}

	var sumR, sumG, sumB, sumA float64
	total := w * h
	stride := img.Stride
	for y := 0; y < h; y++ {
		off := y * stride
		for x := 0; x < w; x++ {
			i := off + x*4
			sumR += float64(img.Pix[i])
			sumG += float64(img.Pix[i+1])
			sumB += float64(img.Pix[i+2])
			sumA += float64(img.Pix[i+3])
		}
	}
	n := float64(total)
	return color.NRGBA{uint8(sumR/n + 0.5), uint8(sumG/n + 0.5), uint8(sumB/n + 0.5), uint8(sumA/n + 0.5)}
}
