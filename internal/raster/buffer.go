package raster

import (
	"image"
	"image/color"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
// Rows run top to bottom like image.NRGBA.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // NDC depth per pixel, len = W*H, cleared to +inf
	// Viewport is the region draws map NDC onto and are scissored to.
	Viewport image.Rectangle
}

// NewFrameBuffer allocates a transparent color buffer and cleared depth,
// with the viewport covering the whole target.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	fb := &FrameBuffer{
		Width:    w,
		Height:   h,
		Color:    make([]uint8, n*4),
		ZBuf:     make([]float64, n),
		Viewport: image.Rect(0, 0, w, h),
	}
	fb.ClearDepth()
	return fb
}

// Bounds returns the full target rectangle.
func (fb *FrameBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// SetViewport restricts subsequent draws to r, clipped to the target.
func (fb *FrameBuffer) SetViewport(r image.Rectangle) {
	fb.Viewport = r.Intersect(fb.Bounds())
}

// WithViewport returns a view of fb that shares its buffers but draws into
// r. Views with disjoint viewports can be drawn into concurrently.
func (fb *FrameBuffer) WithViewport(r image.Rectangle) *FrameBuffer {
	view := *fb
	view.SetViewport(r)
	return &view
}

// Clear fills the whole color buffer with c and resets depth.
func (fb *FrameBuffer) Clear(c color.NRGBA) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = c.R
		fb.Color[i+1] = c.G
		fb.Color[i+2] = c.B
		fb.Color[i+3] = c.A
	}
	fb.ClearDepth()
}

// ClearDepth resets the depth buffer.
func (fb *FrameBuffer) ClearDepth() {
	inf := math.Inf(1)
	for i := range fb.ZBuf {
		fb.ZBuf[i] = inf
	}
}

// Image copies the color buffer into a new image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(fb.Bounds())
	copy(img.Pix, fb.Color)
	return img
}

// At returns the color of pixel (x, y).
func (fb *FrameBuffer) At(x, y int) color.NRGBA {
	i := (y*fb.Width + x) * 4
	return color.NRGBA{fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3]}
}
