// Package compositor draws VR layers into the eye viewports of a frame,
// applying vertex displacement distortion correction per layer.
package compositor

import (
	"fmt"
	"image"
	"log/slog"

	"vr-vddc-renderer/internal/eyes"
	"vr-vddc-renderer/internal/headset"
	"vr-vddc-renderer/internal/log"
	"vr-vddc-renderer/internal/mathutil"
	"vr-vddc-renderer/internal/mesh"
	"vr-vddc-renderer/internal/raster"
	"vr-vddc-renderer/internal/vddc"
	"vr-vddc-renderer/internal/viewport"
)

// CanvasTessellation is the grid size of canvas layers. The correction is
// applied per vertex, so a coarse grid would show straight edges.
const CanvasTessellation = 10

// HeadTracking selects whether a layer moves with the head.
type HeadTracking int

const (
	// None fixes the layer relative to the head, like a HUD.
	None HeadTracking = iota
	// Full places the layer in the world.
	Full
)

func (h HeadTracking) String() string {
	switch h {
	case None:
		return "none"
	case Full:
		return "full"
	}
	return fmt.Sprintf("HeadTracking(%d)", int(h))
}

// Layer is one textured mesh. Static layers may carry a pre-distorted
// copy of the mesh per eye.
type Layer struct {
	Mesh         mesh.TexturedMesh
	Texture      *image.NRGBA
	HeadTracking HeadTracking

	distorted [2]*mesh.TexturedMesh
}

// Precomputed reports whether the layer is drawn from pre-distorted meshes.
func (l *Layer) Precomputed() bool {
	return l.distorted[viewport.Left] != nil && l.distorted[viewport.Right] != nil
}

// Options configure a Compositor.
type Options struct {
	// EnableVDDC turns on distortion correction. Without it layers are
	// drawn with the plain projection.
	EnableVDDC bool
	// PrecomputeStatic distorts head-fixed layers once per headset update
	// instead of in the vertex stage every frame.
	PrecomputeStatic bool
	Wrap             raster.WrapMode
}

// RenderContext is everything one draw pass reads besides the layers.
type RenderContext struct {
	Target *raster.FrameBuffer
	// HeadRotation is the rotation sampled for this frame.
	HeadRotation mathutil.Mat4
}

// Compositor owns the layer list. Layer changes and headset updates must
// happen between frames; DrawLayers for the two eyes may run concurrently.
type Compositor struct {
	logger *slog.Logger
	eyes   *eyes.State
	opts   Options
	layers []*Layer
}

// New returns a Compositor drawing with the given eye state.
func New(state *eyes.State, opts Options, logger *slog.Logger) *Compositor {
	return &Compositor{
		logger: log.Or(logger).With("component", "compositor"),
		eyes:   state,
		opts:   opts,
	}
}

// Eyes returns the eye state the compositor draws with.
func (c *Compositor) Eyes() *eyes.State { return c.eyes }

// Layers returns the current layers in draw order.
func (c *Compositor) Layers() []*Layer { return c.layers }

// AddLayer appends a layer. The mesh is copied.
func (c *Compositor) AddLayer(m mesh.TexturedMesh, tex *image.NRGBA, tracking HeadTracking) *Layer {
	l := &Layer{Mesh: m.Clone(), Texture: tex, HeadTracking: tracking}
	c.precompute(l)
	c.layers = append(c.layers, l)
	c.logger.Debug("layer added",
		"index", len(c.layers)-1, "vertices", len(m.Vertices),
		"head_tracking", tracking, "precomputed", l.Precomputed())
	return l
}

// AddCanvasLayer adds a width×height plane at (0, 0, z) showing tex.
func (c *Compositor) AddCanvasLayer(z, width, height float64, tex *image.NRGBA, tracking HeadTracking) *Layer {
	return c.AddLayer(mesh.Canvas(CanvasTessellation, z, width, height), tex, tracking)
}

// RemoveLayers drops every layer.
func (c *Compositor) RemoveLayers() {
	c.layers = nil
}

// UpdateHeadset applies new headset parameters and redoes the static
// precompute. On error nothing changes.
func (c *Compositor) UpdateHeadset(p headset.Params) error {
	if err := c.eyes.Update(p); err != nil {
		return fmt.Errorf("compositor: %w", err)
	}
	for _, l := range c.layers {
		c.precompute(l)
	}
	return nil
}

func (c *Compositor) precompute(l *Layer) {
	l.distorted = [2]*mesh.TexturedMesh{}
	if !c.opts.EnableVDDC || !c.opts.PrecomputeStatic || l.HeadTracking != None {
		return
	}
	data := c.eyes.Undistortion()
	for _, eye := range viewport.Eyes {
		m := vddc.DistortMesh(data, eye, c.eyes.Transform(eye), l.Mesh)
		l.distorted[eye] = &m
	}
}

// DrawLayers draws every layer for eye into its half of ctx.Target and
// returns the number of triangles submitted.
func (c *Compositor) DrawLayers(ctx RenderContext, eye viewport.Eye) int {
	fb := ctx.Target
	target := fb.WithViewport(c.eyes.Viewport(eye, fb.Width, fb.Height))
	tr := c.eyes.Transform(eye)
	data := c.eyes.Undistortion()
	opts := raster.DrawOptions{Wrap: c.opts.Wrap}

	drawn := 0
	for _, l := range c.layers {
		head := ctx.HeadRotation
		if l.HeadTracking == None {
			head = mathutil.Mat4Identity()
		}
		mvp := mathutil.Mat4Mul(tr.Projection, mathutil.Mat4Mul(tr.EyeFromHead, head))

		switch {
		case !c.opts.EnableVDDC:
			drawn += raster.DrawMesh(target, l.Mesh, raster.MVPStage(mvp), l.Texture, opts)
		case l.distorted[eye] != nil:
			drawn += raster.DrawMesh(target, *l.distorted[eye], raster.MVPStage(mvp), l.Texture, opts)
		default:
			drawn += raster.DrawMesh(target, l.Mesh, Stage(data, eye, tr, head), l.Texture, opts)
		}
	}
	return drawn
}

// Stage is the distortion-correcting vertex stage: the plain projection
// followed by the fitted inverse in NDC, with depth and w kept.
func Stage(data vddc.Data, eye viewport.Eye, tr vddc.Transform, head mathutil.Mat4) raster.VertexStage {
	mvp := mathutil.Mat4Mul(tr.Projection, mathutil.Mat4Mul(tr.EyeFromHead, head))
	return func(p mathutil.Vec3) mathutil.Vec4 {
		clip := mvp.MulVec4(p.Point())
		if clip[3] <= 0 {
			return clip
		}
		ndc := clip.PerspectiveDivide()
		u := data.PolynomialNDCForDistortedNDC(ndc.XY(), eye)
		return mathutil.Vec4{u[0] * clip[3], u[1] * clip[3], clip[2], clip[3]}
	}
}
