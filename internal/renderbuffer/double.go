// Package renderbuffer provides a double-buffered render target: one slot
// is drawn into while the other holds the last completed frame.
package renderbuffer

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"vr-vddc-renderer/internal/log"
	"vr-vddc-renderer/internal/raster"
)

// Timing records when a frame's commands were submitted and when they
// finished.
type Timing struct {
	StartSubmitCommands  time.Time
	StopSubmitCommands   time.Time
	GPUFinishedRendering time.Time
}

// Submit is the time spent issuing draw commands.
func (t Timing) Submit() time.Duration {
	return t.StopSubmitCommands.Sub(t.StartSubmitCommands)
}

// Total is the time from the first command to completion.
func (t Timing) Total() time.Duration {
	return t.GPUFinishedRendering.Sub(t.StartSubmitCommands)
}

// Fence completes when all work submitted for a frame is done.
// *errgroup.Group satisfies it.
type Fence interface {
	Wait() error
}

// DoubleBuffer is a two-slot render target. It is meant for one render
// goroutine: Bind, draw, UnbindAndSwap, in that order, every frame.
type DoubleBuffer struct {
	logger  *slog.Logger
	slots   [2]*raster.FrameBuffer
	timing  [2]Timing
	current int
	frames  int
	now     func() time.Time
}

// New allocates both slots at w×h.
func New(w, h int, logger *slog.Logger) *DoubleBuffer {
	return &DoubleBuffer{
		logger: log.Or(logger).With("component", "renderbuffer"),
		slots:  [2]*raster.FrameBuffer{raster.NewFrameBuffer(w, h), raster.NewFrameBuffer(w, h)},
		now:    time.Now,
	}
}

// Bind returns the slot to draw the next frame into, with the viewport
// reset to the full target, and starts the frame's timing.
func (b *DoubleBuffer) Bind() *raster.FrameBuffer {
	fb := b.slots[b.current]
	fb.SetViewport(fb.Bounds())
	b.timing[b.current] = Timing{StartSubmitCommands: b.now()}
	return fb
}

// UnbindAndSwap waits on fence without a timeout, then publishes the bound
// slot as the latest rendered frame. If the fence fails the frame is
// discarded and the slots are not swapped.
func (b *DoubleBuffer) UnbindAndSwap(fence Fence) error {
	t := &b.timing[b.current]
	t.StopSubmitCommands = b.now()
	if fence != nil {
		if err := fence.Wait(); err != nil {
			b.logger.Error("frame discarded", "slot", b.current, "error", err)
			return fmt.Errorf("renderbuffer: wait for frame %d: %w", b.frames, err)
		}
	}
	t.GPUFinishedRendering = b.now()
	b.current = (b.current + 1) % 2
	b.frames++
	return nil
}

// LatestRendered returns a copy of the last completed frame and, if timing
// is non-nil, stores that frame's timing in it. Before the first completed
// frame it returns a transparent image and zero timing.
func (b *DoubleBuffer) LatestRendered(timing *Timing) *image.NRGBA {
	latest := (b.current + 1) % 2
	if b.frames == 0 {
		if timing != nil {
			*timing = Timing{}
		}
		return image.NewNRGBA(b.slots[latest].Bounds())
	}
	if timing != nil {
		*timing = b.timing[latest]
	}
	return b.slots[latest].Image()
}

// Frames returns the number of completed frames.
func (b *DoubleBuffer) Frames() int { return b.frames }
