package batch

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"vr-vddc-renderer/internal/postprocess"
	"vr-vddc-renderer/internal/raster"
	"vr-vddc-renderer/internal/renderbuffer"

	"github.com/HugoSmits86/nativewebp"
)

// Config holds the shared settings for encoding a frame sequence.
type Config struct {
	OutputDir string
	// Width and Height are the output size. Frames rendered larger are
	// downsampled to it.
	Width   int
	Height  int
	Workers int
	// Progress, when set, receives a line every two seconds.
	Progress func(done, total int, rate float64)
}

// Frame is one rendered frame handed over by the render loop.
type Frame struct {
	Index  int
	Image  *image.NRGBA
	Timing renderbuffer.Timing
}

// Result holds the outcome of encoding one frame.
type Result struct {
	Index   int
	Path    string
	Timing  renderbuffer.Timing
	Average color.NRGBA
	Success bool
	Error   string
}

// FrameName is the file name of frame i inside the output directory.
func FrameName(i int) string {
	return fmt.Sprintf("frame_%05d.webp", i)
}

// Run encodes frames from the channel until it is closed, using a worker
// pool. total is only used for progress reporting. Results are returned in
// frame order.
func Run(cfg Config, total int, frames <-chan Frame) []Result {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						cfg.Progress(int(p), total, float64(p)/elapsed)
					}
				}
			}
		}()
	}

	var (
		mu      sync.Mutex
		results = make([]Result, 0, total)
		wg      sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range frames {
				r := processFrame(cfg, f)
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
				processed.Add(1)
			}
		}()
	}

	wg.Wait()
	close(done)

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results
}

// ProgressPrinter prints progress the way the render CLI reports it.
func ProgressPrinter(done, total int, rate float64) {
	fmt.Printf("  [%d/%d] %.1f frames/sec\n", done, total, rate)
}

func processFrame(cfg Config, f Frame) Result {
	res := Result{Index: f.Index, Timing: f.Timing}
	if f.Image == nil {
		res.Error = "empty frame"
		return res
	}

	img := f.Image
	b := img.Bounds()
	if cfg.Width > 0 && cfg.Height > 0 && (b.Dx() != cfg.Width || b.Dy() != cfg.Height) {
		img = postprocess.Downsample(img, cfg.Width, cfg.Height)
	}
	res.Average = raster.AverageColor(img)

	outPath := filepath.Join(cfg.OutputDir, FrameName(f.Index))
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Error = err.Error()
		return res
	}

	out, err := os.Create(outPath)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer out.Close()

	if err := nativewebp.Encode(out, img, nil); err != nil {
		res.Error = fmt.Sprintf("WebP encode: %v", err)
		return res
	}

	res.Path = outPath
	res.Success = true
	return res
}
