package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"vr-vddc-renderer/internal/batch"
	"vr-vddc-renderer/internal/compositor"
	"vr-vddc-renderer/internal/config"
	"vr-vddc-renderer/internal/eyes"
	"vr-vddc-renderer/internal/headset"
	"vr-vddc-renderer/internal/log"
	"vr-vddc-renderer/internal/mathutil"
	"vr-vddc-renderer/internal/postprocess"
	"vr-vddc-renderer/internal/raster"
	"vr-vddc-renderer/internal/renderbuffer"
	"vr-vddc-renderer/internal/texture"
	"vr-vddc-renderer/internal/tracking"
	"vr-vddc-renderer/internal/viewport"

	"golang.org/x/sync/errgroup"
)

var (
	background = color.NRGBA{0, 0, 0, 255}
	worldA     = color.NRGBA{230, 230, 230, 255}
	worldB     = color.NRGBA{40, 90, 160, 255}
	hudA       = color.NRGBA{255, 200, 0, 255}
	hudB       = color.NRGBA{30, 30, 30, 255}
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to render config (.json, .yaml, .toml)")
	baseDir := flag.String("base", "", "Base directory for relative paths (default: cwd)")
	outputDir := flag.String("output", "", "Output directory (default: frames)")
	headsetFlag := flag.String("headset", "", "Headset preset name or profile path (default: cardboard-v1)")
	correction := flag.String("correction", "", "Distortion correction: shader, precompute or off")
	frames := flag.Int("frames", 0, "Number of frames to render (default: 30)")
	workers := flag.Int("workers", 0, "Number of encoder goroutines (default: NumCPU)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	watch := flag.Bool("watch", false, "Reload the headset profile between frames when it changes")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		BaseDir:    *baseDir,
		OutputDir:  *outputDir,
		Headset:    *headsetFlag,
		Correction: *correction,
		LogLevel:   *logLevel,
		Frames:     *frames,
		Workers:    *workers,
		Watch:      *watch,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.LogLevel)
	logger := log.L()

	params, err := loadHeadset(cfg.Headset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading headset: %v\n", err)
		os.Exit(1)
	}

	state := eyes.New(logger)
	comp := compositor.New(state, compositor.Options{
		EnableVDDC:       cfg.Correction != config.CorrectionOff,
		PrecomputeStatic: cfg.Correction == config.CorrectionPrecompute,
		Wrap:             raster.ClampToEdge,
	}, logger)
	if err := comp.UpdateHeadset(params); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Build texture index
	var texCache *texture.Cache
	if cfg.TextureDir != "" {
		texIndex := texture.BuildIndex(cfg.TextureDir)
		texCache = texture.NewCache(texIndex, logger)
		fmt.Printf("Textures: %d indexed\n", texIndex.Len())
	}
	addLayers(comp, cfg.Layers, texCache)

	outW, outH := params.ScreenWidthPixels, params.ScreenHeightPixels
	renderW, renderH := outW*cfg.Supersample, outH*cfg.Supersample

	fmt.Println("VR distortion-corrected renderer → WebP")
	fmt.Printf("Headset: %s, Correction: %s, Layers: %d\n", cfg.Headset, cfg.Correction, len(comp.Layers()))
	fmt.Printf("Frames: %d @ %.0f fps, Size: %dx%d (x%d), Workers: %d\n",
		cfg.Frames, cfg.FPS, outW, outH, cfg.Supersample, cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var updates <-chan headset.Update
	if cfg.Watch {
		updates, err = headset.Watch(ctx, cfg.Headset, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	start := time.Now()

	// Encode in the background while the render loop produces frames
	frameChan := make(chan batch.Frame, cfg.Workers*2)
	resultChan := make(chan []batch.Result, 1)
	go func() {
		resultChan <- batch.Run(batch.Config{
			OutputDir: cfg.OutputDir,
			Width:     outW,
			Height:    outH,
			Workers:   cfg.Workers,
			Progress:  batch.ProgressPrinter,
		}, cfg.Frames, frameChan)
	}()

	buffer := renderbuffer.New(renderW, renderH, logger)
	tracker := tracking.Sweep{
		Start:          start,
		YawRate:        mathutil.Deg2Rad(cfg.Tracking.YawDegreesPerSecond),
		PitchAmplitude: mathutil.Deg2Rad(cfg.Tracking.PitchDegrees),
		PitchPeriod:    time.Duration(cfg.Tracking.PitchPeriodSeconds * float64(time.Second)),
	}
	frameInterval := time.Duration(float64(time.Second) / cfg.FPS)

	dropped := 0
	for i := 0; i < cfg.Frames && ctx.Err() == nil; i++ {
		applyUpdates(comp, updates)

		fb := buffer.Bind()
		fb.Clear(background)
		head := state.UpdateHeadRotation(tracker, start.Add(time.Duration(i)*frameInterval))
		rctx := compositor.RenderContext{Target: fb, HeadRotation: head}

		var g errgroup.Group
		for _, eye := range viewport.Eyes {
			g.Go(func() error {
				comp.DrawLayers(rctx, eye)
				return nil
			})
		}
		if err := buffer.UnbindAndSwap(&g); err != nil {
			dropped++
			continue
		}

		var timing renderbuffer.Timing
		img := buffer.LatestRendered(&timing)
		if cfg.Occlusion {
			data := state.Undistortion()
			for _, eye := range viewport.Eyes {
				postprocess.Occlude(img, state.Viewport(eye, renderW, renderH), func(ndc mathutil.Vec2) bool {
					return data.VisibleThroughLens(ndc, eye)
				}, background)
			}
		}
		frameChan <- batch.Frame{Index: i, Image: img, Timing: timing}
	}
	close(frameChan)
	results := <-resultChan

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, cfg.Frames)
	if dropped > 0 {
		fmt.Printf("Dropped: %d\n", dropped)
	}

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", batch.FrameName(e.Index), e.Error)
		}
	}

	// Write manifest
	manifest := batch.NewManifest(cfg.Headset, cfg.Correction, outW, outH)
	manifest.Frames = batch.Entries(results)
	manifest.SetCalibration(state.Params().Distortion(), state.Calibration())
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, manifest); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 || dropped > 0 {
		os.Exit(1)
	}
}

func loadHeadset(name string) (headset.Params, error) {
	if config.IsProfilePath(name) {
		return headset.Load(name)
	}
	return headset.Preset(name)
}

func addLayers(comp *compositor.Compositor, layers []config.Layer, cache *texture.Cache) {
	for _, l := range layers {
		mode := compositor.Full
		a, b := worldA, worldB
		if l.HeadTracking == config.TrackingNone {
			mode = compositor.None
			a, b = hudA, hudB
		}

		tex := texture.Checkerboard(64, 64, 8, a, b)
		if l.Texture != "" && cache != nil {
			if img := cache.Resolve(l.Texture); img != nil {
				tex = img
			} else {
				fmt.Printf("Warning: texture %q not found, using checkerboard\n", l.Texture)
			}
		}
		comp.AddCanvasLayer(l.Z, l.Width, l.Height, tex, mode)
	}
}

// applyUpdates drains pending profile reloads without blocking.
func applyUpdates(comp *compositor.Compositor, updates <-chan headset.Update) {
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return
			}
			if u.Err != nil {
				fmt.Fprintf(os.Stderr, "Warning: headset reload: %v\n", u.Err)
				continue
			}
			if err := comp.UpdateHeadset(u.Params); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: headset reload: %v\n", err)
				continue
			}
			fmt.Println("Headset reloaded")
		default:
			return
		}
	}
}
