package batch

import (
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vr-vddc-renderer/internal/distortion"
	"vr-vddc-renderer/internal/renderbuffer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func feed(frames ...Frame) <-chan Frame {
	ch := make(chan Frame, len(frames))
	for _, f := range frames {
		ch <- f
	}
	close(ch)
	return ch
}

func decode(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := webp.Decode(f)
	require.NoError(t, err)
	return img
}

func TestRunEncodesFramesInOrder(t *testing.T) {
	dir := t.TempDir()
	red := color.NRGBA{255, 0, 0, 255}
	var frames []Frame
	for i := 5; i >= 0; i-- {
		frames = append(frames, Frame{Index: i, Image: solid(8, 4, red)})
	}

	results := Run(Config{OutputDir: dir, Workers: 3}, len(frames), feed(frames...))
	require.Len(t, results, 6)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.True(t, r.Success, r.Error)
		assert.Equal(t, filepath.Join(dir, FrameName(i)), r.Path)
		assert.Equal(t, red, r.Average)

		img := decode(t, r.Path)
		assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
	}
}

func TestRunDownsamplesSupersampledFrames(t *testing.T) {
	dir := t.TempDir()
	results := Run(Config{OutputDir: dir, Width: 8, Height: 4, Workers: 1}, 1,
		feed(Frame{Index: 0, Image: solid(16, 8, color.NRGBA{0, 0, 255, 255})}))
	require.Len(t, results, 1)
	require.True(t, results[0].Success, results[0].Error)

	img := decode(t, results[0].Path)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
}

func TestRunReportsFailures(t *testing.T) {
	dir := t.TempDir()
	// A file where the output directory should be.
	blocked := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(blocked, nil, 0o644))

	results := Run(Config{OutputDir: blocked, Workers: 2}, 2, feed(
		Frame{Index: 0, Image: solid(2, 2, color.NRGBA{A: 255})},
		Frame{Index: 1},
	))
	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Error)
	assert.False(t, results[1].Success)
	assert.Equal(t, "empty frame", results[1].Error)
	assert.Empty(t, Entries(results))
}

func TestManifest(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	results := []Result{
		{
			Index:   0,
			Path:    "/tmp/x/" + FrameName(0),
			Success: true,
			Average: color.NRGBA{255, 128, 0, 255},
			Timing: renderbuffer.Timing{
				StartSubmitCommands:  start,
				StopSubmitCommands:   start.Add(2 * time.Millisecond),
				GPUFinishedRendering: start.Add(5 * time.Millisecond),
			},
		},
		{Index: 1, Error: "boom"},
	}

	forward := distortion.New([]float64{0.441, 0.156})
	m := NewManifest("cardboard-v1", "shader", 8, 4)
	m.Frames = Entries(results)
	m.SetCalibration(forward, distortion.Calibrate(forward, nil))

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, WriteManifest(path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Manifest
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, m.RunID, got.RunID)
	assert.Len(t, got.RunID, 36)
	assert.Equal(t, "cardboard-v1", got.Headset)
	assert.Equal(t, []float64{0.441, 0.156}, got.Coefficients)
	assert.Len(t, got.InverseCoefficients, distortion.InverseCoefficients)
	assert.GreaterOrEqual(t, got.MaxRadiusSquared, distortion.CalibrationMinRadiusSquared)
	require.Len(t, got.Frames, 1)
	assert.Equal(t, ManifestEntry{
		Index:        0,
		Image:        FrameName(0),
		SubmitMillis: 2,
		TotalMillis:  5,
		AverageColor: "#ff8000",
	}, got.Frames[0])
}

func TestNewManifestRunIDsDiffer(t *testing.T) {
	a := NewManifest("none", "off", 1, 1)
	b := NewManifest("none", "off", 1, 1)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestWriteManifestEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, WriteManifest(path, Manifest{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"frames": []`)
}
