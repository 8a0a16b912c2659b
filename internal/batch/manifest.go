package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vr-vddc-renderer/internal/distortion"

	"github.com/google/uuid"
)

// Manifest describes a rendered frame sequence.
type Manifest struct {
	RunID      string `json:"run_id"`
	Headset    string `json:"headset"`
	Correction string `json:"correction"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`

	Coefficients        []float64 `json:"coefficients"`
	InverseCoefficients []float64 `json:"inverse_coefficients"`
	MaxRadiusSquared    float64   `json:"max_radius_squared"`
	Degenerate          bool      `json:"degenerate,omitempty"`

	Frames []ManifestEntry `json:"frames"`
}

// ManifestEntry represents one encoded frame in the output manifest.
type ManifestEntry struct {
	Index        int     `json:"index"`
	Image        string  `json:"image"`
	SubmitMillis float64 `json:"submit_ms"`
	TotalMillis  float64 `json:"total_ms"`
	AverageColor string  `json:"average_color"`
}

// NewManifest starts a manifest for one render run with a fresh run ID.
func NewManifest(headset, correction string, width, height int) Manifest {
	return Manifest{
		RunID:      uuid.NewString(),
		Headset:    headset,
		Correction: correction,
		Width:      width,
		Height:     height,
	}
}

// SetCalibration copies the lens description into the manifest.
func (m *Manifest) SetCalibration(forward distortion.Polynomial, cal distortion.Calibration) {
	m.Coefficients = forward.Coefficients()
	m.InverseCoefficients = cal.Inverse.Coefficients()
	m.MaxRadiusSquared = cal.MaxRadiusSquared
	m.Degenerate = cal.Degenerate
}

// Entries lists the successful results; image paths are relative to the
// output directory.
func Entries(results []Result) []ManifestEntry {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Index:        r.Index,
			Image:        filepath.Base(r.Path),
			SubmitMillis: float64(r.Timing.Submit().Microseconds()) / 1000,
			TotalMillis:  float64(r.Timing.Total().Microseconds()) / 1000,
			AverageColor: fmt.Sprintf("#%02x%02x%02x", r.Average.R, r.Average.G, r.Average.B),
		})
	}
	return entries
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	if m.Frames == nil {
		m.Frames = []ManifestEntry{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
