// Package headset holds the optical description of a VR viewer and the
// boundary where it enters the renderer from host configuration.
package headset

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"vr-vddc-renderer/internal/distortion"
)

// ErrInvalidParams is wrapped by every validation failure.
var ErrInvalidParams = errors.New("invalid headset params")

// VerticalAlignment selects where the lens center sits relative to the screen.
type VerticalAlignment int

const (
	AlignBottom VerticalAlignment = iota
	AlignCenter
	AlignTop
)

func (a VerticalAlignment) String() string {
	switch a {
	case AlignBottom:
		return "BOTTOM"
	case AlignCenter:
		return "CENTER"
	case AlignTop:
		return "TOP"
	}
	return fmt.Sprintf("VerticalAlignment(%d)", int(a))
}

// Params is the data-transfer record for one headset. Field names follow the
// host-side record so profiles can be exchanged unchanged. Distances are in
// meters, FOV in degrees (left, right, bottom, top) for the left eye.
type Params struct {
	ScreenWidthMeters            float64           `json:"ScreenWidthMeters" yaml:"ScreenWidthMeters" toml:"ScreenWidthMeters"`
	ScreenHeightMeters           float64           `json:"ScreenHeightMeters" yaml:"ScreenHeightMeters" toml:"ScreenHeightMeters"`
	ScreenToLensDistance         float64           `json:"ScreenToLensDistance" yaml:"ScreenToLensDistance" toml:"ScreenToLensDistance"`
	InterLensDistance            float64           `json:"InterLensDistance" yaml:"InterLensDistance" toml:"InterLensDistance"`
	VerticalAlignment            VerticalAlignment `json:"VerticalAlignment" yaml:"VerticalAlignment" toml:"VerticalAlignment"`
	VerticalDistanceToLensCenter float64           `json:"VerticalDistanceToLensCenter" yaml:"VerticalDistanceToLensCenter" toml:"VerticalDistanceToLensCenter"`
	FOV                          []float64         `json:"fov" yaml:"fov" toml:"fov"`
	KN                           []float64         `json:"kN" yaml:"kN" toml:"kN"`
	ScreenWidthPixels            int               `json:"ScreenWidthPixels" yaml:"ScreenWidthPixels" toml:"ScreenWidthPixels"`
	ScreenHeightPixels           int               `json:"ScreenHeightPixels" yaml:"ScreenHeightPixels" toml:"ScreenHeightPixels"`
}

// Validate checks the record before it reaches the distortion core.
func (p Params) Validate() error {
	var problems []string
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			problems = append(problems, fmt.Sprintf("%s must be > 0, got %v", name, v))
		}
	}
	positive("ScreenWidthMeters", p.ScreenWidthMeters)
	positive("ScreenHeightMeters", p.ScreenHeightMeters)
	positive("ScreenToLensDistance", p.ScreenToLensDistance)
	if p.InterLensDistance < 0 || math.IsNaN(p.InterLensDistance) {
		problems = append(problems, fmt.Sprintf("InterLensDistance must be >= 0, got %v", p.InterLensDistance))
	}
	if len(p.FOV) != 4 {
		problems = append(problems, fmt.Sprintf("fov needs 4 angles, got %d", len(p.FOV)))
	} else {
		for i, a := range p.FOV {
			if !(a > 0 && a < 90) {
				problems = append(problems, fmt.Sprintf("fov[%d] must be in (0, 90) degrees, got %v", i, a))
			}
		}
	}
	for i, k := range p.KN {
		if math.IsNaN(k) || math.IsInf(k, 0) {
			problems = append(problems, fmt.Sprintf("kN[%d] is not finite", i))
		}
	}
	if p.ScreenWidthPixels <= 0 || p.ScreenHeightPixels <= 0 {
		problems = append(problems, fmt.Sprintf("screen resolution must be > 0, got %dx%d", p.ScreenWidthPixels, p.ScreenHeightPixels))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(problems, "; "))
	}
	return nil
}

// FOVArray returns the device FOV as a fixed tuple. Callers validate first.
func (p Params) FOVArray() [4]float64 {
	var fov [4]float64
	copy(fov[:], p.FOV)
	return fov
}

// Distortion returns the forward radial distortion model of the lenses.
func (p Params) Distortion() distortion.Polynomial {
	return distortion.New(p.KN)
}

// String dumps all parameters for diagnostics. Not a stable format.
func (p Params) String() string {
	var sb strings.Builder
	sb.WriteString("HeadsetParams:\n")
	fmt.Fprintf(&sb, "  screen_width_meters %g screen_height_meters %g\n", p.ScreenWidthMeters, p.ScreenHeightMeters)
	fmt.Fprintf(&sb, "  screen_to_lens_distance %g inter_lens_distance %g\n", p.ScreenToLensDistance, p.InterLensDistance)
	fmt.Fprintf(&sb, "  vertical_alignment %s tray_to_lens_distance %g\n", p.VerticalAlignment, p.VerticalDistanceToLensCenter)
	fmt.Fprintf(&sb, "  device_fov_left %v\n", p.FOV)
	fmt.Fprintf(&sb, "  radial_distortion %s\n", p.Distortion())
	fmt.Fprintf(&sb, "  screen_pixels %dx%d", p.ScreenWidthPixels, p.ScreenHeightPixels)
	return sb.String()
}
