package headset

import (
	"fmt"
	"sort"
)

// Presets for common viewers on a 1920×1080 phone. Optical values are the
// published Cardboard viewer profiles.
var presets = map[string]Params{
	"cardboard-v1": {
		ScreenWidthMeters:            0.110,
		ScreenHeightMeters:           0.062,
		ScreenToLensDistance:         0.042,
		InterLensDistance:            0.060,
		VerticalAlignment:            AlignBottom,
		VerticalDistanceToLensCenter: 0.035,
		FOV:                          []float64{40, 40, 40, 40},
		KN:                           []float64{0.441, 0.156},
		ScreenWidthPixels:            1920,
		ScreenHeightPixels:           1080,
	},
	"cardboard-v2": {
		ScreenWidthMeters:            0.110,
		ScreenHeightMeters:           0.062,
		ScreenToLensDistance:         0.039,
		InterLensDistance:            0.0639,
		VerticalAlignment:            AlignBottom,
		VerticalDistanceToLensCenter: 0.035,
		FOV:                          []float64{60, 60, 60, 60},
		KN:                           []float64{0.34, 0.55},
		ScreenWidthPixels:            1920,
		ScreenHeightPixels:           1080,
	},
	// Same optics as cardboard-v1 without lens distortion.
	"none": {
		ScreenWidthMeters:            0.110,
		ScreenHeightMeters:           0.062,
		ScreenToLensDistance:         0.042,
		InterLensDistance:            0.060,
		VerticalAlignment:            AlignCenter,
		VerticalDistanceToLensCenter: 0.035,
		FOV:                          []float64{40, 40, 40, 40},
		ScreenWidthPixels:            1920,
		ScreenHeightPixels:           1080,
	},
}

// Preset returns a copy of a named preset.
func Preset(name string) (Params, error) {
	p, ok := presets[name]
	if !ok {
		return Params{}, fmt.Errorf("headset: unknown preset %q (have %v)", name, PresetNames())
	}
	p.FOV = append([]float64(nil), p.FOV...)
	p.KN = append([]float64(nil), p.KN...)
	return p, nil
}

// PresetNames lists the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
