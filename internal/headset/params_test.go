package headset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsValidate(t *testing.T) {
	for _, name := range PresetNames() {
		p, err := Preset(name)
		require.NoError(t, err)
		assert.NoError(t, p.Validate(), name)
	}
}

func TestPresetIsCopy(t *testing.T) {
	p, err := Preset("cardboard-v1")
	require.NoError(t, err)
	p.KN[0] = 42
	p.FOV[0] = 1

	again, err := Preset("cardboard-v1")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.441, 0.156}, again.KN)
	assert.Equal(t, 40.0, again.FOV[0])
}

func TestUnknownPreset(t *testing.T) {
	_, err := Preset("daydream")
	assert.ErrorContains(t, err, "unknown preset")
}

func TestValidateRejects(t *testing.T) {
	base, err := Preset("cardboard-v1")
	require.NoError(t, err)

	cases := map[string]func(p *Params){
		"missing fov":   func(p *Params) { p.FOV = nil },
		"short fov":     func(p *Params) { p.FOV = []float64{40, 40, 40} },
		"zero width":    func(p *Params) { p.ScreenWidthMeters = 0 },
		"neg height":    func(p *Params) { p.ScreenHeightMeters = -1 },
		"zero lens":     func(p *Params) { p.ScreenToLensDistance = 0 },
		"zero pixels":   func(p *Params) { p.ScreenWidthPixels = 0 },
		"fov too large": func(p *Params) { p.FOV = []float64{40, 90, 40, 40} },
	}
	for name, mutate := range cases {
		p := base
		p.FOV = append([]float64(nil), base.FOV...)
		mutate(&p)
		err := p.Validate()
		assert.True(t, errors.Is(err, ErrInvalidParams), "%s: %v", name, err)
	}
}

func TestValidateAllowsNoCoefficients(t *testing.T) {
	p, err := Preset("none")
	require.NoError(t, err)
	assert.Empty(t, p.KN)
	assert.NoError(t, p.Validate())
	assert.Equal(t, 1.0, p.Distortion().Factor(0.5))
}

func TestString(t *testing.T) {
	p, err := Preset("cardboard-v1")
	require.NoError(t, err)
	s := p.String()
	assert.Contains(t, s, "inter_lens_distance 0.06")
	assert.Contains(t, s, "vertical_alignment BOTTOM")
	assert.Contains(t, s, "K1=0.441, K2=0.156")
	assert.Contains(t, s, "1920x1080")
}

const jsonProfile = `{
  "ScreenWidthMeters": 0.12,
  "ScreenHeightMeters": 0.07,
  "ScreenToLensDistance": 0.04,
  "InterLensDistance": 0.06,
  "VerticalAlignment": 1,
  "VerticalDistanceToLensCenter": 0.035,
  "fov": [50, 50, 50, 50],
  "kN": [0.441, 0.156],
  "ScreenWidthPixels": 1920,
  "ScreenHeightPixels": 1080
}`

const yamlProfile = `
ScreenWidthMeters: 0.12
ScreenHeightMeters: 0.07
ScreenToLensDistance: 0.04
InterLensDistance: 0.06
VerticalAlignment: 1
VerticalDistanceToLensCenter: 0.035
fov: [50, 50, 50, 50]
kN: [0.441, 0.156]
ScreenWidthPixels: 1920
ScreenHeightPixels: 1080
`

const tomlProfile = `
ScreenWidthMeters = 0.12
ScreenHeightMeters = 0.07
ScreenToLensDistance = 0.04
InterLensDistance = 0.06
VerticalAlignment = 1
VerticalDistanceToLensCenter = 0.035
fov = [50.0, 50.0, 50.0, 50.0]
kN = [0.441, 0.156]
ScreenWidthPixels = 1920
ScreenHeightPixels = 1080
`

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"h.json": jsonProfile,
		"h.yaml": yamlProfile,
		"h.toml": tomlProfile,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		p, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, 0.06, p.InterLensDistance, name)
		assert.Equal(t, AlignCenter, p.VerticalAlignment, name)
		assert.Equal(t, []float64{50, 50, 50, 50}, p.FOV, name)
		assert.Equal(t, []float64{0.441, 0.156}, p.KN, name)
		assert.Equal(t, 1080, p.ScreenHeightPixels, name)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "headset: read")

	bad := filepath.Join(dir, "bad.ini")
	require.NoError(t, os.WriteFile(bad, []byte("x=1"), 0o644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "unsupported profile format")

	unknown := filepath.Join(dir, "unknown.json")
	require.NoError(t, os.WriteFile(unknown, []byte(`{"Lenses": 2}`), 0o644))
	_, err = Load(unknown)
	assert.ErrorContains(t, err, "headset: parse")

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"ScreenWidthMeters": 0.1}`), 0o644))
	_, err = Load(invalid)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "headset.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonProfile), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := Watch(ctx, path, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(updatedProfile), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case u := <-updates:
			// A write may be observed as a truncation first.
			if u.Err != nil {
				continue
			}
			assert.Equal(t, 0.065, u.Params.InterLensDistance)
			cancel()
			for range updates {
			}
			return
		case <-deadline:
			t.Fatal("no update from watcher")
		}
	}
}

const updatedProfile = `{
  "ScreenWidthMeters": 0.12,
  "ScreenHeightMeters": 0.07,
  "ScreenToLensDistance": 0.04,
  "InterLensDistance": 0.065,
  "VerticalAlignment": 0,
  "VerticalDistanceToLensCenter": 0.035,
  "fov": [50, 50, 50, 50],
  "kN": [0.34, 0.55],
  "ScreenWidthPixels": 1920,
  "ScreenHeightPixels": 1080
}`
