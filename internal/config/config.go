package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Correction modes.
const (
	// CorrectionOff draws layers with the plain projection.
	CorrectionOff = "off"
	// CorrectionShader displaces every layer in the vertex stage.
	CorrectionShader = "shader"
	// CorrectionPrecompute distorts head-fixed layers once per headset
	// update and displaces the rest in the vertex stage.
	CorrectionPrecompute = "precompute"
)

// Head tracking modes for layers.
const (
	TrackingFull = "full"
	TrackingNone = "none"
)

// Layer is one textured canvas in the scene.
type Layer struct {
	// Texture is a name resolved in TextureDir, or empty for a checkerboard.
	Texture      string  `json:"texture" yaml:"texture" toml:"texture"`
	Z            float64 `json:"z" yaml:"z" toml:"z"`
	Width        float64 `json:"width" yaml:"width" toml:"width"`
	Height       float64 `json:"height" yaml:"height" toml:"height"`
	HeadTracking string  `json:"head_tracking" yaml:"head_tracking" toml:"head_tracking"`
}

// Tracking drives the synthetic head motion used for a render.
type Tracking struct {
	YawDegreesPerSecond float64 `json:"yaw_deg_per_sec" yaml:"yaw_deg_per_sec" toml:"yaw_deg_per_sec"`
	PitchDegrees        float64 `json:"pitch_deg" yaml:"pitch_deg" toml:"pitch_deg"`
	PitchPeriodSeconds  float64 `json:"pitch_period_sec" yaml:"pitch_period_sec" toml:"pitch_period_sec"`
}

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir    string `json:"base_dir" yaml:"base_dir" toml:"base_dir"`
	TextureDir string `json:"texture_dir" yaml:"texture_dir" toml:"texture_dir"`
	OutputDir  string `json:"output_dir" yaml:"output_dir" toml:"output_dir"`

	// Headset is a preset name or a path to a headset profile.
	Headset string `json:"headset" yaml:"headset" toml:"headset"`
	// Watch reloads a headset profile file between frames when it changes.
	Watch bool `json:"watch" yaml:"watch" toml:"watch"`

	// Render settings
	Frames      int     `json:"frames" yaml:"frames" toml:"frames"`
	FPS         float64 `json:"fps" yaml:"fps" toml:"fps"`
	Supersample int     `json:"supersample" yaml:"supersample" toml:"supersample"`
	Workers     int     `json:"workers" yaml:"workers" toml:"workers"`
	Correction  string  `json:"correction" yaml:"correction" toml:"correction"`
	Occlusion   bool    `json:"occlusion" yaml:"occlusion" toml:"occlusion"`
	LogLevel    string  `json:"log_level" yaml:"log_level" toml:"log_level"`

	Tracking Tracking `json:"tracking" yaml:"tracking" toml:"tracking"`
	Layers   []Layer  `json:"layers" yaml:"layers" toml:"layers"`
}

// Load reads a config file and returns Config. The format follows the
// extension: .yaml/.yml, .toml, anything else is JSON.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	BaseDir    string
	OutputDir  string
	Headset    string
	Correction string
	LogLevel   string
	Frames     int
	Workers    int
	Watch      bool
}

// DefaultLayers is the scene used when the config names none: a world-fixed
// panel ahead of the viewer and a small head-fixed status strip below it.
func DefaultLayers() []Layer {
	return []Layer{
		{Z: -2, Width: 2.4, Height: 1.6, HeadTracking: TrackingFull},
		{Z: -1, Width: 0.4, Height: 0.1, HeadTracking: TrackingNone},
	}
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.BaseDir != "" {
		c.BaseDir = flags.BaseDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Headset != "" {
		c.Headset = flags.Headset
	}
	if flags.Correction != "" {
		c.Correction = flags.Correction
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Watch {
		c.Watch = true
	}

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}

	// Resolve relative paths against base dir
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.BaseDir, "frames")
	} else if !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(c.BaseDir, c.OutputDir)
	}
	if c.TextureDir != "" && !filepath.IsAbs(c.TextureDir) {
		c.TextureDir = filepath.Join(c.BaseDir, c.TextureDir)
	}
	if c.Headset == "" {
		c.Headset = "cardboard-v1"
	} else if IsProfilePath(c.Headset) && !filepath.IsAbs(c.Headset) {
		c.Headset = filepath.Join(c.BaseDir, c.Headset)
	}

	// Defaults for render settings
	if c.Frames <= 0 {
		c.Frames = 30
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Correction == "" {
		c.Correction = CorrectionShader
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Tracking == (Tracking{}) {
		c.Tracking = Tracking{YawDegreesPerSecond: 30, PitchDegrees: 5, PitchPeriodSeconds: 2}
	}
	if len(c.Layers) == 0 {
		c.Layers = DefaultLayers()
	}
	for i := range c.Layers {
		if c.Layers[i].HeadTracking == "" {
			c.Layers[i].HeadTracking = TrackingFull
		}
	}
}

// Validate reports settings Resolve cannot repair.
func (c *Config) Validate() error {
	switch c.Correction {
	case CorrectionOff, CorrectionShader, CorrectionPrecompute:
	default:
		return fmt.Errorf("config: unknown correction %q", c.Correction)
	}
	if c.Supersample > 4 {
		return fmt.Errorf("config: supersample %d out of range 1-4", c.Supersample)
	}
	for i, l := range c.Layers {
		if l.Width <= 0 || l.Height <= 0 {
			return fmt.Errorf("config: layer %d: size must be positive", i)
		}
		if l.HeadTracking != TrackingFull && l.HeadTracking != TrackingNone {
			return fmt.Errorf("config: layer %d: unknown head tracking %q", i, l.HeadTracking)
		}
	}
	if c.Watch && !IsProfilePath(c.Headset) {
		return fmt.Errorf("config: watch needs a headset profile file, got preset %q", c.Headset)
	}
	return nil
}

// IsProfilePath reports whether a headset setting names a file rather than
// a preset.
func IsProfilePath(headset string) bool {
	return filepath.Ext(headset) != "" || strings.ContainsRune(headset, filepath.Separator)
}
