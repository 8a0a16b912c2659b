package headset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads a headset profile and validates it. The format is chosen by
// extension: .json, .yaml/.yml or .toml.
func Load(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("headset: read %s: %w", path, err)
	}
	p, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return Params{}, fmt.Errorf("headset: parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, fmt.Errorf("headset: %s: %w", path, err)
	}
	return p, nil
}

// Decode parses a profile in the format named by ext (with or without dot).
// It does not validate.
func Decode(data []byte, ext string) (Params, error) {
	var p Params
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Params{}, err
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Params{}, err
		}
	case "toml":
		if err := toml.Unmarshal(data, &p); err != nil {
			return Params{}, err
		}
	default:
		return Params{}, fmt.Errorf("unsupported profile format %q", ext)
	}
	return p, nil
}
