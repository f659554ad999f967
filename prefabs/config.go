package prefabs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// ViewerConfig is the optional strview.yaml file.
type ViewerConfig struct {
	Width      int          `yaml:"width"`
	Height     int          `yaml:"height"`
	Scale      float64      `yaml:"scale"`
	Background *YAMLColor   `yaml:"background"`
	Assets     string       `yaml:"assets"`
	ColorKey   *bool        `yaml:"color_key"`
	Advancer   AdvancerSpec `yaml:"advancer"`
}

// AdvancerSpec picks a frame advance policy. Options are decoded according
// to Kind: step takes none, fixed takes FixedRateOptions and script takes
// ScriptOptions.
type AdvancerSpec struct {
	Kind    string         `yaml:"kind"`
	Options map[string]any `yaml:"options"`
}

type FixedRateOptions struct {
	FPS     int `yaml:"fps"`
	MaxStep int `yaml:"max_step"`
}

type ScriptOptions struct {
	Script string `yaml:"script"`
}

const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// DefaultViewerConfig is what strview runs with when no file is given.
func DefaultViewerConfig() ViewerConfig {
	on := true
	return ViewerConfig{
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Scale:    1,
		ColorKey: &on,
		Advancer: AdvancerSpec{Kind: "fixed"},
	}
}

// LoadViewerConfig reads path over the defaults. A missing file is not an
// error.
func LoadViewerConfig(path string) (ViewerConfig, error) {
	cfg := DefaultViewerConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("prefabs: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("prefabs: unmarshal %s: %w", path, err)
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	if cfg.Advancer.Kind == "" {
		cfg.Advancer.Kind = "fixed"
	}
	return cfg, nil
}

// UseColorKey reports whether magenta should be keyed out of textures.
func (c ViewerConfig) UseColorKey() bool {
	return c.ColorKey == nil || *c.ColorKey
}

// DecodeOptions re-decodes a loosely typed YAML value into T.
func DecodeOptions[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}
