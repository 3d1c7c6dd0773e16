package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Render modes accepted by RenderConfig.Mode.
const (
	ModeAuto   = "auto"
	ModeWBOIT  = "wboit"
	ModeOpaque = "opaque"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the main configuration
type Config struct {
	Window WindowConfig `yaml:"window"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
	Demo   DemoConfig   `yaml:"demo"`
}

// WindowConfig contains the host window settings used by the demo
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	VSync  bool   `yaml:"vsync"`
	Title  string `yaml:"title"`
}

// RenderConfig contains the transparency renderer settings
type RenderConfig struct {
	Mode string `yaml:"mode"` // auto, wboit, opaque

	// QuadScale scales the composite full-screen quad. 1.0 maps the quad
	// exactly onto the target; other values are host calibration.
	QuadScale float32 `yaml:"quad_scale"`

	// MinAccum is the accumulated weight below which the composite pass
	// discards a pixel.
	MinAccum float32 `yaml:"min_accum"`

	Weight WeightConfig `yaml:"weight"`
}

// WeightConfig holds the WBOIT depth weight parameters:
// weight = alpha * clamp(Scale / (Epsilon + (z/DepthRange)^Exponent), Min, Max)
type WeightConfig struct {
	Scale      float32 `yaml:"scale"`
	Epsilon    float32 `yaml:"epsilon"`
	DepthRange float32 `yaml:"depth_range"`
	Exponent   float32 `yaml:"exponent"`
	Min        float32 `yaml:"min"`
	Max        float32 `yaml:"max"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty logs to the console only
}

// DemoConfig contains settings for the demo application
type DemoConfig struct {
	Plots       int   `yaml:"plots"`
	Points      int   `yaml:"points"`
	Seed        int64 `yaml:"seed"`
	WatchConfig bool  `yaml:"watch_config"`
}

// DefaultWeight returns the empirically tuned weight parameters.
func DefaultWeight() WeightConfig {
	return WeightConfig{
		Scale:      0.03,
		Epsilon:    1e-5,
		DepthRange: 200,
		Exponent:   4,
		Min:        1e-2,
		Max:        3e3,
	}
}

// DefaultRender returns the default renderer settings.
func DefaultRender() RenderConfig {
	return RenderConfig{
		Mode:      ModeAuto,
		QuadScale: 1.0,
		MinAccum:  1e-5,
		Weight:    DefaultWeight(),
	}
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
			Title:  "implot3d demo",
		},
		Render: DefaultRender(),
		Log: LogConfig{
			Level: "info",
		},
		Demo: DemoConfig{
			Plots:       2,
			Points:      400,
			Seed:        1,
			WatchConfig: true,
		},
	}
}

// Validate checks the renderer settings.
func (rc RenderConfig) Validate() error {
	switch strings.ToLower(rc.Mode) {
	case ModeAuto, ModeWBOIT, ModeOpaque:
	default:
		return fmt.Errorf("%w: render.mode %q (want auto, wboit or opaque)", ErrInvalid, rc.Mode)
	}
	if rc.QuadScale <= 0 {
		return fmt.Errorf("%w: render.quad_scale must be positive, got %g", ErrInvalid, rc.QuadScale)
	}
	if rc.MinAccum <= 0 {
		return fmt.Errorf("%w: render.min_accum must be positive, got %g", ErrInvalid, rc.MinAccum)
	}
	return rc.Weight.Validate()
}

// Validate checks the weight parameters.
func (wc WeightConfig) Validate() error {
	if wc.DepthRange <= 0 {
		return fmt.Errorf("%w: render.weight.depth_range must be positive, got %g", ErrInvalid, wc.DepthRange)
	}
	if wc.Epsilon <= 0 {
		return fmt.Errorf("%w: render.weight.epsilon must be positive, got %g", ErrInvalid, wc.Epsilon)
	}
	if wc.Min < 0 || wc.Max < wc.Min {
		return fmt.Errorf("%w: render.weight clamp [%g, %g]", ErrInvalid, wc.Min, wc.Max)
	}
	return nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Demo.Plots < 0 || c.Demo.Points < 0 {
		return fmt.Errorf("%w: demo counts must not be negative", ErrInvalid)
	}
	return c.Render.Validate()
}

// LoadConfig loads the configuration from a file. On any failure the
// defaults are returned together with the error.
func LoadConfig(filePath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return cfg, fmt.Errorf("config file not found, using defaults: %w", err)
	}

	loaded := DefaultConfig()
	if err := yaml.UnmarshalStrict(data, loaded); err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}
	loaded.Render.Mode = strings.ToLower(loaded.Render.Mode)
	if err := loaded.Validate(); err != nil {
		return cfg, err
	}

	return loaded, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(cfg *Config, filePath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
