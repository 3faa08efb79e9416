// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/user/freegif/pkg/encparams"
	"github.com/user/freegif/pkg/pipeline"
	"github.com/user/freegif/pkg/ports"
	"github.com/user/freegif/pkg/session"
	"github.com/user/freegif/pkg/stages/selector"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid value")

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Config represents the full configuration for freegif. Encode fields
// left unset keep the values of Preset.
type Config struct {
	// Sampling
	FPS       int    `yaml:"fps" toml:"fps"`
	MaxFrames int    `yaml:"max_frames" toml:"max_frames"`
	DelayMode string `yaml:"delay_mode" toml:"delay_mode"`

	// Encoding
	Preset          string   `yaml:"preset" toml:"preset"`
	Quality         *int     `yaml:"quality" toml:"quality"`
	Dither          *string  `yaml:"dither" toml:"dither"`
	Serpentine      *bool    `yaml:"serpentine" toml:"serpentine"`
	Palette         *string  `yaml:"palette" toml:"palette"`
	ResolutionScale *float64 `yaml:"resolution_scale" toml:"resolution_scale"`
	Workers         int      `yaml:"workers" toml:"workers"`

	// Editing
	CacheSize int     `yaml:"cache_size" toml:"cache_size"`
	Loop      bool    `yaml:"loop" toml:"loop"`
	Speed     float64 `yaml:"speed" toml:"speed"`

	// Capture
	Codec      string        `yaml:"codec" toml:"codec"`
	FfmpegPath string        `yaml:"ffmpeg_path" toml:"ffmpeg_path"`
	Display    DisplayConfig `yaml:"display" toml:"display"`

	// Output
	OutputDir string `yaml:"output_dir" toml:"output_dir"`

	// Debug
	Debug    bool   `yaml:"debug" toml:"debug"`
	DebugDir string `yaml:"debug_dir" toml:"debug_dir"`
	LogLevel string `yaml:"log_level" toml:"log_level"`
}

// DisplayConfig describes the captured screen in logical pixels.
type DisplayConfig struct {
	Width  int     `yaml:"width" toml:"width"`
	Height int     `yaml:"height" toml:"height"`
	Scale  float64 `yaml:"scale" toml:"scale"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	sc := session.DefaultConfig()
	return Config{
		FPS:       sc.FPS,
		MaxFrames: sc.MaxFrames,
		DelayMode: string(sc.DelayMode),

		Preset:  string(encparams.PresetMedium),
		Workers: sc.Workers,

		CacheSize: sc.CacheSize,
		Loop:      sc.Loop,
		Speed:     sc.Speed,

		Codec: "libx264",
		Display: DisplayConfig{
			Width:  sc.Display.Width,
			Height: sc.Display.Height,
			Scale:  sc.Display.ScaleFactor,
		},

		OutputDir: ".",
		DebugDir:  "./debug",
		LogLevel:  "info",
	}
}

// FormatFor picks the syntax from the file extension. Anything other than
// .toml is read as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// LoadFromFile loads configuration from a YAML or TOML file over the defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), err
	}
	cfg, err := Parse(data, FormatFor(path))
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults.
func Parse(data []byte, format Format) (Config, error) {
	cfg := Defaults()

	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

// EncodeParams applies the preset and then every explicitly set field.
func (c Config) EncodeParams() (encparams.Params, error) {
	p := encparams.Default()
	if c.Preset != "" {
		preset, err := encparams.ParsePreset(c.Preset)
		if err != nil {
			return p, err
		}
		if err := p.ApplyPreset(preset); err != nil {
			return p, err
		}
	}

	if c.Quality != nil {
		p.SetQuality(*c.Quality)
	}
	if c.Dither != nil {
		d, err := encparams.ParseDither(*c.Dither)
		if err != nil {
			return p, err
		}
		p.SetDither(d)
	}
	if c.Serpentine != nil {
		p.SetSerpentine(*c.Serpentine)
	}
	if c.Palette != nil {
		m, err := encparams.ParsePalette(*c.Palette)
		if err != nil {
			return p, err
		}
		p.SetPalette(m)
	}
	if c.ResolutionScale != nil {
		p.SetScale(*c.ResolutionScale)
	}
	return p, p.Validate()
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.FPS)
	}
	if c.MaxFrames < 0 {
		return fmt.Errorf("%w: max_frames must not be negative, got %d", ErrInvalid, c.MaxFrames)
	}
	switch pipeline.DelayMode(c.DelayMode) {
	case pipeline.DelayFromRate, pipeline.DelayFixed:
	default:
		return fmt.Errorf("%w: delay_mode %q", ErrInvalid, c.DelayMode)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %g", ErrInvalid, c.Speed)
	}
	if c.Workers < 0 || c.CacheSize < 0 {
		return fmt.Errorf("%w: workers and cache_size must not be negative", ErrInvalid)
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 || c.Display.Scale <= 0 {
		return fmt.Errorf("%w: display %dx%d@%g", ErrInvalid, c.Display.Width, c.Display.Height, c.Display.Scale)
	}
	if _, err := c.EncodeParams(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Level returns the configured log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(c.LogLevel)
}

// ToSessionConfig converts Config to session.Config.
func (c Config) ToSessionConfig() (session.Config, error) {
	params, err := c.EncodeParams()
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		Display: selector.Display{
			Width:       c.Display.Width,
			Height:      c.Display.Height,
			ScaleFactor: c.Display.Scale,
		},
		FPS:       c.FPS,
		MaxFrames: c.MaxFrames,
		DelayMode: pipeline.DelayMode(c.DelayMode),
		Params:    params,
		Workers:   c.Workers,
		CacheSize: c.CacheSize,
		Loop:      c.Loop,
		Speed:     c.Speed,
		OutputDir: c.OutputDir,
	}, nil
}
