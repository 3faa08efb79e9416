package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/freegif/pkg/encparams"
	"github.com/user/freegif/pkg/pipeline"
	"github.com/user/freegif/pkg/ports"
)

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	sc, err := cfg.ToSessionConfig()
	if err != nil {
		t.Fatalf("ToSessionConfig failed: %v", err)
	}
	if sc.FPS != 10 || sc.MaxFrames != 300 || sc.DelayMode != pipeline.DelayFromRate {
		t.Errorf("unexpected sampling defaults %+v", sc)
	}
	if sc.Params != encparams.Default() {
		t.Errorf("expected default params, got %+v", sc.Params)
	}
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
fps: 15
preset: low
serpentine: false
display:
  width: 2560
  height: 1440
  scale: 2
log_level: debug
`)
	cfg, err := Parse(data, FormatYAML)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.FPS != 15 || cfg.MaxFrames != 300 {
		t.Errorf("expected fps 15 over default max_frames, got %d/%d", cfg.FPS, cfg.MaxFrames)
	}
	if cfg.Display.Scale != 2 || cfg.Level() != ports.LevelDebug {
		t.Errorf("unexpected display/level: %+v %s", cfg.Display, cfg.Level())
	}

	p, err := cfg.EncodeParams()
	if err != nil {
		t.Fatalf("EncodeParams failed: %v", err)
	}
	if p.QualityPercent != 40 || p.Palette != encparams.PaletteGlobal || p.Serpentine {
		t.Errorf("unexpected params %+v", p)
	}
	if p.Preset != encparams.PresetCustom {
		t.Errorf("expected explicit serpentine to switch to custom, got %s", p.Preset)
	}
}

func TestParse_TOML(t *testing.T) {
	data := []byte(`
fps = 20
delay_mode = "fixed"
preset = "high"
quality = 55
dither = "false"
resolution_scale = 0.5

[display]
width = 1280
height = 800
scale = 1.5
`)
	cfg, err := Parse(data, FormatTOML)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	sc, err := cfg.ToSessionConfig()
	if err != nil {
		t.Fatalf("ToSessionConfig failed: %v", err)
	}
	if sc.FPS != 20 || sc.DelayMode != pipeline.DelayFixed {
		t.Errorf("unexpected sampling %+v", sc)
	}
	if sc.Display.Width != 1280 || sc.Display.ScaleFactor != 1.5 {
		t.Errorf("unexpected display %+v", sc.Display)
	}
	p := sc.Params
	if p.QualityPercent != 55 || p.Dither != encparams.DitherOff || p.ResolutionScale != 0.5 {
		t.Errorf("unexpected params %+v", p)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"negative max frames", func(c *Config) { c.MaxFrames = -1 }},
		{"delay mode", func(c *Config) { c.DelayMode = "sometimes" }},
		{"speed", func(c *Config) { c.Speed = 0 }},
		{"display", func(c *Config) { c.Display.Scale = 0 }},
		{"preset", func(c *Config) { c.Preset = "ultra" }},
		{"quality", func(c *Config) { q := 101; c.Quality = &q }},
		{"dither", func(c *Config) { d := "Bayer"; c.Dither = &d }},
		{"scale", func(c *Config) { s := 1.5; c.ResolutionScale = &s }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "freegif.yml")
	os.WriteFile(yamlPath, []byte("max_frames: 50\n"), 0o644)
	cfg, err := LoadFromFile(yamlPath)
	if err != nil || cfg.MaxFrames != 50 {
		t.Errorf("yaml: expected max_frames 50, got %d (%v)", cfg.MaxFrames, err)
	}

	tomlPath := filepath.Join(dir, "freegif.toml")
	os.WriteFile(tomlPath, []byte("max_frames = 60\n"), 0o644)
	cfg, err = LoadFromFile(tomlPath)
	if err != nil || cfg.MaxFrames != 60 {
		t.Errorf("toml: expected max_frames 60, got %d (%v)", cfg.MaxFrames, err)
	}

	badPath := filepath.Join(dir, "bad.toml")
	os.WriteFile(badPath, []byte("max_frames = [\n"), 0o644)
	if _, err := LoadFromFile(badPath); err == nil {
		t.Error("expected a syntax error")
	}

	if _, err := LoadFromFile(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"a.toml": FormatTOML,
		"a.TOML": FormatTOML,
		"a.yaml": FormatYAML,
		"a.yml":  FormatYAML,
		"a":      FormatYAML,
	}
	for path, want := range tests {
		if got := FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %s, want %s", path, got, want)
		}
	}
}
