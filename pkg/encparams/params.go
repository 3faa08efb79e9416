// Package encparams holds the validated encode configuration and its named presets.
package encparams

import (
	"errors"
	"fmt"
)

// Preset is a named quality preset.
type Preset string

const (
	PresetHigh   Preset = "high"
	PresetMedium Preset = "medium"
	PresetLow    Preset = "low"
	PresetCustom Preset = "custom"
)

// DitherMode selects the error-diffusion kernel used when quantizing.
type DitherMode string

const (
	DitherOff                 DitherMode = "off"
	DitherFloydSteinberg      DitherMode = "FloydSteinberg"
	DitherFalseFloydSteinberg DitherMode = "FalseFloydSteinberg"
)

// PaletteMode selects one shared color table or one table per frame.
type PaletteMode string

const (
	PaletteLocal  PaletteMode = "local"
	PaletteGlobal PaletteMode = "global"
)

// ResolutionScales are the output scales offered to users. Any value in
// (0,1] is accepted by Validate.
var ResolutionScales = []float64{1, 0.75, 0.5, 0.25}

var (
	// ErrInvalidQuality is returned when quality is outside [0,100].
	ErrInvalidQuality = errors.New("encparams: quality must be within [0,100]")

	// ErrInvalidScale is returned when the resolution scale is outside (0,1].
	ErrInvalidScale = errors.New("encparams: resolution scale must be within (0,1]")

	// ErrUnknownPreset is returned for an unrecognized preset name.
	ErrUnknownPreset = errors.New("encparams: unknown preset")

	// ErrUnknownDither is returned for an unrecognized dither mode.
	ErrUnknownDither = errors.New("encparams: unknown dither mode")

	// ErrUnknownPalette is returned for an unrecognized palette mode.
	ErrUnknownPalette = errors.New("encparams: unknown palette mode")
)

// Params is the encode configuration edited by the user.
type Params struct {
	Preset          Preset
	QualityPercent  int
	Dither          DitherMode
	Serpentine      bool
	Palette         PaletteMode
	ResolutionScale float64
}

// presetSettings is the fixed (quality, dither, palette) tuple of a preset.
type presetSettings struct {
	quality int
	dither  DitherMode
	palette PaletteMode
}

var presets = map[Preset]presetSettings{
	PresetHigh:   {quality: 90, dither: DitherFloydSteinberg, palette: PaletteLocal},
	PresetMedium: {quality: 70, dither: DitherFloydSteinberg, palette: PaletteLocal},
	PresetLow:    {quality: 40, dither: DitherFalseFloydSteinberg, palette: PaletteGlobal},
}

// Presets returns the named presets in display order.
func Presets() []Preset {
	return []Preset{PresetHigh, PresetMedium, PresetLow}
}

// Default returns the medium preset at full resolution.
func Default() Params {
	p := Params{
		Serpentine:      true,
		ResolutionScale: 1,
	}
	p.ApplyPreset(PresetMedium)
	return p
}

// ForPreset returns Default with the given preset applied.
func ForPreset(preset Preset) (Params, error) {
	p := Default()
	if err := p.ApplyPreset(preset); err != nil {
		return Params{}, err
	}
	return p, nil
}

// ApplyPreset overwrites quality, dither and palette from the named preset.
// The resolution scale and serpentine flag are left untouched. Applying
// PresetCustom only changes the label.
func (p *Params) ApplyPreset(preset Preset) error {
	if preset == PresetCustom {
		p.Preset = PresetCustom
		return nil
	}
	s, ok := presets[preset]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}
	p.Preset = preset
	p.QualityPercent = s.quality
	p.Dither = s.dither
	p.Palette = s.palette
	return nil
}

// SetQuality sets the quality percent and switches to the custom preset.
func (p *Params) SetQuality(q int) {
	p.QualityPercent = q
	p.Preset = PresetCustom
}

// SetDither sets the dither mode and switches to the custom preset.
func (p *Params) SetDither(d DitherMode) {
	p.Dither = d
	p.Preset = PresetCustom
}

// SetSerpentine toggles serpentine scanning and switches to the custom preset.
func (p *Params) SetSerpentine(on bool) {
	p.Serpentine = on
	p.Preset = PresetCustom
}

// SetPalette sets the palette mode and switches to the custom preset.
func (p *Params) SetPalette(m PaletteMode) {
	p.Palette = m
	p.Preset = PresetCustom
}

// SetScale sets the resolution scale and switches to the custom preset.
func (p *Params) SetScale(s float64) {
	p.ResolutionScale = s
	p.Preset = PresetCustom
}

// Validate checks every field.
func (p Params) Validate() error {
	if p.QualityPercent < 0 || p.QualityPercent > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidQuality, p.QualityPercent)
	}
	if !(p.ResolutionScale > 0 && p.ResolutionScale <= 1) {
		return fmt.Errorf("%w: %g", ErrInvalidScale, p.ResolutionScale)
	}
	switch p.Dither {
	case DitherOff, DitherFloydSteinberg, DitherFalseFloydSteinberg:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDither, p.Dither)
	}
	if _, err := ParsePalette(string(p.Palette)); err != nil {
		return err
	}
	switch p.Preset {
	case PresetHigh, PresetMedium, PresetLow, PresetCustom:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPreset, p.Preset)
	}
	return nil
}

// EncoderQuality maps quality percent onto the encoder's inverted knob,
// where 1 is the highest fidelity.
func (p Params) EncoderQuality() int {
	return (100-p.QualityPercent)/10 + 1
}

// Dithering reports whether any error diffusion is applied.
func (p Params) Dithering() bool {
	return p.Dither != DitherOff
}

// DitherOption renders the dither setting the way the encoder expects it:
// "false" when off, otherwise the kernel name with a "-serpentine" suffix
// when serpentine scanning is on.
func (p Params) DitherOption() string {
	if !p.Dithering() {
		return "false"
	}
	if p.Serpentine {
		return string(p.Dither) + "-serpentine"
	}
	return string(p.Dither)
}

// ScaledSize applies the resolution scale to a frame size, rounding to the
// nearest pixel and never going below one pixel.
func (p Params) ScaledSize(width, height int) (int, int) {
	w := int(float64(width)*p.ResolutionScale + 0.5)
	h := int(float64(height)*p.ResolutionScale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// ParsePreset parses a preset name.
func ParsePreset(s string) (Preset, error) {
	switch Preset(s) {
	case PresetHigh, PresetMedium, PresetLow, PresetCustom:
		return Preset(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, s)
}

// ParseDither parses a dither mode. "false" and "" are accepted for off.
func ParseDither(s string) (DitherMode, error) {
	switch s {
	case "", "false", string(DitherOff):
		return DitherOff, nil
	case string(DitherFloydSteinberg):
		return DitherFloydSteinberg, nil
	case string(DitherFalseFloydSteinberg):
		return DitherFalseFloydSteinberg, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDither, s)
}

// ParsePalette parses a palette mode.
func ParsePalette(s string) (PaletteMode, error) {
	switch PaletteMode(s) {
	case PaletteLocal, PaletteGlobal:
		return PaletteMode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPalette, s)
}
