// Package summarizer provides summary generation for exported animations.
package summarizer

import (
	"time"

	"github.com/user/freegif/pkg/encparams"
	"github.com/user/freegif/pkg/estimate"
	"github.com/user/freegif/pkg/pipeline"
)

// Summary contains what went into an export and what came out.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Where the frames came from
	Source SourceInfo

	// Encode parameters
	Settings Settings

	// Output file details
	Output OutputInfo
}

// SourceInfo describes the frame source.
type SourceInfo struct {
	Kind string // "capture" or "import"
	Path string // Imported file, empty for captures
}

// Settings contains the encode configuration.
type Settings struct {
	Preset          string
	Quality         int
	Dither          string
	Palette         string
	ResolutionScale float64
}

// OutputInfo contains information about the output animation.
type OutputInfo struct {
	Path           string
	FrameCount     int
	Width          int
	Height         int
	DelayMs        int
	FileSize       int64
	EstimatedBytes int64
}

// DurationMs returns the playback length of one loop.
func (o OutputInfo) DurationMs() int {
	return o.FrameCount * o.DelayMs
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithCapture marks the frames as sampled from a screen recording.
func (b *Builder) WithCapture() *Builder {
	b.summary.Source = SourceInfo{Kind: "capture"}
	return b
}

// WithImport marks the frames as imported from path.
func (b *Builder) WithImport(path string) *Builder {
	b.summary.Source = SourceInfo{Kind: "import", Path: path}
	return b
}

// WithParams sets the encode settings.
func (b *Builder) WithParams(p encparams.Params) *Builder {
	b.summary.Settings = Settings{
		Preset:          string(p.Preset),
		Quality:         p.QualityPercent,
		Dither:          p.DitherOption(),
		Palette:         string(p.Palette),
		ResolutionScale: p.ResolutionScale,
	}
	return b
}

// WithResult sets the output details from an encode result.
func (b *Builder) WithResult(r pipeline.EncodeResult) *Builder {
	est := b.summary.Output.EstimatedBytes
	b.summary.Output = OutputInfo{
		Path:           r.Path,
		FrameCount:     r.FrameCount,
		Width:          r.Width,
		Height:         r.Height,
		DelayMs:        r.DelayMs,
		FileSize:       r.FileSize,
		EstimatedBytes: est,
	}
	return b
}

// WithEstimate records the size predicted before encoding.
func (b *Builder) WithEstimate(e estimate.Estimate) *Builder {
	b.summary.Output.EstimatedBytes = e.Bytes
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
