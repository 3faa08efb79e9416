// Package estimate predicts the size of an exported animation.
//
// The model is a heuristic, it never gates an export.
package estimate

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/user/freegif/pkg/encparams"
)

const (
	// ditherFactor inflates the estimate when error diffusion is on.
	ditherFactor = 1.2
	// globalPaletteFactor shrinks the estimate for a shared palette.
	globalPaletteFactor = 0.95
	// lzwRatio approximates LZW on quantized pixels.
	lzwRatio = 3
	// perFrameOverhead covers frame headers and local colour tables.
	perFrameOverhead = 800
	// fileOverhead covers the file header and global colour table.
	fileOverhead = 2000
)

// Estimate is a predicted export size.
type Estimate struct {
	Bytes  int64
	Width  int
	Height int
	Frames int
}

// String formats the estimate like "1.2 MiB (30 frames, 320×240)".
func (e Estimate) String() string {
	return fmt.Sprintf("%s (%d frames, %d×%d)", humanize.IBytes(uint64(e.Bytes)), e.Frames, e.Width, e.Height)
}

// Bytes returns the predicted size of frames width x height frames
// encoded with p.
func Bytes(width, height, frames int, p encparams.Params) int64 {
	w, h := p.ScaledSize(width, height)

	df := 1.0
	if p.Dithering() {
		df = ditherFactor
	}
	pf := 1.0
	if p.Palette == encparams.PaletteGlobal {
		pf = globalPaletteFactor
	}

	bytesPerPixel := float64(p.QualityPercent) / 100 * 3
	pixels := float64(w) * float64(h) * float64(frames)
	est := pixels*bytesPerPixel*df*pf*0.5/lzwRatio + float64(frames*perFrameOverhead+fileOverhead)
	return int64(math.Round(est))
}

// Source is anything with a frame count and dimensions.
type Source interface {
	Len() int
	Width() int
	Height() int
}

// For estimates the export of src with p.
func For(src Source, p encparams.Params) Estimate {
	w, h := p.ScaledSize(src.Width(), src.Height())
	frames := src.Len()
	return Estimate{
		Bytes:  Bytes(src.Width(), src.Height(), frames, p),
		Width:  w,
		Height: h,
		Frames: frames,
	}
}
