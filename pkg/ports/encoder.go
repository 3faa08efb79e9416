package ports

import (
	"image"
)

// AnimationEncoder abstracts the palette-based animated image encoder.
type AnimationEncoder interface {
	// Begin initializes the encoder for a new animation.
	Begin(cfg EncoderConfig) error

	// AddFrame appends a frame shown for delayMs milliseconds.
	AddFrame(img image.Image, delayMs int) error

	// Progress reports completion in [0,1]. The channel is closed by End.
	Progress() <-chan float64

	// End finalizes encoding and returns the container bytes.
	End() ([]byte, error)
}

// EncoderConfig configures the animation encoder.
type EncoderConfig struct {
	Workers       int
	Quality       int // Encoder quality knob: 1 is best, larger samples fewer pixels
	Width         int
	Height        int
	Dither        string // "false", or a dither name with optional "-serpentine" suffix
	GlobalPalette bool
}
