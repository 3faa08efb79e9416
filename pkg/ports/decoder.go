package ports

import (
	"context"
	"image"
	"io"
)

// VideoInfo describes an opened recording.
type VideoInfo struct {
	// Duration in seconds as reported by the container. It may be NaN,
	// infinite or zero when the container does not carry a usable duration.
	Duration float64
	Width    int
	Height   int
	Codec    string
}

// VideoSource is a seekable decoder over a finished recording.
type VideoSource interface {
	// Open loads the recording bytes and reports container metadata.
	Open(ctx context.Context, data []byte) (VideoInfo, error)

	// FrameAt seeks to the given timestamp and returns the decoded frame
	// presented at that time, at the video's native resolution.
	FrameAt(ctx context.Context, seconds float64) (image.Image, error)

	// Close releases decoder resources and scratch files.
	Close() error
}

// AnimationInfo describes an opened animated image.
type AnimationInfo struct {
	FrameCount int
	Width      int
	Height     int
	// FirstDelay is the first frame's delay in hundredths of a second.
	FirstDelay int
}

// AnimationDecoder decodes an existing animated image frame by frame.
type AnimationDecoder interface {
	// Open parses the container.
	Open(r io.Reader) (AnimationInfo, error)

	// FrameDelay returns the delay of frame i in hundredths of a second.
	FrameDelay(i int) int

	// DecodeFrame returns frame i composited onto the full logical screen.
	DecodeFrame(i int) (image.Image, error)
}
