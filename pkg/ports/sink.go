package ports

import (
	"image"
)

// DebugSink saves intermediate results for debugging.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveRecording saves the raw recording container.
	SaveRecording(data []byte) error

	// SaveSamplingJSON saves the sampling metadata as JSON.
	SaveSamplingJSON(data []byte) error

	// SaveRawFrame saves a sampled frame's PNG buffer.
	SaveRawFrame(index int, data []byte) error

	// SaveExportJSON saves the export parameters and result as JSON.
	SaveExportJSON(data []byte) error

	// SaveEncodedFrame saves a frame as it was handed to the encoder.
	SaveEncodedFrame(index int, img image.Image) error
}

// FrameView displays the frame chosen by the playback controller.
type FrameView interface {
	// Show renders frame index (0-based) out of total.
	Show(index, total int, img image.Image)
}
