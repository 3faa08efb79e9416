package ports

import (
	"context"
	"image"
)

// SourceDescriptor identifies a capturable screen.
type SourceDescriptor struct {
	ID   string
	Name string
}

// StreamConstraints bounds the resolution of an opened video stream.
type StreamConstraints struct {
	MinWidth  int
	MaxWidth  int
	MinHeight int
	MaxHeight int
	Audio     bool
}

// StreamInfo describes the native resolution of an opened stream.
type StreamInfo struct {
	Width     int
	Height    int
	FrameRate int
}

// VideoStream is a live video source bound to one screen.
type VideoStream interface {
	// SourceID returns the source the stream was opened against.
	SourceID() string

	// Info returns the stream's resolution after constraints were applied.
	Info() StreamInfo

	// Snapshot grabs the current frame for live preview.
	Snapshot(ctx context.Context) (image.Image, error)

	// Close stops the stream and releases its device handle.
	Close() error
}

// CaptureService enumerates screens and opens video streams on them.
type CaptureService interface {
	// EnumerateSources lists capturable screens, primary first.
	EnumerateSources(ctx context.Context) ([]SourceDescriptor, error)

	// OpenStream opens a continuous video source on the given screen.
	OpenStream(ctx context.Context, sourceID string, constraints StreamConstraints) (VideoStream, error)
}

// RecordingHandle identifies an in-progress recording.
type RecordingHandle interface {
	// ID returns a unique identifier for the recording.
	ID() string
}

// Recorder persists a stream through a lossy real-time video codec.
type Recorder interface {
	// Record starts persisting the stream.
	Record(ctx context.Context, stream VideoStream, codec string) (RecordingHandle, error)

	// Stop flushes all buffered output and returns the encoded container bytes.
	// It blocks until the recorder has fully exited.
	Stop(handle RecordingHandle) ([]byte, error)
}
