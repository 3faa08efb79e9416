package mocks

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/user/freegif/pkg/ports"
)

// CaptureService is a mock implementation of ports.CaptureService and
// ports.Recorder.
type CaptureService struct {
	mu sync.Mutex

	EnumerateSourcesFunc func(ctx context.Context) ([]ports.SourceDescriptor, error)
	OpenStreamFunc       func(ctx context.Context, sourceID string, c ports.StreamConstraints) (ports.VideoStream, error)
	RecordFunc           func(ctx context.Context, stream ports.VideoStream, codec string) (ports.RecordingHandle, error)
	StopFunc             func(handle ports.RecordingHandle) ([]byte, error)

	// StreamInfo is reported by streams opened without OpenStreamFunc.
	StreamInfo ports.StreamInfo
	// RecordingData is returned by Stop when StopFunc is nil.
	RecordingData []byte

	// Recorded calls for verification
	OpenedSources []string
	Constraints   ports.StreamConstraints
	Streams       []*VideoStream
	RecordCodecs  []string
	StopCalls     int
}

// NewCaptureService creates a mock capture service with a 1920x1080 screen.
func NewCaptureService() *CaptureService {
	return &CaptureService{
		StreamInfo:    ports.StreamInfo{Width: 1920, Height: 1080, FrameRate: 30},
		RecordingData: []byte("mp4"),
	}
}

func (m *CaptureService) EnumerateSources(ctx context.Context) ([]ports.SourceDescriptor, error) {
	if m.EnumerateSourcesFunc != nil {
		return m.EnumerateSourcesFunc(ctx)
	}
	return []ports.SourceDescriptor{{ID: "screen-0", Name: "Primary"}, {ID: "screen-1", Name: "Secondary"}}, nil
}

func (m *CaptureService) OpenStream(ctx context.Context, sourceID string, c ports.StreamConstraints) (ports.VideoStream, error) {
	m.mu.Lock()
	m.OpenedSources = append(m.OpenedSources, sourceID)
	m.Constraints = c
	m.mu.Unlock()

	if m.OpenStreamFunc != nil {
		return m.OpenStreamFunc(ctx, sourceID, c)
	}

	s := &VideoStream{ID: sourceID, StreamInfo: m.StreamInfo}
	m.mu.Lock()
	m.Streams = append(m.Streams, s)
	m.mu.Unlock()
	return s, nil
}

func (m *CaptureService) Record(ctx context.Context, stream ports.VideoStream, codec string) (ports.RecordingHandle, error) {
	m.mu.Lock()
	m.RecordCodecs = append(m.RecordCodecs, codec)
	n := len(m.RecordCodecs)
	m.mu.Unlock()

	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, stream, codec)
	}
	return Handle(fmt.Sprintf("rec-%d", n)), nil
}

func (m *CaptureService) Stop(handle ports.RecordingHandle) ([]byte, error) {
	m.mu.Lock()
	m.StopCalls++
	m.mu.Unlock()

	if m.StopFunc != nil {
		return m.StopFunc(handle)
	}
	return m.RecordingData, nil
}

var (
	_ ports.CaptureService = (*CaptureService)(nil)
	_ ports.Recorder       = (*CaptureService)(nil)
)

// Handle is a mock recording handle.
type Handle string

func (h Handle) ID() string { return string(h) }

// VideoStream is a mock implementation of ports.VideoStream.
type VideoStream struct {
	mu sync.Mutex

	ID         string
	StreamInfo ports.StreamInfo
	Closed     bool
}

func (m *VideoStream) SourceID() string       { return m.ID }
func (m *VideoStream) Info() ports.StreamInfo { return m.StreamInfo }

func (m *VideoStream) Snapshot(ctx context.Context) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, m.StreamInfo.Width, m.StreamInfo.Height)), nil
}

func (m *VideoStream) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *VideoStream) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Closed
}

var _ ports.VideoStream = (*VideoStream)(nil)
