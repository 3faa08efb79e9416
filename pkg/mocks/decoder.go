package mocks

import (
	"context"
	"image"
	"io"
	"math"
	"sync"

	"github.com/user/freegif/pkg/ports"
)

// VideoSource is a mock implementation of ports.VideoSource.
type VideoSource struct {
	mu sync.Mutex

	OpenFunc    func(ctx context.Context, data []byte) (ports.VideoInfo, error)
	FrameAtFunc func(ctx context.Context, seconds float64) (image.Image, error)

	// Info is returned by Open when OpenFunc is nil.
	Info ports.VideoInfo

	// Recorded calls for verification
	OpenCalled   bool
	FrameAtCalls []float64
	CloseCalled  bool
}

// NewVideoSource returns a source reporting the given duration and size.
func NewVideoSource(duration float64, width, height int) *VideoSource {
	return &VideoSource{Info: ports.VideoInfo{Duration: duration, Width: width, Height: height, Codec: "h264"}}
}

// NewUnknownDurationSource returns a source whose container has no duration.
func NewUnknownDurationSource(width, height int) *VideoSource {
	return NewVideoSource(math.NaN(), width, height)
}

func (m *VideoSource) Open(ctx context.Context, data []byte) (ports.VideoInfo, error) {
	m.mu.Lock()
	m.OpenCalled = true
	m.mu.Unlock()
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, data)
	}
	return m.Info, nil
}

func (m *VideoSource) FrameAt(ctx context.Context, seconds float64) (image.Image, error) {
	m.mu.Lock()
	m.FrameAtCalls = append(m.FrameAtCalls, seconds)
	m.mu.Unlock()
	if m.FrameAtFunc != nil {
		return m.FrameAtFunc(ctx, seconds)
	}
	return image.NewRGBA(image.Rect(0, 0, m.Info.Width, m.Info.Height)), nil
}

func (m *VideoSource) Close() error {
	m.mu.Lock()
	m.CloseCalled = true
	m.mu.Unlock()
	return nil
}

var _ ports.VideoSource = (*VideoSource)(nil)

// AnimationDecoder is a mock implementation of ports.AnimationDecoder.
type AnimationDecoder struct {
	OpenFunc        func(r io.Reader) (ports.AnimationInfo, error)
	DecodeFrameFunc func(i int) (image.Image, error)

	Info   ports.AnimationInfo
	Delays []int

	// Recorded calls for verification
	DecodeFrameCalls []int
}

func (m *AnimationDecoder) Open(r io.Reader) (ports.AnimationInfo, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(r)
	}
	return m.Info, nil
}

func (m *AnimationDecoder) FrameDelay(i int) int {
	if i >= 0 && i < len(m.Delays) {
		return m.Delays[i]
	}
	return m.Info.FirstDelay
}

func (m *AnimationDecoder) DecodeFrame(i int) (image.Image, error) {
	m.DecodeFrameCalls = append(m.DecodeFrameCalls, i)
	if m.DecodeFrameFunc != nil {
		return m.DecodeFrameFunc(i)
	}
	return image.NewRGBA(image.Rect(0, 0, m.Info.Width, m.Info.Height)), nil
}

var _ ports.AnimationDecoder = (*AnimationDecoder)(nil)
