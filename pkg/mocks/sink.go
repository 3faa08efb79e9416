package mocks

import (
	"image"
	"sync"

	"github.com/user/freegif/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Recording     []byte
	SamplingJSON  []byte
	RawFrames     map[int][]byte
	ExportJSON    []byte
	EncodedFrames map[int]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:       enabled,
		RawFrames:     make(map[int][]byte),
		EncodedFrames: make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveRecording(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recording = data
	return nil
}

func (m *DebugSink) SaveSamplingJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SamplingJSON = data
	return nil
}

func (m *DebugSink) SaveRawFrame(index int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RawFrames[index] = data
	return nil
}

func (m *DebugSink) SaveExportJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExportJSON = data
	return nil
}

func (m *DebugSink) SaveEncodedFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EncodedFrames[index] = img
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)
