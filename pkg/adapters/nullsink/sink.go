// Package nullsink discards debug output.
package nullsink

import (
	"image"

	"github.com/user/freegif/pkg/ports"
)

// Sink implements ports.DebugSink without writing anything. Stages check
// Enabled before doing work that only feeds the sink.
type Sink struct{}

// New creates a Sink.
func New() *Sink {
	return &Sink{}
}

func (s *Sink) Enabled() bool { return false }

func (s *Sink) SaveRecording(data []byte) error                   { return nil }
func (s *Sink) SaveSamplingJSON(data []byte) error                { return nil }
func (s *Sink) SaveRawFrame(index int, data []byte) error         { return nil }
func (s *Sink) SaveExportJSON(data []byte) error                  { return nil }
func (s *Sink) SaveEncodedFrame(index int, img image.Image) error { return nil }

var _ ports.DebugSink = (*Sink)(nil)
