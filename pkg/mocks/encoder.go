package mocks

import (
	"image"

	"github.com/user/freegif/pkg/ports"
)

// AnimationEncoder is a mock implementation of ports.AnimationEncoder.
type AnimationEncoder struct {
	BeginFunc    func(cfg ports.EncoderConfig) error
	AddFrameFunc func(img image.Image, delayMs int) error
	EndFunc      func() ([]byte, error)

	// Recorded calls for verification
	BeginCalled   bool
	Config        ports.EncoderConfig
	AddFrameCalls []AddFrameCall
	EndCalled     bool

	progress chan float64
}

// AddFrameCall records a call to AddFrame.
type AddFrameCall struct {
	Size    image.Point
	DelayMs int
}

func (m *AnimationEncoder) Begin(cfg ports.EncoderConfig) error {
	m.BeginCalled = true
	m.Config = cfg
	m.progress = make(chan float64, 1)
	if m.BeginFunc != nil {
		return m.BeginFunc(cfg)
	}
	return nil
}

func (m *AnimationEncoder) AddFrame(img image.Image, delayMs int) error {
	b := img.Bounds()
	m.AddFrameCalls = append(m.AddFrameCalls, AddFrameCall{Size: image.Pt(b.Dx(), b.Dy()), DelayMs: delayMs})
	if m.AddFrameFunc != nil {
		return m.AddFrameFunc(img, delayMs)
	}
	return nil
}

func (m *AnimationEncoder) Progress() <-chan float64 {
	return m.progress
}

func (m *AnimationEncoder) End() ([]byte, error) {
	m.EndCalled = true
	if m.progress != nil {
		m.progress <- 1
		close(m.progress)
	}
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	// Minimal GIF header
	return []byte("GIF89a"), nil
}

var _ ports.AnimationEncoder = (*AnimationEncoder)(nil)
