// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/freegif/pkg/ports"
)

// Sink saves debug output to files under a base directory:
//
//	recording.mp4
//	sampling.json
//	export.json
//	frames/sampled/frame-0000.png
//	frames/encoded/frame-0000.png
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveRecording saves the raw capture container.
func (s *Sink) SaveRecording(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "recording.mp4"), data)
}

// SaveSamplingJSON saves the sampling plan and result as JSON.
func (s *Sink) SaveSamplingJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "sampling.json"), data)
}

// SaveRawFrame saves a sampled frame's PNG buffer as is.
func (s *Sink) SaveRawFrame(index int, data []byte) error {
	dir := filepath.Join(s.baseDir, "frames", "sampled")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(dir, frameName(index)), data)
}

// SaveExportJSON saves the export parameters and result as JSON.
func (s *Sink) SaveExportJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "export.json"), data)
}

// SaveEncodedFrame saves a frame as it was handed to the GIF encoder.
func (s *Sink) SaveEncodedFrame(index int, img image.Image) error {
	dir := filepath.Join(s.baseDir, "frames", "encoded")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	return s.fs.WriteFile(filepath.Join(dir, frameName(index)), data)
}

func frameName(index int) string {
	return fmt.Sprintf("frame-%04d.png", index)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
