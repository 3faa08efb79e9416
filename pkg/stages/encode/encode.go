// Package encode implements the animation export stage.
package encode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/user/freegif/pkg/pipeline"
	"github.com/user/freegif/pkg/ports"
)

var (
	// ErrExportIO is returned when the encoded file cannot be written.
	ErrExportIO = errors.New("encode: export write failed")
	// ErrNoFrames is returned when there is nothing to encode.
	ErrNoFrames = errors.New("encode: no frames to encode")
)

// Stage encodes a frame store into an animated image and writes it out.
type Stage struct {
	encoder  ports.AnimationEncoder
	renderer ports.Renderer
	fs       ports.FileSystem
	sink     ports.DebugSink
	logger   ports.Logger
}

// NewStage creates a new encode stage.
func NewStage(encoder ports.AnimationEncoder, renderer ports.Renderer, fs ports.FileSystem, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		encoder:  encoder,
		renderer: renderer,
		fs:       fs,
		sink:     sink,
		logger:   logger.WithComponent("encoder"),
	}
}

// Execute encodes every frame in order. When OutputPath is set the result
// is written atomically; a failed write leaves no partial file behind.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}
	frames := input.Frames

	if frames == nil || frames.Len() == 0 {
		return result, ErrNoFrames
	}
	if err := input.Params.Validate(); err != nil {
		return result, err
	}

	n := frames.Len()
	width, height := input.Params.ScaledSize(frames.Width(), frames.Height())
	delay := frames.Delay()

	palette := "local"
	if input.Params.Palette != "" {
		palette = string(input.Params.Palette)
	}
	s.logger.Debug("Encoding %d frames at %dx%d (quality %d, dither %s, %s palette)",
		n, width, height, input.Params.EncoderQuality(), input.Params.DitherOption(), palette)

	cfg := ports.EncoderConfig{
		Workers:       input.Workers,
		Quality:       input.Params.EncoderQuality(),
		Width:         width,
		Height:        height,
		Dither:        input.Params.DitherOption(),
		GlobalPalette: palette == "global",
	}
	if err := s.encoder.Begin(cfg); err != nil {
		return result, fmt.Errorf("begin encoding: %w", err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	if ch := s.encoder.Progress(); ch != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.forwardProgress(ch, done, input.Progress)
		}()
	}
	defer func() {
		close(done)
		wg.Wait()
	}()

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("%w: %w", pipeline.ErrCancelled, err)
		}

		img, err := frames.Get(i)
		if err != nil {
			return result, fmt.Errorf("frame %d: %w", i, err)
		}
		b := img.Bounds()
		if b.Dx() != width || b.Dy() != height {
			img = s.renderer.ResizeImage(img, width, height)
		}

		if err := s.encoder.AddFrame(img, delay); err != nil {
			return result, fmt.Errorf("add frame %d: %w", i, err)
		}
		if s.sink.Enabled() {
			if err := s.sink.SaveEncodedFrame(i, img); err != nil {
				s.logger.Warn("Debug output failed: %s", err)
			}
		}
		pipeline.SendProgress(input.Progress, pipeline.Progress{Stage: "frames", Current: i + 1, Total: n})
	}

	data, err := s.encoder.End()
	if err != nil {
		return result, fmt.Errorf("end encoding: %w", err)
	}
	// End closes the progress channel, let the forwarder drain it.
	wg.Wait()
	s.logger.Debug("Encoded %d bytes", len(data))

	if input.OutputPath != "" {
		if err := s.fs.WriteFileAtomic(input.OutputPath, data); err != nil {
			return result, fmt.Errorf("%w: %s: %w", ErrExportIO, input.OutputPath, err)
		}
	}

	result = pipeline.EncodeResult{
		Path:       input.OutputPath,
		Data:       data,
		FileSize:   int64(len(data)),
		FrameCount: n,
		Width:      width,
		Height:     height,
		DelayMs:    delay,
	}

	if s.sink.Enabled() {
		s.saveDebug(input, result)
	}

	return result, nil
}

// forwardProgress relays encoder completion as percent steps until the
// encoder closes its channel or the stage returns.
func (s *Stage) forwardProgress(ch <-chan float64, done <-chan struct{}, out chan<- pipeline.Progress) {
	for {
		select {
		case p, ok := <-ch:
			if !ok {
				return
			}
			pct := int(math.Round(p * 100))
			s.logger.Debug("Encoding progress %.0f%%", p*100)
			pipeline.SendProgress(out, pipeline.Progress{Stage: "encode", Current: pct, Total: 100})
		case <-done:
			return
		}
	}
}

func (s *Stage) saveDebug(input pipeline.EncodeInput, result pipeline.EncodeResult) {
	meta := map[string]interface{}{
		"path":       result.Path,
		"fileSize":   result.FileSize,
		"frameCount": result.FrameCount,
		"width":      result.Width,
		"height":     result.Height,
		"delayMs":    result.DelayMs,
		"params":     input.Params,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err == nil {
		err = s.sink.SaveExportJSON(data)
	}
	if err != nil {
		s.logger.Warn("Debug output failed: %s", err)
	}
}

var _ pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult] = (*Stage)(nil)
