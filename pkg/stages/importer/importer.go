// Package importer implements loading an existing animated GIF as a frame
// sequence for editing.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/user/freegif/pkg/pipeline"
	"github.com/user/freegif/pkg/ports"
)

// ErrImportEmpty is returned when no frame of the animation could be decoded.
var ErrImportEmpty = errors.New("importer: no frames could be decoded")

// Stage decodes an animation into PNG frame buffers.
type Stage struct {
	decoder  ports.AnimationDecoder
	renderer ports.Renderer
	fs       ports.FileSystem
	logger   ports.Logger
}

// NewStage creates a new import stage.
func NewStage(decoder ports.AnimationDecoder, renderer ports.Renderer, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		decoder:  decoder,
		renderer: renderer,
		fs:       fs,
		logger:   logger.WithComponent("import"),
	}
}

// DelayMs converts a container delay in hundredths of a second, using
// pipeline.FixedDelayMs when the container has none.
func DelayMs(centis int) int {
	if centis <= 0 {
		return pipeline.FixedDelayMs
	}
	return centis * 10
}

// Execute decodes every frame. Frames that fail are skipped with a warning.
func (s *Stage) Execute(ctx context.Context, input pipeline.ImportInput) (pipeline.ImportResult, error) {
	result := pipeline.ImportResult{Path: input.Path}

	data := input.Data
	if data == nil {
		var err error
		data, err = s.fs.ReadFile(input.Path)
		if err != nil {
			return result, fmt.Errorf("read %s: %w", input.Path, err)
		}
	}

	info, err := s.decoder.Open(bytes.NewReader(data))
	if err != nil {
		return result, fmt.Errorf("%w: %w: %w", ErrImportEmpty, pipeline.ErrDecode, err)
	}

	seq := pipeline.FrameSequence{
		Frames:  make([]pipeline.FrameData, 0, info.FrameCount),
		Width:   info.Width,
		Height:  info.Height,
		DelayMs: DelayMs(info.FirstDelay),
	}

	elapsed := 0
	for i := 0; i < info.FrameCount; i++ {
		if err := ctx.Err(); err != nil {
			return pipeline.ImportResult{}, fmt.Errorf("%w: %w", pipeline.ErrCancelled, err)
		}

		img, err := s.decoder.DecodeFrame(i)
		if err == nil {
			var buf []byte
			buf, err = s.renderer.EncodeImage(img, ports.FormatPNG, 0)
			if err == nil {
				seq.Frames = append(seq.Frames, pipeline.FrameData{
					Index:       len(seq.Frames),
					TimestampMs: elapsed,
					Data:        buf,
				})
			}
		}
		if err != nil {
			s.logger.Warn("Skipping frame %d: %s", i, err)
			result.Skipped = append(result.Skipped, i)
		}

		elapsed += DelayMs(s.decoder.FrameDelay(i))
		pipeline.SendProgress(input.Progress, pipeline.Progress{Stage: "import", Current: i + 1, Total: info.FrameCount})
	}

	if len(seq.Frames) == 0 {
		return result, fmt.Errorf("%w: %w", ErrImportEmpty, pipeline.ErrDecode)
	}

	result.Sequence = seq
	return result, nil
}

var _ pipeline.Stage[pipeline.ImportInput, pipeline.ImportResult] = (*Stage)(nil)
