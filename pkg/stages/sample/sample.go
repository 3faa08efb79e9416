// Package sample implements the frame sampling stage: it seeks through a
// finished recording at a fixed rate and crops each frame to the region.
package sample

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"

	"github.com/user/freegif/pkg/pipeline"
	"github.com/user/freegif/pkg/ports"
)

var (
	// ErrRecordingTooShort is returned when the recording yields no frame slot.
	ErrRecordingTooShort = errors.New("sample: recording too short")
	// ErrExtractionEmpty is returned when no frame could be extracted.
	ErrExtractionEmpty = errors.New("sample: no frames extracted")
)

// yieldEvery is how often the loop yields and reports progress.
const yieldEvery = 5

// Stage samples a recording into an encoded frame sequence.
type Stage struct {
	source   ports.VideoSource
	renderer ports.Renderer
	sink     ports.DebugSink
	logger   ports.Logger
}

// NewStage creates a new sample stage.
func NewStage(source ports.VideoSource, renderer ports.Renderer, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		source:   source,
		renderer: renderer,
		sink:     sink,
		logger:   logger.WithComponent("sampler"),
	}
}

// Plan is the sampling schedule derived from a recording.
type Plan struct {
	Duration      float64 // Seconds the schedule is based on
	FromContainer bool    // Duration came from the container, not the wall clock
	Frames        int     // Number of frame slots after the cap
	Uncapped      int     // floor(Duration * FPS)
}

// PlanFrames computes how many frames to sample. A container duration is
// used when it is finite and positive, otherwise the wall-clock span of
// the recording.
func PlanFrames(containerDuration float64, rec pipeline.Recording, fps, maxFrames int) (Plan, error) {
	p := Plan{Duration: containerDuration, FromContainer: true}
	if math.IsNaN(containerDuration) || math.IsInf(containerDuration, 0) || containerDuration <= 0 {
		p.Duration = rec.Elapsed().Seconds()
		p.FromContainer = false
	}

	p.Uncapped = int(math.Floor(p.Duration * float64(fps)))
	if p.Uncapped <= 0 {
		return p, fmt.Errorf("%w: %.2fs at %d fps", ErrRecordingTooShort, p.Duration, fps)
	}

	p.Frames = p.Uncapped
	if maxFrames > 0 && p.Frames > maxFrames {
		p.Frames = maxFrames
	}
	return p, nil
}

// CropRect maps the region from display pixels onto a decoded video frame
// of videoW x videoH.
func CropRect(region pipeline.Region, videoW, videoH int) image.Rectangle {
	displayW, displayH := region.DisplayWidth, region.DisplayHeight
	if displayW <= 0 {
		displayW = videoW
	}
	if displayH <= 0 {
		displayH = videoH
	}
	sx := float64(videoW) / float64(displayW)
	sy := float64(videoH) / float64(displayH)

	return image.Rect(
		int(math.Round(float64(region.X)*sx)),
		int(math.Round(float64(region.Y)*sy)),
		int(math.Round(float64(region.X+region.Width)*sx)),
		int(math.Round(float64(region.Y+region.Height)*sy)),
	)
}

// DelayFor returns the inter-frame delay for mode at fps.
func DelayFor(mode pipeline.DelayMode, fps int) int {
	if mode == pipeline.DelayFixed || fps <= 0 {
		return pipeline.FixedDelayMs
	}
	d := int(math.Round(1000 / float64(fps)))
	if d < 1 {
		d = 1
	}
	return d
}

// Execute samples the recording. Any decode error aborts with no partial
// result; running past the container's end stops early with what was
// extracted so far.
func (s *Stage) Execute(ctx context.Context, input pipeline.SampleInput) (pipeline.FrameSequence, error) {
	fps := input.FPS
	if fps <= 0 {
		fps = pipeline.DefaultSampleInput().FPS
	}
	region := input.Recording.Region

	info, err := s.source.Open(ctx, input.Recording.Data)
	if err != nil {
		return pipeline.FrameSequence{}, fmt.Errorf("%w: open recording: %w", pipeline.ErrDecode, err)
	}
	defer s.source.Close()

	plan, err := PlanFrames(info.Duration, input.Recording, fps, input.MaxFrames)
	if plan.FromContainer {
		s.logger.Debug("Video duration: %.2fs", plan.Duration)
	} else {
		s.logger.Warn("Video duration invalid, using recording time: %.2fs", plan.Duration)
	}
	if err != nil {
		return pipeline.FrameSequence{}, err
	}
	s.logger.Debug("Frame count: %.2f * %d = %d", plan.Duration, fps, plan.Uncapped)
	if plan.Frames < plan.Uncapped {
		s.logger.Debug("Frame count capped at %d", plan.Frames)
	}

	seq := pipeline.FrameSequence{
		Frames:  make([]pipeline.FrameData, 0, plan.Frames),
		Width:   region.Width,
		Height:  region.Height,
		DelayMs: DelayFor(input.DelayMode, fps),
	}

	finite := !math.IsNaN(info.Duration) && !math.IsInf(info.Duration, 0) && info.Duration > 0
	var crop image.Rectangle
	pipeline.SendProgress(input.Progress, pipeline.Progress{Stage: "sample", Current: 0, Total: plan.Frames})

	for i := 0; i < plan.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return pipeline.FrameSequence{}, fmt.Errorf("%w: %w", pipeline.ErrCancelled, err)
		}

		t := float64(i) / float64(fps)
		if finite && t >= info.Duration {
			s.logger.Debug("Time %.2fs is beyond video duration, stopping", t)
			break
		}

		img, err := s.source.FrameAt(ctx, t)
		if err != nil {
			return pipeline.FrameSequence{}, fmt.Errorf("%w: frame %d at %.2fs: %w", pipeline.ErrDecode, i, t, err)
		}

		if crop.Empty() {
			b := img.Bounds()
			crop = CropRect(region, b.Dx(), b.Dy()).Add(b.Min)
			s.logger.Debug("Crop %v of %dx%d video into %dx%d", crop, b.Dx(), b.Dy(), region.Width, region.Height)
		}

		raw := pipeline.RawFrame{
			Image:            s.renderer.CropScaled(img, crop, region.Width, region.Height),
			TimestampSeconds: t,
			SequenceIndex:    i,
		}

		data, err := s.renderer.EncodeImage(raw.Image, ports.FormatPNG, 0)
		if err != nil {
			return pipeline.FrameSequence{}, fmt.Errorf("%w: encode frame %d: %w", pipeline.ErrDecode, i, err)
		}

		seq.Frames = append(seq.Frames, pipeline.FrameData{
			Index:       raw.SequenceIndex,
			TimestampMs: int(math.Round(raw.TimestampSeconds * 1000)),
			Data:        data,
		})

		if s.sink.Enabled() {
			if err := s.sink.SaveRawFrame(i, data); err != nil {
				s.logger.Warn("Debug output failed: %s", err)
			}
		}

		n := i + 1
		if n%10 == 0 || n == plan.Frames {
			s.logger.Debug("Extracted %d / %d frames", n, plan.Frames)
		}
		if n%yieldEvery == 0 {
			pipeline.SendProgress(input.Progress, pipeline.Progress{Stage: "sample", Current: n, Total: plan.Frames})
			runtime.Gosched()
		}
	}

	if len(seq.Frames) == 0 {
		return pipeline.FrameSequence{}, ErrExtractionEmpty
	}
	pipeline.SendProgress(input.Progress, pipeline.Progress{Stage: "sample", Current: len(seq.Frames), Total: plan.Frames})

	if s.sink.Enabled() {
		s.saveDebug(plan, input, seq)
	}

	return seq, nil
}

func (s *Stage) saveDebug(plan Plan, input pipeline.SampleInput, seq pipeline.FrameSequence) {
	meta := map[string]interface{}{
		"recordingId":   input.Recording.ID,
		"duration":      plan.Duration,
		"fromContainer": plan.FromContainer,
		"fps":           input.FPS,
		"planned":       plan.Frames,
		"extracted":     len(seq.Frames),
		"width":         seq.Width,
		"height":        seq.Height,
		"delayMs":       seq.DelayMs,
		"region":        input.Recording.Region,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err == nil {
		err = s.sink.SaveSamplingJSON(data)
	}
	if err != nil {
		s.logger.Warn("Debug output failed: %s", err)
	}
}

var _ pipeline.Stage[pipeline.SampleInput, pipeline.FrameSequence] = (*Stage)(nil)
