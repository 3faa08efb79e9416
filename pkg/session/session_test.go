package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io/fs"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/user/freegif/pkg/adapters/gifdecoder"
	"github.com/user/freegif/pkg/adapters/gifencoder"
	"github.com/user/freegif/pkg/adapters/ggrenderer"
	"github.com/user/freegif/pkg/adapters/logger"
	"github.com/user/freegif/pkg/encparams"
	"github.com/user/freegif/pkg/mocks"
	"github.com/user/freegif/pkg/pipeline"
	"github.com/user/freegif/pkg/playback"
	"github.com/user/freegif/pkg/ports"
	"github.com/user/freegif/pkg/stages/capture"
	"github.com/user/freegif/pkg/stages/encode"
	"github.com/user/freegif/pkg/stages/importer"
	"github.com/user/freegif/pkg/stages/sample"
	"github.com/user/freegif/pkg/stages/selector"
)

type fixture struct {
	session  *Session
	capture  *mocks.CaptureService
	source   *mocks.VideoSource
	encoder  *mocks.AnimationEncoder
	decoder  *mocks.AnimationDecoder
	renderer *mocks.Renderer
	fs       *mocks.FileSystem
	dialog   *mocks.FileDialog
	view     *mocks.FrameView
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		capture:  mocks.NewCaptureService(),
		source:   mocks.NewVideoSource(2.0, 1920, 1080),
		encoder:  &mocks.AnimationEncoder{},
		decoder:  &mocks.AnimationDecoder{Info: ports.AnimationInfo{FrameCount: 5, Width: 40, Height: 30}},
		renderer: &mocks.Renderer{},
		fs:       mocks.NewFileSystem(),
		dialog:   &mocks.FileDialog{},
		view:     &mocks.FrameView{},
	}
	f.fs.WriteFile("clip.gif", []byte("GIF89a"))

	log := logger.NewNoop()
	sink := mocks.NewDebugSink(false)
	stages := Stages{
		Select: selector.NewStage(),
		Sample: sample.NewStage(f.source, f.renderer, sink, log),
		Encode: encode.NewStage(f.encoder, f.renderer, f.fs, sink, log),
		Import: importer.NewStage(f.decoder, f.renderer, f.fs, log),
	}
	cs := capture.New(f.capture, f.capture, sink, log, "")

	f.session = New(stages, cs, f.renderer, f.view, f.dialog, log, DefaultConfig())
	f.session.now = func() time.Time { return time.UnixMilli(1700000000000) }
	t.Cleanup(func() { f.session.Close() })
	return f
}

// record runs select, preview, record and stop.
func (f *fixture) record(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if _, err := f.session.Select(ctx, selector.Drag(100, 100, 320, 240)); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if err := f.session.StartPreview(ctx); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}
	if err := f.session.StartRecording(ctx); err != nil {
		t.Fatalf("StartRecording failed: %v", err)
	}
	if _, err := f.session.StopRecording(ctx, nil); err != nil {
		t.Fatalf("StopRecording failed: %v", err)
	}
}

func TestSession_CaptureToExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if got := f.session.State(); got != Idle {
		t.Fatalf("expected idle, got %s", got)
	}

	f.record(t)

	store := f.session.Store()
	if store == nil || store.Len() != 20 {
		t.Fatalf("expected 20 frames from 2s at 10 fps, got %v", store)
	}
	if store.Width() != 320 || store.Height() != 240 || store.Delay() != 100 {
		t.Errorf("unexpected store %dx%d @ %d ms", store.Width(), store.Height(), store.Delay())
	}
	if f.session.State() != Editing {
		t.Errorf("expected editing, got %s", f.session.State())
	}
	if _, ok := f.session.Region(); ok {
		t.Error("expected the region to be consumed by the preview")
	}

	est, err := f.session.Estimate()
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if est.Frames != 20 || est.Width != 320 || est.Height != 240 || est.Bytes <= 0 {
		t.Errorf("unexpected estimate %+v", est)
	}

	result, err := f.session.Export(ctx, "", nil)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(f.dialog.DefaultNames) != 1 || f.dialog.DefaultNames[0] != "freegif-1700000000000.gif" {
		t.Errorf("unexpected default names %v", f.dialog.DefaultNames)
	}
	if result.Path != "freegif-1700000000000.gif" || result.FrameCount != 20 {
		t.Errorf("unexpected result %+v", result)
	}
	if _, ok := f.fs.GetFile(result.Path); !ok {
		t.Error("expected the GIF to be written")
	}
	if f.session.State() != Editing {
		t.Errorf("expected editing after export, got %s", f.session.State())
	}
}

func TestSession_NoFrames(t *testing.T) {
	f := newFixture(t)

	if _, err := f.session.Export(context.Background(), "out.gif", nil); !errors.Is(err, ErrNoFrames) {
		t.Errorf("Export: expected ErrNoFrames, got %v", err)
	}
	if _, err := f.session.Estimate(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("Estimate: expected ErrNoFrames, got %v", err)
	}
	if err := f.session.Trim(0, 1); !errors.Is(err, ErrNoFrames) {
		t.Errorf("Trim: expected ErrNoFrames, got %v", err)
	}
	if err := f.session.StartPreview(context.Background()); !errors.Is(err, ErrNoRegion) {
		t.Errorf("StartPreview: expected ErrNoRegion, got %v", err)
	}
}

func TestSession_BusyWhilePreviewing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.session.Select(ctx, selector.Drag(0, 0, 200, 200))
	if err := f.session.StartPreview(ctx); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}

	if _, err := f.session.Import(ctx, "clip.gif", nil); !errors.Is(err, ErrBusy) {
		t.Errorf("Import: expected ErrBusy, got %v", err)
	}
	if _, err := f.session.Select(ctx, selector.Drag(0, 0, 50, 50)); !errors.Is(err, ErrBusy) {
		t.Errorf("Select: expected ErrBusy, got %v", err)
	}
	if f.session.State() != Previewing {
		t.Errorf("expected still previewing, got %s", f.session.State())
	}

	if err := f.session.Reselect(); err != nil {
		t.Fatalf("Reselect failed: %v", err)
	}
	if f.session.State() != Idle {
		t.Errorf("expected idle after reselect, got %s", f.session.State())
	}
	if !f.capture.Streams[0].IsClosed() {
		t.Error("expected the preview stream to be closed")
	}
}

func TestSession_BusyWhileSampling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	f.session.stages.Sample = pipeline.StageFunc[pipeline.SampleInput, pipeline.FrameSequence](
		func(ctx context.Context, in pipeline.SampleInput) (pipeline.FrameSequence, error) {
			close(started)
			<-release
			return pipeline.FrameSequence{
				Frames:  []pipeline.FrameData{{Index: 0}, {Index: 1}},
				Width:   10,
				Height:  10,
				DelayMs: 100,
			}, nil
		})

	f.session.Select(ctx, selector.Drag(0, 0, 100, 100))
	f.session.StartPreview(ctx)
	f.session.StartRecording(ctx)

	done := make(chan error, 1)
	go func() {
		_, err := f.session.StopRecording(ctx, nil)
		done <- err
	}()
	<-started

	if f.session.State() != Sampling {
		t.Errorf("expected sampling, got %s", f.session.State())
	}
	if _, err := f.session.Import(ctx, "clip.gif", nil); !errors.Is(err, ErrBusy) {
		t.Errorf("Import: expected ErrBusy, got %v", err)
	}
	if _, err := f.session.Export(ctx, "out.gif", nil); !errors.Is(err, ErrBusy) {
		t.Errorf("Export: expected ErrBusy, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("StopRecording failed: %v", err)
	}
	if f.session.Store().Len() != 2 {
		t.Errorf("expected 2 frames, got %d", f.session.Store().Len())
	}
}

func TestSession_CaptureErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"permission", fmt.Errorf("x11grab: %w", fs.ErrPermission), capture.ErrPermissionDenied},
		{"busy", fmt.Errorf("avfoundation: %w", syscall.EBUSY), capture.ErrDeviceBusy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.capture.OpenStreamFunc = func(context.Context, string, ports.StreamConstraints) (ports.VideoStream, error) {
				return nil, tt.err
			}

			f.session.Select(ctx, selector.Drag(0, 0, 100, 100))
			err := f.session.StartPreview(ctx)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if f.session.State() != Idle {
				t.Errorf("expected idle after failure, got %s", f.session.State())
			}
		})
	}
}

func TestSession_SamplingFailureKeepsNoFrames(t *testing.T) {
	f := newFixture(t)
	f.source.FrameAtFunc = func(context.Context, float64) (image.Image, error) {
		return nil, errors.New("corrupt")
	}
	ctx := context.Background()

	f.session.Select(ctx, selector.Drag(0, 0, 100, 100))
	f.session.StartPreview(ctx)
	f.session.StartRecording(ctx)

	if _, err := f.session.StopRecording(ctx, nil); !errors.Is(err, pipeline.ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
	if f.session.Store() != nil || f.session.State() != Idle {
		t.Errorf("expected no store and idle, got %v in %s", f.session.Store(), f.session.State())
	}
}

func TestSession_ImportAndTrim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.session.Import(ctx, "clip.gif", nil)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Sequence.Len() != 5 || result.Sequence.DelayMs != 100 {
		t.Errorf("unexpected sequence: %d frames @ %d ms", result.Sequence.Len(), result.Sequence.DelayMs)
	}

	pb := f.session.Playback()
	pb.Seek(4)
	pb.Play()

	if err := f.session.Trim(1, 3); err != nil {
		t.Fatalf("Trim failed: %v", err)
	}
	if f.session.Store().Len() != 3 {
		t.Errorf("expected 3 frames, got %d", f.session.Store().Len())
	}
	if pb.State() != playback.Stopped || pb.Index() != 0 {
		t.Errorf("expected playback stopped at 0, got %s at %d", pb.State(), pb.Index())
	}
	if pb.Counter() != "1 / 3" {
		t.Errorf("expected counter \"1 / 3\", got %q", pb.Counter())
	}

	if err := f.session.Trim(2, 5); err == nil {
		t.Error("expected invalid range error")
	}
	if f.session.Store().Len() != 3 {
		t.Errorf("expected store untouched, got %d frames", f.session.Store().Len())
	}
}

func TestSession_NewCaptureDiscardsFrames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.session.Import(ctx, "clip.gif", nil); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	f.session.Select(ctx, selector.Drag(0, 0, 100, 100))
	f.session.StartPreview(ctx)
	if f.session.Store() == nil {
		t.Fatal("expected frames to survive the preview")
	}
	f.session.StartRecording(ctx)
	if f.session.Store() != nil {
		t.Error("expected recording to discard the previous frames")
	}
	if f.session.Playback().Counter() != "1 / 0" {
		t.Errorf("expected empty playback, got %q", f.session.Playback().Counter())
	}
}

func TestSession_FailedRecordingKeepsFrames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.record(t)

	f.capture.RecordFunc = func(context.Context, ports.VideoStream, string) (ports.RecordingHandle, error) {
		return nil, fmt.Errorf("encoder: %w", fs.ErrPermission)
	}
	if _, err := f.session.Select(ctx, selector.Drag(0, 0, 100, 100)); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if err := f.session.StartPreview(ctx); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}
	if err := f.session.StartRecording(ctx); !errors.Is(err, capture.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	if f.session.Store() == nil || f.session.Store().Len() != 20 {
		t.Fatalf("expected the 20 recorded frames to survive, got %v", f.session.Store())
	}
	if f.session.State() != Editing {
		t.Errorf("expected editing, got %s", f.session.State())
	}
	if got := f.session.Playback().Counter(); got != "1 / 20" {
		t.Errorf("expected playback to keep the frames, got %q", got)
	}
}

func TestSession_InvalidSpeedKeepsDefault(t *testing.T) {
	var out bytes.Buffer
	log := logger.NewConsoleWriter(ports.LevelWarn, &out, &out)

	config := DefaultConfig()
	config.Speed = 0
	renderer := &mocks.Renderer{}
	s := New(Stages{}, nil, renderer, &mocks.FrameView{}, &mocks.FileDialog{}, log, config)
	t.Cleanup(func() { s.playback.Close() })

	if got := s.Playback().Speed(); got != 1 {
		t.Errorf("expected speed 1, got %v", got)
	}
	if !strings.Contains(out.String(), "speed must be positive") {
		t.Errorf("expected a warning about the speed, got %q", out.String())
	}
}

func TestSession_SetDelayRetimesPlayback(t *testing.T) {
	f := newFixture(t)
	if _, err := f.session.Import(context.Background(), "clip.gif", nil); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if got := f.session.Playback().Interval(); got != 100*time.Millisecond {
		t.Fatalf("expected 100ms interval, got %v", got)
	}

	if err := f.session.SetDelay(40); err != nil {
		t.Fatalf("SetDelay failed: %v", err)
	}
	if got := f.session.Playback().Interval(); got != 40*time.Millisecond {
		t.Errorf("expected 40ms interval, got %v", got)
	}
}

func TestSession_DialogCancel(t *testing.T) {
	f := newFixture(t)
	f.dialog.Cancelled = true
	ctx := context.Background()

	if _, err := f.session.Import(ctx, "", nil); !errors.Is(err, pipeline.ErrCancelled) {
		t.Errorf("Import: expected ErrCancelled, got %v", err)
	}
	if f.session.State() != Idle {
		t.Errorf("expected idle, got %s", f.session.State())
	}

	f.dialog.Cancelled = false
	f.dialog.OpenFrom = "clip.gif"
	if _, err := f.session.Import(ctx, "", nil); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	f.dialog.Cancelled = true
	if _, err := f.session.Export(ctx, "", nil); !errors.Is(err, pipeline.ErrCancelled) {
		t.Errorf("Export: expected ErrCancelled, got %v", err)
	}
	if len(f.encoder.AddFrameCalls) != 0 {
		t.Error("expected no encoding after cancel")
	}
}

func TestSession_FailedExportKeepsParams(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.Import(ctx, "clip.gif", nil)

	p, _ := encparams.ForPreset(encparams.PresetLow)
	if err := f.session.SetParams(p); err != nil {
		t.Fatalf("SetParams failed: %v", err)
	}

	f.fs.WriteFileAtomicFunc = func(string, []byte) error { return errors.New("read-only file system") }
	if _, err := f.session.Export(ctx, "out.gif", nil); !errors.Is(err, encode.ErrExportIO) {
		t.Errorf("expected ErrExportIO, got %v", err)
	}
	if f.session.Params() != p {
		t.Errorf("expected params untouched, got %+v", f.session.Params())
	}
	if f.session.State() != Editing {
		t.Errorf("expected editing, got %s", f.session.State())
	}
}

func TestSession_SetParamsRejectsInvalid(t *testing.T) {
	f := newFixture(t)
	before := f.session.Params()

	bad := before
	bad.QualityPercent = 120
	if err := f.session.SetParams(bad); err == nil {
		t.Error("expected validation error")
	}
	if f.session.Params() != before {
		t.Error("expected params untouched")
	}
}

func TestSession_SetDelay(t *testing.T) {
	f := newFixture(t)
	if err := f.session.SetDelay(50); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}

	f.session.Import(context.Background(), "clip.gif", nil)
	if err := f.session.SetDelay(50); err != nil {
		t.Fatalf("SetDelay failed: %v", err)
	}
	if f.session.Store().Delay() != 50 {
		t.Errorf("expected 50 ms, got %d", f.session.Store().Delay())
	}
}

// testGIF builds an n-frame paletted GIF with no delay set.
func testGIF(t *testing.T, n, w, h int) []byte {
	t.Helper()
	anim := &gif.GIF{}
	for i := 0; i < n; i++ {
		img := image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: uint8(i * 60), A: 255})
			}
		}
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, 0)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		t.Fatalf("encode test gif: %v", err)
	}
	return buf.Bytes()
}

func TestSession_ExportImportRoundTrip(t *testing.T) {
	renderer := ggrenderer.New()
	files := mocks.NewFileSystem()
	files.WriteFile("in.gif", testGIF(t, 4, 24, 16))

	log := logger.NewNoop()
	sink := mocks.NewDebugSink(false)
	stages := Stages{
		Select: selector.NewStage(),
		Encode: encode.NewStage(gifencoder.New(), renderer, files, sink, log),
		Import: importer.NewStage(gifdecoder.New(), renderer, files, log),
	}
	cs := capture.New(mocks.NewCaptureService(), mocks.NewCaptureService(), sink, log, "")
	s := New(stages, cs, renderer, &mocks.FrameView{}, &mocks.FileDialog{}, log, DefaultConfig())
	defer s.Close()

	ctx := context.Background()
	first, err := s.Import(ctx, "in.gif", nil)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if first.Sequence.DelayMs != 100 {
		t.Errorf("expected 100 ms default delay, got %d", first.Sequence.DelayMs)
	}

	if _, err := s.Export(ctx, "out.gif", nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	second, err := s.Import(ctx, "out.gif", nil)
	if err != nil {
		t.Fatalf("re-Import failed: %v", err)
	}
	seq := second.Sequence
	if seq.Len() != 4 || seq.Width != 24 || seq.Height != 16 || seq.DelayMs != 100 {
		t.Errorf("round trip changed the sequence: %d frames %dx%d @ %d ms", seq.Len(), seq.Width, seq.Height, seq.DelayMs)
	}
}

func TestSession_Snapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.session.Snapshot(ctx); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState before preview, got %v", err)
	}

	if _, err := f.session.Select(ctx, selector.Drag(0, 0, 200, 100)); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if err := f.session.StartPreview(ctx); err != nil {
		t.Fatalf("StartPreview failed: %v", err)
	}

	img, err := f.session.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if img.Bounds().Dx() == 0 {
		t.Error("expected a non-empty snapshot")
	}
}
