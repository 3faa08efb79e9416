// Package ffmpegcapture implements screen capture and recording with ffmpeg.
package ffmpegcapture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/user/freegif/pkg/ports"
)

// DefaultFrameRate is the grab rate of the screen device.
const DefaultFrameRate = 30

// Options configures the capture service.
type Options struct {
	FfmpegPath string // Empty uses ffmpeg from PATH
	FrameRate  int
	TempDir    string // Scratch directory for recordings, empty uses os.TempDir
}

// Service implements ports.CaptureService and ports.Recorder.
type Service struct {
	opts Options
	goos string

	mu         sync.Mutex
	recordings map[string]*recording
}

// New creates a capture service for the current platform.
func New(opts Options) *Service {
	if opts.FrameRate <= 0 {
		opts.FrameRate = DefaultFrameRate
	}
	return &Service{
		opts:       opts,
		goos:       runtime.GOOS,
		recordings: make(map[string]*recording),
	}
}

// input describes the ffmpeg screen-grab device for one source.
type input struct {
	filename string
	args     ffmpeg.KwArgs
}

func inputFor(goos, sourceID string, frameRate int) (input, error) {
	rate := fmt.Sprint(frameRate)
	switch goos {
	case "linux", "freebsd", "openbsd":
		return input{filename: sourceID, args: ffmpeg.KwArgs{"f": "x11grab", "framerate": rate, "draw_mouse": "1"}}, nil
	case "darwin":
		return input{filename: sourceID, args: ffmpeg.KwArgs{"f": "avfoundation", "framerate": rate, "capture_cursor": "1"}}, nil
	case "windows":
		return input{filename: sourceID, args: ffmpeg.KwArgs{"f": "gdigrab", "framerate": rate, "draw_mouse": "1"}}, nil
	default:
		return input{}, fmt.Errorf("screen capture not supported on %s", goos)
	}
}

func sourcesFor(goos string) []ports.SourceDescriptor {
	switch goos {
	case "darwin":
		return []ports.SourceDescriptor{{ID: "Capture screen 0:none", Name: "Capture screen 0"}}
	case "windows":
		return []ports.SourceDescriptor{{ID: "desktop", Name: "Desktop"}}
	default:
		display := os.Getenv("DISPLAY")
		if display == "" {
			display = ":0"
		}
		return []ports.SourceDescriptor{{ID: display, Name: "X11 " + display}}
	}
}

// EnumerateSources lists capturable screens, primary first.
func (s *Service) EnumerateSources(ctx context.Context) ([]ports.SourceDescriptor, error) {
	if _, err := inputFor(s.goos, "", s.opts.FrameRate); err != nil {
		return nil, err
	}
	return sourcesFor(s.goos), nil
}

// OpenStream grabs one frame to learn the screen resolution and verify
// that the device can be opened.
func (s *Service) OpenStream(ctx context.Context, sourceID string, constraints ports.StreamConstraints) (ports.VideoStream, error) {
	in, err := inputFor(s.goos, sourceID, s.opts.FrameRate)
	if err != nil {
		return nil, err
	}

	st := &stream{
		service:     s,
		sourceID:    sourceID,
		input:       in,
		constraints: constraints,
	}

	img, err := st.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := fitConstraints(b.Dx(), b.Dy(), constraints)
	st.info = ports.StreamInfo{Width: w, Height: h, FrameRate: s.opts.FrameRate}
	st.native = image.Pt(b.Dx(), b.Dy())

	return st, nil
}

// fitConstraints scales a native size down into the maximum envelope,
// keeping the aspect ratio. Sizes below the minimum are left as they are.
func fitConstraints(w, h int, c ports.StreamConstraints) (int, int) {
	scale := 1.0
	if c.MaxWidth > 0 && w > c.MaxWidth {
		scale = float64(c.MaxWidth) / float64(w)
	}
	if c.MaxHeight > 0 && h > c.MaxHeight {
		if s := float64(c.MaxHeight) / float64(h); s < scale {
			scale = s
		}
	}
	if scale == 1.0 {
		return w, h
	}
	// libx264 requires even dimensions
	return int(float64(w)*scale) &^ 1, int(float64(h)*scale) &^ 1
}

func (s *Service) command(st *stream, output string, args ffmpeg.KwArgs) *ffmpeg.Stream {
	cmd := ffmpeg.Input(st.input.filename, st.input.args).Output(output, args)
	if s.opts.FfmpegPath != "" {
		cmd = cmd.SetFfmpegPath(s.opts.FfmpegPath)
	}
	return cmd
}

// Record starts an ffmpeg process writing a fragmented MP4 so the output
// stays decodable even if ffmpeg is killed.
func (s *Service) Record(ctx context.Context, vs ports.VideoStream, codec string) (ports.RecordingHandle, error) {
	st, ok := vs.(*stream)
	if !ok {
		return nil, fmt.Errorf("stream was not opened by ffmpegcapture")
	}
	if codec == "" {
		codec = "libx264"
	}

	dir := s.opts.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	id := uuid.NewString()
	path := filepath.Join(dir, "freegif-"+id+".mp4")

	args := ffmpeg.KwArgs{
		"c:v":      codec,
		"pix_fmt":  "yuv420p",
		"movflags": "frag_keyframe+empty_moov",
		"f":        "mp4",
	}
	if codec == "libx264" {
		args["preset"] = "ultrafast"
	}
	if st.info.Width != st.native.X || st.info.Height != st.native.Y {
		args["vf"] = fmt.Sprintf("scale=%d:%d", st.info.Width, st.info.Height)
	}

	var stderr bytes.Buffer
	cmd := s.command(st, path, args).OverWriteOutput().WithErrorOutput(&stderr).Compile()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, classify(fmt.Errorf("start ffmpeg: %w", err), "")
	}

	rec := &recording{id: id, path: path, stdin: stdin, wait: cmd.Wait, stderr: &stderr}

	s.mu.Lock()
	s.recordings[id] = rec
	s.mu.Unlock()

	return rec, nil
}

// Stop asks ffmpeg to finish by sending "q", waits for it to exit and
// returns the container bytes.
func (s *Service) Stop(handle ports.RecordingHandle) ([]byte, error) {
	s.mu.Lock()
	rec, ok := s.recordings[handle.ID()]
	delete(s.recordings, handle.ID())
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("unknown recording %s", handle.ID())
	}
	defer os.Remove(rec.path)

	if _, err := io.WriteString(rec.stdin, "q"); err != nil && !errors.Is(err, os.ErrClosed) {
		rec.stdin.Close()
		rec.wait()
		return nil, fmt.Errorf("signal ffmpeg: %w", err)
	}
	rec.stdin.Close()

	// ffmpeg exits non-zero after "q" on some builds, the file is what counts.
	waitErr := rec.wait()

	data, err := os.ReadFile(rec.path)
	if err != nil || len(data) == 0 {
		if waitErr != nil {
			return nil, classify(fmt.Errorf("ffmpeg: %w", waitErr), rec.stderr.String())
		}
		return nil, fmt.Errorf("read recording: %w", err)
	}

	return data, nil
}

// recording is an in-progress ffmpeg process.
type recording struct {
	id     string
	path   string
	stdin  io.WriteCloser
	wait   func() error
	stderr *bytes.Buffer
}

func (r *recording) ID() string { return r.id }

// stream is a screen device that has been opened once successfully.
type stream struct {
	service     *Service
	sourceID    string
	input       input
	constraints ports.StreamConstraints
	info        ports.StreamInfo
	native      image.Point
}

func (st *stream) SourceID() string       { return st.sourceID }
func (st *stream) Info() ports.StreamInfo { return st.info }

// Snapshot grabs a single frame from the device.
func (st *stream) Snapshot(ctx context.Context) (image.Image, error) {
	var stdout, stderr bytes.Buffer
	cmd := st.service.command(st, "pipe:1", ffmpeg.KwArgs{
		"frames:v": "1",
		"format":   "image2pipe",
		"vcodec":   "png",
	}).WithOutput(&stdout).WithErrorOutput(&stderr)
	cmd.Context = ctx

	if err := cmd.Run(); err != nil {
		return nil, classify(fmt.Errorf("grab frame: %w", err), stderr.String())
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode grabbed frame: %w", err)
	}
	return img, nil
}

// Close is a no-op: ffmpeg opens the device per command.
func (st *stream) Close() error { return nil }

// classify maps ffmpeg diagnostics onto errors that callers can test with
// errors.Is(err, fs.ErrPermission) and errors.Is(err, syscall.EBUSY).
func classify(err error, stderr string) error {
	msg := strings.ToLower(stderr)
	switch {
	case strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "operation not permitted"),
		strings.Contains(msg, "not authorized"),
		strings.Contains(msg, "cannot open display"):
		return fmt.Errorf("%w: %w", fs.ErrPermission, err)
	case strings.Contains(msg, "device or resource busy"),
		strings.Contains(msg, "resource busy"):
		return fmt.Errorf("%w: %w", syscall.EBUSY, err)
	default:
		return err
	}
}

var (
	_ ports.CaptureService = (*Service)(nil)
	_ ports.Recorder       = (*Service)(nil)
)
