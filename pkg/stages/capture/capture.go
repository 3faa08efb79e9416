// Package capture implements the screen capture session.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/user/freegif/pkg/pipeline"
	"github.com/user/freegif/pkg/ports"
)

var (
	// ErrPermissionDenied is returned when screen capture was not allowed.
	ErrPermissionDenied = errors.New("capture: permission denied")
	// ErrDeviceBusy is returned when the capture device is held elsewhere.
	ErrDeviceBusy = errors.New("capture: device busy")
	// ErrNoSource is returned when no screen can be captured.
	ErrNoSource = errors.New("capture: no capture source")
	// ErrInvalidState is returned for an operation not allowed in the current state.
	ErrInvalidState = errors.New("capture: invalid state")
)

// DefaultCodec is the real-time codec used for recordings.
const DefaultCodec = "libx264"

// Constraints is the resolution envelope requested from the capture device.
var Constraints = ports.StreamConstraints{
	MinWidth:  1280,
	MaxWidth:  4000,
	MinHeight: 720,
	MaxHeight: 4000,
	Audio:     false,
}

// State is the lifecycle position of a Session.
type State int

const (
	Idle State = iota
	Previewing
	Recording
	Stopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Previewing:
		return "previewing"
	case Recording:
		return "recording"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session drives one capture from preview to finished recording.
type Session struct {
	mu sync.Mutex

	service  ports.CaptureService
	recorder ports.Recorder
	sink     ports.DebugSink
	logger   ports.Logger
	codec    string
	now      func() time.Time

	state     State
	region    pipeline.Region
	stream    ports.VideoStream
	handle    ports.RecordingHandle
	startedAt time.Time
}

// New creates a capture session. An empty codec uses DefaultCodec.
func New(service ports.CaptureService, recorder ports.Recorder, sink ports.DebugSink, logger ports.Logger, codec string) *Session {
	if codec == "" {
		codec = DefaultCodec
	}
	return &Session{
		service:  service,
		recorder: recorder,
		sink:     sink,
		logger:   logger.WithComponent("capture"),
		codec:    codec,
		now:      time.Now,
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stream returns the open preview stream, or nil.
func (s *Session) Stream() ports.VideoStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}

// Preview opens the primary screen for region.
func (s *Session) Preview(ctx context.Context, region pipeline.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle && s.state != Stopped {
		return fmt.Errorf("%w: preview while %s", ErrInvalidState, s.state)
	}

	sources, err := s.service.EnumerateSources(ctx)
	if err != nil {
		return classify(fmt.Errorf("enumerate sources: %w", err))
	}
	if len(sources) == 0 {
		return ErrNoSource
	}

	stream, err := s.service.OpenStream(ctx, sources[0].ID, Constraints)
	if err != nil {
		return classify(fmt.Errorf("open stream: %w", err))
	}

	info := stream.Info()
	s.logger.Debug("Opening stream %s (%dx%d)", sources[0].Name, info.Width, info.Height)

	s.stream = stream
	s.region = region
	s.state = Previewing
	return nil
}

// Record starts persisting the preview stream.
func (s *Session) Record(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Previewing {
		return fmt.Errorf("%w: record while %s", ErrInvalidState, s.state)
	}

	handle, err := s.recorder.Record(ctx, s.stream, s.codec)
	if err != nil {
		s.release()
		return classify(fmt.Errorf("start recorder: %w", err))
	}

	s.logger.Debug("Recorder started with codec %s", s.codec)
	s.handle = handle
	s.startedAt = s.now()
	s.state = Recording
	return nil
}

// Stop flushes the recorder and returns the finished recording. The
// stream is released whether or not the flush succeeds.
func (s *Session) Stop(ctx context.Context) (pipeline.Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Recording {
		return pipeline.Recording{}, fmt.Errorf("%w: stop while %s", ErrInvalidState, s.state)
	}

	data, err := s.recorder.Stop(s.handle)
	stoppedAt := s.now()
	handle := s.handle
	s.handle = nil
	s.release()

	if err != nil {
		return pipeline.Recording{}, classify(fmt.Errorf("stop recorder: %w", err))
	}

	s.logger.Debug("Recorder flushed %d bytes", len(data))
	if s.sink.Enabled() {
		if err := s.sink.SaveRecording(data); err != nil {
			s.logger.Warn("Debug output failed: %s", err)
		}
	}

	s.state = Stopped
	id := handle.ID()
	if id == "" {
		id = uuid.NewString()
	}
	return pipeline.Recording{
		ID:        id,
		Data:      data,
		Codec:     s.codec,
		Region:    s.region,
		StartedAt: s.startedAt,
		StoppedAt: stoppedAt,
	}, nil
}

// Reselect abandons the preview so a new region can be chosen.
func (s *Session) Reselect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Previewing {
		return fmt.Errorf("%w: reselect while %s", ErrInvalidState, s.state)
	}
	s.release()
	return nil
}

// Close releases any held stream or recorder.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.handle != nil {
		_, err = s.recorder.Stop(s.handle)
		s.handle = nil
	}
	s.release()
	return err
}

// release closes the stream and returns to Idle. Callers hold s.mu.
func (s *Session) release() {
	if s.stream != nil {
		s.stream.Close()
		s.logger.Debug("Stream closed")
		s.stream = nil
	}
	s.state = Idle
}

// Elapsed returns how long the current recording has been running.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Recording {
		return 0
	}
	return s.now().Sub(s.startedAt)
}

// FormatElapsed renders d as MM:SS.
func FormatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// classify attaches the capture sentinels to device errors.
func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case errors.Is(err, syscall.EBUSY):
		return fmt.Errorf("%w: %w", ErrDeviceBusy, err)
	default:
		return err
	}
}
