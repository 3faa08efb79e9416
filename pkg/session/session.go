// Package session coordinates the capture, sampling, editing and export
// stages around one owned frame store.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/freegif/pkg/encparams"
	"github.com/user/freegif/pkg/estimate"
	"github.com/user/freegif/pkg/framestore"
	"github.com/user/freegif/pkg/pipeline"
	"github.com/user/freegif/pkg/playback"
	"github.com/user/freegif/pkg/ports"
	"github.com/user/freegif/pkg/stages/capture"
	"github.com/user/freegif/pkg/stages/selector"
)

var (
	// ErrBusy is returned when another exclusive operation is running.
	ErrBusy = errors.New("session: another operation is in progress")
	// ErrNoFrames is returned by editing operations before any frames exist.
	ErrNoFrames = errors.New("session: no frames")
	// ErrNoRegion is returned by StartPreview before a region was selected.
	ErrNoRegion = errors.New("session: no region selected")
	// ErrInvalidState is returned for an operation not allowed in the current state.
	ErrInvalidState = errors.New("session: invalid state")
)

// State is the session's position in the capture-edit-export flow.
type State int

const (
	Idle State = iota
	Selecting
	Previewing
	Recording
	Sampling
	Editing
	Exporting
	Importing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Previewing:
		return "previewing"
	case Recording:
		return "recording"
	case Sampling:
		return "sampling"
	case Editing:
		return "editing"
	case Exporting:
		return "exporting"
	case Importing:
		return "importing"
	default:
		return "unknown"
	}
}

// Config contains the session settings.
type Config struct {
	Display   selector.Display
	FPS       int
	MaxFrames int
	DelayMode pipeline.DelayMode
	Params    encparams.Params
	Workers   int
	CacheSize int
	Loop      bool
	Speed     float64
	OutputDir string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	sample := pipeline.DefaultSampleInput()
	return Config{
		Display:   selector.Display{Width: 1920, Height: 1080, ScaleFactor: 1},
		FPS:       sample.FPS,
		MaxFrames: sample.MaxFrames,
		DelayMode: sample.DelayMode,
		Params:    encparams.Default(),
		Workers:   2,
		CacheSize: framestore.DefaultCacheSize,
		Loop:      true,
		Speed:     1,
	}
}

// Stages groups the pipeline stages a session drives.
type Stages struct {
	Select pipeline.Stage[selector.Input, pipeline.Region]
	Sample pipeline.Stage[pipeline.SampleInput, pipeline.FrameSequence]
	Encode pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	Import pipeline.Stage[pipeline.ImportInput, pipeline.ImportResult]
}

// Session owns the region, capture, frame store, encode parameters and
// playback of one editing flow. Exclusive operations fail with ErrBusy
// instead of queueing.
type Session struct {
	mu sync.Mutex

	stages   Stages
	capture  *capture.Session
	renderer ports.Renderer
	dialog   ports.FileDialog
	logger   ports.Logger
	config   Config
	now      func() time.Time

	state    State
	region   *pipeline.Region
	store    *framestore.Store
	params   encparams.Params
	playback *playback.Controller
}

// New creates an idle session.
func New(
	stages Stages,
	captureSession *capture.Session,
	renderer ports.Renderer,
	view ports.FrameView,
	dialog ports.FileDialog,
	logger ports.Logger,
	config Config,
) *Session {
	empty := framestore.New(pipeline.FrameSequence{}, renderer, config.CacheSize)
	pb := playback.New(empty, view, logger)
	pb.SetLoop(config.Loop)
	if err := pb.SetSpeed(config.Speed); err != nil {
		logger.Warn("Keeping default playback speed: %s", err)
	}

	return &Session{
		stages:   stages,
		capture:  captureSession,
		renderer: renderer,
		dialog:   dialog,
		logger:   logger,
		config:   config,
		now:      time.Now,
		params:   config.Params,
		playback: pb,
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Region returns the selected region, if any.
func (s *Session) Region() (pipeline.Region, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.region == nil {
		return pipeline.Region{}, false
	}
	return *s.region, true
}

// Store returns the current frame store, or nil before a capture or import.
func (s *Session) Store() *framestore.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// Playback returns the playback controller bound to the current store.
func (s *Session) Playback() *playback.Controller {
	return s.playback
}

// acquire moves from a resting state into an exclusive one.
func (s *Session) acquire(next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle && s.state != Editing {
		return fmt.Errorf("%w: %s while %s", ErrBusy, next, s.state)
	}
	s.state = next
	return nil
}

// settle returns to the resting state matching the store.
func (s *Session) settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settleLocked()
}

func (s *Session) settleLocked() {
	if s.store != nil && s.store.Len() > 0 {
		s.state = Editing
	} else {
		s.state = Idle
	}
}

// discard drops the current store and stops playback. Callers hold s.mu.
func (s *Session) discard() {
	s.playback.Reset(framestore.New(pipeline.FrameSequence{}, s.renderer, 0))
	s.store = nil
}

// install binds a new store to the session and playback. Callers hold s.mu.
func (s *Session) install(store *framestore.Store) {
	s.store = store
	s.playback.Reset(store)
	s.state = Editing
}

// Select replays overlay events through the region selector.
func (s *Session) Select(ctx context.Context, events []selector.Event) (pipeline.Region, error) {
	if err := s.acquire(Selecting); err != nil {
		return pipeline.Region{}, err
	}
	defer s.settle()

	s.logger.Info("Select a region by dragging, Escape to cancel")
	region, err := s.stages.Select.Execute(ctx, selector.Input{Display: s.config.Display, Events: events})
	if err != nil {
		if errors.Is(err, selector.ErrCancelled) {
			s.logger.Info("Selection cancelled")
		} else {
			s.logger.Error("Failed to select region: %s", err)
		}
		return pipeline.Region{}, err
	}

	s.mu.Lock()
	s.region = &region
	s.mu.Unlock()
	s.logger.Info("Region selected: %dx%d at (%d,%d)", region.Width, region.Height, region.X, region.Y)
	return region, nil
}

// StartPreview opens the capture stream for the selected region. The region
// is consumed: a later capture needs a new selection.
func (s *Session) StartPreview(ctx context.Context) error {
	s.mu.Lock()
	region := s.region
	s.mu.Unlock()
	if region == nil {
		return ErrNoRegion
	}

	if err := s.acquire(Previewing); err != nil {
		return err
	}

	if err := s.capture.Preview(ctx, *region); err != nil {
		s.logger.Error("Failed to open capture: %s", err)
		s.settle()
		return err
	}

	s.mu.Lock()
	s.region = nil
	s.mu.Unlock()
	if stream := s.capture.Stream(); stream != nil {
		s.logger.Info("Preview started on %s", stream.SourceID())
	}
	return nil
}

// Snapshot grabs the current preview frame.
func (s *Session) Snapshot(ctx context.Context) (image.Image, error) {
	stream := s.capture.Stream()
	if stream == nil {
		return nil, fmt.Errorf("%w: no preview stream", ErrInvalidState)
	}
	return stream.Snapshot(ctx)
}

// Reselect abandons the preview so a new region can be chosen.
func (s *Session) Reselect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Previewing {
		return fmt.Errorf("%w: reselect while %s", ErrInvalidState, s.state)
	}
	if err := s.capture.Reselect(); err != nil {
		return err
	}
	s.settleLocked()
	return nil
}

// StartRecording begins recording the preview stream. The current frames
// are discarded once the recorder has started.
func (s *Session) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Previewing {
		return fmt.Errorf("%w: record while %s", ErrInvalidState, s.state)
	}

	if err := s.capture.Record(ctx); err != nil {
		s.logger.Error("Failed to record: %s", err)
		s.settleLocked()
		return err
	}
	s.discard()
	s.state = Recording
	s.logger.Info("Recording started")
	return nil
}

// Elapsed returns the running recording time.
func (s *Session) Elapsed() time.Duration {
	return s.capture.Elapsed()
}

// StopRecording finishes the recording and samples it into a new store.
func (s *Session) StopRecording(ctx context.Context, progress chan<- pipeline.Progress) (*framestore.Store, error) {
	s.mu.Lock()
	if s.state != Recording {
		state := s.state
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: stop while %s", ErrInvalidState, state)
	}
	s.state = Sampling
	s.mu.Unlock()

	rec, err := s.capture.Stop(ctx)
	if err != nil {
		s.logger.Error("Failed to record: %s", err)
		s.settle()
		return nil, err
	}
	s.logger.Info("Recording stopped after %s", capture.FormatElapsed(rec.Elapsed()))

	seq, err := s.stages.Sample.Execute(ctx, pipeline.SampleInput{
		Recording: rec,
		FPS:       s.config.FPS,
		MaxFrames: s.config.MaxFrames,
		DelayMode: s.config.DelayMode,
		Progress:  progress,
	})
	if err != nil {
		s.logger.Error("Failed to extract frames: %s", err)
		s.settle()
		return nil, err
	}
	s.logger.Info("Extracted %d frames", seq.Len())

	store := framestore.New(seq, s.renderer, s.config.CacheSize)
	s.mu.Lock()
	s.install(store)
	s.mu.Unlock()
	return store, nil
}

// Import loads an animated GIF into a new store. An empty path asks the
// file dialog; cancelling it returns pipeline.ErrCancelled.
func (s *Session) Import(ctx context.Context, path string, progress chan<- pipeline.Progress) (pipeline.ImportResult, error) {
	if err := s.acquire(Importing); err != nil {
		return pipeline.ImportResult{}, err
	}

	if path == "" {
		p, ok, err := s.dialog.OpenPath()
		if err != nil {
			s.settle()
			return pipeline.ImportResult{}, fmt.Errorf("open dialog: %w", err)
		}
		if !ok {
			s.settle()
			return pipeline.ImportResult{}, pipeline.ErrCancelled
		}
		path = p
	}

	s.mu.Lock()
	s.discard()
	s.mu.Unlock()

	result, err := s.stages.Import.Execute(ctx, pipeline.ImportInput{Path: path, Progress: progress})
	if err != nil {
		s.logger.Error("Failed to import GIF: %s", err)
		s.settle()
		return pipeline.ImportResult{}, err
	}

	seq := result.Sequence
	s.logger.Info("Imported %d frames (%dx%d, %d ms)", seq.Len(), seq.Width, seq.Height, seq.DelayMs)

	s.mu.Lock()
	s.install(framestore.New(seq, s.renderer, s.config.CacheSize))
	s.mu.Unlock()
	return result, nil
}

// editable returns the store when the session is resting with frames.
// Callers hold s.mu.
func (s *Session) editable() (*framestore.Store, error) {
	if s.state != Idle && s.state != Editing {
		return nil, fmt.Errorf("%w: edit while %s", ErrBusy, s.state)
	}
	if s.store == nil || s.store.Len() == 0 {
		return nil, ErrNoFrames
	}
	return s.store, nil
}

// Trim keeps frames start..end (0-based, inclusive), stops playback and
// rewinds it to the first frame.
func (s *Session) Trim(start, end int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.editable()
	if err != nil {
		return err
	}

	s.playback.Stop()
	if err := store.Trim(start, end); err != nil {
		return err
	}
	s.playback.Reset(store)
	s.logger.Info("Trimmed to frames %d-%d", start+1, end+1)
	return nil
}

// SetDelay changes the export delay of every frame.
func (s *Session) SetDelay(ms int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.editable()
	if err != nil {
		return err
	}
	if err := store.SetDelay(ms); err != nil {
		return err
	}
	s.playback.SetDelay(store.Delay())
	return nil
}

// Params returns the current encode parameters.
func (s *Session) Params() encparams.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetParams replaces the encode parameters after validating them.
func (s *Session) SetParams(p encparams.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Exporting {
		return fmt.Errorf("%w: change parameters while exporting", ErrBusy)
	}
	s.params = p
	return nil
}

// Estimate predicts the export size for the current frames and parameters.
func (s *Session) Estimate() (estimate.Estimate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil || s.store.Len() == 0 {
		return estimate.Estimate{}, ErrNoFrames
	}
	e := estimate.For(s.store, s.params)
	s.logger.Debug("Estimated size: %s", e)
	return e, nil
}

// DefaultExportName returns the suggested file name for an export at t.
func DefaultExportName(t time.Time) string {
	return fmt.Sprintf("freegif-%d.gif", t.UnixMilli())
}

// Export encodes the current frames. An empty path asks the file dialog
// with a timestamped default name; cancelling it returns
// pipeline.ErrCancelled. A failed export leaves the parameters untouched.
func (s *Session) Export(ctx context.Context, path string, progress chan<- pipeline.Progress) (pipeline.EncodeResult, error) {
	s.mu.Lock()
	store, err := s.editable()
	if err != nil {
		s.mu.Unlock()
		return pipeline.EncodeResult{}, err
	}
	params := s.params
	s.mu.Unlock()

	if path == "" {
		name := DefaultExportName(s.now())
		if s.config.OutputDir != "" {
			name = filepath.Join(s.config.OutputDir, name)
		}
		p, ok, err := s.dialog.SavePath(name)
		if err != nil {
			return pipeline.EncodeResult{}, fmt.Errorf("save dialog: %w", err)
		}
		if !ok {
			return pipeline.EncodeResult{}, pipeline.ErrCancelled
		}
		path = p
	}

	if err := s.acquire(Exporting); err != nil {
		return pipeline.EncodeResult{}, err
	}
	defer s.settle()

	result, err := s.stages.Encode.Execute(ctx, pipeline.EncodeInput{
		Frames:     store,
		Params:     params,
		Workers:    s.config.Workers,
		OutputPath: path,
		Progress:   progress,
	})
	if err != nil {
		s.logger.Error("Failed to export GIF: %s", err)
		return pipeline.EncodeResult{}, err
	}

	s.logger.Info("GIF exported to %s", result.Path)
	return result, nil
}

// Close stops playback and releases the capture device.
func (s *Session) Close() error {
	s.playback.Close()
	return s.capture.Close()
}
