// Package selector turns pointer gestures on a screen overlay into a
// device-pixel capture region.
package selector

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/user/freegif/pkg/pipeline"
)

var (
	// ErrCancelled is returned when the user pressed Escape.
	ErrCancelled = errors.New("selector: selection cancelled")
	// ErrTooSmall is returned when the released rectangle is under the minimum size.
	ErrTooSmall = errors.New("selector: selection too small")
	// ErrIncomplete is returned when the events end before a release.
	ErrIncomplete = errors.New("selector: selection not finished")
)

// EventKind identifies an overlay input event.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	KeyEscape
)

// Event is one overlay input event in local (logical) pixels.
type Event struct {
	Kind EventKind
	X    int
	Y    int
}

// State is the selector's position in the gesture.
type State int

const (
	Idle State = iota
	Dragging
	Done
	Cancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// CancelReason tells why a selection ended without a region.
type CancelReason int

const (
	ReasonNone CancelReason = iota
	ReasonEscape
	ReasonTooSmall
)

// Display describes the screen the overlay covers, in logical pixels.
type Display struct {
	Width       int
	Height      int
	ScaleFactor float64
}

// Selector is the drag state machine. It is not safe for concurrent use;
// overlay events arrive on one goroutine.
type Selector struct {
	display Display

	state          State
	startX, startY int
	endX, endY     int

	region  pipeline.Region
	reason  CancelReason
	emitted bool
}

// New creates a selector for the given display.
func New(display Display) *Selector {
	if display.ScaleFactor <= 0 {
		display.ScaleFactor = 1
	}
	return &Selector{display: display}
}

// State returns the current state.
func (s *Selector) State() State {
	return s.state
}

// Handle feeds one event. It returns the region and true exactly once,
// on the release that completes a valid selection.
func (s *Selector) Handle(ev Event) (pipeline.Region, bool) {
	switch ev.Kind {
	case KeyEscape:
		s.state = Cancelled
		s.reason = ReasonEscape
	case PointerDown:
		s.state = Dragging
		s.startX, s.startY = ev.X, ev.Y
		s.endX, s.endY = ev.X, ev.Y
		s.reason = ReasonNone
		s.emitted = false
	case PointerMove:
		if s.state == Dragging {
			s.endX, s.endY = ev.X, ev.Y
		}
	case PointerUp:
		if s.state != Dragging {
			break
		}
		s.endX, s.endY = ev.X, ev.Y
		x, y, w, h := s.local()
		if w < pipeline.MinRegionSize || h < pipeline.MinRegionSize {
			s.state = Cancelled
			s.reason = ReasonTooSmall
			break
		}
		s.state = Done
		s.region = s.toDevice(x, y, w, h)
		if !s.emitted {
			s.emitted = true
			return s.region, true
		}
	}
	return pipeline.Region{}, false
}

// Reason returns why the last attempt was cancelled.
func (s *Selector) Reason() CancelReason {
	return s.reason
}

// local returns the normalized drag rectangle in overlay pixels.
func (s *Selector) local() (x, y, w, h int) {
	x = min(s.startX, s.endX)
	y = min(s.startY, s.endY)
	w = abs(s.endX - s.startX)
	h = abs(s.endY - s.startY)
	return x, y, w, h
}

func (s *Selector) toDevice(x, y, w, h int) pipeline.Region {
	sf := s.display.ScaleFactor
	return pipeline.Region{
		X:             scale(x, sf),
		Y:             scale(y, sf),
		Width:         scale(w, sf),
		Height:        scale(h, sf),
		ScaleFactor:   sf,
		DisplayWidth:  scale(s.display.Width, sf),
		DisplayHeight: scale(s.display.Height, sf),
	}
}

// Info returns the size label shown next to the cursor while dragging.
func (s *Selector) Info() string {
	if s.state != Dragging && s.state != Done {
		return ""
	}
	_, _, w, h := s.local()
	return fmt.Sprintf("%d × %d", w, h)
}

func scale(v int, sf float64) int {
	return int(math.Round(float64(v) * sf))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Input is a recorded gesture to replay through the selector.
type Input struct {
	Display Display
	Events  []Event
}

// Stage replays a gesture and returns the selected region.
type Stage struct{}

// NewStage creates a new selector stage.
func NewStage() *Stage {
	return &Stage{}
}

// Execute feeds the events in order and returns the first completed region.
func (st *Stage) Execute(ctx context.Context, input Input) (pipeline.Region, error) {
	s := New(input.Display)
	for _, ev := range input.Events {
		if err := ctx.Err(); err != nil {
			return pipeline.Region{}, fmt.Errorf("%w: %w", pipeline.ErrCancelled, err)
		}
		if region, ok := s.Handle(ev); ok {
			return region, nil
		}
		if s.State() == Cancelled && s.Reason() == ReasonEscape {
			return pipeline.Region{}, ErrCancelled
		}
	}

	if s.State() == Cancelled && s.Reason() == ReasonTooSmall {
		return pipeline.Region{}, ErrTooSmall
	}
	return pipeline.Region{}, ErrIncomplete
}

// Drag returns the events of a straight drag from (x, y) to (x+w, y+h).
func Drag(x, y, w, h int) []Event {
	return []Event{
		{Kind: PointerDown, X: x, Y: y},
		{Kind: PointerMove, X: x + w/2, Y: y + h/2},
		{Kind: PointerUp, X: x + w, Y: y + h},
	}
}

var _ pipeline.Stage[Input, pipeline.Region] = (*Stage)(nil)
