package pipeline

import (
	"errors"
	"image"
	"time"

	"github.com/user/freegif/pkg/encparams"
)

var (
	// ErrDecode is returned when a recording or animation frame cannot be decoded.
	ErrDecode = errors.New("pipeline: decode error")

	// ErrCancelled is returned when a long operation observes a cancelled context.
	ErrCancelled = errors.New("pipeline: cancelled")
)

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// Rectangle represents a rectangular area.
type Rectangle struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Progress reports how far a long operation has come.
type Progress struct {
	Stage   string
	Current int
	Total   int
}

// Fraction returns Current/Total, or 0 when Total is not known.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Current) / float64(p.Total)
}

// SendProgress publishes p on ch without blocking. A nil channel is ignored.
func SendProgress(ch chan<- Progress, p Progress) {
	if ch == nil {
		return
	}
	select {
	case ch <- p:
	default:
	}
}

// =============================================================================
// Selection and Capture Types
// =============================================================================

// MinRegionSize is the smallest accepted selection edge.
const MinRegionSize = 10

// Region is a device-pixel screen rectangle plus the display scale factor
// used to derive it.
type Region struct {
	X             int
	Y             int
	Width         int
	Height        int
	ScaleFactor   float64
	DisplayWidth  int // Physical display width in device pixels
	DisplayHeight int // Physical display height in device pixels
}

// Valid reports whether the region is large enough to capture.
func (r Region) Valid() bool {
	return r.Width >= MinRegionSize && r.Height >= MinRegionSize
}

// Rect returns the region as an image rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Recording is a finished capture: the encoded container bytes and the
// wall-clock span of the recording.
type Recording struct {
	ID        string
	Data      []byte
	Codec     string
	Region    Region
	StartedAt time.Time
	StoppedAt time.Time
}

// Elapsed returns the wall-clock duration between start and stop.
func (r Recording) Elapsed() time.Duration {
	return r.StoppedAt.Sub(r.StartedAt)
}

// =============================================================================
// Sample Stage Types
// =============================================================================

// DelayMode controls the inter-frame delay recorded by the sampler.
type DelayMode string

const (
	// DelayFromRate uses 1000/F milliseconds, matching the sampling rate.
	DelayFromRate DelayMode = "rate"
	// DelayFixed always uses FixedDelayMs regardless of the sampling rate.
	DelayFixed DelayMode = "fixed"
)

// FixedDelayMs is the delay used by DelayFixed and by imports without timing.
const FixedDelayMs = 100

// SampleInput contains parameters for frame sampling.
type SampleInput struct {
	Recording Recording
	FPS       int             // Sample rate in frames per second (default: 10)
	MaxFrames int             // Upper bound on extracted frames (default: 300, 0 = unbounded)
	DelayMode DelayMode       // How to derive DelayMs
	Progress  chan<- Progress // Optional, receives non-blocking updates
}

// DefaultSampleInput returns SampleInput with default values.
func DefaultSampleInput() SampleInput {
	return SampleInput{
		FPS:       10,
		MaxFrames: 300,
		DelayMode: DelayFromRate,
	}
}

// RawFrame is a sampled bitmap with its position in the recording.
type RawFrame struct {
	Image            image.Image
	TimestampSeconds float64
	SequenceIndex    int
}

// FrameData is one encoded frame buffer of a sequence.
type FrameData struct {
	Index       int
	TimestampMs int
	Data        []byte // PNG image data
}

// FrameSequence is an ordered list of frames with uniform size and delay.
type FrameSequence struct {
	Frames  []FrameData
	Width   int
	Height  int
	DelayMs int
}

// Len returns the number of frames.
func (s FrameSequence) Len() int {
	return len(s.Frames)
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// FrameReader is the read side of a frame store.
type FrameReader interface {
	Len() int
	Get(index int) (image.Image, error)
	Width() int
	Height() int
	Delay() int
}

// EncodeInput contains parameters for animation encoding.
type EncodeInput struct {
	Frames     FrameReader
	Params     encparams.Params
	Workers    int
	OutputPath string
	Progress   chan<- Progress
}

// EncodeResult contains the encoded animation.
type EncodeResult struct {
	Path       string
	Data       []byte
	FileSize   int64
	FrameCount int
	Width      int
	Height     int
	DelayMs    int
}

// =============================================================================
// Import Stage Types
// =============================================================================

// ImportInput contains the animated image to import.
type ImportInput struct {
	Path     string
	Data     []byte // Used instead of reading Path when non-nil
	Progress chan<- Progress
}

// ImportResult contains the imported sequence and the frames that failed.
type ImportResult struct {
	Path     string
	Sequence FrameSequence
	Skipped  []int
}
