// Package framestore holds the sampled frame sequence being edited.
//
// Frames are kept as PNG buffers and decoded lazily into bitmaps on first
// access. Decoded bitmaps are cached; the cache can be bounded, in which
// case the entry farthest from the current focus index is evicted first.
package framestore

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/user/freegif/pkg/pipeline"
	"github.com/user/freegif/pkg/ports"
)

// DefaultCacheSize is the number of decoded bitmaps kept in memory.
const DefaultCacheSize = 64

var (
	// ErrInvalidRange is returned by Trim for bounds outside the sequence.
	ErrInvalidRange = errors.New("framestore: invalid range")
	// ErrOutOfRange is returned by Get for an index outside the sequence.
	ErrOutOfRange = errors.New("framestore: index out of range")
	// ErrInvalidDelay is returned by SetDelay for non-positive delays.
	ErrInvalidDelay = errors.New("framestore: delay must be positive")
)

// Store is an ordered, trimmable frame sequence. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	renderer ports.Renderer

	frames  []pipeline.FrameData
	width   int
	height  int
	delayMs int

	cache     map[int]image.Image
	cacheSize int
	focus     int
	gen       int // Bumped by Trim so in-flight decodes do not cache under stale indices
}

// New creates a store over seq. cacheSize 0 keeps every decoded bitmap.
func New(seq pipeline.FrameSequence, renderer ports.Renderer, cacheSize int) *Store {
	frames := make([]pipeline.FrameData, len(seq.Frames))
	copy(frames, seq.Frames)

	delay := seq.DelayMs
	if delay <= 0 {
		delay = pipeline.FixedDelayMs
	}

	return &Store{
		renderer:  renderer,
		frames:    frames,
		width:     seq.Width,
		height:    seq.Height,
		delayMs:   delay,
		cache:     make(map[int]image.Image),
		cacheSize: cacheSize,
	}
}

// Len returns the number of frames.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// Width returns the frame width.
func (s *Store) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

// Height returns the frame height.
func (s *Store) Height() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

// Delay returns the per-frame delay in milliseconds.
func (s *Store) Delay() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delayMs
}

// SetDelay changes the per-frame delay used for playback and export.
func (s *Store) SetDelay(ms int) error {
	if ms <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDelay, ms)
	}
	s.mu.Lock()
	s.delayMs = ms
	s.mu.Unlock()
	return nil
}

// SetFocus records the index currently on screen. Bounded caches evict
// the entries farthest from it.
func (s *Store) SetFocus(index int) {
	s.mu.Lock()
	s.focus = index
	s.mu.Unlock()
}

// Get returns the bitmap at index, decoding and caching it on first access.
// The decode runs without the lock held, so concurrent callers may decode the
// same frame; the first bitmap cached wins.
func (s *Store) Get(index int) (image.Image, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.frames) {
		n := len(s.frames)
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %d of %d", ErrOutOfRange, index, n)
	}
	if img, ok := s.cache[index]; ok {
		s.mu.Unlock()
		return img, nil
	}
	data := s.frames[index].Data
	gen := s.gen
	s.mu.Unlock()

	img, err := s.renderer.DecodeImage(data, ports.FormatPNG)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w: %w", index, pipeline.ErrDecode, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return img, nil
	}
	if cached, ok := s.cache[index]; ok {
		return cached, nil
	}
	s.cache[index] = img
	s.evict()
	return img, nil
}

// evict drops cached bitmaps farthest from the focus until the cache fits.
func (s *Store) evict() {
	if s.cacheSize <= 0 {
		return
	}
	for len(s.cache) > s.cacheSize {
		victim, best := -1, -1
		for i := range s.cache {
			d := i - s.focus
			if d < 0 {
				d = -d
			}
			if d > best || (d == best && i > victim) {
				victim, best = i, d
			}
		}
		delete(s.cache, victim)
	}
}

// Cached returns the number of decoded bitmaps held.
func (s *Store) Cached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

// Trim keeps frames start..end inclusive (0-based). On an invalid range the
// store is left untouched.
func (s *Store) Trim(start, end int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if start < 0 || start > end || end >= len(s.frames) {
		return fmt.Errorf("%w: [%d,%d] of %d frames", ErrInvalidRange, start, end, len(s.frames))
	}

	kept := make([]pipeline.FrameData, end-start+1)
	copy(kept, s.frames[start:end+1])
	for i := range kept {
		kept[i].Index = i
	}

	cache := make(map[int]image.Image, len(s.cache))
	for i, img := range s.cache {
		if i >= start && i <= end {
			cache[i-start] = img
		}
	}

	s.frames = kept
	s.cache = cache
	s.focus = 0
	s.gen++
	return nil
}

// Sequence returns a snapshot of the current frames.
func (s *Store) Sequence() pipeline.FrameSequence {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := make([]pipeline.FrameData, len(s.frames))
	copy(frames, s.frames)
	return pipeline.FrameSequence{
		Frames:  frames,
		Width:   s.width,
		Height:  s.height,
		DelayMs: s.delayMs,
	}
}

// Thumbnail renders frame index letterboxed into w x h.
func (s *Store) Thumbnail(index, w, h int) (image.Image, error) {
	img, err := s.Get(index)
	if err != nil {
		return nil, err
	}
	return s.renderer.Thumbnail(img, w, h, color.Black), nil
}

var _ pipeline.FrameReader = (*Store)(nil)
