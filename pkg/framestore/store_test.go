package framestore

import (
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/user/freegif/pkg/mocks"
	"github.com/user/freegif/pkg/pipeline"
	"github.com/user/freegif/pkg/ports"
)

// taggedRenderer decodes a frame buffer into an image whose width encodes
// the original frame number, so tests can tell frames apart.
func taggedRenderer() *mocks.Renderer {
	return &mocks.Renderer{
		DecodeImageFunc: func(data []byte, format ports.ImageFormat) (image.Image, error) {
			if len(data) == 0 {
				return nil, errors.New("empty buffer")
			}
			return image.NewRGBA(image.Rect(0, 0, int(data[0])+1, 1)), nil
		},
	}
}

func tag(img image.Image) int {
	return img.Bounds().Dx() - 1
}

func sequence(n int) pipeline.FrameSequence {
	frames := make([]pipeline.FrameData, n)
	for i := range frames {
		frames[i] = pipeline.FrameData{Index: i, TimestampMs: i * 100, Data: []byte{byte(i)}}
	}
	return pipeline.FrameSequence{Frames: frames, Width: 320, Height: 240, DelayMs: 100}
}

func TestStore_Basics(t *testing.T) {
	s := New(sequence(5), taggedRenderer(), 0)

	if s.Len() != 5 || s.Width() != 320 || s.Height() != 240 || s.Delay() != 100 {
		t.Errorf("unexpected store metadata: len=%d %dx%d delay=%d", s.Len(), s.Width(), s.Height(), s.Delay())
	}

	img, err := s.Get(3)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if tag(img) != 3 {
		t.Errorf("expected frame 3, got %d", tag(img))
	}
}

func TestStore_DefaultDelay(t *testing.T) {
	seq := sequence(2)
	seq.DelayMs = 0

	s := New(seq, taggedRenderer(), 0)
	if s.Delay() != pipeline.FixedDelayMs {
		t.Errorf("expected default delay %d, got %d", pipeline.FixedDelayMs, s.Delay())
	}
}

func TestStore_GetIsIdempotent(t *testing.T) {
	r := taggedRenderer()
	s := New(sequence(3), r, 0)

	first, _ := s.Get(1)
	second, _ := s.Get(1)

	if first != second {
		t.Error("expected cached bitmap on second access")
	}
	if r.DecodeCalls != 1 {
		t.Errorf("expected 1 decode, got %d", r.DecodeCalls)
	}
}

func TestStore_GetConcurrent(t *testing.T) {
	r := taggedRenderer()
	s := New(sequence(4), r, 0)

	got := make([]image.Image, 16)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img, err := s.Get(i % 4)
			if err != nil {
				t.Errorf("Get failed: %v", err)
			}
			got[i] = img
		}(i)
	}
	wg.Wait()

	for i, img := range got {
		if img != got[i%4] {
			t.Errorf("call %d returned a different bitmap than the cached one", i)
		}
	}
	if s.Cached() != 4 {
		t.Errorf("expected 4 cached bitmaps, got %d", s.Cached())
	}
}

func TestStore_DecodeRunsUnlocked(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	r := &mocks.Renderer{
		DecodeImageFunc: func(data []byte, format ports.ImageFormat) (image.Image, error) {
			started <- struct{}{}
			<-release
			return image.NewRGBA(image.Rect(0, 0, int(data[0])+1, 1)), nil
		},
	}
	s := New(sequence(10), r, 0)

	done := make(chan image.Image)
	go func() {
		img, _ := s.Get(8)
		done <- img
	}()
	<-started

	// The store stays usable while the decode is blocked.
	if s.Len() != 10 {
		t.Fatalf("expected 10 frames, got %d", s.Len())
	}
	if err := s.Trim(5, 9); err != nil {
		t.Fatalf("Trim failed: %v", err)
	}
	close(release)

	if img := <-done; tag(img) != 8 {
		t.Errorf("expected the requested frame 8, got %d", tag(img))
	}
	// Frame 8 is now index 3, and index 8 is out of range.
	if s.Cached() != 0 {
		t.Errorf("expected the stale decode not to be cached, got %d", s.Cached())
	}
	img, err := s.Get(3)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if tag(img) != 8 {
		t.Errorf("expected original frame 8 at index 3, got %d", tag(img))
	}
}

func TestStore_GetErrors(t *testing.T) {
	seq := sequence(2)
	seq.Frames[1].Data = nil
	s := New(seq, taggedRenderer(), 0)

	if _, err := s.Get(2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := s.Get(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := s.Get(1); !errors.Is(err, pipeline.ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestStore_Trim(t *testing.T) {
	s := New(sequence(10), taggedRenderer(), 0)

	// Warm the cache on both sides of the range.
	for _, i := range []int{0, 2, 4, 9} {
		s.Get(i)
	}

	if err := s.Trim(2, 5); err != nil {
		t.Fatalf("Trim failed: %v", err)
	}

	if s.Len() != 4 {
		t.Fatalf("expected 4 frames, got %d", s.Len())
	}
	for i := 0; i < 4; i++ {
		img, err := s.Get(i)
		if err != nil {
			t.Fatalf("Get(%d) failed: %v", i, err)
		}
		if tag(img) != i+2 {
			t.Errorf("index %d: expected original frame %d, got %d", i, i+2, tag(img))
		}
	}

	seq := s.Sequence()
	for i, f := range seq.Frames {
		if f.Index != i {
			t.Errorf("expected re-indexed frame %d, got %d", i, f.Index)
		}
	}
}

func TestStore_TrimInvalid(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
	}{
		{"negative start", -1, 3},
		{"start after end", 5, 4},
		{"end past last", 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(sequence(10), taggedRenderer(), 0)
			s.Get(7)

			err := s.Trim(tt.start, tt.end)
			if !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("expected ErrInvalidRange, got %v", err)
			}
			if s.Len() != 10 {
				t.Errorf("expected store untouched, got %d frames", s.Len())
			}
			for i := 0; i < 10; i++ {
				img, err := s.Get(i)
				if err != nil {
					t.Fatalf("Get(%d) failed: %v", i, err)
				}
				if tag(img) != i {
					t.Errorf("expected frame %d unchanged, got %d", i, tag(img))
				}
			}
		})
	}
}

func TestStore_TrimSingleFrame(t *testing.T) {
	s := New(sequence(3), taggedRenderer(), 0)

	if err := s.Trim(2, 2); err != nil {
		t.Fatalf("Trim failed: %v", err)
	}
	img, _ := s.Get(0)
	if s.Len() != 1 || tag(img) != 2 {
		t.Errorf("expected single frame 2, got len=%d tag=%d", s.Len(), tag(img))
	}
}

func TestStore_BoundedCache(t *testing.T) {
	s := New(sequence(20), taggedRenderer(), 3)
	s.SetFocus(10)

	for _, i := range []int{9, 10, 11, 0} {
		s.Get(i)
	}

	if s.Cached() != 3 {
		t.Fatalf("expected 3 cached bitmaps, got %d", s.Cached())
	}

	// Frame 0 is farthest from the focus and must have been evicted,
	// so accessing it again decodes.
	r := s.renderer.(*mocks.Renderer)
	before := r.DecodeCalls
	s.Get(10)
	if r.DecodeCalls != before {
		t.Error("expected frame near focus to stay cached")
	}
	s.Get(0)
	if r.DecodeCalls != before+1 {
		t.Error("expected far frame to be evicted")
	}
}

func TestStore_SetDelay(t *testing.T) {
	s := New(sequence(2), taggedRenderer(), 0)

	if err := s.SetDelay(50); err != nil {
		t.Fatalf("SetDelay failed: %v", err)
	}
	if s.Delay() != 50 || s.Sequence().DelayMs != 50 {
		t.Errorf("expected delay 50, got %d", s.Delay())
	}
	if err := s.SetDelay(0); !errors.Is(err, ErrInvalidDelay) {
		t.Errorf("expected ErrInvalidDelay, got %v", err)
	}
}

func TestStore_Thumbnail(t *testing.T) {
	s := New(sequence(2), taggedRenderer(), 0)

	thumb, err := s.Thumbnail(1, 60, 80)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}
	if thumb.Bounds().Dx() != 60 || thumb.Bounds().Dy() != 80 {
		t.Errorf("expected 60x80, got %v", thumb.Bounds())
	}
}
