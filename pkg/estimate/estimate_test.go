package estimate

import (
	"testing"

	"github.com/user/freegif/pkg/encparams"
)

type fakeSource struct{ n, w, h int }

func (f fakeSource) Len() int    { return f.n }
func (f fakeSource) Width() int  { return f.w }
func (f fakeSource) Height() int { return f.h }

func TestBytes(t *testing.T) {
	medium := encparams.Default()

	low, _ := encparams.ForPreset(encparams.PresetLow)

	noDither := encparams.Default()
	noDither.SetDither(encparams.DitherOff)

	half := encparams.Default()
	half.SetScale(0.5)

	tests := []struct {
		name   string
		w, h   int
		frames int
		params encparams.Params
		want   int64
	}{
		// 320*240*30 * 2.1 * 1.2 * 0.5 / 3 + 30*800 + 2000
		{"medium", 320, 240, 30, medium, 993680},
		// 320*240*30 * 1.2 * 1.2 * 0.95 * 0.5 / 3 + 26000
		{"low global", 320, 240, 30, low, 551312},
		{"no dither", 320, 240, 30, noDither, 832400},
		// 160x120
		{"half scale", 320, 240, 30, half, 267920},
		{"no frames", 320, 240, 0, medium, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bytes(tt.w, tt.h, tt.frames, tt.params); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestBytes_MonotonicInQuality(t *testing.T) {
	p := encparams.Default()
	var last int64 = -1
	for q := 0; q <= 100; q += 5 {
		p.SetQuality(q)
		got := Bytes(640, 480, 50, p)
		if got < last {
			t.Errorf("quality %d: estimate %d decreased from %d", q, got, last)
		}
		last = got
	}
}

func TestBytes_MonotonicInFrames(t *testing.T) {
	p := encparams.Default()
	var last int64 = -1
	for n := 0; n <= 300; n += 25 {
		got := Bytes(640, 480, n, p)
		if got <= last {
			t.Errorf("%d frames: estimate %d not above %d", n, got, last)
		}
		last = got
	}
}

func TestFor(t *testing.T) {
	p := encparams.Default()
	p.SetScale(0.75)

	e := For(fakeSource{n: 30, w: 320, h: 240}, p)

	if e.Width != 240 || e.Height != 180 || e.Frames != 30 {
		t.Errorf("unexpected estimate: %+v", e)
	}
	if e.Bytes != Bytes(320, 240, 30, p) {
		t.Errorf("expected Bytes to match, got %d", e.Bytes)
	}
}

func TestEstimate_String(t *testing.T) {
	e := Estimate{Bytes: 993680, Width: 320, Height: 240, Frames: 30}

	want := "970 KiB (30 frames, 320×240)"
	if got := e.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
