package gifdecoder

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"strings"
	"testing"
)

var testPalette = color.Palette{
	color.Transparent,
	color.RGBA{R: 255, A: 255},
	color.RGBA{G: 255, A: 255},
}

func filled(r image.Rectangle, idx uint8) *image.Paletted {
	p := image.NewPaletted(r, testPalette)
	for i := range p.Pix {
		p.Pix[i] = idx
	}
	return p
}

func buildGIF(t *testing.T, disposal byte) []byte {
	t.Helper()

	anim := &gif.GIF{
		Image: []*image.Paletted{
			filled(image.Rect(0, 0, 10, 10), 1),
			filled(image.Rect(0, 0, 5, 5), 2),
			filled(image.Rect(5, 5, 10, 10), 2),
		},
		Delay:    []int{10, 20, 30},
		Disposal: []byte{gif.DisposalNone, disposal, gif.DisposalNone},
		Config:   image.Config{Width: 10, Height: 10},
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		t.Fatalf("EncodeAll failed: %v", err)
	}
	return buf.Bytes()
}

func rgba(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestDecoder_Open(t *testing.T) {
	d := New()
	info, err := d.Open(bytes.NewReader(buildGIF(t, gif.DisposalNone)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if info.FrameCount != 3 || info.Width != 10 || info.Height != 10 {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.FirstDelay != 10 {
		t.Errorf("expected first delay 10, got %d", info.FirstDelay)
	}
	if d.FrameDelay(2) != 30 {
		t.Errorf("expected delay 30, got %d", d.FrameDelay(2))
	}
	if d.FrameDelay(5) != 0 {
		t.Errorf("expected 0 for out-of-range delay, got %d", d.FrameDelay(5))
	}
}

func TestDecoder_Disposal(t *testing.T) {
	tests := []struct {
		name     string
		disposal byte
		// colour at (2,2) on the third frame
		want color.RGBA
	}{
		{"none keeps frame", gif.DisposalNone, color.RGBA{G: 255, A: 255}},
		{"background clears", gif.DisposalBackground, color.RGBA{}},
		{"previous restores", gif.DisposalPrevious, color.RGBA{R: 255, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			if _, err := d.Open(bytes.NewReader(buildGIF(t, tt.disposal))); err != nil {
				t.Fatalf("Open failed: %v", err)
			}

			for i := 0; i < 3; i++ {
				img, err := d.DecodeFrame(i)
				if err != nil {
					t.Fatalf("DecodeFrame(%d) failed: %v", i, err)
				}
				if img.Bounds() != image.Rect(0, 0, 10, 10) {
					t.Fatalf("frame %d: expected full canvas, got %v", i, img.Bounds())
				}
				if i == 2 {
					if got := rgba(img, 2, 2); got != tt.want {
						t.Errorf("expected %v at (2,2), got %v", tt.want, got)
					}
					if got := rgba(img, 7, 7); got.G != 255 {
						t.Errorf("expected third frame drawn at (7,7), got %v", got)
					}
				}
			}
		})
	}
}

func TestDecoder_SeekBackwards(t *testing.T) {
	d := New()
	if _, err := d.Open(bytes.NewReader(buildGIF(t, gif.DisposalNone))); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := d.DecodeFrame(2); err != nil {
		t.Fatalf("DecodeFrame(2) failed: %v", err)
	}
	first, err := d.DecodeFrame(0)
	if err != nil {
		t.Fatalf("DecodeFrame(0) failed: %v", err)
	}
	if got := rgba(first, 2, 2); got.R != 255 || got.G != 0 {
		t.Errorf("expected first frame red after replay, got %v", got)
	}
}

func TestDecoder_Errors(t *testing.T) {
	d := New()
	if _, err := d.DecodeFrame(0); !errors.Is(err, ErrNotOpen) {
		t.Errorf("expected ErrNotOpen, got %v", err)
	}
	if _, err := d.Open(strings.NewReader("GIF89a garbage")); err == nil {
		t.Error("expected error for corrupt data")
	}

	if _, err := d.Open(bytes.NewReader(buildGIF(t, gif.DisposalNone))); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := d.DecodeFrame(3); err == nil {
		t.Error("expected error for out-of-range frame")
	}
}
