// Package gifdecoder decodes animated GIFs into full-canvas frames.
package gifdecoder

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"

	"golang.org/x/image/draw"

	"github.com/user/freegif/pkg/ports"
)

// ErrNotOpen is returned when frames are requested before Open.
var ErrNotOpen = errors.New("gifdecoder: no animation open")

// Decoder implements ports.AnimationDecoder. Frames are composited in
// order, honouring each frame's disposal method.
type Decoder struct {
	anim   *gif.GIF
	bounds image.Rectangle

	// canvas holds the screen after disposal of frame next-1.
	canvas *image.RGBA
	next   int
}

// New creates a new Decoder.
func New() *Decoder {
	return &Decoder{}
}

// Open parses the container.
func (d *Decoder) Open(r io.Reader) (ports.AnimationInfo, error) {
	anim, err := gif.DecodeAll(r)
	if err != nil {
		return ports.AnimationInfo{}, fmt.Errorf("decode gif: %w", err)
	}
	if len(anim.Image) == 0 {
		return ports.AnimationInfo{}, fmt.Errorf("gif has no frames")
	}

	bounds := image.Rect(0, 0, anim.Config.Width, anim.Config.Height)
	if bounds.Empty() {
		for _, f := range anim.Image {
			bounds = bounds.Union(f.Bounds())
		}
	}

	d.anim = anim
	d.bounds = bounds
	d.reset()

	info := ports.AnimationInfo{
		FrameCount: len(anim.Image),
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}
	if len(anim.Delay) > 0 {
		info.FirstDelay = anim.Delay[0]
	}
	return info, nil
}

func (d *Decoder) reset() {
	d.canvas = image.NewRGBA(d.bounds)
	d.next = 0
}

// FrameDelay returns the delay of frame i in hundredths of a second.
func (d *Decoder) FrameDelay(i int) int {
	if d.anim == nil || i < 0 || i >= len(d.anim.Delay) {
		return 0
	}
	return d.anim.Delay[i]
}

// DecodeFrame returns frame i composited onto the full logical screen.
// Sequential access is linear, seeking backwards replays from the start.
func (d *Decoder) DecodeFrame(i int) (image.Image, error) {
	if d.anim == nil {
		return nil, ErrNotOpen
	}
	if i < 0 || i >= len(d.anim.Image) {
		return nil, fmt.Errorf("frame %d out of range [0,%d)", i, len(d.anim.Image))
	}
	if i < d.next {
		d.reset()
	}

	var out *image.RGBA
	for d.next <= i {
		frame := d.anim.Image[d.next]
		if !frame.Bounds().In(d.bounds) {
			// Keep the replay position consistent for the next call.
			d.next++
			if d.next > i {
				return nil, fmt.Errorf("frame %d bounds %v outside canvas %v", i, frame.Bounds(), d.bounds)
			}
			continue
		}

		var previous *image.RGBA
		if d.disposal(d.next) == gif.DisposalPrevious {
			previous = clone(d.canvas)
		}

		draw.Draw(d.canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		if d.next == i {
			out = clone(d.canvas)
		}

		switch d.disposal(d.next) {
		case gif.DisposalBackground:
			draw.Draw(d.canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			d.canvas = previous
		}
		d.next++
	}

	return out, nil
}

func (d *Decoder) disposal(i int) byte {
	if i < len(d.anim.Disposal) {
		return d.anim.Disposal[i]
	}
	return gif.DisposalNone
}

func clone(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

var _ ports.AnimationDecoder = (*Decoder)(nil)
