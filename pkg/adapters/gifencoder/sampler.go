package gifencoder

import (
	"image"
	"image/color"
)

// sampler exposes every step-th pixel of a set of frames as a single row
// image, so a higher quality number feeds fewer pixels to the quantizer.
type sampler struct {
	frames []*image.RGBA
	step   int
	perImg int
	width  int
}

func newSampler(frames []*image.RGBA, step int) *sampler {
	if step < 1 {
		step = 1
	}
	s := &sampler{frames: frames, step: step}
	if len(frames) > 0 {
		b := frames[0].Bounds()
		s.perImg = (b.Dx()*b.Dy() + step - 1) / step
	}
	s.width = s.perImg * len(frames)
	return s
}

func (s *sampler) ColorModel() color.Model { return color.RGBAModel }

func (s *sampler) Bounds() image.Rectangle { return image.Rect(0, 0, s.width, 1) }

func (s *sampler) At(x, y int) color.Color {
	if y != 0 || x < 0 || x >= s.width {
		return color.RGBA{}
	}
	img := s.frames[x/s.perImg]
	b := img.Bounds()
	i := (x % s.perImg) * s.step
	return img.RGBAAt(b.Min.X+i%b.Dx(), b.Min.Y+i/b.Dx())
}
