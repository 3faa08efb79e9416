package mocks

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/freegif/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	mu sync.Mutex

	DecodeImageFunc func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	ResizeImageFunc func(img image.Image, width, height int) image.Image
	CropScaledFunc  func(img image.Image, src image.Rectangle, width, height int) image.Image
	ThumbnailFunc   func(img image.Image, width, height int, bg color.Color) image.Image

	// Recorded calls for verification
	DecodeCalls int
	CropCalls   []image.Rectangle
	ResizeCalls []image.Point
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	m.mu.Lock()
	m.DecodeCalls++
	m.mu.Unlock()
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	m.mu.Lock()
	m.ResizeCalls = append(m.ResizeCalls, image.Pt(width, height))
	m.mu.Unlock()
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *Renderer) CropScaled(img image.Image, src image.Rectangle, width, height int) image.Image {
	m.mu.Lock()
	m.CropCalls = append(m.CropCalls, src)
	m.mu.Unlock()
	if m.CropScaledFunc != nil {
		return m.CropScaledFunc(img, src, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *Renderer) Thumbnail(img image.Image, width, height int, bg color.Color) image.Image {
	if m.ThumbnailFunc != nil {
		return m.ThumbnailFunc(img, width, height, bg)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)
