// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/freegif/pkg/ports"
)

// Renderer implements ports.Renderer using gg and x/image/draw.
type Renderer struct {
	encoder png.Encoder
}

// New creates a new Renderer. PNG buffers favour speed over size because
// they only live for the duration of an editing session.
func New() *Renderer {
	return &Renderer{
		encoder: png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

// DecodeImage decodes image data into an image.Image.
func (r *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	reader := bytes.NewReader(data)

	switch format {
	case ports.FormatPNG:
		return png.Decode(reader)
	case ports.FormatJPEG:
		return jpeg.Decode(reader)
	default:
		img, _, err := image.Decode(reader)
		return img, err
	}
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatPNG:
		if err := r.encoder.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	case ports.FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage resizes an image to the specified dimensions.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// CropScaled draws the src rectangle of img into a new width x height
// bitmap. Parts of src outside the image stay transparent.
func (r *Renderer) CropScaled(img image.Image, src image.Rectangle, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if src.Empty() || width <= 0 || height <= 0 {
		return dst
	}

	visible := src.Intersect(img.Bounds())
	if visible.Empty() {
		return dst
	}

	sx := float64(width) / float64(src.Dx())
	sy := float64(height) / float64(src.Dy())
	target := image.Rect(
		int(float64(visible.Min.X-src.Min.X)*sx+0.5),
		int(float64(visible.Min.Y-src.Min.Y)*sy+0.5),
		int(float64(visible.Max.X-src.Min.X)*sx+0.5),
		int(float64(visible.Max.Y-src.Min.Y)*sy+0.5),
	)

	if target.Dx() == visible.Dx() && target.Dy() == visible.Dy() {
		draw.Draw(dst, target, img, visible.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, target, img, visible, draw.Src, nil)
	return dst
}

// Thumbnail fits img into a width x height bitmap, centered on bg.
func (r *Renderer) Thumbnail(img image.Image, width, height int, bg color.Color) image.Image {
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()

	b := img.Bounds()
	if b.Empty() {
		return dc.Image()
	}

	scale := float64(width) / float64(b.Dx())
	if s := float64(height) / float64(b.Dy()); s < scale {
		scale = s
	}
	w := float64(b.Dx()) * scale
	h := float64(b.Dy()) * scale

	dc.Push()
	dc.Translate((float64(width)-w)/2, (float64(height)-h)/2)
	dc.Scale(scale, scale)
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	dc.Pop()

	return dc.Image()
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)
