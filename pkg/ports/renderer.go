package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts bitmap operations used by the sampler, the store and the encoder.
type Renderer interface {
	// DecodeImage decodes image data into an image.Image.
	DecodeImage(data []byte, format ImageFormat) (image.Image, error)

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image

	// CropScaled draws the src rectangle of img into a new width x height bitmap.
	CropScaled(img image.Image, src image.Rectangle, width, height int) image.Image

	// Thumbnail fits img into a width x height bitmap, centered on bg.
	Thumbnail(img image.Image, width, height int, bg color.Color) image.Image
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatPNG ImageFormat = iota
	FormatJPEG
)
