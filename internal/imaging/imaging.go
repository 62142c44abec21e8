// Package imaging decodes practice images and applies the display
// transforms the viewer supports: grayscale and horizontal flip.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"
)

// AssetDecodeError marks an image that could not be decoded. Callers
// skip the asset and keep the session running.
type AssetDecodeError struct {
	Filename string
	Err      error
}

func (e *AssetDecodeError) Error() string {
	return fmt.Sprintf("decode image %s: %v", e.Filename, e.Err)
}

func (e *AssetDecodeError) Unwrap() error { return e.Err }

// Decode parses raw image bytes. The filename is carried only for
// error reporting.
func Decode(filename string, data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &AssetDecodeError{Filename: filename, Err: err}
	}
	return img, nil
}

// Grayscale converts src to 8-bit gray.
func Grayscale(src image.Image) image.Image {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}

// FlipHorizontal mirrors src around its vertical axis.
func FlipHorizontal(src image.Image) image.Image {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(bounds.Max.X-1-(x-bounds.Min.X), y, src.At(x, y))
		}
	}
	return dst
}

// Transform applies the configured view transforms in a fixed order:
// grayscale first, then flip.
func Transform(src image.Image, grayscale, flip bool) image.Image {
	out := src
	if grayscale {
		out = Grayscale(out)
	}
	if flip {
		out = FlipHorizontal(out)
	}
	return out
}

// EncodePNG renders img to PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Dimensions decodes only the image header.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
