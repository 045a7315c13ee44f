package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// jpegQuality is used for every re-encoded cover.
const jpegQuality = 90

// ImageService prepares cover art for embedding.
//
// Covers arrive from the catalog as JPEG or PNG at the requested size.
// ImageService scales oversized covers down and normalizes everything to
// JPEG, which every tag reader understands.
type ImageService struct {
	maxSize int
}

// NewImageService creates an ImageService that limits covers to maxSize
// pixels on the longest side. A maxSize of 0 disables resizing.
func NewImageService(maxSize int) *ImageService {
	return &ImageService{maxSize: maxSize}
}

// PrepareCover returns data as a JPEG no larger than the configured size.
//
// JPEG input that already fits is returned unchanged, avoiding a lossy
// re-encode.
func (s *ImageService) PrepareCover(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	fits := s.maxSize <= 0 || (cfg.Width <= s.maxSize && cfg.Height <= s.maxSize)
	switch {
	case fits && format == "jpeg":
		return data, nil
	case fits:
		return s.ConvertToJPEG(ctx, data)
	default:
		return s.ResizeImage(ctx, data, s.maxSize, s.maxSize)
	}
}

// ResizeImage scales an image to fit within maxWidth x maxHeight,
// preserving the aspect ratio, and returns it JPEG-encoded.
//
// The Catmull-Rom kernel is used for high-quality downscaling.
//
// Example:
//
//	// A 1500x1000 image becomes 1000x667
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConvertToJPEG re-encodes any decodable image as JPEG.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fitWithin returns width and height scaled down to fit the bounds.
func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		width = int(float64(maxHeight) * ratio)
		height = maxHeight
	} else {
		height = int(float64(maxWidth) / ratio)
		width = maxWidth
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}
