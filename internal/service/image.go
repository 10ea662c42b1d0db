package service

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // camera captures arrive as PNG or JPEG
	"log"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// maxImageEdge is the longest edge kept when resizing an embedded photo.
const maxImageEdge = 800

// JPEG quality search range. Below the floor the output is not worth keeping.
const (
	minJPEGQuality = 10
	maxJPEGQuality = 90
)

// ErrImageTooLarge means the image cannot be compressed under the size
// ceiling even at the lowest acceptable quality.
var ErrImageTooLarge = errors.New("image cannot be compressed under the size ceiling")

// ImageService transcodes embedded photos for storage: it resizes captures
// to a bounded edge and re-encodes them as JPEG under a byte ceiling.
type ImageService struct {
	maxEdge int
}

// Ensure ImageService implements IImageService
var _ IImageService = (*ImageService)(nil)

// NewImageService creates a new ImageService instance.
func NewImageService() *ImageService {
	return &ImageService{maxEdge: maxImageEdge}
}

// CompressImage decodes a base64 data URL, scales the image down to the
// bounded edge, and binary-searches the JPEG quality for the largest encoding
// that fits under maxBytes. Returns the re-encoded image as a JPEG data URL,
// or ErrImageTooLarge when no quality setting fits.
func (s *ImageService) CompressImage(dataURL string, maxBytes int) (string, error) {
	img, format, err := decodeImageDataURL(dataURL)
	if err != nil {
		return "", err
	}

	scaled := s.scaleDown(img)
	bounds := scaled.Bounds()

	best, quality, err := encodeUnderCeiling(scaled, maxBytes)
	if err != nil {
		return "", err
	}

	log.Printf("[ImageService] compressed %s %dx%d to %d bytes at quality %d",
		format, bounds.Dx(), bounds.Dy(), len(best), quality)
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(best), nil
}

// scaleDown resizes the image so its longest edge is at most maxEdge,
// preserving aspect ratio. Images already within bounds pass through.
func (s *ImageService) scaleDown(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= s.maxEdge && h <= s.maxEdge {
		return img
	}

	var newW, newH int
	if w >= h {
		newW = s.maxEdge
		newH = h * s.maxEdge / w
	} else {
		newH = s.maxEdge
		newW = w * s.maxEdge / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// encodeUnderCeiling finds the highest JPEG quality whose output fits under
// maxBytes.
func encodeUnderCeiling(img image.Image, maxBytes int) ([]byte, int, error) {
	var best []byte
	bestQuality := 0

	lo, hi := minJPEGQuality, maxJPEGQuality
	for lo <= hi {
		quality := (lo + hi) / 2

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, 0, fmt.Errorf("failed to encode image: %w", err)
		}

		if buf.Len() <= maxBytes {
			best = buf.Bytes()
			bestQuality = quality
			lo = quality + 1
		} else {
			hi = quality - 1
		}
	}

	if best == nil {
		return nil, 0, ErrImageTooLarge
	}
	return best, bestQuality, nil
}

// parseDataURL splits a "data:<mime>;base64," URL into its MIME type and raw
// payload bytes.
func parseDataURL(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("image payload is not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed image data URL")
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("image data URL must be base64-encoded")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return mime, raw, nil
}

// decodeImageDataURL parses a "data:image/...;base64," URL into a decoded
// image and its source format.
func decodeImageDataURL(dataURL string) (image.Image, string, error) {
	_, raw, err := parseDataURL(dataURL)
	if err != nil {
		return nil, "", err
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}
