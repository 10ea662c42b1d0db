package service

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testImageDataURL renders a gradient PNG of the given size as a data URL.
func testImageDataURL(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: uint8((x + y) % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeResultDataURL(t *testing.T, dataURL string) (image.Image, int) {
	t.Helper()
	payload, ok := strings.CutPrefix(dataURL, "data:image/jpeg;base64,")
	require.True(t, ok, "compressed output must be a JPEG data URL")

	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	return img, len(raw)
}

func TestCompressImageResizesToBoundedEdge(t *testing.T) {
	svc := NewImageService()

	out, err := svc.CompressImage(testImageDataURL(t, 1600, 1200), 200*1024)
	require.NoError(t, err)

	img, size := decodeResultDataURL(t, out)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy(), "aspect ratio is preserved")
	assert.LessOrEqual(t, size, 200*1024)
}

func TestCompressImagePortraitOrientation(t *testing.T) {
	svc := NewImageService()

	out, err := svc.CompressImage(testImageDataURL(t, 900, 1800), 200*1024)
	require.NoError(t, err)

	img, _ := decodeResultDataURL(t, out)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 800, img.Bounds().Dy())
}

func TestCompressImageKeepsSmallImageDimensions(t *testing.T) {
	svc := NewImageService()

	out, err := svc.CompressImage(testImageDataURL(t, 100, 80), 200*1024)
	require.NoError(t, err)

	img, _ := decodeResultDataURL(t, out)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestCompressImageFailsUnderImpossibleCeiling(t *testing.T) {
	svc := NewImageService()

	_, err := svc.CompressImage(testImageDataURL(t, 1600, 1200), 200)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestCompressImageRejectsMalformedInput(t *testing.T) {
	svc := NewImageService()

	_, err := svc.CompressImage("http://example.com/photo.jpg", 200*1024)
	assert.Error(t, err, "plain URLs are not accepted")

	_, err = svc.CompressImage("data:image/png;base64", 200*1024)
	assert.Error(t, err, "missing payload separator")

	_, err = svc.CompressImage("data:image/png,rawdata", 200*1024)
	assert.Error(t, err, "non-base64 payloads are not accepted")

	_, err = svc.CompressImage("data:image/png;base64,!!!not-base64!!!", 200*1024)
	assert.Error(t, err)

	_, err = svc.CompressImage("data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("not an image")), 200*1024)
	assert.Error(t, err)
}
