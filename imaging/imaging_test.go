package imaging

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestProcessSmallImagePassesThrough(t *testing.T) {
	data, err := Process(encodePNG(t, 100, 50))
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format, "output is always JPEG")
	assert.Equal(t, 100, decoded.Bounds().Dx())
	assert.Equal(t, 50, decoded.Bounds().Dy())
}

func TestProcessDownscalesLargeImage(t *testing.T) {
	data, err := Process(encodePNG(t, 2048, 1024))
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, MaxDimension, decoded.Bounds().Dx())
	assert.Equal(t, MaxDimension/2, decoded.Bounds().Dy(), "aspect ratio preserved")
}

func TestProcessRejectsNonImage(t *testing.T) {
	_, err := Process(strings.NewReader("definitely not an image"))
	assert.Error(t, err)
}
