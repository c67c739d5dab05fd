package edgemask

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"road-topology-go/internal/tilemap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func sampleImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	img.SetGray(1, 0, color.Gray{Y: 255})
	img.SetGray(3, 2, color.Gray{Y: 200})
	img.SetGray(2, 1, color.Gray{Y: 100})
	return img
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		encode func(io.Writer, image.Image) error
	}{
		{"png", "png", png.Encode},
		{"bmp", "bmp", bmp.Encode},
		{"tiff", "tiff", func(w io.Writer, img image.Image) error { return tiff.Encode(w, img, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.encode(&buf, sampleImage()))

			mask, format, err := Decode(&buf, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, 4, mask.Width)
			assert.Equal(t, 3, mask.Height)
			assert.Equal(t, 2, mask.Count())
			assert.True(t, mask.IsSet(1, 0))
			assert.True(t, mask.IsSet(3, 2))
			assert.False(t, mask.IsSet(2, 1))
		})
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, _, err := Decode(strings.NewReader("not an image"), 0)
	assert.Error(t, err)
}

func TestFromImageEmpty(t *testing.T) {
	_, err := FromImage(image.NewGray(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestDecodeRejectsOversizedImage(t *testing.T) {
	// пустой PNG 8000x8000 сжимается до десятков килобайт
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8000, 8000))))
	require.Less(t, buf.Len(), 1<<20)

	_, format, err := Decode(bytes.NewReader(buf.Bytes()), 0)
	assert.ErrorIs(t, err, tilemap.ErrTooLarge)
	assert.Equal(t, "png", format)

	_, _, err = Decode(bytes.NewReader(buf.Bytes()), 1<<30)
	assert.ErrorIs(t, err, tilemap.ErrTooLarge, "limit is capped at tilemap.MaxPixels")
}

func TestDecodeHonorsConfiguredLimit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, sampleImage()))

	_, _, err := Decode(bytes.NewReader(buf.Bytes()), 11)
	assert.ErrorIs(t, err, tilemap.ErrTooLarge)

	mask, _, err := Decode(bytes.NewReader(buf.Bytes()), 12)
	require.NoError(t, err)
	assert.Equal(t, 2, mask.Count())
}

func TestFromRaw(t *testing.T) {
	mask, err := FromRaw([]byte{0, 1, 0, 0, 0, 9}, 3, 2, 0)
	require.NoError(t, err)
	assert.True(t, mask.IsSet(1, 0))
	assert.True(t, mask.IsSet(2, 1))
	assert.Equal(t, 2, mask.Count())

	tests := []struct {
		name          string
		data          []byte
		width, height int
		maxPixels     int
		wantErr       error
	}{
		{"short buffer", []byte{0, 1}, 3, 2, 0, tilemap.ErrMaskSize},
		{"zero width", nil, 0, 2, 0, ErrEmptyImage},
		{"negative height", nil, 2, -1, 0, ErrEmptyImage},
		// произведение переполняет int и дает 0, пустое тело не должно пройти
		{"overflowing product", nil, 1 << 32, 1 << 32, 0, tilemap.ErrTooLarge},
		{"above default limit", nil, tilemap.MaxPixels, 2, 0, tilemap.ErrTooLarge},
		{"above configured limit", make([]byte, 6), 3, 2, 5, tilemap.ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRaw(tt.data, tt.width, tt.height, tt.maxPixels)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
