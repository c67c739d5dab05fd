package render

import (
	"bytes"
	"image/png"
	"testing"

	"road-topology-go/internal/tilemap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGrid(t *testing.T) *tilemap.Grid {
	t.Helper()
	g, err := tilemap.NewGrid(24, 16, 8)
	require.NoError(t, err)
	g.Put(0, 0, tilemap.Edge)
	g.Put(1, 1, tilemap.Surface)
	g.Put(2, 1, tilemap.Center)
	return g
}

func TestImageScalesTiles(t *testing.T) {
	img := Image(sampleGrid(t), Options{Scale: 4})

	assert.Equal(t, 12, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
	assert.Equal(t, Color(tilemap.Edge), img.RGBAAt(3, 3))
	assert.Equal(t, Color(tilemap.Surface), img.RGBAAt(4, 4))
	assert.Equal(t, Color(tilemap.Center), img.RGBAAt(11, 7))
	assert.Equal(t, Color(tilemap.Empty), img.RGBAAt(7, 0))
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, sampleGrid(t), Options{Caption: "forward"}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 24, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestColorUnknownCode(t *testing.T) {
	assert.Equal(t, Color(tilemap.Empty), Color(tilemap.TileCode(200)))
}
