package render

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"road-topology-go/internal/tilemap"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Цвета клеток
var palette = map[tilemap.TileCode]color.RGBA{
	tilemap.Empty:       {0, 0, 0, 255},
	tilemap.Edge:        {0, 0, 255, 255},
	tilemap.Surface:     {0, 255, 0, 255},
	tilemap.SurfaceEdge: {50, 100, 25, 255},
	tilemap.Center:      {255, 100, 0, 255},
	tilemap.LaneCenter:  {50, 70, 150, 255},
}

// Color возвращает цвет клетки
func Color(code tilemap.TileCode) color.RGBA {
	if c, ok := palette[code]; ok {
		return c
	}
	return palette[tilemap.Empty]
}

// Options параметры отрисовки
type Options struct {
	// Scale размер клетки в пикселях, по умолчанию размер клетки карты
	Scale int
	// Caption подпись в левом верхнем углу
	Caption string
}

// Image рисует карту клеток
func Image(g *tilemap.Grid, opts Options) *image.RGBA {
	tiles := image.NewRGBA(image.Rect(0, 0, g.Width(), g.Height()))
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			tiles.SetRGBA(x, y, Color(g.At(x, y)))
		}
	}

	scale := opts.Scale
	if scale <= 0 {
		scale = g.CellSize()
	}
	if scale <= 1 {
		drawCaption(tiles, opts.Caption)
		return tiles
	}

	img := image.NewRGBA(image.Rect(0, 0, g.Width()*scale, g.Height()*scale))
	draw.NearestNeighbor.Scale(img, img.Bounds(), tiles, tiles.Bounds(), draw.Src, nil)
	drawCaption(img, opts.Caption)
	return img
}

// PNG кодирует отрисовку карты в PNG
func PNG(w io.Writer, g *tilemap.Grid, opts Options) error {
	return png.Encode(w, Image(g, opts))
}

func drawCaption(img *image.RGBA, text string) {
	if text == "" {
		return
	}

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(2, face.Metrics().Ascent.Ceil()+1),
	}
	d.DrawString(text)
}
