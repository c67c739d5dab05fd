package tilemap

import (
	"errors"
	"fmt"
)

// TileCode код клетки тайловой карты
type TileCode uint8

const (
	Empty TileCode = iota
	Edge
	Surface
	SurfaceEdge
	Center
	LaneCenter
)

var (
	// ErrOutOfRange возвращается при обращении к клетке за пределами карты
	ErrOutOfRange = errors.New("tile coordinates out of range")

	// ErrInvalidSeed возвращается, если стартовая точка заливки лежит вне карты
	ErrInvalidSeed = errors.New("seed outside grid bounds")

	// ErrInvalidCellSize возвращается при неположительном размере клетки
	ErrInvalidCellSize = errors.New("cell size must be positive")

	// ErrTooLarge возвращается, если изображение больше MaxPixels
	ErrTooLarge = errors.New("image is too large")
)

// MaxPixels верхняя граница площади маски и карты
const MaxPixels = 4096 * 4096

// CheckSize проверяет, что width*height не превышает maxPixels.
// Произведение не вычисляется, поэтому переполнение невозможно.
func CheckSize(width, height, maxPixels int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("negative image size %dx%d", width, height)
	}
	if height > 0 && width > maxPixels/height {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, width, height, maxPixels)
	}
	return nil
}

// String возвращает имя кода клетки
func (c TileCode) String() string {
	switch c {
	case Empty:
		return "empty"
	case Edge:
		return "edge"
	case Surface:
		return "surface"
	case SurfaceEdge:
		return "surface_edge"
	case Center:
		return "center"
	case LaneCenter:
		return "lane_center"
	}
	return fmt.Sprintf("tile(%d)", uint8(c))
}

// Grid грубая карта занятости, построенная по маске границ.
// Хранение построчное, начало координат в левом верхнем углу.
type Grid struct {
	width    int
	height   int
	cellSize int
	tiles    []TileCode
}

// NewGrid создает карту под изображение заданного размера
func NewGrid(imageWidth, imageHeight, cellSize int) (*Grid, error) {
	g := &Grid{}
	if err := g.Resize(imageWidth, imageHeight, cellSize); err != nil {
		return nil, err
	}
	return g, nil
}

// Resize пересчитывает размеры карты под новое изображение.
// Содержимое после вызова не определено, нужен Clear.
func (g *Grid) Resize(imageWidth, imageHeight, cellSize int) error {
	if cellSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCellSize, cellSize)
	}
	if imageWidth < 0 || imageHeight < 0 {
		return fmt.Errorf("negative image size %dx%d", imageWidth, imageHeight)
	}
	if err := CheckSize(imageWidth/cellSize, imageHeight/cellSize, MaxPixels); err != nil {
		return err
	}

	g.cellSize = cellSize
	g.width = imageWidth / cellSize
	g.height = imageHeight / cellSize

	n := g.width * g.height
	if cap(g.tiles) >= n {
		g.tiles = g.tiles[:n]
	} else {
		g.tiles = make([]TileCode, n)
	}
	return nil
}

// Clear заполняет карту значением Empty
func (g *Grid) Clear() {
	for i := range g.tiles {
		g.tiles[i] = Empty
	}
}

// Width ширина карты в клетках
func (g *Grid) Width() int { return g.width }

// Height высота карты в клетках
func (g *Grid) Height() int { return g.height }

// CellSize размер клетки в пикселях
func (g *Grid) CellSize() int { return g.cellSize }

// InBounds проверяет, что клетка лежит внутри карты
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Get возвращает код клетки или ErrOutOfRange
func (g *Grid) Get(x, y int) (TileCode, error) {
	if !g.InBounds(x, y) {
		return Empty, fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfRange, x, y, g.width, g.height)
	}
	return g.tiles[y*g.width+x], nil
}

// Set записывает код клетки или возвращает ErrOutOfRange
func (g *Grid) Set(x, y int, code TileCode) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfRange, x, y, g.width, g.height)
	}
	g.tiles[y*g.width+x] = code
	return nil
}

// At возвращает код клетки, прижимая координаты к границам карты.
// На пустой карте всегда Empty.
func (g *Grid) At(x, y int) TileCode {
	if len(g.tiles) == 0 {
		return Empty
	}
	return g.tiles[g.clampY(y)*g.width+g.clampX(x)]
}

// Put записывает код клетки, прижимая координаты к границам карты
func (g *Grid) Put(x, y int, code TileCode) {
	if len(g.tiles) == 0 {
		return
	}
	g.tiles[g.clampY(y)*g.width+g.clampX(x)] = code
}

// Count считает клетки с заданным кодом
func (g *Grid) Count(code TileCode) int {
	n := 0
	for _, t := range g.tiles {
		if t == code {
			n++
		}
	}
	return n
}

// Clone возвращает независимую копию карты
func (g *Grid) Clone() *Grid {
	c := *g
	c.tiles = make([]TileCode, len(g.tiles))
	copy(c.tiles, g.tiles)
	return &c
}

// Tiles возвращает копию клеток в построчном порядке
func (g *Grid) Tiles() []TileCode {
	out := make([]TileCode, len(g.tiles))
	copy(out, g.tiles)
	return out
}

func (g *Grid) clampX(x int) int {
	return clamp(x, 0, g.width-1)
}

func (g *Grid) clampY(y int) int {
	return clamp(y, 0, g.height-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
