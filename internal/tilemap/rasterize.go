package tilemap

import (
	"errors"
	"fmt"
)

// ErrMaskSize возвращается, если буфер маски не совпадает с ее размерами
var ErrMaskSize = errors.New("edge mask buffer does not match its dimensions")

// EdgeMask бинарная маска границ в разрешении кадра.
// Ненулевой байт означает пиксель границы.
type EdgeMask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewEdgeMask создает пустую маску
func NewEdgeMask(width, height int) EdgeMask {
	return EdgeMask{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// Validate проверяет согласованность размеров маски
func (m EdgeMask) Validate() error {
	if err := CheckSize(m.Width, m.Height, MaxPixels); err != nil {
		return fmt.Errorf("%w: %w", ErrMaskSize, err)
	}
	if len(m.Pix) != m.Width*m.Height {
		return fmt.Errorf("%w: %dx%d with %d bytes", ErrMaskSize, m.Width, m.Height, len(m.Pix))
	}
	return nil
}

// IsSet сообщает, является ли пиксель границей
func (m EdgeMask) IsSet(x, y int) bool {
	return m.Pix[y*m.Width+x] != 0
}

// Count возвращает число пикселей границы
func (m EdgeMask) Count() int {
	n := 0
	for _, p := range m.Pix {
		if p != 0 {
			n++
		}
	}
	return n
}

// Rasterize отмечает на карте клетки, в которые попадает хотя бы один пиксель границы.
// Координаты клетки прижимаются к границам карты.
func Rasterize(g *Grid, mask EdgeMask, marker TileCode) error {
	if err := mask.Validate(); err != nil {
		return err
	}
	if g.width == 0 || g.height == 0 {
		return nil
	}

	for py := 0; py < mask.Height; py++ {
		ty := clamp(py/g.cellSize, 0, g.height-1)
		row := mask.Pix[py*mask.Width : (py+1)*mask.Width]

		for px, p := range row {
			if p == 0 {
				continue
			}
			tx := clamp(px/g.cellSize, 0, g.width-1)
			g.tiles[ty*g.width+tx] = marker
		}
	}
	return nil
}

// BoundaryEdgeMask оставляет в маске только пиксели, лежащие в клетках SurfaceEdge
func BoundaryEdgeMask(g *Grid, mask EdgeMask) (EdgeMask, error) {
	if err := mask.Validate(); err != nil {
		return EdgeMask{}, err
	}

	out := NewEdgeMask(mask.Width, mask.Height)
	if g.width == 0 || g.height == 0 {
		return out, nil
	}

	for py := 0; py < mask.Height; py++ {
		ty := clamp(py/g.cellSize, 0, g.height-1)
		for px := 0; px < mask.Width; px++ {
			i := py*mask.Width + px
			if mask.Pix[i] == 0 {
				continue
			}
			tx := clamp(px/g.cellSize, 0, g.width-1)
			if g.tiles[ty*g.width+tx] == SurfaceEdge {
				out.Pix[i] = mask.Pix[i]
			}
		}
	}
	return out, nil
}
