package tilemap

import "fmt"

type point struct {
	x, y int
}

// Grower выполняет заливку области от стартовой клетки.
// Стек переиспользуется между вызовами, поэтому Grower не безопасен
// для одновременного использования из нескольких горутин.
type Grower struct {
	stack []point
}

// NewGrower создает Grower
func NewGrower() *Grower {
	return &Grower{}
}

// GrowRegion перекрашивает в marker 4-связную компоненту клетки (seedX, seedY).
// Клетки вне компоненты не изменяются.
func (gr *Grower) GrowRegion(g *Grid, seedX, seedY int, marker TileCode) error {
	return gr.grow(g, seedX, seedY, marker, false)
}

// GrowRegionWithBoundary заливает компоненту значением Surface и помечает
// соседние клетки другого класса как SurfaceEdge.
func (gr *Grower) GrowRegionWithBoundary(g *Grid, seedX, seedY int) error {
	return gr.grow(g, seedX, seedY, Surface, true)
}

func (gr *Grower) grow(g *Grid, seedX, seedY int, marker TileCode, boundary bool) error {
	if !g.InBounds(seedX, seedY) {
		return fmt.Errorf("%w: (%d, %d) in %dx%d", ErrInvalidSeed, seedX, seedY, g.width, g.height)
	}

	if need := g.width * g.height; cap(gr.stack) < need {
		gr.stack = make([]point, 0, need)
	}
	stack := gr.stack[:0]

	w := g.width
	start := g.tiles[seedY*w+seedX]

	// клетка красится при добавлении в стек, поэтому попадает туда не больше одного раза
	g.tiles[seedY*w+seedX] = marker
	stack = append(stack, point{seedX, seedY})

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		neighbors := [4]point{
			{cur.x, cur.y - 1},
			{cur.x, cur.y + 1},
			{cur.x - 1, cur.y},
			{cur.x + 1, cur.y},
		}

		for _, n := range neighbors {
			if !g.InBounds(n.x, n.y) {
				continue
			}
			i := n.y*w + n.x
			tile := g.tiles[i]

			if tile == marker {
				continue
			}
			if boundary && tile == SurfaceEdge {
				continue
			}
			if tile != start {
				if boundary {
					g.tiles[i] = SurfaceEdge
				}
				continue
			}

			g.tiles[i] = marker
			stack = append(stack, n)
		}
	}

	gr.stack = stack[:0]
	return nil
}
