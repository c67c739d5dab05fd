package tilemap

// Morphology морфологические операции над картой.
// Снимок карты хранится внутри и переиспользуется между вызовами.
type Morphology struct {
	snapshot []TileCode
}

// Dilate расширяет клетки code на всех 8 соседей
func (m *Morphology) Dilate(g *Grid, code TileCode) {
	old := m.snap(g)

	for ty := 0; ty < g.height; ty++ {
		for tx := 0; tx < g.width; tx++ {
			if old[ty*g.width+tx] == code {
				continue
			}
			if countNeighbors(old, g.width, g.height, tx, ty, code) > 0 {
				g.tiles[ty*g.width+tx] = code
			}
		}
	}
}

// Erode удаляет клетки code, у которых меньше threshold соседей того же кода
func (m *Morphology) Erode(g *Grid, threshold int, code TileCode) {
	old := m.snap(g)

	for ty := 0; ty < g.height; ty++ {
		for tx := 0; tx < g.width; tx++ {
			if old[ty*g.width+tx] != code {
				continue
			}
			if countNeighbors(old, g.width, g.height, tx, ty, code) < threshold {
				g.tiles[ty*g.width+tx] = Empty
			}
		}
	}
}

func (m *Morphology) snap(g *Grid) []TileCode {
	if cap(m.snapshot) < len(g.tiles) {
		m.snapshot = make([]TileCode, len(g.tiles))
	}
	m.snapshot = m.snapshot[:len(g.tiles)]
	copy(m.snapshot, g.tiles)
	return m.snapshot
}

func countNeighbors(tiles []TileCode, width, height, tx, ty int, code TileCode) int {
	sx := clamp(tx-1, 0, width-1)
	sy := clamp(ty-1, 0, height-1)
	ex := clamp(tx+1, 0, width-1)
	ey := clamp(ty+1, 0, height-1)

	n := 0
	for y := sy; y <= ey; y++ {
		for x := sx; x <= ex; x++ {
			if x == tx && y == ty {
				continue
			}
			if tiles[y*width+x] == code {
				n++
			}
		}
	}
	return n
}
