package topology

import "road-topology-go/internal/tilemap"

// DrawCenterline отмечает центр дороги в каждой строке, начиная с RoadRowIndex,
// и середины между центром и краями как LaneCenter.
// Возвращает долю клеток полосы центра, которые до разметки были границами.
// Высокая доля означает, что центр совпадает с разметкой, то есть полос две.
func DrawCenterline(g *tilemap.Grid, centerHalfWidth int) float64 {
	start, ok := roadRow(g)
	if !ok {
		return 0
	}
	if centerHalfWidth < 0 {
		centerHalfWidth = 0
	}

	total, edges := 0, 0
	w := g.Width()

	for y := start; y < g.Height(); y++ {
		left, right := -1, -1
		for x := 0; x < w; x++ {
			if g.At(x, y) != tilemap.Surface {
				continue
			}
			if left < 0 {
				left = x
			}
			right = x
		}
		if left < 0 {
			continue
		}

		center := (left + right) / 2
		lo := max(center-centerHalfWidth, 0)
		hi := min(center+centerHalfWidth, w-1)

		// считаем до разметки, пока клетки хранят исходные коды
		for x := lo; x <= hi; x++ {
			total++
			// SurfaceEdge - это граница, попавшая в ореол заливки
			if tile := g.At(x, y); tile == tilemap.Edge || tile == tilemap.SurfaceEdge {
				edges++
			}
		}

		g.Put((left+center)/2, y, tilemap.LaneCenter)
		g.Put((right+center)/2, y, tilemap.LaneCenter)
		for x := lo; x <= hi; x++ {
			g.Put(x, y, tilemap.Center)
		}
	}

	if total == 0 {
		return 0
	}
	return float64(edges) / float64(total)
}
