package topology

import (
	"errors"

	"road-topology-go/internal/tilemap"
)

// ErrNoRoadFound возвращается, если в нижней строке нет дороги ненулевой ширины
var ErrNoRoadFound = errors.New("no road found")

// RoadRowIndex возвращает верхнюю строку, содержащую Surface.
// Если дороги нет, возвращает 0 (неотличимо от дороги, начинающейся в строке 0).
func RoadRowIndex(g *tilemap.Grid) int {
	y, _ := roadRow(g)
	return y
}

func roadRow(g *tilemap.Grid) (int, bool) {
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.At(x, y) == tilemap.Surface {
				return y, true
			}
		}
	}
	return 0, false
}

// IsOpenHorizontalAt проверяет, обрывается ли дорога в столбце x при движении вниз.
// Столбец вне карты считается закрытым.
func IsOpenHorizontalAt(g *tilemap.Grid, x int) bool {
	if x < 0 || x >= g.Width() {
		return false
	}

	prev := tilemap.Empty
	for y := 0; y < g.Height(); y++ {
		tile := g.At(x, y)
		if prev == tilemap.Surface && tile != tilemap.Surface {
			return true
		}
		prev = tile
	}
	return false
}

// IsOpenVerticalAt проверяет, ограничена ли дорога в строке y с обеих сторон.
// Крайние столбцы кадра не рассматриваются.
func IsOpenVerticalAt(g *tilemap.Grid, y int) bool {
	if y < 0 || y >= g.Height() {
		return false
	}

	edgeLeft, edgeRight := false, false
	for x := 1; x < g.Width()-1; x++ {
		if g.At(x, y) != tilemap.Surface {
			continue
		}
		if g.At(x-1, y) != tilemap.Surface {
			edgeLeft = true
		}
		if g.At(x+1, y) != tilemap.Surface {
			edgeRight = true
		}
	}
	return edgeLeft && edgeRight
}

// Classify определяет направления, в которые открыта дорога
func Classify(g *tilemap.Grid) Mask {
	var m Mask

	if IsOpenHorizontalAt(g, 1) {
		m |= Left
	}
	if IsOpenHorizontalAt(g, g.Width()-2) {
		m |= Right
	}
	if IsOpenVerticalAt(g, RoadRowIndex(g)) {
		m |= Forward
	}
	return m
}

// LateralOffset возвращает нормированное смещение автомобиля от центра дороги
// по нижней строке карты. Ноль - по центру, отрицательное - левее, положительное - правее.
// Центр кадра берется как width/2.
func LateralOffset(g *tilemap.Grid) (float64, error) {
	w, h := g.Width(), g.Height()
	if w == 0 || h == 0 {
		return 0, ErrNoRoadFound
	}
	y := h - 1

	roadLeft := 0
	for roadLeft < w && g.At(roadLeft, y) != tilemap.Surface {
		roadLeft++
	}
	roadRight := w - 1
	for roadRight >= 0 && g.At(roadRight, y) != tilemap.Surface {
		roadRight--
	}

	if roadLeft >= w || roadRight <= roadLeft {
		return 0, ErrNoRoadFound
	}

	center := 0.5 * float64(w)
	roadCenter := 0.5 * float64(roadLeft+roadRight)
	halfWidth := 0.5 * float64(roadRight-roadLeft)

	return (center - roadCenter) / halfWidth, nil
}
