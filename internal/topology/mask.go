package topology

import "strings"

// Mask битовая маска топологии дороги в поперечном сечении у автомобиля
type Mask uint8

const (
	None    Mask = 0
	Forward Mask = 1 << 0
	Left    Mask = 1 << 1
	Right   Mask = 1 << 2
	// TwoLanes выставляется по доле границ в полосе центра
	TwoLanes Mask = 1 << 3
)

// Values число различных значений маски
const Values = 16

// Has сообщает, выставлены ли все биты other
func (m Mask) Has(other Mask) bool {
	return m&other == other
}

// String возвращает маску в виде "left|right|forward"
func (m Mask) String() string {
	if m == None {
		return "none"
	}

	var parts []string
	if m.Has(Left) {
		parts = append(parts, "left")
	}
	if m.Has(Right) {
		parts = append(parts, "right")
	}
	if m.Has(Forward) {
		parts = append(parts, "forward")
	}
	if m.Has(TwoLanes) {
		parts = append(parts, "two_lanes")
	}
	return strings.Join(parts, "|")
}
