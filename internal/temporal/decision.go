package temporal

import "road-topology-go/internal/topology"

// Decision решение о поворотнике
type Decision int8

const (
	BlinkLeft  Decision = -1
	BlinkNone  Decision = 0
	BlinkRight Decision = 1
)

// String возвращает имя решения
func (d Decision) String() string {
	switch d {
	case BlinkLeft:
		return "left"
	case BlinkRight:
		return "right"
	}
	return "none"
}

// Положительное смещение означает, что автомобиль правее центра дороги
// и выбор склоняется к правому направлению.
type handler func(pos, posDifAvg float64, cfg Config) Decision

var decisionTable = map[topology.Mask]handler{
	topology.Left | topology.Right:                    threeWayBoth,
	topology.Left | topology.Forward:                  threeWayLeft,
	topology.Right | topology.Forward:                 threeWayRight,
	topology.Left | topology.Right | topology.Forward: fourWay,
}

func decide(dominant topology.Mask, pos, posDifAvg float64, cfg Config) Decision {
	if dominant.Has(topology.TwoLanes) {
		return laneChange(pos, posDifAvg, cfg)
	}
	if h, ok := decisionTable[dominant]; ok {
		return h(pos, posDifAvg, cfg)
	}
	return BlinkNone
}

func threeWayBoth(pos, _ float64, _ Config) Decision {
	if pos > 0 {
		return BlinkRight
	}
	return BlinkLeft
}

func threeWayLeft(pos, _ float64, _ Config) Decision {
	if pos < 0 {
		return BlinkLeft
	}
	return BlinkNone
}

func threeWayRight(pos, _ float64, _ Config) Decision {
	if pos > 0 {
		return BlinkRight
	}
	return BlinkNone
}

func fourWay(pos, _ float64, cfg Config) Decision {
	switch {
	case pos > cfg.FourWayDeadzone:
		return BlinkRight
	case pos < -cfg.FourWayDeadzone:
		return BlinkLeft
	}
	return BlinkNone
}

func laneChange(_, posDifAvg float64, cfg Config) Decision {
	switch {
	case posDifAvg > cfg.LaneChangeThreshold:
		return BlinkRight
	case posDifAvg < -cfg.LaneChangeThreshold:
		return BlinkLeft
	}
	return BlinkNone
}
