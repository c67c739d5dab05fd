package temporal

import (
	"fmt"

	"road-topology-go/internal/topology"

	"gonum.org/v1/gonum/floats"
)

// Sample результат классификации одного кадра
type Sample struct {
	Topology topology.Mask `json:"topology"`
	Offset   float64       `json:"offset"`
}

// Config параметры сглаживания
type Config struct {
	// Capacity размер кольцевого буфера N
	Capacity int
	// DominanceFraction доля буфера, после которой топология считается доминирующей
	DominanceFraction float64
	// FourWayDeadzone мертвая зона смещения на перекрестке
	FourWayDeadzone float64
	// LaneChangeThreshold порог средней разности смещений при смене полосы
	LaneChangeThreshold float64
}

// DefaultConfig значения по умолчанию
func DefaultConfig() Config {
	return Config{
		Capacity:            10,
		DominanceFraction:   0.8,
		FourWayDeadzone:     0.5,
		LaneChangeThreshold: 0.03,
	}
}

// Validate проверяет параметры
func (c Config) Validate() error {
	if c.Capacity < 2 {
		return fmt.Errorf("capacity must be at least 2, got %d", c.Capacity)
	}
	if c.DominanceFraction <= 0 || c.DominanceFraction > 1 {
		return fmt.Errorf("dominance fraction must be in (0, 1], got %v", c.DominanceFraction)
	}
	if c.FourWayDeadzone < 0 || c.LaneChangeThreshold < 0 {
		return fmt.Errorf("thresholds must be non-negative")
	}
	return nil
}

// Classifier сглаживает поток Sample кольцевым буфером фиксированного размера.
// Суммы и гистограмма поддерживаются инкрементально.
type Classifier struct {
	cfg       Config
	threshold int

	ring       []Sample
	writeIndex int
	filled     int

	offsetSum float64
	histogram [topology.Values]int
	dominant  topology.Mask
	pos       float64

	diffRing   []float64
	diffIndex  int
	prevOffset float64
	posDifAvg  float64

	decision Decision
}

// NewClassifier создает классификатор
func NewClassifier(cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	threshold := int(cfg.DominanceFraction * float64(cfg.Capacity))
	if threshold < 1 {
		threshold = 1
	}

	return &Classifier{
		cfg:       cfg,
		threshold: threshold,
		ring:      make([]Sample, cfg.Capacity),
		diffRing:  make([]float64, cfg.Capacity/2),
	}, nil
}

// Push добавляет результат очередного кадра
func (c *Classifier) Push(s Sample) {
	n := len(c.ring)
	full := c.filled == n

	if full {
		evicted := c.ring[c.writeIndex]
		c.offsetSum -= evicted.Offset
		c.histogram[evicted.Topology%topology.Values]--
	}

	c.ring[c.writeIndex] = s
	c.offsetSum += s.Offset

	bucket := s.Topology % topology.Values
	c.histogram[bucket]++
	if c.histogram[bucket] >= c.threshold {
		c.dominant = bucket
	}

	// первая разность считается со второго кадра
	seen := c.filled
	if seen > 0 {
		c.diffRing[c.diffIndex] = s.Offset - c.prevOffset
		c.diffIndex = (c.diffIndex + 1) % len(c.diffRing)
	}
	c.prevOffset = s.Offset

	if !full {
		c.filled++
	}
	c.writeIndex = (c.writeIndex + 1) % n

	if c.filled == n {
		c.pos = c.offsetSum / float64(n)
	} else {
		c.pos = c.offsetSum / float64(c.filled)
	}
	// среднее считается, только когда кольцо разностей заполнено
	if seen >= len(c.diffRing) {
		c.posDifAvg = floats.Sum(c.diffRing) / float64(len(c.diffRing))
	}
}

// Decide вычисляет решение о повороте по доминирующей топологии
func (c *Classifier) Decide() Decision {
	c.decision = decide(c.dominant, c.pos, c.posDifAvg, c.cfg)
	return c.decision
}

// Decision последнее вычисленное решение
func (c *Classifier) Decision() Decision { return c.decision }

// Dominant доминирующая топология
func (c *Classifier) Dominant() topology.Mask { return c.dominant }

// Pos сглаженное смещение
func (c *Classifier) Pos() float64 { return c.pos }

// PosDifAvg среднее изменение смещения
func (c *Classifier) PosDifAvg() float64 { return c.posDifAvg }

// OffsetSum сумма смещений в буфере
func (c *Classifier) OffsetSum() float64 { return c.offsetSum }

// Filled число заполненных ячеек буфера
func (c *Classifier) Filled() int { return c.filled }

// Capacity размер буфера
func (c *Classifier) Capacity() int { return len(c.ring) }

// Count число записей буфера с данной топологией
func (c *Classifier) Count(m topology.Mask) int {
	return c.histogram[m%topology.Values]
}
