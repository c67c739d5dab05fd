package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"road-topology-go/internal/temporal"
	"road-topology-go/internal/tilemap"
	"road-topology-go/internal/topology"

	"github.com/sirupsen/logrus"
)

// Options параметры обработки кадра
type Options struct {
	CellSize        int
	CenterHalfWidth int
	// TwoLaneFraction порог доли границ в полосе центра для бита TwoLanes
	TwoLaneFraction float64
	DilateEdges     bool
	// Seed переопределяет стартовую клетку заливки, по умолчанию низ-центр карты
	Seed       *Point
	Classifier temporal.Config
	// FirstFrame номер первого кадра, нужен при восстановлении сессии
	FirstFrame int
}

// Point координаты клетки
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DefaultOptions значения по умолчанию
func DefaultOptions() Options {
	return Options{
		CellSize:        8,
		CenterHalfWidth: 0,
		TwoLaneFraction: 0.2,
		Classifier:      temporal.DefaultConfig(),
	}
}

// FrameResult результат обработки одного кадра
type FrameResult struct {
	Index              int               `json:"index"`
	Sample             temporal.Sample   `json:"sample"`
	EdgeFraction       float64           `json:"edge_fraction"`
	NoRoad             bool              `json:"no_road"`
	Skipped            bool              `json:"skipped"`
	SkipReason         string            `json:"skip_reason,omitempty"`
	BoundaryEdgePixels int               `json:"boundary_edge_pixels"`
	Decision           temporal.Decision `json:"decision"`
	Pos                float64           `json:"pos"`
	PosDifAvg          float64           `json:"pos_dif_avg"`
	Dominant           topology.Mask     `json:"dominant"`
	Duration           time.Duration     `json:"duration"`
}

// Pipeline обрабатывает кадры одного потока.
// Карта и классификатор принадлежат экземпляру и не разделяются с другими потоками.
type Pipeline struct {
	mu sync.Mutex

	opts       Options
	grid       *tilemap.Grid
	grower     *tilemap.Grower
	morph      tilemap.Morphology
	classifier *temporal.Classifier
	logger     *logrus.Entry

	frames int
}

// New создает конвейер
func New(opts Options, logger *logrus.Entry) (*Pipeline, error) {
	if opts.CellSize <= 0 {
		return nil, fmt.Errorf("%w: %d", tilemap.ErrInvalidCellSize, opts.CellSize)
	}

	classifier, err := temporal.NewClassifier(opts.Classifier)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	return &Pipeline{
		opts:       opts,
		grid:       &tilemap.Grid{},
		grower:     tilemap.NewGrower(),
		classifier: classifier,
		logger:     logger,
		frames:     opts.FirstFrame,
	}, nil
}

// Process обрабатывает маску границ очередного кадра.
// Ошибка возвращается только для некорректного входа; кадр с неверной стартовой
// клеткой пропускается с сохранением предыдущего решения.
func (p *Pipeline) Process(mask tilemap.EdgeMask) (FrameResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()

	if err := mask.Validate(); err != nil {
		return FrameResult{}, err
	}
	if err := p.grid.Resize(mask.Width, mask.Height, p.opts.CellSize); err != nil {
		return FrameResult{}, err
	}
	p.grid.Clear()
	if err := tilemap.Rasterize(p.grid, mask, tilemap.Edge); err != nil {
		return FrameResult{}, err
	}
	if p.opts.DilateEdges {
		p.morph.Dilate(p.grid, tilemap.Edge)
	}

	result := FrameResult{Index: p.frames}
	p.frames++

	seedX, seedY := p.grid.Width()/2, p.grid.Height()-1
	if p.opts.Seed != nil {
		seedX, seedY = p.opts.Seed.X, p.opts.Seed.Y
	}

	if err := p.grower.GrowRegionWithBoundary(p.grid, seedX, seedY); err != nil {
		if !errors.Is(err, tilemap.ErrInvalidSeed) {
			return FrameResult{}, err
		}
		p.logger.WithFields(logrus.Fields{
			"frame": result.Index,
			"seed":  fmt.Sprintf("%d,%d", seedX, seedY),
		}).Warnf("Кадр пропущен: %v", err)

		result.Skipped = true
		result.SkipReason = err.Error()
		p.fillState(&result)
		result.Decision = p.classifier.Decision()
		result.Duration = time.Since(start)
		return result, nil
	}

	boundary, err := tilemap.BoundaryEdgeMask(p.grid, mask)
	if err != nil {
		return FrameResult{}, err
	}
	result.BoundaryEdgePixels = boundary.Count()

	sample := temporal.Sample{Topology: topology.Classify(p.grid)}
	offset, err := topology.LateralOffset(p.grid)
	switch {
	case errors.Is(err, topology.ErrNoRoadFound):
		result.NoRoad = true
		sample = temporal.Sample{Topology: topology.None}
	case err != nil:
		return FrameResult{}, err
	default:
		sample.Offset = offset
	}

	result.EdgeFraction = topology.DrawCenterline(p.grid, p.opts.CenterHalfWidth)
	if !result.NoRoad && result.EdgeFraction > p.opts.TwoLaneFraction {
		sample.Topology |= topology.TwoLanes
	}

	p.classifier.Push(sample)
	result.Sample = sample
	result.Decision = p.classifier.Decide()
	p.fillState(&result)
	result.Duration = time.Since(start)

	entry := p.logger.WithFields(logrus.Fields{
		"frame":    result.Index,
		"topology": sample.Topology.String(),
		"offset":   sample.Offset,
		"decision": result.Decision.String(),
	})
	if result.NoRoad {
		entry.Warn("Дорога не найдена")
	} else {
		entry.Debug("Кадр обработан")
	}

	return result, nil
}

func (p *Pipeline) fillState(r *FrameResult) {
	r.Pos = p.classifier.Pos()
	r.PosDifAvg = p.classifier.PosDifAvg()
	r.Dominant = p.classifier.Dominant()
}

// Decision последнее решение
func (p *Pipeline) Decision() temporal.Decision {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.classifier.Decision()
}

// Frames число принятых кадров
func (p *Pipeline) Frames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// Snapshot возвращает копию карты последнего кадра
func (p *Pipeline) Snapshot() *tilemap.Grid {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.grid.Clone()
}
