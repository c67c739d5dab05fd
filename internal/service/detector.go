package service

import (
	"fmt"
	"io"
	"sync"

	"road-topology-go/internal/command"
	"road-topology-go/internal/model"
	"road-topology-go/internal/pipeline"
	"road-topology-go/internal/render"
	"road-topology-go/internal/repository"
	"road-topology-go/internal/tilemap"
	"road-topology-go/pkg/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DetectorService держит конвейер на каждую сессию и публикует решения в ячейку команды
type DetectorService struct {
	repo   repository.SessionRepository
	cell   *command.Cell
	opts   pipeline.Options
	logger *logrus.Logger

	mu        sync.RWMutex
	pipelines map[string]*pipeline.Pipeline
}

// NewDetectorService создает новый экземпляр DetectorService
func NewDetectorService(repo repository.SessionRepository, cell *command.Cell, opts pipeline.Options, logger *logrus.Logger) *DetectorService {
	return &DetectorService{
		repo:      repo,
		cell:      cell,
		opts:      opts,
		logger:    logger,
		pipelines: make(map[string]*pipeline.Pipeline),
	}
}

// CreateSession создает сессию со своей картой и классификатором
func (s *DetectorService) CreateSession(req models.CreateSessionRequest) (*models.SessionResponse, error) {
	cellSize := req.CellSize
	if cellSize == 0 {
		cellSize = s.opts.CellSize
	}

	session := &model.Session{
		ID:       uuid.New().String(),
		Name:     req.Name,
		CellSize: cellSize,
	}

	p, err := s.newPipeline(session)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(session); err != nil {
		s.logger.Errorf("Ошибка сохранения сессии в БД: %v", err)
		return nil, err
	}

	s.mu.Lock()
	s.pipelines[session.ID] = p
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"session":   session.ID,
		"cell_size": cellSize,
	}).Info("Создана сессия")

	resp := sessionToResponse(session)
	return &resp, nil
}

// ProcessFrame обрабатывает маску кадра в конвейере сессии
func (s *DetectorService) ProcessFrame(sessionID string, mask tilemap.EdgeMask) (*models.FrameResponse, error) {
	p, err := s.pipeline(sessionID)
	if err != nil {
		return nil, err
	}

	result, err := p.Process(mask)
	if err != nil {
		return nil, err
	}

	if !result.Skipped {
		s.cell.SetBlink(result.Decision)
	}

	record := frameRecord(sessionID, result)
	if err := s.repo.AppendFrame(record); err != nil {
		// решение уже опубликовано, потеря записи не должна останавливать поток
		s.logger.WithFields(logrus.Fields{
			"session": sessionID,
			"frame":   result.Index,
		}).Errorf("Ошибка сохранения кадра: %v", err)
	}

	resp := frameToResponse(record)
	resp.SkipReason = result.SkipReason
	return &resp, nil
}

// RenderTilemap рисует карту последнего кадра сессии в PNG
func (s *DetectorService) RenderTilemap(sessionID string, w io.Writer) error {
	p, err := s.pipeline(sessionID)
	if err != nil {
		return err
	}

	return render.PNG(w, p.Snapshot(), render.Options{
		Caption: fmt.Sprintf("#%d %s", p.Frames(), p.Decision()),
	})
}

// DeleteSession удаляет сессию и ее конвейер
func (s *DetectorService) DeleteSession(sessionID string) error {
	if err := s.repo.Delete(sessionID); err != nil {
		return mapNotFound(err)
	}

	s.mu.Lock()
	delete(s.pipelines, sessionID)
	s.mu.Unlock()

	s.logger.WithField("session", sessionID).Info("Сессия удалена")
	return nil
}

// pipeline возвращает конвейер сессии, при необходимости восстанавливая его после перезапуска
func (s *DetectorService) pipeline(sessionID string) (*pipeline.Pipeline, error) {
	s.mu.RLock()
	p, ok := s.pipelines[sessionID]
	s.mu.RUnlock()
	if ok {
		return p, nil
	}

	session, err := s.repo.GetByID(sessionID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pipelines[sessionID]; ok {
		return p, nil
	}
	p, err = s.newPipeline(session)
	if err != nil {
		return nil, err
	}
	s.pipelines[sessionID] = p

	s.logger.WithField("session", sessionID).Info("Конвейер сессии восстановлен")
	return p, nil
}

func (s *DetectorService) newPipeline(session *model.Session) (*pipeline.Pipeline, error) {
	opts := s.opts
	opts.CellSize = session.CellSize
	opts.FirstFrame = session.TotalFrames
	return pipeline.New(opts, s.logger.WithField("session", session.ID))
}
