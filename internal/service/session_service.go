package service

import (
	"errors"
	"fmt"

	"road-topology-go/internal/repository"
	"road-topology-go/pkg/models"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// ErrSessionNotFound сессия не существует
var ErrSessionNotFound = errors.New("session not found")

// statsWindow число последних кадров для средних значений
const statsWindow = 1000

// SessionService сервис чтения и удаления сессий
type SessionService struct {
	repo   repository.SessionRepository
	logger *logrus.Logger
}

// NewSessionService создает новый экземпляр SessionService
func NewSessionService(repo repository.SessionRepository, logger *logrus.Logger) *SessionService {
	return &SessionService{
		repo:   repo,
		logger: logger,
	}
}

// GetSession возвращает сессию со статистикой
func (s *SessionService) GetSession(id string) (*models.SessionResponse, error) {
	session, err := s.repo.GetByID(id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	frames, err := s.repo.ListFrames(id, statsWindow)
	if err != nil {
		s.logger.WithField("session", id).Errorf("Ошибка получения кадров: %v", err)
		return nil, err
	}

	var offsets, fractions []float64
	for _, f := range frames {
		if f.Skipped || f.NoRoad {
			continue
		}
		offsets = append(offsets, f.Offset)
		fractions = append(fractions, f.EdgeFraction)
	}

	resp := sessionToResponse(session)
	if len(offsets) > 0 {
		resp.Stats.MeanOffset = stat.Mean(offsets, nil)
		resp.Stats.MeanEdgeFraction = stat.Mean(fractions, nil)
	}
	return &resp, nil
}

// ListSessions возвращает сессии с пагинацией
func (s *SessionService) ListSessions(page, pageSize int) ([]models.SessionResponse, int64, error) {
	s.logger.Debugf("Получаем список сессий: страница %d, размер %d", page, pageSize)

	sessions, total, err := s.repo.List(page, pageSize)
	if err != nil {
		s.logger.Errorf("Ошибка получения списка сессий: %v", err)
		return nil, 0, err
	}

	responses := make([]models.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, sessionToResponse(session))
	}
	return responses, total, nil
}

// ListFrames возвращает последние кадры сессии
func (s *SessionService) ListFrames(id string, limit int) ([]models.FrameResponse, error) {
	if _, err := s.repo.GetByID(id); err != nil {
		return nil, mapNotFound(err)
	}

	frames, err := s.repo.ListFrames(id, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]models.FrameResponse, 0, len(frames))
	for _, f := range frames {
		responses = append(responses, frameToResponse(f))
	}
	return responses, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return err
}
