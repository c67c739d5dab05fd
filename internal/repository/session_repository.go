package repository

import (
	"errors"
	"fmt"

	"road-topology-go/internal/model"

	"gorm.io/gorm"
)

// ErrNotFound запись не найдена
var ErrNotFound = errors.New("record not found")

// SessionRepository интерфейс для работы с сессиями и кадрами
type SessionRepository interface {
	Create(session *model.Session) error
	GetByID(id string) (*model.Session, error)
	List(page, pageSize int) ([]*model.Session, int64, error)
	Delete(id string) error
	AppendFrame(frame *model.FrameRecord) error
	ListFrames(sessionID string, limit int) ([]*model.FrameRecord, error)
}

// sessionRepository реализация SessionRepository
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository создает новый instance SessionRepository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{
		db: db,
	}
}

// Create создает новую сессию
func (r *sessionRepository) Create(session *model.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID получает сессию по ID без кадров
func (r *sessionRepository) GetByID(id string) (*model.Session, error) {
	var session model.Session
	err := r.db.Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// List получает список сессий с пагинацией
func (r *sessionRepository) List(page, pageSize int) ([]*model.Session, int64, error) {
	var sessions []*model.Session
	var total int64

	if err := r.db.Model(&model.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	offset := (page - 1) * pageSize
	err := r.db.
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, total, nil
}

// Delete удаляет сессию вместе с кадрами
func (r *sessionRepository) Delete(id string) error {
	tx := r.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	// Сначала удаляем кадры
	if err := tx.Where("session_id = ?", id).Delete(&model.FrameRecord{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete frames: %w", err)
	}

	result := tx.Where("id = ?", id).Delete(&model.Session{})
	if result.Error != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		tx.Rollback()
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AppendFrame сохраняет кадр и обновляет счетчики сессии в одной транзакции
func (r *sessionRepository) AppendFrame(frame *model.FrameRecord) error {
	tx := r.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	frame.ID = 0 // auto-increment
	if err := tx.Create(frame).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create frame %d: %w", frame.FrameIndex, err)
	}

	updates := map[string]interface{}{
		"total_frames":  gorm.Expr("total_frames + 1"),
		"last_decision": frame.Decision,
	}
	if frame.Skipped {
		updates["skipped_frames"] = gorm.Expr("skipped_frames + 1")
	}
	if frame.NoRoad {
		updates["no_road_frames"] = gorm.Expr("no_road_frames + 1")
	}

	result := tx.Model(&model.Session{}).Where("id = ?", frame.SessionID).Updates(updates)
	if result.Error != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update session counters: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return fmt.Errorf("session %s: %w", frame.SessionID, ErrNotFound)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListFrames возвращает последние limit кадров сессии в порядке обработки
func (r *sessionRepository) ListFrames(sessionID string, limit int) ([]*model.FrameRecord, error) {
	var frames []*model.FrameRecord
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("frame_index DESC").
		Limit(limit).
		Find(&frames).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}

	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}
	return frames, nil
}
