package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"road-topology-go/internal/model"
)

// maxStoredFrames сколько последних кадров сессии хранится в памяти,
// совпадает с максимальным limit у ListFrames
const maxStoredFrames = 1000

// memoryRepository хранит сессии в памяти процесса, используется без базы данных
type memoryRepository struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	frames   map[string][]*model.FrameRecord
	nextID   uint
}

// NewMemoryRepository создает SessionRepository в памяти
func NewMemoryRepository() SessionRepository {
	return &memoryRepository{
		sessions: map[string]*model.Session{},
		frames:   map[string][]*model.FrameRecord{},
	}
}

func (r *memoryRepository) Create(session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; ok {
		return fmt.Errorf("failed to create session: duplicate id %s", session.ID)
	}
	now := time.Now()
	session.CreatedAt, session.UpdatedAt = now, now

	cp := *session
	r.sessions[session.ID] = &cp
	return nil
}

func (r *memoryRepository) GetByID(id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r *memoryRepository) List(page, pageSize int) ([]*model.Session, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*model.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		cp := *s
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	start := (page - 1) * pageSize
	if start >= len(all) {
		return []*model.Session{}, total, nil
	}
	end := min(start+pageSize, len(all))
	return all[start:end], total, nil
}

func (r *memoryRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	delete(r.sessions, id)
	delete(r.frames, id)
	return nil
}

func (r *memoryRepository) AppendFrame(frame *model.FrameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[frame.SessionID]
	if !ok {
		return fmt.Errorf("session %s: %w", frame.SessionID, ErrNotFound)
	}

	s.TotalFrames++
	s.LastDecision = frame.Decision
	if frame.Skipped {
		s.SkippedFrames++
	}
	if frame.NoRoad {
		s.NoRoadFrames++
	}
	s.UpdatedAt = time.Now()

	r.nextID++
	frame.ID = r.nextID
	frame.CreatedAt = s.UpdatedAt

	cp := *frame
	frames := append(r.frames[frame.SessionID], &cp)
	if len(frames) > maxStoredFrames {
		n := copy(frames, frames[len(frames)-maxStoredFrames:])
		clear(frames[n:])
		frames = frames[:n]
	}
	r.frames[frame.SessionID] = frames
	return nil
}

func (r *memoryRepository) ListFrames(sessionID string, limit int) ([]*model.FrameRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := r.frames[sessionID]
	if len(frames) > limit {
		frames = frames[len(frames)-limit:]
	}

	out := make([]*model.FrameRecord, 0, len(frames))
	for _, f := range frames {
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}
