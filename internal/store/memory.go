package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"navigator/internal/apperr"
	"navigator/internal/models"
)

// MemoryStore keeps users in process memory for local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// WithClock replaces the clock used to stamp UpdatedAt.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.Clone().Normalize(), nil
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return s.byID[id].Clone().Normalize(), nil
}

func (s *MemoryStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := u.Clone().Normalize()
	rec.Email = NormalizeEmail(rec.Email)
	if _, taken := s.byEmail[rec.Email]; taken {
		return nil, ErrConflict
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if _, taken := s.byID[rec.ID]; taken {
		return nil, ErrConflict
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}

	s.byID[rec.ID] = rec
	s.byEmail[rec.Email] = rec.ID
	return rec.Clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, u *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(err)
	}
	if u.ID == "" {
		return nil, apperr.New(apperr.KindValidation, "user id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := u.Clone().Normalize()
	rec.Email = NormalizeEmail(rec.Email)
	if owner, taken := s.byEmail[rec.Email]; taken && owner != rec.ID {
		return nil, ErrConflict
	}
	if prev, ok := s.byID[rec.ID]; ok && prev.Email != rec.Email {
		delete(s.byEmail, prev.Email)
	}
	rec.UpdatedAt = s.now()

	s.byID[rec.ID] = rec
	s.byEmail[rec.Email] = rec.ID
	return rec.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	delete(s.byID, id)
	delete(s.byEmail, u.Email)
	return true, nil
}

func (s *MemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable(err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok, nil
}
