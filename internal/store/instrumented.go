package store

import (
	"context"
	"errors"

	"navigator/internal/metrics"
	"navigator/internal/models"
)

// Instrumented counts every call of the wrapped store by backend, operation and outcome.
type Instrumented struct {
	backend string
	next    UserStore
}

func Instrument(backend string, next UserStore) *Instrumented {
	return &Instrumented{backend: backend, next: next}
}

func (s *Instrumented) Backend() string {
	return s.backend
}

func (s *Instrumented) observe(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrConflict):
		outcome = "conflict"
	case errors.Is(err, ErrUnavailable):
		outcome = "unavailable"
	default:
		outcome = "error"
	}
	metrics.StoreOperations.WithLabelValues(s.backend, op, outcome).Inc()
}

func (s *Instrumented) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.next.GetByID(ctx, id)
	s.observe("get_by_id", err)
	return u, err
}

func (s *Instrumented) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.next.GetByEmail(ctx, email)
	s.observe("get_by_email", err)
	return u, err
}

func (s *Instrumented) Create(ctx context.Context, u *models.User) (*models.User, error) {
	created, err := s.next.Create(ctx, u)
	s.observe("create", err)
	return created, err
}

func (s *Instrumented) Update(ctx context.Context, u *models.User) (*models.User, error) {
	updated, err := s.next.Update(ctx, u)
	s.observe("update", err)
	return updated, err
}

func (s *Instrumented) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.next.Delete(ctx, id)
	s.observe("delete", err)
	return ok, err
}

func (s *Instrumented) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := s.next.Exists(ctx, id)
	s.observe("exists", err)
	return ok, err
}
