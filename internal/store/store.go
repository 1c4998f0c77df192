// Package store persists user records. Writes are last-writer-wins; two
// requests mutating the same user's lists concurrently can lose one update.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"navigator/internal/apperr"
	"navigator/internal/logging"
	"navigator/internal/models"
)

var (
	ErrNotFound    = apperr.New(apperr.KindNotFound, "User not found")
	ErrConflict    = apperr.New(apperr.KindConflict, "User already exists")
	ErrUnavailable = apperr.New(apperr.KindStoreUnavailable, "Store unavailable")
)

// DefaultTimeout bounds a single store call made through GetWithRetry.
const DefaultTimeout = 10 * time.Second

// UserStore is implemented by every persistence backend. Returned users are
// copies owned by the caller.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create fails with ErrConflict when the email or id is already present.
	Create(ctx context.Context, u *models.User) (*models.User, error)
	// Update replaces the whole record, creating it when missing, and
	// refreshes UpdatedAt before writing.
	Update(ctx context.Context, u *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetWithRetry runs get with a per-attempt timeout and retries exactly once
// when the first attempt fails with ErrUnavailable.
func GetWithRetry(ctx context.Context, timeout time.Duration, get func(context.Context) (*models.User, error)) (*models.User, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		u, err := get(attemptCtx)
		cancel()
		if err == nil {
			return u, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = unavailable(err)
		}
		if !errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		logging.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).Msg("[STORE] read failed")
	}
	return nil, lastErr
}

type wrapped struct {
	sentinel error
	cause    error
}

func (w *wrapped) Error() string {
	return w.sentinel.Error() + ": " + w.cause.Error()
}

func (w *wrapped) Unwrap() []error {
	return []error{w.sentinel, w.cause}
}

// unavailable marks err as ErrUnavailable while keeping the cause in the chain.
func unavailable(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return &wrapped{sentinel: ErrUnavailable, cause: err}
}

func conflict(err error) error {
	return &wrapped{sentinel: ErrConflict, cause: err}
}
