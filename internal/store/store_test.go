package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"navigator/internal/models"
)

func TestGetWithRetryRetriesOnceOnUnavailable(t *testing.T) {
	calls := 0
	u, err := GetWithRetry(context.Background(), time.Second, func(ctx context.Context) (*models.User, error) {
		calls++
		if calls == 1 {
			return nil, unavailable(errors.New("backend down"))
		}
		return &models.User{ID: "u1"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, 2, calls)
}

func TestGetWithRetryGivesUpAfterSecondFailure(t *testing.T) {
	calls := 0
	_, err := GetWithRetry(context.Background(), time.Second, func(ctx context.Context) (*models.User, error) {
		calls++
		return nil, unavailable(errors.New("backend down"))
	})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, calls)
}

func TestGetWithRetryDoesNotRetryNotFound(t *testing.T) {
	calls := 0
	_, err := GetWithRetry(context.Background(), time.Second, func(ctx context.Context) (*models.User, error) {
		calls++
		return nil, ErrNotFound
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestGetWithRetryTimesOutEachAttempt(t *testing.T) {
	calls := 0
	_, err := GetWithRetry(context.Background(), 10*time.Millisecond, func(ctx context.Context) (*models.User, error) {
		calls++
		<-ctx.Done()
		return nil, ctx.Err()
	})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, calls)
}

func TestInstrumentedPassesThrough(t *testing.T) {
	s := Instrument("memory", NewMemoryStore())
	_, err := s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "memory", s.Backend())
}
