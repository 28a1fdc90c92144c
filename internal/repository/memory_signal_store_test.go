package repository

import (
	"context"
	"testing"
	"time"

	"stocklens/internal/domain/models"
	domrepo "stocklens/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(symbol string, tf domrepo.Timeframe, updated time.Time) *models.SignalRecord {
	return &models.SignalRecord{
		Symbol:        symbol,
		Timeframe:     string(tf),
		LastUpdatedAt: updated,
		NextUpdateAt:  updated.Add(time.Hour),
	}
}

func TestMemoryStoreUpsertAndGet(t *testing.T) {
	s := NewMemorySignalStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Upsert(ctx, rec("AAPL", domrepo.TF1h, now)))

	got, err := s.Get(ctx, "AAPL", domrepo.TF1h)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.True(t, got.LastUpdatedAt.Equal(now))

	_, err = s.Get(ctx, "AAPL", domrepo.TF4h)
	assert.ErrorIs(t, err, models.ErrSignalNotFound, "timeframe is part of the key")
	_, err = s.Get(ctx, "MSFT", domrepo.TF1h)
	assert.ErrorIs(t, err, models.ErrSignalNotFound)
}

func TestMemoryStoreRejectsStaleWrite(t *testing.T) {
	s := NewMemorySignalStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Upsert(ctx, rec("AAPL", domrepo.TF1h, now)))

	err := s.Upsert(ctx, rec("AAPL", domrepo.TF1h, now.Add(-time.Minute)))
	assert.ErrorIs(t, err, models.ErrWriteConflict)

	// equal timestamps win; last writer replaces
	assert.NoError(t, s.Upsert(ctx, rec("AAPL", domrepo.TF1h, now)))
	assert.NoError(t, s.Upsert(ctx, rec("AAPL", domrepo.TF1h, now.Add(time.Minute))))
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemorySignalStore()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, rec("AAPL", domrepo.TF1h, time.Now())))

	first, err := s.Get(ctx, "AAPL", domrepo.TF1h)
	require.NoError(t, err)
	first.Summary = "mutated by caller"

	second, err := s.Get(ctx, "AAPL", domrepo.TF1h)
	require.NoError(t, err)
	assert.Empty(t, second.Summary)
}

func TestMemoryStoreUpsertCopiesInput(t *testing.T) {
	s := NewMemorySignalStore()
	ctx := context.Background()

	in := rec("AAPL", domrepo.TF1h, time.Now())
	require.NoError(t, s.Upsert(ctx, in))
	in.Summary = "mutated after upsert"

	got, err := s.Get(ctx, "AAPL", domrepo.TF1h)
	require.NoError(t, err)
	assert.Empty(t, got.Summary)
}

func TestMemoryStoreListFiltersAndSorts(t *testing.T) {
	s := NewMemorySignalStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Upsert(ctx, rec("MSFT", domrepo.TF1h, now)))
	require.NoError(t, s.Upsert(ctx, rec("AAPL", domrepo.TF1h, now)))
	require.NoError(t, s.Upsert(ctx, rec("GOOG", domrepo.TF4h, now)))

	out, err := s.List(ctx, domrepo.TF1h)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "AAPL", out[0].Symbol)
	assert.Equal(t, "MSFT", out[1].Symbol)

	out, err = s.List(ctx, domrepo.TF1d)
	require.NoError(t, err)
	assert.Empty(t, out)
}
