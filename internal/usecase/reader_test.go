package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"stocklens/internal/domain/models"
	drepo "stocklens/internal/domain/repository"
	"stocklens/internal/repository"
	"stocklens/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	drepo.SignalStore
	gets int32
}

func (s *countingStore) Get(ctx context.Context, symbol string, tf drepo.Timeframe) (*models.SignalRecord, error) {
	atomic.AddInt32(&s.gets, 1)
	return s.SignalStore.Get(ctx, symbol, tf)
}

func seedStore(t *testing.T, store drepo.SignalStore, symbol string, tf drepo.Timeframe) *models.SignalRecord {
	t.Helper()
	now := time.Now()
	rec := &models.SignalRecord{
		Symbol:        symbol,
		Timeframe:     string(tf),
		Summary:       symbol + " summary",
		LastUpdatedAt: now,
		NextUpdateAt:  now.Add(time.Hour),
	}
	require.NoError(t, store.Upsert(context.Background(), rec))
	return rec
}

func TestReaderGetMiss(t *testing.T) {
	r := NewSignalReader(repository.NewMemorySignalStore(), cache.NewMemoryCache(), newTestLogger(t))

	_, err := r.Get(context.Background(), "AAPL", drepo.TF1h)
	assert.ErrorIs(t, err, models.ErrSignalNotFound)
}

func TestReaderGetReadsThroughCache(t *testing.T) {
	store := &countingStore{SignalStore: repository.NewMemorySignalStore()}
	seedStore(t, store, "AAPL", drepo.TF1h)
	r := NewSignalReader(store, cache.NewMemoryCache(), newTestLogger(t))

	ctx := context.Background()
	first, err := r.Get(ctx, "AAPL", drepo.TF1h)
	require.NoError(t, err)

	second, err := r.Get(ctx, "AAPL", drepo.TF1h)
	require.NoError(t, err)

	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.gets), "second read served from cache")
}

func TestReaderGetSkipsCacheForExpiredTTL(t *testing.T) {
	store := &countingStore{SignalStore: repository.NewMemorySignalStore()}
	now := time.Now()
	require.NoError(t, store.Upsert(context.Background(), &models.SignalRecord{
		Symbol:        "AAPL",
		Timeframe:     "1h",
		LastUpdatedAt: now,
		NextUpdateAt:  now, // zero ttl, nothing to cache
	}))
	r := NewSignalReader(store, cache.NewMemoryCache(), newTestLogger(t))

	ctx := context.Background()
	_, err := r.Get(ctx, "AAPL", drepo.TF1h)
	require.NoError(t, err)
	_, err = r.Get(ctx, "AAPL", drepo.TF1h)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&store.gets))
}

func TestReaderList(t *testing.T) {
	store := repository.NewMemorySignalStore()
	seedStore(t, store, "MSFT", drepo.TF1h)
	seedStore(t, store, "AAPL", drepo.TF1h)
	seedStore(t, store, "GOOG", drepo.TF4h)
	r := NewSignalReader(store, cache.NewMemoryCache(), newTestLogger(t))

	out, err := r.List(context.Background(), drepo.TF1h)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "AAPL", out[0].Symbol)
	assert.Equal(t, "MSFT", out[1].Symbol)
}
