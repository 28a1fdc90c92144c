package usecase

import (
	"context"
	"errors"

	"stocklens/internal/domain/models"
	drepo "stocklens/internal/domain/repository"
	"stocklens/pkg/cache"
	"stocklens/pkg/logger"
)

// SignalReader serves read traffic with a cache in front of the store.
// Reads never trigger computation; a missing key is simply not found.
type SignalReader struct {
	store  drepo.SignalStore
	cache  cache.Service
	logger *logger.Logger
}

// NewSignalReader creates a reader.
func NewSignalReader(store drepo.SignalStore, c cache.Service, lgr *logger.Logger) *SignalReader {
	return &SignalReader{store: store, cache: c, logger: lgr}
}

// Get returns the stored record for a key, read-through cached.
func (r *SignalReader) Get(ctx context.Context, symbol string, tf drepo.Timeframe) (*models.SignalRecord, error) {
	key := signalCacheKey(symbol, tf)

	var rec models.SignalRecord
	if err := r.cache.Get(ctx, key, &rec); err == nil {
		return &rec, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("signal cache get failed", logger.String("key", key), logger.Error(err))
	}

	stored, err := r.store.Get(ctx, symbol, tf)
	if err != nil {
		return nil, err
	}

	ttl := stored.NextUpdateAt.Sub(stored.LastUpdatedAt)
	if ttl > 0 {
		if err := r.cache.Set(ctx, key, stored, ttl); err != nil {
			r.logger.Warn("signal cache set failed", logger.String("key", key), logger.Error(err))
		}
	}
	return stored, nil
}

// List returns all stored records for a timeframe, sorted by symbol.
func (r *SignalReader) List(ctx context.Context, tf drepo.Timeframe) ([]*models.SignalRecord, error) {
	return r.store.List(ctx, tf)
}

// Health reports whether the backing store is reachable.
func (r *SignalReader) Health(ctx context.Context) error {
	return r.store.Health(ctx)
}
