package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"stocklens/internal/domain/models"
	domrepo "stocklens/internal/domain/repository"
)

// MemorySignalStore implements SignalStore in process memory. Used for
// development and tests; semantics mirror the ClickHouse store.
type MemorySignalStore struct {
	mu   sync.RWMutex
	recs map[string]*models.SignalRecord
}

func NewMemorySignalStore() *MemorySignalStore {
	return &MemorySignalStore{recs: make(map[string]*models.SignalRecord)}
}

func (s *MemorySignalStore) Init(ctx context.Context) error { return nil }

func (s *MemorySignalStore) Upsert(ctx context.Context, rec *models.SignalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.recs[rec.Key()]; ok && existing.LastUpdatedAt.After(rec.LastUpdatedAt) {
		return fmt.Errorf("%w: stored %s is newer than %s", models.ErrWriteConflict,
			existing.LastUpdatedAt.Format(time.RFC3339), rec.LastUpdatedAt.Format(time.RFC3339))
	}

	cp := *rec
	s.recs[rec.Key()] = &cp
	return nil
}

func (s *MemorySignalStore) Get(ctx context.Context, symbol string, tf domrepo.Timeframe) (*models.SignalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recs[symbol+":"+string(tf)]
	if !ok {
		return nil, models.ErrSignalNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *MemorySignalStore) List(ctx context.Context, tf domrepo.Timeframe) ([]*models.SignalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.SignalRecord, 0, len(s.recs))
	for _, rec := range s.recs {
		if rec.Timeframe == string(tf) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *MemorySignalStore) Health(ctx context.Context) error { return nil }

func (s *MemorySignalStore) Close() error { return nil }
