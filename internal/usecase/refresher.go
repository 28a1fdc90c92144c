package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"stocklens/internal/domain/models"
	drepo "stocklens/internal/domain/repository"
	"stocklens/pkg/cache"
	"stocklens/pkg/logger"
)

func signalCacheKey(symbol string, tf drepo.Timeframe) string {
	return cache.GenerateKeyWithParams("signal", symbol, string(tf))
}

func refreshLockKey(symbol string, tf drepo.Timeframe) string {
	return cache.GenerateKeyWithParams("lock:refresh", symbol, string(tf))
}

// RefresherConfig holds orchestration settings.
type RefresherConfig struct {
	Symbols      []string
	Timeframes   []drepo.Timeframe
	TickInterval time.Duration
	RunTimeout   time.Duration
	Workers      int
	FreshnessFor func(timeframe string) time.Duration
}

// Refresher drives the periodic refresh cycle. Each signal key moves
// stale -> computing -> fresh; computing is guarded by a per-key cache
// lock so concurrent refreshes of the same key collapse into one.
type Refresher struct {
	cfg      RefresherConfig
	analyzer *Analyzer
	store    drepo.SignalStore
	cache    cache.Service
	pub      drepo.Publisher
	metrics  drepo.Metrics
	logger   *logger.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
	now    func() time.Time
}

// NewRefresher creates a refresher. pub may be nil when event publishing
// is disabled.
func NewRefresher(
	cfg RefresherConfig,
	analyzer *Analyzer,
	store drepo.SignalStore,
	c cache.Service,
	pub drepo.Publisher,
	metrics drepo.Metrics,
	lgr *logger.Logger,
) *Refresher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Minute
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 2 * time.Minute
	}
	if cfg.FreshnessFor == nil {
		cfg.FreshnessFor = func(string) time.Duration { return time.Hour }
	}
	return &Refresher{
		cfg:      cfg,
		analyzer: analyzer,
		store:    store,
		cache:    c,
		pub:      pub,
		metrics:  metrics,
		logger:   lgr,
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
}

// Start runs the scheduler loop until ctx is done or Stop is called.
func (r *Refresher) Start(ctx context.Context) error {
	r.logger.Info("refresher started",
		logger.Int("symbols", len(r.cfg.Symbols)),
		logger.Int("workers", r.cfg.Workers),
		logger.Duration("tick", r.cfg.TickInterval))

	r.RefreshAll(ctx, false)

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stopCh:
			return nil
		case <-ticker.C:
			r.RefreshAll(ctx, false)
		}
	}
}

// Stop signals the scheduler loop to exit and waits for in-flight work.
func (r *Refresher) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}

// RefreshAll fans the key universe out over the worker pool. One key's
// failure never blocks the others.
func (r *Refresher) RefreshAll(ctx context.Context, force bool) {
	type key struct {
		symbol string
		tf     drepo.Timeframe
	}

	jobs := make(chan key)
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range jobs {
				if err := r.RefreshKey(ctx, k.symbol, k.tf, force); err != nil {
					r.logger.Error("refresh failed",
						logger.String("symbol", k.symbol),
						logger.String("timeframe", string(k.tf)),
						logger.Error(err))
				}
			}
		}()
	}

	for _, sym := range r.cfg.Symbols {
		for _, tf := range r.cfg.Timeframes {
			select {
			case <-ctx.Done():
				close(jobs)
				wg.Wait()
				return
			case jobs <- key{symbol: sym, tf: tf}:
			}
		}
	}
	close(jobs)
	wg.Wait()
}

// RefreshKey recomputes one signal key. Skips silently when the record is
// still fresh (unless force) or another writer holds the key lock. The
// existing record is left untouched on any failure.
func (r *Refresher) RefreshKey(ctx context.Context, symbol string, tf drepo.Timeframe, force bool) error {
	key := symbol + ":" + string(tf)

	locked, err := r.cache.TryLock(ctx, refreshLockKey(symbol, tf), r.cfg.RunTimeout)
	if err != nil {
		return err
	}
	if !locked {
		r.logger.Debug("refresh already in progress", logger.String("key", key))
		return nil
	}
	defer func() { _ = r.cache.Unlock(context.WithoutCancel(ctx), refreshLockKey(symbol, tf)) }()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.RunTimeout)
	defer cancel()

	prior, err := r.store.Get(ctx, symbol, tf)
	if err != nil && !errors.Is(err, models.ErrSignalNotFound) {
		r.metrics.RecordError("store_read")
		return err
	}
	if !force && prior != nil && prior.IsFresh(r.now()) {
		return nil
	}

	start := r.now()
	rec, err := r.analyzer.Analyze(ctx, symbol, tf, prior)
	if err != nil {
		r.metrics.RecordError(errorKind(err))
		r.metrics.RecordRefresh(symbol, string(tf), "error")
		return err
	}

	now := r.now()
	rec.LastUpdatedAt = now
	rec.NextUpdateAt = now.Add(r.cfg.FreshnessFor(string(tf)))

	if err := r.store.Upsert(ctx, rec); err != nil {
		if errors.Is(err, models.ErrWriteConflict) {
			// a competing writer committed a newer record; discard ours
			r.metrics.RecordRefresh(symbol, string(tf), "conflict")
			r.logger.Warn("write conflict, discarding record", logger.String("key", key))
			return nil
		}
		r.metrics.RecordError("store_write")
		r.metrics.RecordRefresh(symbol, string(tf), "error")
		return err
	}

	ttl := rec.NextUpdateAt.Sub(now)
	if err := r.cache.Set(ctx, signalCacheKey(symbol, tf), rec, ttl); err != nil {
		r.logger.Warn("signal cache set failed", logger.String("key", key), logger.Error(err))
	}

	if r.pub != nil {
		event := &models.SignalEvent{
			Symbol:        rec.Symbol,
			Timeframe:     rec.Timeframe,
			Verdict:       rec.Hybrid.Verdict,
			HybridScore:   rec.Hybrid.HybridScore,
			Direction:     rec.Plan.Direction,
			LastUpdatedAt: rec.LastUpdatedAt,
		}
		if err := r.pub.Publish(ctx, event); err != nil {
			r.metrics.RecordError("publish")
			r.logger.Warn("event publish failed", logger.String("key", key), logger.Error(err))
		}
	}

	r.metrics.RecordRefresh(symbol, string(tf), "ok")
	r.metrics.RecordHybridScore(symbol, string(tf), rec.Hybrid.HybridScore)
	r.metrics.RecordLastPrice(symbol, rec.Indicators.Price)
	r.metrics.RecordLatency("refresh", r.now().Sub(start).Seconds())

	r.logger.Info("signal refreshed",
		logger.String("key", key),
		logger.String("verdict", string(rec.Hybrid.Verdict)),
		logger.Any("score", rec.Hybrid.HybridScore))
	return nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrFeedUnavailable):
		return "feed_unavailable"
	case errors.Is(err, models.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, models.ErrComputationInvalid):
		return "computation_invalid"
	case errors.Is(err, models.ErrWriteConflict):
		return "write_conflict"
	default:
		return "refresh"
	}
}
