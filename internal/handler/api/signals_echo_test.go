package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"stocklens/internal/domain/models"
	domrepo "stocklens/internal/domain/repository"
	"stocklens/internal/repository"
	icache "stocklens/internal/service/cache"
	"stocklens/internal/services/sentiment"
	"stocklens/internal/usecase"
	"stocklens/pkg/cache"
	xlogger "stocklens/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPriceFeed struct{}

func (stubPriceFeed) FetchSeries(_ context.Context, _ string, _ domrepo.Timeframe) (models.PriceSeries, error) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.PriceSeries, 60)
	price := 100.0
	for i := range s {
		s[i] = models.Bar{Time: t0.Add(time.Duration(i) * time.Hour), Open: price, High: price + 1, Low: price - 1, Close: price, Volume: 100}
		price += 0.5
	}
	return s, nil
}

type stubNewsFeed struct{}

func (stubNewsFeed) FetchNews(_ context.Context, _ string, _ int) ([]models.NewsItem, error) {
	return nil, nil
}

type stubQueue struct {
	mu       sync.Mutex
	messages []string
}

func (q *stubQueue) PublishMessage(_ context.Context, msgType string, _ interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, msgType)
	return nil
}

type countingBytesCache struct {
	icache.BytesCache
	hits, misses int
}

func (c *countingBytesCache) GetBytes(key string) ([]byte, bool, error) {
	b, ok, err := c.BytesCache.GetBytes(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return b, ok, err
}

func newTestHandler(t *testing.T, store domrepo.SignalStore) *SignalsEchoHandler {
	t.Helper()
	lgr, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	analyzer := usecase.NewAnalyzer(stubPriceFeed{}, stubNewsFeed{}, sentiment.NewAnalyzer(), usecase.NewScorer(nil), lgr, 10, 24*time.Hour)
	mem := cache.NewMemoryCache()
	refresher := usecase.NewRefresher(usecase.RefresherConfig{
		Symbols:    []string{"AAPL"},
		Timeframes: []domrepo.Timeframe{domrepo.TF1h},
		RunTimeout: 5 * time.Second,
	}, analyzer, store, mem, nil, noopMetrics{}, lgr)
	reader := usecase.NewSignalReader(store, mem, lgr)
	return NewSignalsEchoHandler(lgr, reader, refresher)
}

type noopMetrics struct{}

func (noopMetrics) RecordRefresh(string, string, string)      {}
func (noopMetrics) RecordError(string)                        {}
func (noopMetrics) RecordLastPrice(string, float64)           {}
func (noopMetrics) RecordHybridScore(string, string, float64) {}
func (noopMetrics) RecordLatency(string, float64)             {}

func seedRecord(t *testing.T, store domrepo.SignalStore, symbol string, tf domrepo.Timeframe) {
	t.Helper()
	now := time.Now()
	require.NoError(t, store.Upsert(context.Background(), &models.SignalRecord{
		Symbol:        symbol,
		Timeframe:     string(tf),
		Summary:       symbol + " seeded",
		LastUpdatedAt: now,
		NextUpdateAt:  now.Add(time.Hour),
	}))
}

func doRequest(h *SignalsEchoHandler, method, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthOK(t *testing.T) {
	h := newTestHandler(t, repository.NewMemorySignalStore())
	rec := doRequest(h, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := envelope(t, rec)
	assert.Equal(t, float64(200), body["status"])
}

func TestGetSignalNotFound(t *testing.T) {
	h := newTestHandler(t, repository.NewMemorySignalStore())
	rec := doRequest(h, http.MethodGet, "/api/signals/UNKNOWN")

	body := envelope(t, rec)
	assert.Equal(t, float64(404), body["status"])
}

func TestGetSignalFound(t *testing.T) {
	store := repository.NewMemorySignalStore()
	seedRecord(t, store, "AAPL", domrepo.TF1h)
	h := newTestHandler(t, store)

	rec := doRequest(h, http.MethodGet, "/api/signals/AAPL?timeframe=1h")

	body := envelope(t, rec)
	require.Equal(t, float64(200), body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "AAPL", data["symbol"])
	assert.Equal(t, "public, max-age=30", rec.Header().Get(echo.HeaderCacheControl))
}

func TestGetSignalRejectsBadTimeframe(t *testing.T) {
	h := newTestHandler(t, repository.NewMemorySignalStore())
	rec := doRequest(h, http.MethodGet, "/api/signals/AAPL?timeframe=2h")

	body := envelope(t, rec)
	assert.Equal(t, float64(400), body["status"])
}

func TestListSignals(t *testing.T) {
	store := repository.NewMemorySignalStore()
	seedRecord(t, store, "MSFT", domrepo.TF1h)
	seedRecord(t, store, "AAPL", domrepo.TF1h)
	seedRecord(t, store, "GOOG", domrepo.TF4h)
	h := newTestHandler(t, store)

	rec := doRequest(h, http.MethodGet, "/api/signals?timeframe=1h")

	body := envelope(t, rec)
	require.Equal(t, float64(200), body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
	rows := data["rows"].([]interface{})
	require.Len(t, rows, 2)
	assert.Equal(t, "AAPL", rows[0].(map[string]interface{})["symbol"])
}

func TestListSignalsServedFromResponseCache(t *testing.T) {
	store := repository.NewMemorySignalStore()
	seedRecord(t, store, "AAPL", domrepo.TF1h)
	h := newTestHandler(t, store)
	counter := &countingBytesCache{BytesCache: icache.NewTTLCache()}
	h.SetResponseCache(counter)

	first := doRequest(h, http.MethodGet, "/api/signals")
	second := doRequest(h, http.MethodGet, "/api/signals")

	assert.Equal(t, 1, counter.misses)
	assert.Equal(t, 1, counter.hits)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestRefreshDirect(t *testing.T) {
	store := repository.NewMemorySignalStore()
	h := newTestHandler(t, store)

	rec := doRequest(h, http.MethodPost, "/api/signals/AAPL/refresh")

	body := envelope(t, rec)
	require.Equal(t, float64(200), body["status"])

	stored, err := store.Get(context.Background(), "AAPL", domrepo.TF1h)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", stored.Symbol)
}

func TestRefreshEnqueuesWhenQueueSet(t *testing.T) {
	store := repository.NewMemorySignalStore()
	h := newTestHandler(t, store)
	q := &stubQueue{}
	h.SetQueue(q)

	rec := doRequest(h, http.MethodPost, "/api/signals/AAPL/refresh?force=true")

	body := envelope(t, rec)
	assert.Equal(t, float64(202), body["status"])
	require.Len(t, q.messages, 1)
	assert.Equal(t, usecase.RefreshJobType, q.messages[0])

	// nothing computed synchronously
	_, err := store.Get(context.Background(), "AAPL", domrepo.TF1h)
	assert.ErrorIs(t, err, models.ErrSignalNotFound)
}

func TestRefreshRateLimited(t *testing.T) {
	store := repository.NewMemorySignalStore()
	h := newTestHandler(t, store)
	q := &stubQueue{}
	h.SetQueue(q)

	var limited bool
	for i := 0; i < 5; i++ {
		rec := doRequest(h, http.MethodPost, "/api/signals/AAPL/refresh")
		if envelope(t, rec)["status"] == float64(429) {
			limited = true
		}
	}
	assert.True(t, limited, "burst beyond the bucket must be rejected")
	assert.LessOrEqual(t, len(q.messages), 3)
}
