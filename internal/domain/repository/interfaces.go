package repository

import (
	"context"

	"stocklens/internal/domain/models"
)

// PriceFeed fetches OHLC series from the market data provider.
type PriceFeed interface {
	FetchSeries(ctx context.Context, symbol string, tf Timeframe) (models.PriceSeries, error)
}

// NewsFeed fetches recent news documents for a symbol.
type NewsFeed interface {
	FetchNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error)
}

// SignalStore persists one SignalRecord per (symbol, timeframe).
type SignalStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Upsert(ctx context.Context, record *models.SignalRecord) error
	Get(ctx context.Context, symbol string, tf Timeframe) (*models.SignalRecord, error)
	List(ctx context.Context, tf Timeframe) ([]*models.SignalRecord, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Publisher emits signal-updated events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event *models.SignalEvent) error
	Close() error
}

// MarketStream is a live trade stream (websocket).
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, symbols []string) error
	Read(ctx context.Context) (<-chan *models.Trade, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Metrics interface {
	RecordRefresh(symbol, timeframe, result string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordHybridScore(symbol, timeframe string, score float64)
	RecordLatency(op string, seconds float64)
}
