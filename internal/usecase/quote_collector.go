package usecase

import (
	"context"
	"time"

	"stocklens/internal/domain/models"
	drepo "stocklens/internal/domain/repository"
	mid "stocklens/internal/middleware"
	"stocklens/pkg/cache"
)

// QuoteCollector consumes the live trade stream and keeps the last price
// per symbol in cache and metrics between batch refreshes. Stream data
// never mutates stored signal records.
type QuoteCollector struct {
	stream  drepo.MarketStream
	cache   cache.Service
	metrics drepo.Metrics
	pipe    *mid.QuotePipeline
	symbols []string
}

// NewQuoteCollector creates a new QuoteCollector instance.
func NewQuoteCollector(stream drepo.MarketStream, c cache.Service, metrics drepo.Metrics, pipe *mid.QuotePipeline, symbols []string) *QuoteCollector {
	return &QuoteCollector{stream: stream, cache: c, metrics: metrics, pipe: pipe, symbols: symbols}
}

// SetPipeline attaches the throttling pipeline. The pipeline's processor
// is the collector itself, so it is attached after construction.
func (c *QuoteCollector) SetPipeline(p *mid.QuotePipeline) { c.pipe = p }

// IsConnected returns true if the market stream is connected.
func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx, c.symbols); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	trCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, trCh, errCh)
	return nil
}

func (c *QuoteCollector) consume(ctx context.Context, trCh <-chan *models.Trade, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case t := <-trCh:
			if t == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, t)
			} else {
				_ = c.Process(ctx, t)
			}
		}
	}
}

// Process records a single trade in the quote cache and metrics.
func (c *QuoteCollector) Process(ctx context.Context, t *models.Trade) error {
	c.metrics.RecordLastPrice(t.Symbol, t.Price)
	return c.cache.Set(ctx, cache.GenerateKey("quote", t.Symbol), t, 5*time.Minute)
}

// Shutdown stops pipeline and closes stream.
func (c *QuoteCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
