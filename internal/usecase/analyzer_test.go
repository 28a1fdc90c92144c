package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"stocklens/internal/domain/models"
	drepo "stocklens/internal/domain/repository"
	"stocklens/internal/services/sentiment"
	"stocklens/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePriceFeed struct {
	series models.PriceSeries
	err    error
	calls  int32
}

func (f *fakePriceFeed) FetchSeries(_ context.Context, _ string, _ drepo.Timeframe) (models.PriceSeries, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

type fakeNewsFeed struct {
	items []models.NewsItem
	err   error
	calls int32
}

func (f *fakeNewsFeed) FetchNews(_ context.Context, _ string, _ int) ([]models.NewsItem, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return l
}

func trendingSeries(n int, start, step float64) models.PriceSeries {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.PriceSeries, n)
	price := start
	for i := range s {
		s[i] = models.Bar{
			Time:   t0.Add(time.Duration(i) * time.Hour),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 500,
		}
		price += step
	}
	return s
}

func flatPriceSeries(n int, price float64) models.PriceSeries {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.PriceSeries, n)
	for i := range s {
		s[i] = models.Bar{Time: t0.Add(time.Duration(i) * time.Hour), Open: price, High: price, Low: price, Close: price}
	}
	return s
}

func newTestAnalyzer(t *testing.T, prices *fakePriceFeed, news *fakeNewsFeed) *Analyzer {
	t.Helper()
	return NewAnalyzer(prices, news, sentiment.NewAnalyzer(), NewScorer(nil), newTestLogger(t), 10, 24*time.Hour)
}

func TestAnalyzeFeedUnavailable(t *testing.T) {
	prices := &fakePriceFeed{err: errors.New("connection refused")}
	a := newTestAnalyzer(t, prices, &fakeNewsFeed{})

	_, err := a.Analyze(context.Background(), "AAPL", drepo.TF1h, nil)
	assert.ErrorIs(t, err, models.ErrFeedUnavailable)
}

func TestAnalyzeInsufficientData(t *testing.T) {
	prices := &fakePriceFeed{series: trendingSeries(10, 100, 1)}
	a := newTestAnalyzer(t, prices, &fakeNewsFeed{})

	_, err := a.Analyze(context.Background(), "AAPL", drepo.TF1h, nil)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestAnalyzeHappyPath(t *testing.T) {
	prices := &fakePriceFeed{series: trendingSeries(60, 100, 0.5)}
	news := &fakeNewsFeed{items: []models.NewsItem{{Title: "Shares rally on record growth"}}}
	a := newTestAnalyzer(t, prices, news)

	rec, err := a.Analyze(context.Background(), "AAPL", drepo.TF1h, nil)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", rec.Symbol)
	assert.Equal(t, "1h", rec.Timeframe)
	assert.Equal(t, models.AssetStock, rec.AssetClass)
	assert.NotNil(t, rec.Indicators.RSI)
	assert.NotNil(t, rec.Indicators.ATR)
	assert.Equal(t, 1, rec.Sentiment.NewsCount)
	assert.NotEmpty(t, rec.Summary)
	assert.NotNil(t, rec.Window)
	assert.True(t, rec.LastUpdatedAt.IsZero(), "timestamps are stamped on commit")

	// hybrid score stays inside the partition domain
	assert.GreaterOrEqual(t, rec.Hybrid.HybridScore, 0.0)
	assert.LessOrEqual(t, rec.Hybrid.HybridScore, 100.0)
}

func TestAnalyzeFlatSeriesHasNoTradePlan(t *testing.T) {
	prices := &fakePriceFeed{series: flatPriceSeries(60, 100)}
	a := newTestAnalyzer(t, prices, &fakeNewsFeed{})

	rec, err := a.Analyze(context.Background(), "AAPL", drepo.TF1h, nil)
	require.NoError(t, err)

	// zero ATR must never yield an entry equal to its stop
	assert.Equal(t, models.DirectionNone, rec.Plan.Direction)
	assert.Nil(t, rec.Plan.Entry)
	assert.Nil(t, rec.Plan.StopLoss)
	assert.Nil(t, rec.Plan.RiskReward)
}

func TestAnalyzeEmptyNewsIsNeutral(t *testing.T) {
	prices := &fakePriceFeed{series: trendingSeries(60, 100, 0.5)}
	a := newTestAnalyzer(t, prices, &fakeNewsFeed{})

	rec, err := a.Analyze(context.Background(), "AAPL", drepo.TF1h, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, rec.Sentiment.NewsCount)
	assert.Equal(t, models.SentimentNeutral, rec.Sentiment.Label)
	// neutral sentiment remaps to 50, weighted at 0.4
	assert.InDelta(t, 0.6*rec.Hybrid.TechnicalScore+20, rec.Hybrid.HybridScore, 1e-9)
}

func TestAnalyzeNewsFailureDegradesToNeutral(t *testing.T) {
	prices := &fakePriceFeed{series: trendingSeries(60, 100, 0.5)}
	news := &fakeNewsFeed{err: errors.New("quota exhausted")}
	a := newTestAnalyzer(t, prices, news)

	rec, err := a.Analyze(context.Background(), "AAPL", drepo.TF1h, nil)
	require.NoError(t, err, "news outage must not fail the pipeline")
	assert.Equal(t, models.SentimentNeutral, rec.Sentiment.Label)
	assert.Equal(t, 0, rec.Sentiment.NewsCount)
}

func TestAnalyzeReusesFreshSentiment(t *testing.T) {
	prices := &fakePriceFeed{series: trendingSeries(60, 100, 0.5)}
	news := &fakeNewsFeed{items: []models.NewsItem{{Title: "irrelevant"}}}
	a := newTestAnalyzer(t, prices, news)

	prior := &models.SignalRecord{
		Sentiment: models.SentimentSnapshot{
			Score:     0.4,
			Label:     models.SentimentPositive,
			NewsCount: 5,
			FetchedAt: time.Now().Add(-time.Hour),
		},
	}

	rec, err := a.Analyze(context.Background(), "AAPL", drepo.TF1h, prior)
	require.NoError(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&news.calls), "fresh snapshot skips the feed")
	assert.Equal(t, prior.Sentiment, rec.Sentiment)
}

func TestAnalyzeRefetchesStaleSentiment(t *testing.T) {
	prices := &fakePriceFeed{series: trendingSeries(60, 100, 0.5)}
	news := &fakeNewsFeed{items: []models.NewsItem{{Title: "Shares rally"}}}
	a := newTestAnalyzer(t, prices, news)

	prior := &models.SignalRecord{
		Sentiment: models.SentimentSnapshot{
			NewsCount: 5,
			FetchedAt: time.Now().Add(-48 * time.Hour),
		},
	}

	_, err := a.Analyze(context.Background(), "AAPL", drepo.TF1h, prior)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&news.calls))
}

func TestAnalyzeSortsSeries(t *testing.T) {
	series := trendingSeries(60, 100, 0.5)
	// reverse into descending order
	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}
	prices := &fakePriceFeed{series: series}
	a := newTestAnalyzer(t, prices, &fakeNewsFeed{})

	rec, err := a.Analyze(context.Background(), "AAPL", drepo.TF1h, nil)
	require.NoError(t, err)
	// chronologically last close, not the slice's last element pre-sort
	assert.InDelta(t, 100+0.5*59, rec.Indicators.Price, 1e-9)
}

func TestAnalyzeClassifiesForex(t *testing.T) {
	prices := &fakePriceFeed{series: trendingSeries(60, 1.10, 0.001)}
	a := newTestAnalyzer(t, prices, &fakeNewsFeed{})

	rec, err := a.Analyze(context.Background(), "EURUSD", drepo.TF1h, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AssetForex, rec.AssetClass)
}
