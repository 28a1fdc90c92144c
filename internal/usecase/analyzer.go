package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stocklens/internal/domain/models"
	drepo "stocklens/internal/domain/repository"
	domsvc "stocklens/internal/domain/service"
	"stocklens/internal/services/indicators"
	"stocklens/pkg/logger"
)

// minBars is the shortest series that can produce a record at all
// (one RSI window plus the seed bar). Longer indicators stay nil.
const minBars = indicators.RSIPeriod + 1

// Analyzer runs the full analysis pipeline for one (symbol, timeframe):
// fetch series and news, compute indicators and sentiment, derive the
// trade plan and the hybrid verdict.
type Analyzer struct {
	prices     drepo.PriceFeed
	news       drepo.NewsFeed
	sentiment  domsvc.SentimentAnalyzer
	scorer     *Scorer
	logger     *logger.Logger
	newsLimit  int
	newsMaxAge time.Duration
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(
	prices drepo.PriceFeed,
	news drepo.NewsFeed,
	sentiment domsvc.SentimentAnalyzer,
	scorer *Scorer,
	lgr *logger.Logger,
	newsLimit int,
	newsMaxAge time.Duration,
) *Analyzer {
	if newsLimit <= 0 {
		newsLimit = 10
	}
	if newsMaxAge <= 0 {
		newsMaxAge = 24 * time.Hour
	}
	return &Analyzer{
		prices:     prices,
		news:       news,
		sentiment:  sentiment,
		scorer:     scorer,
		logger:     lgr,
		newsLimit:  newsLimit,
		newsMaxAge: newsMaxAge,
	}
}

// Analyze computes a fresh SignalRecord. prior may carry a reusable
// sentiment snapshot from the previous refresh; pass nil when absent.
// The returned record has zero Last/NextUpdateAt; the caller stamps them
// on commit.
func (a *Analyzer) Analyze(ctx context.Context, symbol string, tf drepo.Timeframe, prior *models.SignalRecord) (*models.SignalRecord, error) {
	series, err := a.prices.FetchSeries(ctx, symbol, tf)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch series %s/%s: %v", models.ErrFeedUnavailable, symbol, tf, err)
	}
	if len(series) < minBars {
		return nil, fmt.Errorf("%w: %s/%s has %d bars, need %d", models.ErrInsufficientData, symbol, tf, len(series), minBars)
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })

	snap := indicators.Compute(series)
	if !indicators.Valid(snap) {
		return nil, fmt.Errorf("%w: %s/%s produced non-finite indicators", models.ErrComputationInvalid, symbol, tf)
	}

	sent := a.collectSentiment(ctx, symbol, prior)

	tech := a.scorer.TechnicalScore(snap)
	hybrid := a.scorer.Fuse(tech, sent.Score)
	direction := a.scorer.DirectionFor(hybrid.Verdict, snap.RSIZone)
	plan := BuildTradePlan(snap.Price, snap.ATR, direction)

	rec := &models.SignalRecord{
		Symbol:     symbol,
		Timeframe:  string(tf),
		AssetClass: models.ClassifySymbol(symbol),
		Indicators: snap,
		Sentiment:  sent,
		Plan:       plan,
		Hybrid:     hybrid,
		Window:     series.Window24h(barsPerDay(tf)),
	}
	rec.Summary = BuildSummary(rec)
	return rec, nil
}

// collectSentiment reuses the prior snapshot while it is younger than the
// news window, otherwise fetches fresh news. A feed failure degrades to
// the neutral snapshot and never fails the pipeline.
func (a *Analyzer) collectSentiment(ctx context.Context, symbol string, prior *models.SignalRecord) models.SentimentSnapshot {
	if prior != nil && prior.Sentiment.NewsCount > 0 && time.Since(prior.Sentiment.FetchedAt) < a.newsMaxAge {
		return prior.Sentiment
	}

	items, err := a.news.FetchNews(ctx, symbol, a.newsLimit)
	if err != nil {
		a.logger.Warn("news fetch failed, using neutral sentiment",
			logger.String("symbol", symbol),
			logger.Error(err))
		return a.sentiment.Analyze(nil)
	}
	return a.sentiment.Analyze(items)
}

func barsPerDay(tf drepo.Timeframe) int {
	switch tf {
	case drepo.TF15m:
		return 96
	case drepo.TF1h:
		return 24
	case drepo.TF4h:
		return 6
	case drepo.TF1d:
		return 1
	default:
		return 24
	}
}
