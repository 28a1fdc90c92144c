package usecase

import (
	"testing"

	"stocklens/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildSummaryMinimalRecord(t *testing.T) {
	rec := &models.SignalRecord{
		Symbol:    "AAPL",
		Timeframe: "1h",
		Hybrid:    models.HybridResult{HybridScore: 50, Verdict: models.VerdictHold},
	}
	s := BuildSummary(rec)

	assert.Contains(t, s, "AAPL (1h)")
	assert.Contains(t, s, "No recent news coverage.")
	assert.Contains(t, s, "No trade setup at current volatility.")
	assert.Contains(t, s, "hold")
	assert.NotContains(t, s, "RSI")
}

func TestBuildSummaryFullRecord(t *testing.T) {
	rsi := 28.5
	entry, stop, tp1, tp2, rr := 100.0, 96.0, 103.0, 106.0, 1.5
	rec := &models.SignalRecord{
		Symbol:    "EURUSD",
		Timeframe: "4h",
		Indicators: models.IndicatorSnapshot{
			Price:     100,
			RSI:       &rsi,
			RSIZone:   models.ZoneOversold,
			MACDTrend: models.TrendBullish,
		},
		Sentiment: models.SentimentSnapshot{Label: models.SentimentPositive, NewsCount: 4},
		Hybrid:    models.HybridResult{HybridScore: 82, Verdict: models.VerdictStrongBuy, Confidence: 64},
		Plan: models.TradePlan{
			Direction:   models.DirectionLong,
			Entry:       &entry,
			StopLoss:    &stop,
			TakeProfit1: &tp1,
			TakeProfit2: &tp2,
			RiskReward:  &rr,
		},
	}
	s := BuildSummary(rec)

	assert.Contains(t, s, "RSI 28.5 (oversold)")
	assert.Contains(t, s, "bullish MACD momentum")
	assert.Contains(t, s, "positive across 4 articles")
	assert.Contains(t, s, "strong buy")
	assert.Contains(t, s, "Suggested LONG")
	assert.Contains(t, s, "R:R 1.50")
}
