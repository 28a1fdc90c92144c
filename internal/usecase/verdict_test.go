package usecase

import (
	"testing"

	"stocklens/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestVerdictForPartition(t *testing.T) {
	cases := []struct {
		score float64
		want  models.Verdict
	}{
		{0, models.VerdictStrongSell},
		{19.99, models.VerdictStrongSell},
		{20, models.VerdictSell},
		{39.99, models.VerdictSell},
		{40, models.VerdictHold},
		{59.99, models.VerdictHold},
		{60, models.VerdictBuy},
		{79.99, models.VerdictBuy},
		{80, models.VerdictStrongBuy},
		{100, models.VerdictStrongBuy},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, VerdictFor(tc.score), "score %.2f", tc.score)
	}
}

func TestVerdictCoversEveryScore(t *testing.T) {
	for s := 0.0; s <= 100.0; s += 0.25 {
		v := VerdictFor(s)
		assert.Contains(t, []models.Verdict{
			models.VerdictStrongBuy, models.VerdictBuy, models.VerdictHold,
			models.VerdictSell, models.VerdictStrongSell,
		}, v, "score %.2f", s)
	}
}

func TestFuseWeights(t *testing.T) {
	s := NewScorer(nil)

	// neutral sentiment contributes 0.4*50 = 20
	res := s.Fuse(50, 0)
	assert.InDelta(t, 50.0, res.HybridScore, 1e-9)
	assert.Equal(t, models.VerdictHold, res.Verdict)
	assert.InDelta(t, 0.0, res.Confidence, 1e-9)

	// maximum everything
	res = s.Fuse(100, 1)
	assert.InDelta(t, 100.0, res.HybridScore, 1e-9)
	assert.Equal(t, models.VerdictStrongBuy, res.Verdict)
	assert.InDelta(t, 100.0, res.Confidence, 1e-9)

	// minimum everything
	res = s.Fuse(0, -1)
	assert.InDelta(t, 0.0, res.HybridScore, 1e-9)
	assert.Equal(t, models.VerdictStrongSell, res.Verdict)
	assert.InDelta(t, 100.0, res.Confidence, 1e-9)
}

func TestFuseSentimentRemap(t *testing.T) {
	s := NewScorer(nil)
	res := s.Fuse(70, 0.5)
	assert.InDelta(t, 75.0, res.SentimentScore, 1e-9)
	assert.InDelta(t, 0.6*70+0.4*75, res.HybridScore, 1e-9)
}

func TestTechnicalScoreNeutral(t *testing.T) {
	s := NewScorer(nil)
	rsi := 50.0
	snap := models.IndicatorSnapshot{Price: 100, RSI: &rsi, MACDTrend: models.TrendNeutral}
	assert.InDelta(t, 50.0, s.TechnicalScore(snap), 1e-9)
}

func TestTechnicalScoreBullishAlignment(t *testing.T) {
	s := NewScorer(nil)
	rsi := 25.0
	sma20, sma50 := 95.0, 90.0
	snap := models.IndicatorSnapshot{
		Price:     100,
		RSI:       &rsi,
		SMA20:     &sma20,
		SMA50:     &sma50,
		MACDTrend: models.TrendBullish,
	}
	// 50 + 25*0.4 + 15 + 7.5 + 7.5 = 90
	assert.InDelta(t, 90.0, s.TechnicalScore(snap), 1e-9)
}

func TestTechnicalScoreClamped(t *testing.T) {
	s := NewScorer(nil)
	rsi := 0.0
	sma20, sma50 := 1.0, 1.0
	snap := models.IndicatorSnapshot{
		Price: 100, RSI: &rsi, SMA20: &sma20, SMA50: &sma50, MACDTrend: models.TrendBullish,
	}
	assert.Equal(t, 100.0, s.TechnicalScore(snap))

	rsi = 100.0
	sma20, sma50 = 200.0, 200.0
	snap.MACDTrend = models.TrendBearish
	assert.Equal(t, 0.0, s.TechnicalScore(snap))
}

func TestDirectionForDefaultBias(t *testing.T) {
	s := NewScorer(nil)

	assert.Equal(t, models.DirectionLong, s.DirectionFor(models.VerdictBuy, models.ZoneOversold))
	assert.Equal(t, models.DirectionLong, s.DirectionFor(models.VerdictStrongBuy, models.ZoneNeutral))
	assert.Equal(t, models.DirectionShort, s.DirectionFor(models.VerdictSell, models.ZoneOverbought))
	assert.Equal(t, models.DirectionShort, s.DirectionFor(models.VerdictStrongSell, models.ZoneNeutral))

	// buying into overbought and selling into oversold are blocked
	assert.Equal(t, models.DirectionNone, s.DirectionFor(models.VerdictBuy, models.ZoneOverbought))
	assert.Equal(t, models.DirectionNone, s.DirectionFor(models.VerdictSell, models.ZoneOversold))

	// HOLD never trades
	assert.Equal(t, models.DirectionNone, s.DirectionFor(models.VerdictHold, models.ZoneNeutral))
}

func TestDirectionForCustomBias(t *testing.T) {
	// long-only book
	s := NewScorer(BiasPolicy{
		models.ZoneOversold:   {models.DirectionLong},
		models.ZoneNeutral:    {models.DirectionLong},
		models.ZoneOverbought: {},
	})

	assert.Equal(t, models.DirectionLong, s.DirectionFor(models.VerdictBuy, models.ZoneNeutral))
	assert.Equal(t, models.DirectionNone, s.DirectionFor(models.VerdictSell, models.ZoneNeutral))
	assert.Equal(t, models.DirectionNone, s.DirectionFor(models.VerdictBuy, models.ZoneOverbought))
}

func TestConfidenceScalesWithDistance(t *testing.T) {
	s := NewScorer(nil)
	near := s.Fuse(55, 0)
	far := s.Fuse(90, 0.8)
	assert.Less(t, near.Confidence, far.Confidence)
	assert.LessOrEqual(t, far.Confidence, 100.0)
}
