package usecase

import (
	"math"

	"stocklens/internal/domain/models"
)

// Hybrid weighting between the technical and sentiment sub-scores.
const (
	technicalWeight = 0.6
	sentimentWeight = 0.4
)

// Verdict partition thresholds, checked in descending order so every
// score maps to exactly one verdict.
const (
	strongBuyThreshold = 80.0
	buyThreshold       = 60.0
	holdThreshold      = 40.0
	sellThreshold      = 20.0
)

// BiasPolicy maps an RSI zone to the trade directions it permits.
type BiasPolicy map[models.RSIZone][]models.Direction

// DefaultBiasPolicy allows longs out of oversold, shorts out of
// overbought, and either from the neutral zone.
func DefaultBiasPolicy() BiasPolicy {
	return BiasPolicy{
		models.ZoneOversold:   {models.DirectionLong},
		models.ZoneOverbought: {models.DirectionShort},
		models.ZoneNeutral:    {models.DirectionLong, models.DirectionShort},
	}
}

// Permits reports whether the zone allows the direction.
func (p BiasPolicy) Permits(zone models.RSIZone, dir models.Direction) bool {
	for _, d := range p[zone] {
		if d == dir {
			return true
		}
	}
	return false
}

// Scorer fuses technical indicators and news sentiment into a hybrid
// verdict. Stateless and deterministic.
type Scorer struct {
	bias BiasPolicy
}

// NewScorer creates a scorer with the given bias policy (nil for default).
func NewScorer(bias BiasPolicy) *Scorer {
	if bias == nil {
		bias = DefaultBiasPolicy()
	}
	return &Scorer{bias: bias}
}

// TechnicalScore maps the indicator snapshot onto [0, 100]. A neutral
// snapshot scores 50; oversold RSI, bullish MACD and price above the
// moving averages push the score up.
func (s *Scorer) TechnicalScore(snap models.IndicatorSnapshot) float64 {
	score := 50.0

	if snap.RSI != nil {
		// contrarian: distance below the 50 midline is bullish
		score += (50 - *snap.RSI) * 0.4
	}

	switch snap.MACDTrend {
	case models.TrendBullish:
		score += 15
	case models.TrendBearish:
		score -= 15
	}

	if snap.SMA20 != nil {
		if snap.Price > *snap.SMA20 {
			score += 7.5
		} else if snap.Price < *snap.SMA20 {
			score -= 7.5
		}
	}
	if snap.SMA50 != nil {
		if snap.Price > *snap.SMA50 {
			score += 7.5
		} else if snap.Price < *snap.SMA50 {
			score -= 7.5
		}
	}

	return clamp(score, 0, 100)
}

// Fuse combines the technical sub-score with a sentiment score in [-1, 1].
func (s *Scorer) Fuse(technical, sentiment float64) models.HybridResult {
	sentScore := (sentiment + 1) * 50 // remap [-1,1] onto [0,100]
	hybrid := clamp(technicalWeight*technical+sentimentWeight*sentScore, 0, 100)

	return models.HybridResult{
		TechnicalScore: technical,
		SentimentScore: sentScore,
		HybridScore:    hybrid,
		Verdict:        VerdictFor(hybrid),
		Confidence:     math.Min(100, math.Abs(hybrid-50)*2),
	}
}

// VerdictFor partitions a hybrid score into a verdict.
func VerdictFor(score float64) models.Verdict {
	switch {
	case score >= strongBuyThreshold:
		return models.VerdictStrongBuy
	case score >= buyThreshold:
		return models.VerdictBuy
	case score >= holdThreshold:
		return models.VerdictHold
	case score >= sellThreshold:
		return models.VerdictSell
	default:
		return models.VerdictStrongSell
	}
}

// DirectionFor resolves the trade direction from the verdict and RSI zone.
func (s *Scorer) DirectionFor(verdict models.Verdict, zone models.RSIZone) models.Direction {
	switch verdict {
	case models.VerdictBuy, models.VerdictStrongBuy:
		if s.bias.Permits(zone, models.DirectionLong) {
			return models.DirectionLong
		}
	case models.VerdictSell, models.VerdictStrongSell:
		if s.bias.Permits(zone, models.DirectionShort) {
			return models.DirectionShort
		}
	}
	return models.DirectionNone
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
