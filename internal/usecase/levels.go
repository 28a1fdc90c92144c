package usecase

import (
	"math"

	"stocklens/internal/domain/models"
)

const (
	stopLossATRMult    = 2.0
	takeProfit1ATRMult = 1.5
	takeProfit2ATRMult = 3.0
)

// BuildTradePlan derives ATR-based money-management levels for a direction.
// A nil or non-positive ATR yields a NONE plan with all levels nil, so a
// flat series can never produce an entry equal to its stop.
func BuildTradePlan(price float64, atr *float64, direction models.Direction) models.TradePlan {
	if direction == models.DirectionNone || atr == nil || *atr <= 0 {
		return models.TradePlan{Direction: models.DirectionNone}
	}

	entry := price
	var stop, tp1, tp2 float64
	switch direction {
	case models.DirectionLong:
		stop = entry - stopLossATRMult**atr
		tp1 = entry + takeProfit1ATRMult**atr
		tp2 = entry + takeProfit2ATRMult**atr
	case models.DirectionShort:
		stop = entry + stopLossATRMult**atr
		tp1 = entry - takeProfit1ATRMult**atr
		tp2 = entry - takeProfit2ATRMult**atr
	default:
		return models.TradePlan{Direction: models.DirectionNone}
	}

	risk := math.Abs(entry - stop)
	reward := math.Abs(tp2 - entry)
	rr := round2(reward / risk)

	return models.TradePlan{
		Direction:   direction,
		Entry:       &entry,
		StopLoss:    &stop,
		TakeProfit1: &tp1,
		TakeProfit2: &tp2,
		RiskReward:  &rr,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
