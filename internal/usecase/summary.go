package usecase

import (
	"fmt"
	"strings"

	"stocklens/internal/domain/models"
)

// BuildSummary composes a plain-language description of the record for the
// UI layer.
func BuildSummary(rec *models.SignalRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s) trades at %.4f.", rec.Symbol, rec.Timeframe, rec.Indicators.Price)

	if rec.Indicators.RSI != nil {
		fmt.Fprintf(&b, " RSI %.1f (%s)", *rec.Indicators.RSI, strings.ToLower(string(rec.Indicators.RSIZone)))
		if rec.Indicators.MACDTrend != models.TrendNeutral {
			fmt.Fprintf(&b, " with %s MACD momentum", strings.ToLower(string(rec.Indicators.MACDTrend)))
		}
		b.WriteString(".")
	}

	if rec.Sentiment.NewsCount > 0 {
		fmt.Fprintf(&b, " News flow is %s across %d articles.",
			strings.ToLower(string(rec.Sentiment.Label)), rec.Sentiment.NewsCount)
	} else {
		b.WriteString(" No recent news coverage.")
	}

	fmt.Fprintf(&b, " Hybrid score %.0f/100: %s (confidence %.0f%%).",
		rec.Hybrid.HybridScore, verdictText(rec.Hybrid.Verdict), rec.Hybrid.Confidence)

	if rec.Plan.Direction != models.DirectionNone && rec.Plan.Entry != nil {
		fmt.Fprintf(&b, " Suggested %s: entry %.4f, stop %.4f, targets %.4f / %.4f (R:R %.2f).",
			rec.Plan.Direction, *rec.Plan.Entry, *rec.Plan.StopLoss,
			*rec.Plan.TakeProfit1, *rec.Plan.TakeProfit2, *rec.Plan.RiskReward)
	} else {
		b.WriteString(" No trade setup at current volatility.")
	}

	return b.String()
}

func verdictText(v models.Verdict) string {
	return strings.ToLower(strings.ReplaceAll(string(v), "_", " "))
}
