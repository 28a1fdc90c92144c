package models

import "time"

// RSIZone classifies the RSI value.
type RSIZone string

const (
	ZoneOversold   RSIZone = "OVERSOLD"
	ZoneNeutral    RSIZone = "NEUTRAL"
	ZoneOverbought RSIZone = "OVERBOUGHT"
)

// MACDTrend labels the MACD histogram behavior.
type MACDTrend string

const (
	TrendBullish MACDTrend = "BULLISH"
	TrendBearish MACDTrend = "BEARISH"
	TrendNeutral MACDTrend = "NEUTRAL"
)

// SentimentLabel classifies an aggregated sentiment score.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// Verdict is the final trading recommendation.
type Verdict string

const (
	VerdictStrongBuy  Verdict = "STRONG_BUY"
	VerdictBuy        Verdict = "BUY"
	VerdictHold       Verdict = "HOLD"
	VerdictSell       Verdict = "SELL"
	VerdictStrongSell Verdict = "STRONG_SELL"
)

// Direction is the suggested trade direction.
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
	DirectionNone  Direction = "NONE"
)

// IndicatorSnapshot holds computed technical indicators. Pointer fields are
// nil while the series is shorter than the indicator warm-up.
type IndicatorSnapshot struct {
	Price         float64   `json:"price"`
	RSI           *float64  `json:"rsi"`
	RSIZone       RSIZone   `json:"rsi_zone"`
	SMA20         *float64  `json:"sma20"`
	SMA50         *float64  `json:"sma50"`
	ATR           *float64  `json:"atr"`
	MACDLine      *float64  `json:"macd_line"`
	MACDSignal    *float64  `json:"macd_signal"`
	MACDHistogram *float64  `json:"macd_histogram"`
	MACDTrend     MACDTrend `json:"macd_trend"`
}

// SentimentSnapshot holds aggregated news sentiment for a symbol.
type SentimentSnapshot struct {
	Score     float64        `json:"score"`
	Label     SentimentLabel `json:"label"`
	NewsCount int            `json:"news_count"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// TradePlan holds ATR-derived money-management levels. All level fields are
// nil when Direction is NONE.
type TradePlan struct {
	Direction   Direction `json:"direction"`
	Entry       *float64  `json:"entry"`
	StopLoss    *float64  `json:"stop_loss"`
	TakeProfit1 *float64  `json:"take_profit_1"`
	TakeProfit2 *float64  `json:"take_profit_2"`
	RiskReward  *float64  `json:"risk_reward"`
}

// HybridResult is the fused technical + sentiment outcome.
type HybridResult struct {
	TechnicalScore float64 `json:"technical_score"`
	SentimentScore float64 `json:"sentiment_score"`
	HybridScore    float64 `json:"hybrid_score"`
	Verdict        Verdict `json:"verdict"`
	Confidence     float64 `json:"confidence"`
}

// SignalRecord is the persisted unit: one full analysis per (symbol, timeframe).
type SignalRecord struct {
	Symbol     string     `json:"symbol"`
	Timeframe  string     `json:"timeframe"`
	AssetClass AssetClass `json:"asset_class"`

	Indicators IndicatorSnapshot `json:"indicators"`
	Sentiment  SentimentSnapshot `json:"sentiment"`
	Plan       TradePlan         `json:"plan"`
	Hybrid     HybridResult      `json:"hybrid"`
	Window     *Context24h       `json:"window_24h"`
	Summary    string            `json:"summary"`

	LastUpdatedAt time.Time `json:"last_updated_at"`
	NextUpdateAt  time.Time `json:"next_update_at"`
}

// Key returns the composite identity of the record.
func (r *SignalRecord) Key() string {
	return r.Symbol + ":" + r.Timeframe
}

// IsFresh reports whether the record does not need a refresh at now.
func (r *SignalRecord) IsFresh(now time.Time) bool {
	return now.Before(r.NextUpdateAt)
}

// SignalEvent is published to Kafka after each successful upsert.
type SignalEvent struct {
	Symbol        string    `json:"symbol"`
	Timeframe     string    `json:"timeframe"`
	Verdict       Verdict   `json:"verdict"`
	HybridScore   float64   `json:"hybrid_score"`
	Direction     Direction `json:"direction"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}
