package repository

// Timeframe represents the candle resolution of a signal key.
type Timeframe string

const (
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
)

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF15m, TF1h, TF4h, TF1d:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF1h }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// Intraday reports whether the timeframe is served by intraday endpoints.
func (tf Timeframe) Intraday() bool {
	return tf != TF1d
}

// Interval returns the provider interval parameter for intraday requests.
func (tf Timeframe) Interval() string {
	switch tf {
	case TF15m:
		return "15min"
	case TF4h, TF1h:
		return "60min"
	default:
		return "60min"
	}
}
