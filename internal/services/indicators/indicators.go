package indicators

import (
	"math"

	"stocklens/internal/domain/models"
)

const (
	RSIPeriod     = 14
	ATRPeriod     = 14
	SMAShort      = 20
	SMALong       = 50
	MACDFast      = 12
	MACDSlow      = 26
	MACDSignalLen = 9

	OversoldThreshold   = 30.0
	OverboughtThreshold = 70.0
)

// SMA returns the simple moving average of the last period closes,
// or nil when fewer than period values exist.
func SMA(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}
	sum := 0.0
	for _, v := range closes[len(closes)-period:] {
		sum += v
	}
	avg := sum / float64(period)
	return &avg
}

// RSI computes the Wilder-smoothed relative strength index. The first
// average is a simple mean of the first period gains/losses, every later
// step uses avg = (prev*(period-1) + value) / period. Nil until period+1
// closes exist. A window with no losses yields 100.
func RSI(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss += -delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		v := 100.0
		return &v
	}
	rs := avgGain / avgLoss
	v := 100 - 100/(1+rs)
	return &v
}

// ZoneFor classifies an RSI value.
func ZoneFor(rsi *float64) models.RSIZone {
	if rsi == nil {
		return models.ZoneNeutral
	}
	switch {
	case *rsi < OversoldThreshold:
		return models.ZoneOversold
	case *rsi > OverboughtThreshold:
		return models.ZoneOverbought
	default:
		return models.ZoneNeutral
	}
}

// ATR computes the Wilder-smoothed average true range. Nil until
// period+1 bars exist; never negative.
func ATR(series models.PriceSeries, period int) *float64 {
	if period <= 0 || len(series) < period+1 {
		return nil
	}

	trs := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		b, prev := series[i], series[i-1]
		tr := b.High - b.Low
		if hc := math.Abs(b.High - prev.Close); hc > tr {
			tr = hc
		}
		if lc := math.Abs(b.Low - prev.Close); lc > tr {
			tr = lc
		}
		trs = append(trs, tr)
	}

	atr := 0.0
	for _, tr := range trs[:period] {
		atr += tr
	}
	atr /= float64(period)
	for _, tr := range trs[period:] {
		atr = (atr*float64(period-1) + tr) / float64(period)
	}
	return &atr
}

// emaSeries returns the SMA-seeded EMA series. The first element
// corresponds to index period-1 of values; nil when too short.
func emaSeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	sum := 0.0
	for _, v := range values[:period] {
		sum += v
	}
	prev := sum / float64(period)
	out := make([]float64, 0, len(values)-period+1)
	out = append(out, prev)

	k := 2.0 / float64(period+1)
	for _, v := range values[period:] {
		prev = (v-prev)*k + prev
		out = append(out, prev)
	}
	return out
}

// MACD computes line (EMA12-EMA26), signal (EMA9 of line) and histogram.
// Pointers are nil until enough closes exist for the signal line.
func MACD(closes []float64) (line, signal, histogram *float64, trend models.MACDTrend) {
	trend = models.TrendNeutral

	fast := emaSeries(closes, MACDFast)
	slow := emaSeries(closes, MACDSlow)
	if slow == nil {
		return nil, nil, nil, trend
	}

	// Align: slow[j] pairs with fast[j + (MACDSlow - MACDFast)].
	offset := MACDSlow - MACDFast
	macdLine := make([]float64, len(slow))
	for j := range slow {
		macdLine[j] = fast[j+offset] - slow[j]
	}

	sig := emaSeries(macdLine, MACDSignalLen)
	if sig == nil {
		l := macdLine[len(macdLine)-1]
		return &l, nil, nil, trend
	}

	hist := make([]float64, len(sig))
	lineOffset := len(macdLine) - len(sig)
	for j := range sig {
		hist[j] = macdLine[j+lineOffset] - sig[j]
	}

	l := macdLine[len(macdLine)-1]
	s := sig[len(sig)-1]
	h := hist[len(hist)-1]

	if len(hist) >= 2 {
		prev := hist[len(hist)-2]
		switch {
		case h > 0 && h > prev:
			trend = models.TrendBullish
		case h < 0 && h < prev:
			trend = models.TrendBearish
		}
	}
	return &l, &s, &h, trend
}

// Compute builds the full indicator snapshot for a chronologically
// ascending series. The caller guarantees ordering.
func Compute(series models.PriceSeries) models.IndicatorSnapshot {
	closes := series.Closes()

	snap := models.IndicatorSnapshot{}
	if last, ok := series.Last(); ok {
		snap.Price = last.Close
	}

	snap.RSI = RSI(closes, RSIPeriod)
	snap.RSIZone = ZoneFor(snap.RSI)
	snap.SMA20 = SMA(closes, SMAShort)
	snap.SMA50 = SMA(closes, SMALong)
	snap.ATR = ATR(series, ATRPeriod)
	snap.MACDLine, snap.MACDSignal, snap.MACDHistogram, snap.MACDTrend = MACD(closes)
	return snap
}

// Valid reports whether every computed value is finite.
func Valid(snap models.IndicatorSnapshot) bool {
	for _, p := range []*float64{snap.RSI, snap.SMA20, snap.SMA50, snap.ATR, snap.MACDLine, snap.MACDSignal, snap.MACDHistogram} {
		if p != nil && (math.IsNaN(*p) || math.IsInf(*p, 0)) {
			return false
		}
	}
	return !math.IsNaN(snap.Price) && !math.IsInf(snap.Price, 0)
}
