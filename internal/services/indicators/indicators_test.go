package indicators

import (
	"math"
	"testing"
	"time"

	"stocklens/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesFromCloses(closes []float64) models.PriceSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.PriceSeries, len(closes))
	for i, c := range closes {
		s[i] = models.Bar{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	return s
}

func flatSeries(n int, price float64) models.PriceSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(models.PriceSeries, n)
	for i := range s {
		s[i] = models.Bar{Time: start.Add(time.Duration(i) * time.Hour), Open: price, High: price, Low: price, Close: price}
	}
	return s
}

func TestSMAWarmup(t *testing.T) {
	closes := make([]float64, 49)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	assert.Nil(t, SMA(closes, 50))

	closes = append(closes, 50)
	got := SMA(closes, 50)
	require.NotNil(t, got)
	assert.InDelta(t, 25.5, *got, 1e-9)
}

func TestSMAWindowIsTrailing(t *testing.T) {
	closes := []float64{1, 1, 1, 10, 10, 10}
	got := SMA(closes, 3)
	require.NotNil(t, got)
	assert.InDelta(t, 10, *got, 1e-9)
}

func TestRSIWarmup(t *testing.T) {
	closes := make([]float64, RSIPeriod)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	assert.Nil(t, RSI(closes, RSIPeriod), "needs period+1 closes")

	closes = append(closes, 115)
	assert.NotNil(t, RSI(closes, RSIPeriod))
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	closes := make([]float64, RSIPeriod+10)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	got := RSI(closes, RSIPeriod)
	require.NotNil(t, got)
	assert.Equal(t, 100.0, *got)
}

func TestRSIBounds(t *testing.T) {
	closes := []float64{44, 44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22}
	got := RSI(closes, RSIPeriod)
	require.NotNil(t, got)
	assert.Greater(t, *got, 0.0)
	assert.Less(t, *got, 100.0)
	// mostly gains over the window, so the index sits in the upper half
	assert.Greater(t, *got, 50.0)
}

func TestZoneFor(t *testing.T) {
	low, mid, high := 25.0, 50.0, 75.0
	assert.Equal(t, models.ZoneOversold, ZoneFor(&low))
	assert.Equal(t, models.ZoneNeutral, ZoneFor(&mid))
	assert.Equal(t, models.ZoneOverbought, ZoneFor(&high))
	assert.Equal(t, models.ZoneNeutral, ZoneFor(nil))
}

func TestATRWarmupAndSign(t *testing.T) {
	s := seriesFromCloses([]float64{100, 102, 101, 103, 105, 104, 106, 108, 107, 109, 111, 110, 112, 114})
	assert.Nil(t, ATR(s, ATRPeriod), "14 bars give 13 true ranges")

	s = seriesFromCloses([]float64{100, 102, 101, 103, 105, 104, 106, 108, 107, 109, 111, 110, 112, 114, 113, 115})
	got := ATR(s, ATRPeriod)
	require.NotNil(t, got)
	assert.Greater(t, *got, 0.0)
}

func TestATRFlatSeriesIsZero(t *testing.T) {
	got := ATR(flatSeries(30, 100), ATRPeriod)
	require.NotNil(t, got)
	assert.Equal(t, 0.0, *got)
}

func TestMACDWarmup(t *testing.T) {
	closes := make([]float64, MACDSlow-1)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	line, signal, hist, trend := MACD(closes)
	assert.Nil(t, line)
	assert.Nil(t, signal)
	assert.Nil(t, hist)
	assert.Equal(t, models.TrendNeutral, trend)

	// enough for the line but not the signal
	closes = append(closes, 125, 126)
	line, signal, hist, _ = MACD(closes)
	assert.NotNil(t, line)
	assert.Nil(t, signal)
	assert.Nil(t, hist)

	// signal needs MACDSlow+MACDSignalLen-1 closes
	for len(closes) < MACDSlow+MACDSignalLen-1 {
		closes = append(closes, closes[len(closes)-1]+1)
	}
	line, signal, hist, _ = MACD(closes)
	require.NotNil(t, line)
	require.NotNil(t, signal)
	require.NotNil(t, hist)
}

func TestMACDAcceleratingUptrendIsBullish(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 * math.Pow(1.01, float64(i))
	}
	_, _, hist, trend := MACD(closes)
	require.NotNil(t, hist)
	assert.Greater(t, *hist, 0.0)
	assert.Equal(t, models.TrendBullish, trend)
}

func TestMACDAcceleratingDowntrendIsBearish(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 * math.Pow(0.99, float64(i))
	}
	_, _, hist, trend := MACD(closes)
	require.NotNil(t, hist)
	assert.Less(t, *hist, 0.0)
	assert.Equal(t, models.TrendBearish, trend)
}

func TestComputeShortSeries(t *testing.T) {
	s := seriesFromCloses([]float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109,
		110, 111, 112, 113, 114})
	snap := Compute(s)

	assert.Equal(t, 114.0, snap.Price)
	assert.NotNil(t, snap.RSI)
	assert.NotNil(t, snap.ATR)
	assert.Nil(t, snap.SMA20)
	assert.Nil(t, snap.SMA50)
	assert.Nil(t, snap.MACDLine)
	assert.Equal(t, models.TrendNeutral, snap.MACDTrend)
	assert.True(t, Valid(snap))
}

func TestComputeFullSeries(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/5)
	}
	snap := Compute(seriesFromCloses(closes))

	assert.NotNil(t, snap.RSI)
	assert.NotNil(t, snap.SMA20)
	assert.NotNil(t, snap.SMA50)
	assert.NotNil(t, snap.ATR)
	assert.NotNil(t, snap.MACDLine)
	assert.NotNil(t, snap.MACDSignal)
	assert.NotNil(t, snap.MACDHistogram)
	assert.True(t, Valid(snap))
}

func TestValidRejectsNaN(t *testing.T) {
	bad := math.NaN()
	snap := models.IndicatorSnapshot{Price: 100, RSI: &bad}
	assert.False(t, Valid(snap))
}
