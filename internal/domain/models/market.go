package models

import (
	"strings"
	"time"
)

// AssetClass determines which feed endpoint serves a symbol.
type AssetClass string

const (
	AssetStock     AssetClass = "STOCK"
	AssetForex     AssetClass = "FOREX"
	AssetCommodity AssetClass = "COMMODITY"
)

var commoditySymbols = map[string]bool{
	"XAUUSD": true,
	"XAGUSD": true,
	"XPTUSD": true,
	"WTIUSD": true,
}

// ClassifySymbol maps a symbol to its asset class.
// Six-letter currency-style symbols are forex unless they name a metal.
func ClassifySymbol(symbol string) AssetClass {
	s := strings.ToUpper(symbol)
	if commoditySymbols[s] {
		return AssetCommodity
	}
	if len(s) == 6 && isCurrencyPair(s) {
		return AssetForex
	}
	return AssetStock
}

func isCurrencyPair(s string) bool {
	currencies := []string{"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "NZD"}
	base, quote := s[:3], s[3:]
	var baseOK, quoteOK bool
	for _, c := range currencies {
		if base == c {
			baseOK = true
		}
		if quote == c {
			quoteOK = true
		}
	}
	return baseOK && quoteOK
}

// Bar is a single OHLCV candle.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries is a chronologically ascending list of bars.
type PriceSeries []Bar

// Closes returns the close prices in order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Last returns the most recent bar; ok is false for an empty series.
func (s PriceSeries) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Context24h summarizes the trailing window of a series.
type Context24h struct {
	ChangePct float64 `json:"change_pct"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Volume    float64 `json:"volume"`
}

// Window24h computes change/high/low/volume over the last n bars.
func (s PriceSeries) Window24h(n int) *Context24h {
	if len(s) == 0 {
		return nil
	}
	if n > len(s) {
		n = len(s)
	}
	w := s[len(s)-n:]
	ctx := &Context24h{High: w[0].High, Low: w[0].Low}
	for _, b := range w {
		if b.High > ctx.High {
			ctx.High = b.High
		}
		if b.Low < ctx.Low {
			ctx.Low = b.Low
		}
		ctx.Volume += b.Volume
	}
	first, last := w[0].Close, w[len(w)-1].Close
	if first != 0 {
		ctx.ChangePct = (last - first) / first * 100
	}
	return ctx
}

// NewsItem is a single news document from the news feed.
type NewsItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

// Trade is a live tick from the quote stream.
type Trade struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp time.Time
}
