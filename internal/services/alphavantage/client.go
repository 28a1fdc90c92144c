package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"stocklens/internal/domain/models"
	domrepo "stocklens/internal/domain/repository"
	"stocklens/internal/service/ratelimit"
	xhttp "stocklens/pkg/http"
	"stocklens/pkg/logger"
)

const limiterKey = "alphavantage"

// Client fetches OHLC series from the AlphaVantage REST API. Implements
// domain PriceFeed. The asset class of a symbol selects between the
// equity and FX endpoints.
type Client struct {
	http       *xhttp.Client
	limiter    *ratelimit.Limiter
	logger     *logger.Logger
	apiKey     string
	baseURL    string
	outputSize string
	ratePerMin float64
}

// Option configures Client.
type Option func(*Client)

// WithOutputSize sets the provider outputsize parameter (compact/full).
func WithOutputSize(size string) Option {
	return func(c *Client) { c.outputSize = size }
}

// WithRatePerMin sets the request budget per minute.
func WithRatePerMin(rate float64) Option {
	return func(c *Client) {
		if rate > 0 {
			c.ratePerMin = rate
		}
	}
}

// NewClient creates an AlphaVantage client.
func NewClient(apiKey, baseURL string, httpClient *xhttp.Client, limiter *ratelimit.Limiter, lgr *logger.Logger, opts ...Option) *Client {
	c := &Client{
		http:       httpClient,
		limiter:    limiter,
		logger:     lgr,
		apiKey:     apiKey,
		baseURL:    baseURL,
		outputSize: "compact",
		ratePerMin: 5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSeries fetches the OHLC series for a symbol, ascending by time.
func (c *Client) FetchSeries(ctx context.Context, symbol string, tf domrepo.Timeframe) (models.PriceSeries, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	params := map[string][]string{
		"apikey":     {c.apiKey},
		"outputsize": {c.outputSize},
	}

	class := models.ClassifySymbol(symbol)
	switch class {
	case models.AssetForex, models.AssetCommodity:
		params["from_symbol"] = []string{symbol[:3]}
		params["to_symbol"] = []string{symbol[3:]}
		if tf.Intraday() {
			params["function"] = []string{"FX_INTRADAY"}
			params["interval"] = []string{tf.Interval()}
		} else {
			params["function"] = []string{"FX_DAILY"}
		}
	default:
		params["symbol"] = []string{symbol}
		if tf.Intraday() {
			params["function"] = []string{"TIME_SERIES_INTRADAY"}
			params["interval"] = []string{tf.Interval()}
		} else {
			params["function"] = []string{"TIME_SERIES_DAILY"}
		}
	}

	var raw map[string]json.RawMessage
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL,
		QueryParams: params,
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("alphavantage request: %w", err)
	}

	if msg, ok := providerError(raw); ok {
		return nil, fmt.Errorf("alphavantage: %s", msg)
	}

	series, err := parseSeries(raw, tf.Intraday())
	if err != nil {
		return nil, err
	}

	c.logger.Debug("alphavantage series fetched",
		logger.String("symbol", symbol),
		logger.String("timeframe", string(tf)),
		logger.Int("bars", len(series)))
	return series, nil
}

// wait blocks until the limiter grants a token or ctx expires.
func (c *Client) wait(ctx context.Context) error {
	for !c.limiter.Allow(limiterKey, c.ratePerMin, c.ratePerMin/60) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return nil
}

// providerError extracts AlphaVantage soft errors (rate limit notes,
// invalid symbol messages) from an otherwise 200 response.
func providerError(raw map[string]json.RawMessage) (string, bool) {
	for _, key := range []string{"Error Message", "Note", "Information"} {
		if v, ok := raw[key]; ok {
			var msg string
			_ = json.Unmarshal(v, &msg)
			return msg, true
		}
	}
	return "", false
}

func parseSeries(raw map[string]json.RawMessage, intraday bool) (models.PriceSeries, error) {
	var seriesRaw json.RawMessage
	for key, v := range raw {
		if strings.HasPrefix(key, "Time Series") {
			seriesRaw = v
			break
		}
	}
	if seriesRaw == nil {
		return nil, fmt.Errorf("alphavantage: no time series in response")
	}

	var entries map[string]map[string]string
	if err := json.Unmarshal(seriesRaw, &entries); err != nil {
		return nil, fmt.Errorf("alphavantage: decode series: %w", err)
	}

	layout := "2006-01-02"
	if intraday {
		layout = "2006-01-02 15:04:05"
	}

	series := make(models.PriceSeries, 0, len(entries))
	for ts, fields := range entries {
		t, err := time.Parse(layout, ts)
		if err != nil {
			return nil, fmt.Errorf("alphavantage: bad timestamp %q: %w", ts, err)
		}
		bar := models.Bar{Time: t}
		if bar.Open, err = field(fields, "1. open"); err != nil {
			return nil, err
		}
		if bar.High, err = field(fields, "2. high"); err != nil {
			return nil, err
		}
		if bar.Low, err = field(fields, "3. low"); err != nil {
			return nil, err
		}
		if bar.Close, err = field(fields, "4. close"); err != nil {
			return nil, err
		}
		// FX series carry no volume
		if v, ok := fields["5. volume"]; ok {
			bar.Volume, _ = strconv.ParseFloat(v, 64)
		}
		series = append(series, bar)
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	return series, nil
}

func field(fields map[string]string, key string) (float64, error) {
	v, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("alphavantage: missing field %q", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("alphavantage: parse field %q: %w", key, err)
	}
	return f, nil
}
