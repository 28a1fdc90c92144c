package marketaux

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"stocklens/internal/domain/models"
	"stocklens/internal/service/ratelimit"
	xhttp "stocklens/pkg/http"
	"stocklens/pkg/logger"
	"stocklens/pkg/util"
)

const limiterKey = "marketaux"

// Client fetches recent news from the Marketaux REST API. Implements
// domain NewsFeed.
type Client struct {
	http       *xhttp.Client
	limiter    *ratelimit.Limiter
	logger     *logger.Logger
	apiKey     string
	baseURL    string
	ratePerMin float64
}

// Option configures the client.
type Option func(*Client)

// WithRatePerMin overrides the request budget per minute.
func WithRatePerMin(rate float64) Option {
	return func(c *Client) {
		if rate > 0 {
			c.ratePerMin = rate
		}
	}
}

// NewClient creates a Marketaux client.
func NewClient(apiKey, baseURL string, httpClient *xhttp.Client, limiter *ratelimit.Limiter, lgr *logger.Logger, opts ...Option) *Client {
	c := &Client{
		http:       httpClient,
		limiter:    limiter,
		logger:     lgr,
		apiKey:     apiKey,
		baseURL:    baseURL,
		ratePerMin: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type newsResponse struct {
	Data []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Source      string `json:"source"`
		URL         string `json:"url"`
		PublishedAt string `json:"published_at"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchNews returns up to limit recent documents for the symbol.
func (c *Client) FetchNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	for !c.limiter.Allow(limiterKey, c.ratePerMin, c.ratePerMin/60) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}

	var resp newsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL,
		QueryParams: map[string][]string{
			"api_token":       {c.apiKey},
			"symbols":         {symbol},
			"filter_entities": {"true"},
			"language":        {"en"},
			"limit":           {strconv.Itoa(limit)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("marketaux request: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("marketaux: %s: %s", resp.Error.Code, resp.Error.Message)
	}

	items := make([]models.NewsItem, 0, len(resp.Data))
	for _, d := range resp.Data {
		item := models.NewsItem{
			Title:       d.Title,
			Description: d.Description,
			Source:      d.Source,
			URL:         d.URL,
		}
		if t, ok := util.ParseTime(d.PublishedAt); ok {
			item.PublishedAt = t
		}
		items = append(items, item)
	}

	c.logger.Debug("marketaux news fetched",
		logger.String("symbol", symbol),
		logger.Int("items", len(items)))
	return items, nil
}
