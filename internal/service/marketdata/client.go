package marketdata

import (
	"context"
	"fmt"
	"time"

	"QuantSift/internal/domain/models"
	"QuantSift/internal/service/ratelimit"
	"QuantSift/pkg/cache"
	xhttp "QuantSift/pkg/http"
	"QuantSift/pkg/logger"
)

const limiterKey = "marketdata"

// Config holds the REST candle endpoint settings.
type Config struct {
	BaseURL        string
	APIKey         string
	RequestsPerSec float64
	Burst          float64
	CacheTTL       time.Duration
}

func (c Config) normalized() Config {
	if c.RequestsPerSec <= 0 {
		c.RequestsPerSec = 5
	}
	if c.Burst <= 0 {
		c.Burst = 10
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 15 * time.Minute
	}
	return c
}

// Client fetches daily close history from the vendor candle endpoint and
// caches whole series per (ticker, days) so a stage 2 re-fetch inside the
// same run window is free.
type Client struct {
	cfg     Config
	http    *xhttp.Client
	cache   cache.Service
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

func NewClient(cfg Config, httpClient *xhttp.Client, cacheSvc cache.Service, limiter *ratelimit.Limiter, log *logger.Logger) *Client {
	return &Client{
		cfg:     cfg.normalized(),
		http:    httpClient,
		cache:   cacheSvc,
		limiter: limiter,
		log:     log,
	}
}

// candleResponse is the vendor's column-oriented candle payload.
type candleResponse struct {
	Status  string    `json:"s"`
	Times   []int64   `json:"t"`
	Closes  []float64 `json:"c"`
	Volumes []float64 `json:"v"`
}

// DailyHistory returns up to days daily closes ending today, oldest first.
// A ticker the vendor does not know yields an empty series, not an error.
func (c *Client) DailyHistory(ctx context.Context, ticker string, days int) (models.PriceSeries, error) {
	key := fmt.Sprintf("candles:%s:%d", ticker, days)
	if c.cache != nil {
		var cached models.PriceSeries
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, limiterKey, c.cfg.Burst, c.cfg.RequestsPerSec); err != nil {
			return models.PriceSeries{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -days)

	var resp candleResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.cfg.BaseURL + "/stock/candle",
		QueryParams: map[string][]string{
			"symbol":     {ticker},
			"resolution": {"D"},
			"from":       {fmt.Sprintf("%d", from.Unix())},
			"to":         {fmt.Sprintf("%d", now.Unix())},
			"token":      {c.cfg.APIKey},
		},
	}, &resp)
	if err != nil {
		return models.PriceSeries{}, fmt.Errorf("candles %s: %w", ticker, err)
	}

	series := models.PriceSeries{Ticker: ticker}
	if resp.Status == "no_data" {
		return series, nil
	}
	if resp.Status != "" && resp.Status != "ok" {
		return models.PriceSeries{}, fmt.Errorf("candles %s: vendor status %q", ticker, resp.Status)
	}
	if len(resp.Times) != len(resp.Closes) {
		return models.PriceSeries{}, fmt.Errorf("candles %s: column length mismatch", ticker)
	}

	for i := range resp.Closes {
		p := models.PricePoint{
			TS:    time.Unix(resp.Times[i], 0).UTC(),
			Close: resp.Closes[i],
		}
		if i < len(resp.Volumes) {
			p.Volume = resp.Volumes[i]
		}
		series.Points = append(series.Points, p)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, series, c.cfg.CacheTTL); err != nil {
			c.log.Warn("candle cache write failed", logger.String("ticker", ticker), logger.Error(err))
		}
	}
	return series, nil
}
