package news

import (
	"context"
	"fmt"
	"time"

	"QuantSift/internal/domain/models"
	"QuantSift/internal/service/ratelimit"
	xhttp "QuantSift/pkg/http"
	"QuantSift/pkg/logger"
)

const limiterKey = "news"

type Config struct {
	BaseURL        string
	APIKey         string
	RequestsPerSec float64
	Burst          float64
}

func (c Config) normalized() Config {
	if c.RequestsPerSec <= 0 {
		c.RequestsPerSec = 2
	}
	if c.Burst <= 0 {
		c.Burst = 5
	}
	return c
}

// Provider reports recent headline presence per ticker. Only count and a
// few leading titles matter downstream; the screen never reads article
// bodies.
type Provider struct {
	cfg     Config
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

func NewProvider(cfg Config, httpClient *xhttp.Client, limiter *ratelimit.Limiter, log *logger.Logger) *Provider {
	return &Provider{cfg: cfg.normalized(), http: httpClient, limiter: limiter, log: log}
}

type article struct {
	Headline string `json:"headline"`
	Datetime int64  `json:"datetime"`
}

func (p *Provider) Recent(ctx context.Context, ticker string, lookbackDays int) (models.NewsPresence, error) {
	if lookbackDays <= 0 {
		lookbackDays = 7
	}
	presence := models.NewsPresence{LookbackDays: lookbackDays}
	if p.cfg.BaseURL == "" {
		return presence, nil
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, limiterKey, p.cfg.Burst, p.cfg.RequestsPerSec); err != nil {
			return models.NewsPresence{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -lookbackDays)

	var articles []article
	err := p.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.cfg.BaseURL + "/company-news",
		QueryParams: map[string][]string{
			"symbol": {ticker},
			"from":   {from.Format("2006-01-02")},
			"to":     {now.Format("2006-01-02")},
			"token":  {p.cfg.APIKey},
		},
	}, &articles)
	if err != nil {
		return models.NewsPresence{}, fmt.Errorf("company news %s: %w", ticker, err)
	}

	presence.Count = len(articles)
	for _, a := range articles {
		if len(presence.Titles) >= models.MaxNewsTitles {
			break
		}
		if a.Headline != "" {
			presence.Titles = append(presence.Titles, a.Headline)
		}
	}
	return presence, nil
}
