package macro

import (
	"context"
	"fmt"
	"sync"
	"time"

	"QuantSift/internal/domain/models"
	xhttp "QuantSift/pkg/http"
	"QuantSift/pkg/logger"
)

// Config selects one of three modes: a remote endpoint, a fixed weight from
// configuration, or (both empty) the neutral unconfigured mode.
type Config struct {
	URL      string
	APIKey   string
	Weight   *float64
	CacheTTL time.Duration
}

// Provider resolves the market-wide macro backdrop weight. When nothing is
// configured it reports the neutral reading rather than failing, so the
// screen keeps working without a macro feed.
type Provider struct {
	cfg  Config
	http *xhttp.Client
	log  *logger.Logger

	mu       sync.Mutex
	cachedAt time.Time
	cached   models.MacroReading
}

func NewProvider(cfg Config, httpClient *xhttp.Client, log *logger.Logger) *Provider {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &Provider{cfg: cfg, http: httpClient, log: log}
}

type weightResponse struct {
	Weight float64 `json:"weight"`
}

func (p *Provider) Weight(ctx context.Context) (models.MacroReading, error) {
	if p.cfg.Weight != nil {
		return clamp(models.MacroReading{Weight: *p.cfg.Weight, Available: true}), nil
	}
	if p.cfg.URL == "" {
		return models.MacroReading{}, nil
	}

	// The reading is market-wide, not per ticker, so a short-lived memo is
	// enough to serve an entire run from one upstream call.
	p.mu.Lock()
	if !p.cachedAt.IsZero() && time.Since(p.cachedAt) < p.cfg.CacheTTL {
		cached := p.cached
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	var resp weightResponse
	err := p.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.cfg.URL,
		QueryParams: map[string][]string{
			"token": {p.cfg.APIKey},
		},
	}, &resp)
	if err != nil {
		return models.MacroReading{}, fmt.Errorf("macro weight: %w", err)
	}

	reading := clamp(models.MacroReading{Weight: resp.Weight, Available: true})
	p.mu.Lock()
	p.cached = reading
	p.cachedAt = time.Now()
	p.mu.Unlock()
	return reading, nil
}

func clamp(r models.MacroReading) models.MacroReading {
	if r.Weight < models.MacroWeightMin {
		r.Weight = models.MacroWeightMin
	}
	if r.Weight > models.MacroWeightMax {
		r.Weight = models.MacroWeightMax
	}
	return r
}
