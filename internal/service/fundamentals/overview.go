package fundamentals

import (
	"context"
	"fmt"
	"strconv"

	"QuantSift/internal/domain/models"
	"QuantSift/internal/service/ratelimit"
	xhttp "QuantSift/pkg/http"
)

const overviewLimiterKey = "fundamentals.overview"

// OverviewConfig configures the ratio-overview fundamentals source.
type OverviewConfig struct {
	BaseURL        string
	APIKey         string
	RequestsPerSec float64
	Burst          float64
}

// OverviewProvider pulls valuation ratios from the vendor overview endpoint.
// The vendor serializes every number as a string; unparsable or "None"
// values are simply omitted from the result.
type OverviewProvider struct {
	cfg     OverviewConfig
	http    *xhttp.Client
	limiter *ratelimit.Limiter
}

func NewOverviewProvider(cfg OverviewConfig, httpClient *xhttp.Client, limiter *ratelimit.Limiter) *OverviewProvider {
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 3
	}
	return &OverviewProvider{cfg: cfg, http: httpClient, limiter: limiter}
}

func (p *OverviewProvider) Source() string { return "overview" }

type overviewResponse struct {
	PERatio          string `json:"PERatio"`
	PriceToBookRatio string `json:"PriceToBookRatio"`
	EPS              string `json:"EPS"`
	DividendYield    string `json:"DividendYield"`
	MarketCap        string `json:"MarketCapitalization"`
}

func (p *OverviewProvider) Fetch(ctx context.Context, ticker string) (models.Fundamentals, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, overviewLimiterKey, p.cfg.Burst, p.cfg.RequestsPerSec); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var resp overviewResponse
	err := p.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.cfg.BaseURL + "/query",
		QueryParams: map[string][]string{
			"function": {"OVERVIEW"},
			"symbol":   {ticker},
			"apikey":   {p.cfg.APIKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("overview %s: %w", ticker, err)
	}

	fields := models.Fundamentals{}
	putFloat(fields, "pe", resp.PERatio)
	putFloat(fields, "pb", resp.PriceToBookRatio)
	putFloat(fields, "eps", resp.EPS)
	putFloat(fields, "dividend_yield", resp.DividendYield)
	putFloat(fields, "market_cap", resp.MarketCap)
	return fields, nil
}

func putFloat(fields models.Fundamentals, key, raw string) {
	if raw == "" || raw == "None" || raw == "-" {
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return
	}
	fields[key] = v
}
