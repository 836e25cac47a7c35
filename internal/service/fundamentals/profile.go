package fundamentals

import (
	"context"
	"fmt"

	"QuantSift/internal/domain/models"
	"QuantSift/internal/service/ratelimit"
	xhttp "QuantSift/pkg/http"
)

const profileLimiterKey = "fundamentals.profile"

// ProfileConfig configures the company-profile fundamentals source.
type ProfileConfig struct {
	BaseURL        string
	APIKey         string
	RequestsPerSec float64
	Burst          float64
}

// ProfileProvider pulls size fundamentals from the vendor profile endpoint.
// The vendor reports market cap in millions; the field is normalized to
// absolute currency before merging.
type ProfileProvider struct {
	cfg     ProfileConfig
	http    *xhttp.Client
	limiter *ratelimit.Limiter
}

func NewProfileProvider(cfg ProfileConfig, httpClient *xhttp.Client, limiter *ratelimit.Limiter) *ProfileProvider {
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return &ProfileProvider{cfg: cfg, http: httpClient, limiter: limiter}
}

func (p *ProfileProvider) Source() string { return "profile" }

type profileResponse struct {
	Name              string  `json:"name"`
	MarketCapMillions float64 `json:"marketCapitalization"`
	SharesOutstanding float64 `json:"shareOutstanding"`
	Industry          string  `json:"finnhubIndustry"`
}

func (p *ProfileProvider) Fetch(ctx context.Context, ticker string) (models.Fundamentals, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, profileLimiterKey, p.cfg.Burst, p.cfg.RequestsPerSec); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var resp profileResponse
	err := p.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.cfg.BaseURL + "/stock/profile2",
		QueryParams: map[string][]string{
			"symbol": {ticker},
			"token":  {p.cfg.APIKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", ticker, err)
	}

	fields := models.Fundamentals{}
	if resp.MarketCapMillions > 0 {
		fields["market_cap"] = resp.MarketCapMillions * 1e6
	}
	if resp.SharesOutstanding > 0 {
		fields["shares_outstanding"] = resp.SharesOutstanding
	}
	if resp.Industry != "" {
		fields["industry"] = resp.Industry
	}
	return fields, nil
}
