package screen

import (
	"fmt"
	"math"
	"strings"

	"QuantSift/internal/domain/models"
	"QuantSift/internal/services/stats"
)

// ScorerConfig carries the externally injected Stage 1 thresholds.
type ScorerConfig struct {
	AnomalyLookback    int     // rolling window for the z-score, default 10
	ZThreshold         float64 // |z| needed to mention the anomaly in the reason, default 2.0
	TradingDaysPerYear int     // annualization factor, default 252
}

// Normalize fills zero values with the documented defaults.
func (c ScorerConfig) Normalize() ScorerConfig {
	if c.AnomalyLookback <= 0 {
		c.AnomalyLookback = 10
	}
	if c.ZThreshold <= 0 {
		c.ZThreshold = 2.0
	}
	if c.TradingDaysPerYear <= 0 {
		c.TradingDaysPerYear = 252
	}
	return c
}

// Stage1Inputs is the already-fetched data the scorer works on. The caller
// resolves collaborator failures to neutral defaults before scoring and
// lists them in Degraded so tests can tell neutral-by-default from
// neutral-by-failure.
type Stage1Inputs struct {
	Series        models.PriceSeries
	Macro         models.MacroReading
	News          models.NewsPresence
	RealtimePrice *float64
	Degraded      []string
}

// AnomalyScorer is the Stage 1 brain: a fast, cost-free screen that scores
// every instrument and flags which warrant the expensive deep pass.
type AnomalyScorer struct {
	cfg ScorerConfig
}

func NewAnomalyScorer(cfg ScorerConfig) *AnomalyScorer {
	return &AnomalyScorer{cfg: cfg.Normalize()}
}

// Score produces the Stage1Signal for one instrument. Pure; never fails.
func (s *AnomalyScorer) Score(in Stage1Inputs) *models.Stage1Signal {
	closes := in.Series.Closes()

	n := len(closes)
	if n > s.cfg.AnomalyLookback {
		n = s.cfg.AnomalyLookback
	}
	anomaly := models.AnomalySignal{NPoints: n}
	if n >= 2 {
		window := closes[len(closes)-n:]
		anomaly.ZScore = stats.RollingZScore(window, s.cfg.AnomalyLookback)
		anomaly.Volatility = stats.AnnualizedVolatility(window, s.cfg.TradingDaysPerYear)
	}

	macro := clampMacro(in.Macro)
	score := compositeScore(anomaly.ZScore, macro, in.News.Count)

	return &models.Stage1Signal{
		Ticker:        in.Series.Ticker,
		Anomaly:       anomaly,
		MacroWeight:   macro,
		News:          in.News,
		RealtimePrice: in.RealtimePrice,
		Score:         score,
		Severity:      SeverityFromZ(anomaly.ZScore),
		Reason:        s.reason(anomaly.ZScore, macro, in.News.Count),
		Degraded:      in.Degraded,
	}
}

// compositeScore amplifies the anomaly by macro magnitude (macro is a
// volatility multiplier, not a directional override) and nudges it by news
// in the anomaly's direction, positively when the anomaly is exactly zero.
func compositeScore(z, macro float64, newsCount int) float64 {
	sign := 1.0
	if z < 0 {
		sign = -1.0
	}
	return z*(1+math.Abs(macro)) + float64(newsCount)*0.4*sign
}

func clampMacro(r models.MacroReading) float64 {
	if !r.Available {
		return 0
	}
	if r.Weight < models.MacroWeightMin {
		return models.MacroWeightMin
	}
	if r.Weight > models.MacroWeightMax {
		return models.MacroWeightMax
	}
	return r.Weight
}

// SeverityFromZ maps |z| to a saturating 0..1 severity: z=0 -> 0,
// z=3 -> ~0.6, z>=9 -> 1.0.
func SeverityFromZ(z float64) float64 {
	mag := math.Abs(z)
	var sev float64
	switch {
	case mag <= 0.5:
		sev = mag / 6.0
	case mag <= 3.0:
		sev = 0.1 + (mag-0.5)*(0.5/2.5)
	default:
		sev = 0.5 + (mag-3.0)*0.0833
	}
	if sev > 1 {
		sev = 1
	}
	return round3(sev)
}

func (s *AnomalyScorer) reason(z, macro float64, newsCount int) string {
	var parts []string
	if math.Abs(z) >= s.cfg.ZThreshold {
		parts = append(parts, fmt.Sprintf("price anomaly z=%.2f", z))
	}
	if newsCount > 0 {
		parts = append(parts, fmt.Sprintf("%d recent headlines", newsCount))
	}
	if math.Abs(macro) > 0.1 {
		parts = append(parts, fmt.Sprintf("macro weight %.2f", macro))
	}
	if len(parts) == 0 {
		return "no strong single reason"
	}
	return strings.Join(parts, "; ")
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
