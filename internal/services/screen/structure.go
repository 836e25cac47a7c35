package screen

import (
	"time"

	"QuantSift/internal/domain/models"
	"QuantSift/internal/services/stats"
)

// AnalyzerConfig carries the Stage 2 window sizes.
type AnalyzerConfig struct {
	VolWindow          int // default 20
	CompressionWindow  int // default 20
	RSIPeriod          int // default 14
	TradingDaysPerYear int // default 252
}

func (c AnalyzerConfig) Normalize() AnalyzerConfig {
	if c.VolWindow <= 0 {
		c.VolWindow = 20
	}
	if c.CompressionWindow <= 0 {
		c.CompressionWindow = 20
	}
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = 14
	}
	if c.TradingDaysPerYear <= 0 {
		c.TradingDaysPerYear = 252
	}
	return c
}

// ProviderFundamentals is one fundamentals source's answer, tagged with its
// origin for the record's source metadata.
type ProviderFundamentals struct {
	Source string
	Fields models.Fundamentals
}

// StructureAnalyzer is the Stage 2 brain: long-window price structure plus
// merged fundamentals. Runs only on gate-admitted instruments.
type StructureAnalyzer struct {
	cfg AnalyzerConfig
	now func() time.Time
}

func NewStructureAnalyzer(cfg AnalyzerConfig) *StructureAnalyzer {
	return &StructureAnalyzer{cfg: cfg.Normalize(), now: time.Now}
}

// Analyze builds the Stage2Record. Each statistic is independently
// absent-safe; an empty history yields an all-absent profile, never an
// error. Fundamentals merge first-writer-wins in the given source order.
func (a *StructureAnalyzer) Analyze(series models.PriceSeries, fundamentals []ProviderFundamentals) *models.Stage2Record {
	closes := series.Closes()

	profile := models.StructureProfile{}
	if v, ok := stats.SMA(closes, 20); ok {
		profile.SMA20 = &v
	}
	if v, ok := stats.SMA(closes, 50); ok {
		profile.SMA50 = &v
	}
	if v, ok := stats.SMA(closes, 200); ok {
		profile.SMA200 = &v
	}
	if len(closes) > a.cfg.VolWindow {
		v := stats.AnnualizedVolatility(closes[len(closes)-a.cfg.VolWindow:], a.cfg.TradingDaysPerYear)
		profile.Vol20 = &v
	}
	if v, ok := stats.RangeCompression(closes, a.cfg.CompressionWindow); ok {
		profile.RangeCompression20 = &v
	}
	if v, ok := stats.RSI(closes, a.cfg.RSIPeriod); ok {
		profile.RSI14 = &v
	}
	profile.Trend = stats.TrendFromSMA(profile.SMA50, profile.SMA200)

	sources := make([]models.Fundamentals, 0, len(fundamentals))
	names := make([]string, 0, len(fundamentals))
	for _, pf := range fundamentals {
		if len(pf.Fields) == 0 {
			continue
		}
		sources = append(sources, pf.Fields)
		names = append(names, pf.Source)
	}

	return &models.Stage2Record{
		Ticker:       series.Ticker,
		GeneratedAt:  a.now().UTC(),
		Structure:    profile,
		Fundamentals: models.MergeFundamentals(sources...),
		Meta: models.SourceMeta{
			HistoryPoints:      series.Len(),
			FundamentalSources: names,
		},
	}
}
