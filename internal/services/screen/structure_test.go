package screen

import (
	"testing"

	"QuantSift/internal/domain/models"
)

func longSeries(ticker string, n int, step float64) models.PriceSeries {
	s := models.PriceSeries{Ticker: ticker}
	price := 100.0
	for i := 0; i < n; i++ {
		price += step
		if i%2 == 0 {
			price -= step / 3
		}
		s.Points = append(s.Points, models.PricePoint{Close: price, Volume: 1000})
	}
	return s
}

func TestAnalyzeEmptyHistory(t *testing.T) {
	a := NewStructureAnalyzer(AnalyzerConfig{})
	rec := a.Analyze(models.PriceSeries{Ticker: "NONE"}, nil)

	p := rec.Structure
	if p.SMA20 != nil || p.SMA50 != nil || p.SMA200 != nil || p.Vol20 != nil ||
		p.RangeCompression20 != nil || p.RSI14 != nil || p.Trend != "" {
		t.Fatalf("expected all-absent profile, got %+v", p)
	}
	if rec.Meta.HistoryPoints != 0 {
		t.Fatalf("expected zero history points")
	}
}

func TestAnalyzeShortHistory(t *testing.T) {
	// 10 days: below every 20-day window but the function must not fail
	a := NewStructureAnalyzer(AnalyzerConfig{})
	rec := a.Analyze(longSeries("SHORT", 10, 1), nil)

	p := rec.Structure
	if p.SMA20 != nil || p.Vol20 != nil {
		t.Fatalf("expected sma20/vol20 absent with 10 points")
	}
	// 10 points satisfy the 20-day compression window's half-window minimum
	if p.RangeCompression20 == nil {
		t.Fatalf("expected compression present with 10 points")
	}
	if p.Trend != "" {
		t.Fatalf("trend requires sma50 and sma200, got %q", p.Trend)
	}
}

func TestAnalyzeFullHistory(t *testing.T) {
	a := NewStructureAnalyzer(AnalyzerConfig{})
	rec := a.Analyze(longSeries("FULL", 220, 0.5), nil)

	p := rec.Structure
	for name, v := range map[string]*float64{
		"sma20": p.SMA20, "sma50": p.SMA50, "sma200": p.SMA200,
		"vol20": p.Vol20, "compression": p.RangeCompression20,
	} {
		if v == nil {
			t.Fatalf("expected %s present", name)
		}
	}
	if p.Trend != models.TrendUp {
		t.Fatalf("expected uptrend on rising series, got %q", p.Trend)
	}
	if p.RSI14 != nil && (*p.RSI14 < 0 || *p.RSI14 > 100) {
		t.Fatalf("rsi out of range: %v", *p.RSI14)
	}
	if rec.Meta.HistoryPoints != 220 {
		t.Fatalf("expected 220 history points, got %d", rec.Meta.HistoryPoints)
	}
}

func TestFundamentalsMergePrecedence(t *testing.T) {
	a := NewStructureAnalyzer(AnalyzerConfig{})
	rec := a.Analyze(longSeries("F", 30, 0.2), []ProviderFundamentals{
		{Source: "profile", Fields: models.Fundamentals{"pe": 12.5, "sector": "tech", "beta": nil}},
		{Source: "overview", Fields: models.Fundamentals{"pe": 99.0, "roe": 0.21, "beta": 1.1}},
	})

	if got := rec.Fundamentals["pe"]; got != 12.5 {
		t.Fatalf("first writer must win for pe, got %v", got)
	}
	if got := rec.Fundamentals["roe"]; got != 0.21 {
		t.Fatalf("expected roe from second source, got %v", got)
	}
	// nil values never claim a key
	if got := rec.Fundamentals["beta"]; got != 1.1 {
		t.Fatalf("nil must not block later writer, got %v", got)
	}
	if len(rec.Meta.FundamentalSources) != 2 {
		t.Fatalf("expected two sources recorded, got %v", rec.Meta.FundamentalSources)
	}
}

func TestFundamentalsEmptySourcesSkipped(t *testing.T) {
	a := NewStructureAnalyzer(AnalyzerConfig{})
	rec := a.Analyze(longSeries("F", 30, 0.2), []ProviderFundamentals{
		{Source: "profile", Fields: nil},
		{Source: "overview", Fields: models.Fundamentals{"pe": 8.0}},
	})
	if len(rec.Meta.FundamentalSources) != 1 || rec.Meta.FundamentalSources[0] != "overview" {
		t.Fatalf("expected only overview recorded, got %v", rec.Meta.FundamentalSources)
	}
}
