package narrative

import (
	"strings"
	"testing"

	"QuantSift/internal/domain/models"
)

func fp(v float64) *float64 { return &v }

func TestStage1Tags(t *testing.T) {
	cases := []struct {
		z     float64
		macro float64
		news  int
		want  [3]string
	}{
		{4.5, 1.2, 6, [3]string{"extreme-up", "macro-supportive", "heavy-news"}},
		{2.1, 0.5, 2, [3]string{"strong-up", "macro-positive", "moderate-news"}},
		{-1.5, -0.5, 1, [3]string{"moderate-down", "macro-negative", "single-news"}},
		{-4.2, -1.5, 0, [3]string{"extreme-down", "macro-headwind", "no-news"}},
		{0.2, 0.0, 0, [3]string{"neutral", "macro-neutral", "no-news"}},
	}
	b := NewStage1Builder()
	for _, tc := range cases {
		n := b.Build(&models.Stage1Signal{
			Ticker:      "T",
			Anomaly:     models.AnomalySignal{ZScore: tc.z},
			MacroWeight: tc.macro,
			News:        models.NewsPresence{Count: tc.news},
		})
		for i := range tc.want {
			if n.Tags[i] != tc.want[i] {
				t.Fatalf("z=%v macro=%v news=%d: expected tags %v, got %v", tc.z, tc.macro, tc.news, tc.want, n.Tags)
			}
		}
	}
}

func TestStage1SummaryDirection(t *testing.T) {
	b := NewStage1Builder()
	n := b.Build(&models.Stage1Signal{Ticker: "ACME", Anomaly: models.AnomalySignal{ZScore: -2.4}})
	if !strings.Contains(n.Summary, "downward") {
		t.Fatalf("expected downward summary, got %q", n.Summary)
	}
	if n.Drivers["price_anomaly"] != -2.4 {
		t.Fatalf("unexpected drivers %v", n.Drivers)
	}
}

func TestStage2TrendSentences(t *testing.T) {
	b := NewStage2Builder()

	n := b.Build(&models.Stage2Record{Ticker: "X"})
	if n.Trend != "No identifiable long-term trend." {
		t.Fatalf("unexpected trend sentence %q", n.Trend)
	}

	n = b.Build(&models.Stage2Record{
		Ticker:    "X",
		Structure: models.StructureProfile{Trend: models.TrendUp, RSI14: fp(75)},
	})
	if !strings.Contains(n.Trend, "overbought") {
		t.Fatalf("expected overbought mention, got %q", n.Trend)
	}

	n = b.Build(&models.Stage2Record{
		Ticker:    "X",
		Structure: models.StructureProfile{Trend: models.TrendDown, RSI14: fp(25)},
	})
	if !strings.Contains(n.Trend, "oversold") {
		t.Fatalf("expected oversold mention, got %q", n.Trend)
	}
}

func TestStage2Fundamentals(t *testing.T) {
	b := NewStage2Builder()

	n := b.Build(&models.Stage2Record{Ticker: "X"})
	if n.Fundamentals != "No fundamentals available." {
		t.Fatalf("unexpected %q", n.Fundamentals)
	}

	n = b.Build(&models.Stage2Record{
		Ticker:       "X",
		Fundamentals: models.Fundamentals{"pe": 8.0, "market_cap": 60e9},
	})
	if !strings.Contains(n.Fundamentals, "valuation appears low") || !strings.Contains(n.Fundamentals, "large-cap") {
		t.Fatalf("unexpected %q", n.Fundamentals)
	}

	n = b.Build(&models.Stage2Record{
		Ticker:       "X",
		Fundamentals: models.Fundamentals{"beta": 1.1},
	})
	if !strings.Contains(n.Fundamentals, "no strong valuation signals") {
		t.Fatalf("unexpected %q", n.Fundamentals)
	}
}

func TestStage2Compression(t *testing.T) {
	b := NewStage2Builder()
	n := b.Build(&models.Stage2Record{
		Ticker:    "X",
		Structure: models.StructureProfile{RangeCompression20: fp(0.02)},
	})
	if !strings.Contains(n.Text, "tight consolidation") {
		t.Fatalf("expected high-compression sentence, got %q", n.Text)
	}
}

func TestEvidenceRelevance(t *testing.T) {
	e := NewEvidence()
	if got := e.Relevance(&models.Stage2Record{}); got != 0 {
		t.Fatalf("empty profile must score 0, got %v", got)
	}
	full := &models.Stage2Record{Structure: models.StructureProfile{
		SMA20: fp(1), SMA50: fp(1), SMA200: fp(1), Vol20: fp(1),
		RangeCompression20: fp(1), RSI14: fp(1), Trend: models.TrendFlat,
	}}
	if got := e.Relevance(full); got != 1 {
		t.Fatalf("full profile must score 1, got %v", got)
	}
}

func TestEvidenceRisk(t *testing.T) {
	e := NewEvidence()
	if got := e.Risk(&models.Stage1Signal{Anomaly: models.AnomalySignal{ZScore: 2.5}}); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
	if got := e.Risk(&models.Stage1Signal{Anomaly: models.AnomalySignal{ZScore: -10}}); got != 1 {
		t.Fatalf("expected cap at 1, got %v", got)
	}
}
