package screen

import (
	"math"
	"strings"
	"testing"

	"QuantSift/internal/domain/models"
)

func seriesOf(ticker string, closes ...float64) models.PriceSeries {
	s := models.PriceSeries{Ticker: ticker}
	for _, c := range closes {
		s.Points = append(s.Points, models.PricePoint{Close: c})
	}
	return s
}

func TestScoreEmptySeries(t *testing.T) {
	sc := NewAnomalyScorer(ScorerConfig{})
	sig := sc.Score(Stage1Inputs{Series: seriesOf("EMPTY")})

	if sig.Anomaly.NPoints != 0 || sig.Anomaly.ZScore != 0 || sig.Anomaly.Volatility != 0 {
		t.Fatalf("expected all-zero anomaly, got %+v", sig.Anomaly)
	}
	if sig.Score != 0 {
		t.Fatalf("expected zero score, got %v", sig.Score)
	}
	if admitted := NewGate(2.0, 0).Admit([]*models.Stage1Signal{sig}); len(admitted) != 0 {
		t.Fatalf("gate admitted zero-score signal")
	}
	if sig.Reason != "no strong single reason" {
		t.Fatalf("unexpected reason %q", sig.Reason)
	}
}

func TestScoreSpikeSeries(t *testing.T) {
	sc := NewAnomalyScorer(ScorerConfig{AnomalyLookback: 5})
	sig := sc.Score(Stage1Inputs{Series: seriesOf("SPIKE", 100, 100, 100, 100, 100, 103)})

	if sig.Anomaly.ZScore <= 0 {
		t.Fatalf("expected positive z, got %v", sig.Anomaly.ZScore)
	}
	if sig.Anomaly.Volatility <= 0 {
		t.Fatalf("expected positive volatility, got %v", sig.Anomaly.Volatility)
	}
	if sig.Anomaly.NPoints != 5 {
		t.Fatalf("expected 5 window points, got %d", sig.Anomaly.NPoints)
	}
}

func TestCompositeScoreFormula(t *testing.T) {
	// z=3.0, macro=0.5, news=2 -> 3.0*1.5 + 2*0.4 = 5.3
	got := compositeScore(3.0, 0.5, 2)
	if math.Abs(got-5.3) > 1e-9 {
		t.Fatalf("expected 5.3, got %v", got)
	}

	// negative anomaly: news pushes further negative
	got = compositeScore(-3.0, 0.5, 2)
	if math.Abs(got-(-5.3)) > 1e-9 {
		t.Fatalf("expected -5.3, got %v", got)
	}

	// zero anomaly: news contributes positively
	got = compositeScore(0, 0, 3)
	if math.Abs(got-1.2) > 1e-9 {
		t.Fatalf("expected 1.2, got %v", got)
	}

	// macro amplifies regardless of its own sign
	if a, b := compositeScore(2, -1.5, 0), compositeScore(2, 1.5, 0); a != b {
		t.Fatalf("macro sign must not matter: %v vs %v", a, b)
	}
}

func TestScoreMonotoneInZ(t *testing.T) {
	prev := 0.0
	for z := 0.0; z <= 8.0; z += 0.25 {
		s := math.Abs(compositeScore(z, 0.7, 3))
		if s < prev {
			t.Fatalf("|score| decreased at z=%v: %v < %v", z, s, prev)
		}
		prev = s
	}
}

func TestReasonFragments(t *testing.T) {
	sc := NewAnomalyScorer(ScorerConfig{ZThreshold: 2.0})
	reason := sc.reason(3.0, 0.5, 2)
	for _, want := range []string{"z=3.00", "2 recent headlines", "macro weight 0.50"} {
		if !strings.Contains(reason, want) {
			t.Fatalf("reason %q missing %q", reason, want)
		}
	}
	if strings.Count(reason, "; ") != 2 {
		t.Fatalf("expected two separators in %q", reason)
	}

	if r := sc.reason(0.1, 0.05, 0); r != "no strong single reason" {
		t.Fatalf("unexpected fallback reason %q", r)
	}
}

func TestMacroClamping(t *testing.T) {
	if got := clampMacro(models.MacroReading{Weight: 5, Available: true}); got != 2 {
		t.Fatalf("expected clamp to 2, got %v", got)
	}
	if got := clampMacro(models.MacroReading{Weight: -5, Available: true}); got != -2 {
		t.Fatalf("expected clamp to -2, got %v", got)
	}
	if got := clampMacro(models.MacroReading{Weight: 1.3, Available: false}); got != 0 {
		t.Fatalf("unavailable macro must be neutral, got %v", got)
	}
}

func TestSeverityFromZ(t *testing.T) {
	if SeverityFromZ(0) != 0 {
		t.Fatalf("expected zero severity at z=0")
	}
	if got := SeverityFromZ(3.0); math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("expected 0.6 at z=3, got %v", got)
	}
	if got := SeverityFromZ(12); got != 1 {
		t.Fatalf("expected saturation at 1, got %v", got)
	}
	if SeverityFromZ(-2) != SeverityFromZ(2) {
		t.Fatalf("severity must use magnitude")
	}
}
