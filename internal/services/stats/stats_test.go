package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRollingZScoreShortSeries(t *testing.T) {
	for _, closes := range [][]float64{nil, {}, {100}} {
		if z := RollingZScore(closes, 10); z != 0 {
			t.Fatalf("expected 0 for %d points, got %v", len(closes), z)
		}
	}
}

func TestRollingZScoreZeroVariance(t *testing.T) {
	closes := []float64{50, 50, 50, 50, 50}
	if z := RollingZScore(closes, 5); z != 0 {
		t.Fatalf("expected 0 on zero variance, got %v", z)
	}
	if v := AnnualizedVolatility(closes, 252); v != 0 {
		t.Fatalf("expected 0 volatility on flat series, got %v", v)
	}
}

func TestRollingZScoreSpike(t *testing.T) {
	// last 5 samples: mean 100.6, population std 1.2 -> z = 2.0
	closes := []float64{100, 100, 100, 100, 100, 103}
	z := RollingZScore(closes, 5)
	if !almostEqual(z, 2.0) {
		t.Fatalf("expected z=2.0, got %v", z)
	}
	if v := AnnualizedVolatility(closes, 252); v <= 0 {
		t.Fatalf("expected positive volatility, got %v", v)
	}
}

func TestRollingZScoreWindowShorterThanSeries(t *testing.T) {
	// only the trailing window matters
	long := append([]float64{1, 2, 3, 4, 5}, 100, 100, 100, 100, 103)
	if z := RollingZScore(long, 5); !almostEqual(z, 2.0) {
		t.Fatalf("expected windowed z=2.0, got %v", z)
	}
}

func TestAnnualizedVolatilityTooFewReturns(t *testing.T) {
	if v := AnnualizedVolatility([]float64{100, 101}, 252); v != 0 {
		t.Fatalf("expected 0 with a single return, got %v", v)
	}
}

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	v, ok := SMA(closes, 3)
	if !ok || !almostEqual(v, 4) {
		t.Fatalf("expected SMA3=4, got %v ok=%v", v, ok)
	}
	if _, ok := SMA(closes, 6); ok {
		t.Fatalf("expected absent SMA with short series")
	}
}

func TestRangeCompression(t *testing.T) {
	closes := []float64{90, 95, 100, 105, 110, 100, 100, 100, 100, 100}
	v, ok := RangeCompression(closes, 20)
	// 10 points satisfy the window/2 minimum for a 20-day window
	if !ok {
		t.Fatalf("expected present range compression")
	}
	if !almostEqual(v, 20.0/100.0) {
		t.Fatalf("expected 0.2, got %v", v)
	}
	if _, ok := RangeCompression(closes[:5], 20); ok {
		t.Fatalf("expected absent with fewer than window/2 points")
	}
}

func TestRSI(t *testing.T) {
	// strictly rising: average loss is zero -> absent
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	if _, ok := RSI(rising, 14); ok {
		t.Fatalf("expected absent RSI when average loss is zero")
	}

	// alternating gains/losses stays computable and in [0,100]
	alt := make([]float64, 20)
	for i := range alt {
		alt[i] = 100 + float64(i%2)*3
	}
	v, ok := RSI(alt, 14)
	if !ok {
		t.Fatalf("expected present RSI")
	}
	if v < 0 || v > 100 {
		t.Fatalf("RSI out of range: %v", v)
	}

	if _, ok := RSI(alt[:10], 14); ok {
		t.Fatalf("expected absent RSI with insufficient data")
	}
}

func TestTrendFromSMA(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	if got := TrendFromSMA(f(10), f(5)); got != "uptrend" {
		t.Fatalf("expected uptrend, got %q", got)
	}
	if got := TrendFromSMA(f(5), f(10)); got != "downtrend" {
		t.Fatalf("expected downtrend, got %q", got)
	}
	if got := TrendFromSMA(f(7), f(7)); got != "flat" {
		t.Fatalf("expected flat, got %q", got)
	}
	if got := TrendFromSMA(nil, f(7)); got != "" {
		t.Fatalf("expected absent trend, got %q", got)
	}
}
