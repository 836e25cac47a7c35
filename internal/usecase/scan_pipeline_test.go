package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"QuantSift/internal/domain/models"
	"QuantSift/internal/domain/repository"
	"QuantSift/internal/services/screen"
	"QuantSift/pkg/logger"
)

type fakePrices struct {
	daily func(ticker string, days int) (models.PriceSeries, error)
}

func (f fakePrices) DailyHistory(_ context.Context, ticker string, days int) (models.PriceSeries, error) {
	return f.daily(ticker, days)
}

type fakeMacro struct {
	reading models.MacroReading
	err     error
}

func (f fakeMacro) Weight(context.Context) (models.MacroReading, error) {
	return f.reading, f.err
}

type fakeNews struct {
	count int
	err   error
}

func (f fakeNews) Recent(_ context.Context, _ string, lookbackDays int) (models.NewsPresence, error) {
	if f.err != nil {
		return models.NewsPresence{}, f.err
	}
	return models.NewsPresence{Count: f.count, LookbackDays: lookbackDays}, nil
}

type fakeFundamentals struct {
	source string
	fields models.Fundamentals
	err    error
}

func (f fakeFundamentals) Source() string { return f.source }

func (f fakeFundamentals) Fetch(context.Context, string) (models.Fundamentals, error) {
	return f.fields, f.err
}

type nopMetrics struct{}

func (nopMetrics) RecordScan(int, int, int)            {}
func (nopMetrics) RecordDegradedInput(string)          {}
func (nopMetrics) RecordInstrumentError(string)        {}
func (nopMetrics) RecordStageLatency(string, float64)  {}
func (nopMetrics) RecordCompositeScore(string, float64) {}
func (nopMetrics) RecordConfidence(string, float64)    {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func series(ticker string, closes ...float64) models.PriceSeries {
	s := models.PriceSeries{Ticker: ticker}
	ts := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		s.Points = append(s.Points, models.PricePoint{
			TS:    ts.AddDate(0, 0, i),
			Close: c,
		})
	}
	return s
}

func trendingSeries(ticker string, n int) models.PriceSeries {
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		price *= 1.002
		closes[i] = price
	}
	return series(ticker, closes...)
}

func newTestPipeline(t *testing.T, deps PipelineDeps) *ScanPipeline {
	t.Helper()
	if deps.Scorer == nil {
		deps.Scorer = screen.NewAnomalyScorer(screen.ScorerConfig{})
	}
	if deps.Analyzer == nil {
		deps.Analyzer = screen.NewStructureAnalyzer(screen.AnalyzerConfig{})
	}
	if deps.Reconciler == nil {
		deps.Reconciler = screen.NewReconciler()
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = testLogger(t)
	}
	return NewScanPipeline(PipelineConfig{Concurrency: 2}, deps)
}

func TestRunScreensAndAdmits(t *testing.T) {
	spike := series("SPK", 100, 100, 100, 100, 100, 120)
	flat := series("FLT", 100, 100, 100, 100, 100, 100)

	deps := PipelineDeps{
		Prices: fakePrices{daily: func(ticker string, days int) (models.PriceSeries, error) {
			switch ticker {
			case "SPK":
				if days > 30 {
					return trendingSeries("SPK", 250), nil
				}
				return spike, nil
			case "FLT":
				return flat, nil
			default:
				return models.PriceSeries{}, errors.New("upstream 502")
			}
		}},
		Macro: fakeMacro{reading: models.MacroReading{Weight: 0, Available: true}},
		News:  fakeNews{count: 0},
		Fundamentals: []repository.FundamentalsProvider{
			fakeFundamentals{source: "profile", fields: models.Fundamentals{"pe": 12.0}},
		},
		Gate: screen.NewGate(2.0, 10),
	}
	p := newTestPipeline(t, deps)

	artifact, err := p.Run(context.Background(), []string{"SPK", "FLT", "BAD"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if artifact.RunID == "" {
		t.Fatal("expected run id")
	}
	if len(artifact.Signals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(artifact.Signals))
	}
	if artifact.Signals[0].Ticker != "SPK" {
		t.Fatalf("expected SPK ranked first, got %s", artifact.Signals[0].Ticker)
	}
	if msg, ok := artifact.Errors["BAD"]; !ok || msg == "" {
		t.Fatalf("expected error marker for BAD, got %v", artifact.Errors)
	}
	if len(artifact.Admitted) != 1 || artifact.Admitted[0] != "SPK" {
		t.Fatalf("expected only SPK admitted, got %v", artifact.Admitted)
	}
	if set := artifact.AdmittedSet(); !set["SPK"] || set["FLT"] {
		t.Fatalf("admitted set wrong: %v", set)
	}
	if len(artifact.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(artifact.Records))
	}
	rec := artifact.Records[0]
	if rec.Ticker != "SPK" {
		t.Fatalf("record ticker = %s", rec.Ticker)
	}
	if rec.Confidence < 0 || rec.Confidence > 1 {
		t.Fatalf("confidence out of bounds: %v", rec.Confidence)
	}
	if rec.Narrative == "" {
		t.Fatal("expected assembled narrative")
	}
	if artifact.FinishedAt.Before(artifact.StartedAt) {
		t.Fatal("finished before started")
	}
}

func TestRunEmptyUniverse(t *testing.T) {
	p := newTestPipeline(t, PipelineDeps{
		Prices: fakePrices{daily: func(string, int) (models.PriceSeries, error) {
			return models.PriceSeries{}, nil
		}},
		Macro: fakeMacro{},
		News:  fakeNews{},
		Gate:  screen.NewGate(2.0, 10),
	})
	if _, err := p.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty universe")
	}
}

func TestRunMacroFailureDegradesToNeutral(t *testing.T) {
	spike := series("SPK", 100, 100, 100, 100, 100, 120)
	p := newTestPipeline(t, PipelineDeps{
		Prices: fakePrices{daily: func(string, int) (models.PriceSeries, error) {
			return spike, nil
		}},
		Macro: fakeMacro{err: errors.New("macro feed down")},
		News:  fakeNews{count: 1},
		Gate:  screen.NewGate(2.0, 10),
	})

	artifact, err := p.Run(context.Background(), []string{"SPK"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	sig := artifact.Signals[0]
	if sig.MacroWeight != 0 {
		t.Fatalf("expected neutral macro weight, got %v", sig.MacroWeight)
	}
	found := false
	for _, d := range sig.Degraded {
		if d == "macro" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected macro degradation marker, got %v", sig.Degraded)
	}
}

func TestRunNewsFailureDegradesToZeroCount(t *testing.T) {
	spike := series("SPK", 100, 100, 100, 100, 100, 120)
	p := newTestPipeline(t, PipelineDeps{
		Prices: fakePrices{daily: func(string, int) (models.PriceSeries, error) {
			return spike, nil
		}},
		Macro: fakeMacro{reading: models.MacroReading{Available: true}},
		News:  fakeNews{err: errors.New("news feed down")},
		Gate:  screen.NewGate(2.0, 10),
	})

	artifact, err := p.Run(context.Background(), []string{"SPK"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	sig := artifact.Signals[0]
	if sig.News.Count != 0 {
		t.Fatalf("expected zero news count, got %d", sig.News.Count)
	}
	found := false
	for _, d := range sig.Degraded {
		if d == "news" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected news degradation marker, got %v", sig.Degraded)
	}
}

func TestRunStage2PriceFailureYieldsAbsentStructure(t *testing.T) {
	spike := series("SPK", 100, 100, 100, 100, 100, 120)
	p := newTestPipeline(t, PipelineDeps{
		Prices: fakePrices{daily: func(_ string, days int) (models.PriceSeries, error) {
			if days > 30 {
				return models.PriceSeries{}, errors.New("history endpoint down")
			}
			return spike, nil
		}},
		Macro: fakeMacro{reading: models.MacroReading{Available: true}},
		News:  fakeNews{},
		Gate:  screen.NewGate(2.0, 10),
	})

	artifact, err := p.Run(context.Background(), []string{"SPK"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(artifact.Records) != 1 {
		t.Fatalf("expected record despite stage2 degradation, got %d", len(artifact.Records))
	}
	st := artifact.Records[0].Stage2.Structure
	if st.SMA20 != nil || st.Vol20 != nil || st.RSI14 != nil {
		t.Fatal("expected absent structure fields on unusable history")
	}
}

func TestRunFundamentalsMergeFirstWriterWins(t *testing.T) {
	spike := series("SPK", 100, 100, 100, 100, 100, 120)
	p := newTestPipeline(t, PipelineDeps{
		Prices: fakePrices{daily: func(_ string, days int) (models.PriceSeries, error) {
			if days > 30 {
				return trendingSeries("SPK", 250), nil
			}
			return spike, nil
		}},
		Macro: fakeMacro{reading: models.MacroReading{Available: true}},
		News:  fakeNews{},
		Fundamentals: []repository.FundamentalsProvider{
			fakeFundamentals{source: "profile", fields: models.Fundamentals{"pe": 12.0}},
			fakeFundamentals{source: "overview", fields: models.Fundamentals{"pe": 99.0, "market_cap": 6.0e9}},
		},
		Gate: screen.NewGate(2.0, 10),
	})

	artifact, err := p.Run(context.Background(), []string{"SPK"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	rec := artifact.Records[0]
	if got := rec.Stage2.Fundamentals["pe"]; got != 12.0 {
		t.Fatalf("expected pe from first provider, got %v", got)
	}
	if got := rec.Stage2.Fundamentals["market_cap"]; got != 6.0e9 {
		t.Fatalf("expected market_cap filled by second provider, got %v", got)
	}
}
