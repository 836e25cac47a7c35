package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"QuantSift/internal/domain/models"
	"QuantSift/internal/domain/repository"
	"QuantSift/internal/domain/service"
	"QuantSift/internal/services/narrative"
	"QuantSift/internal/services/screen"
	"QuantSift/pkg/logger"
)

// PipelineConfig carries the per-run knobs the scan pipeline needs.
// Zero values are replaced with defaults by Normalize.
type PipelineConfig struct {
	Stage1LookbackDays int
	Stage2LookbackDays int
	NewsLookbackDays   int
	Concurrency        int
	DryRun             bool
}

func (c PipelineConfig) Normalize() PipelineConfig {
	c.Stage1LookbackDays = repository.NormalizeLookback(c.Stage1LookbackDays, repository.DefaultStage1LookbackDays)
	c.Stage2LookbackDays = repository.NormalizeLookback(c.Stage2LookbackDays, repository.DefaultStage2LookbackDays)
	if c.NewsLookbackDays <= 0 {
		c.NewsLookbackDays = 7
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
	return c
}

// ScanPipeline runs the two-stage screen: score every instrument in the
// universe, admit the strongest signals through the gate, build structure
// profiles for the admitted set and reconcile both stages into final records.
type ScanPipeline struct {
	cfg PipelineConfig

	prices       repository.PriceProvider
	macro        repository.MacroProvider
	news         repository.NewsProvider
	fundamentals []repository.FundamentalsProvider
	quotes       repository.QuoteStream

	scorer     *screen.AnomalyScorer
	gate       screen.Gate
	analyzer   *screen.StructureAnalyzer
	reconciler *screen.Reconciler

	stage1Narrative service.Stage1NarrativeBuilder
	stage2Narrative service.Stage2NarrativeBuilder
	evidence        service.EvidenceScorer

	metrics repository.Metrics
	log     *logger.Logger
}

type PipelineDeps struct {
	Prices       repository.PriceProvider
	Macro        repository.MacroProvider
	News         repository.NewsProvider
	Fundamentals []repository.FundamentalsProvider
	Quotes       repository.QuoteStream
	Scorer       *screen.AnomalyScorer
	Gate         screen.Gate
	Analyzer     *screen.StructureAnalyzer
	Reconciler   *screen.Reconciler
	Metrics      repository.Metrics
	Logger       *logger.Logger
}

func NewScanPipeline(cfg PipelineConfig, deps PipelineDeps) *ScanPipeline {
	return &ScanPipeline{
		cfg:             cfg.Normalize(),
		prices:          deps.Prices,
		macro:           deps.Macro,
		news:            deps.News,
		fundamentals:    deps.Fundamentals,
		quotes:          deps.Quotes,
		scorer:          deps.Scorer,
		gate:            deps.Gate,
		analyzer:        deps.Analyzer,
		reconciler:      deps.Reconciler,
		stage1Narrative: narrative.NewStage1Builder(),
		stage2Narrative: narrative.NewStage2Builder(),
		evidence:        narrative.NewEvidence(),
		metrics:         deps.Metrics,
		log:             deps.Logger,
	}
}

type stage1Result struct {
	signal *models.Stage1Signal
	err    error
}

// Run executes a full scan over the universe and returns the assembled
// artifact. Individual instrument failures are recorded in the artifact's
// error map and never abort the run.
func (p *ScanPipeline) Run(ctx context.Context, universe []string) (*models.ScanArtifact, error) {
	if len(universe) == 0 {
		return nil, fmt.Errorf("scan: empty universe")
	}

	started := time.Now().UTC()
	artifact := &models.ScanArtifact{
		RunID:     newRunID(started),
		StartedAt: started,
		Universe:  append([]string(nil), universe...),
		Errors:    make(map[string]string),
		DryRun:    p.cfg.DryRun,
	}

	p.log.Info("scan started",
		logger.String("run_id", artifact.RunID),
		logger.Int("universe", len(universe)),
	)

	// The macro reading is shared by every instrument in the run, so it is
	// fetched once. A failed fetch degrades to the neutral weight.
	macro := p.fetchMacro(ctx)

	stage1Start := time.Now()
	signals, errs := p.runStage1(ctx, universe, macro)
	p.metrics.RecordStageLatency("stage1", time.Since(stage1Start).Seconds())
	for ticker, msg := range errs {
		artifact.Errors[ticker] = msg
	}

	sort.Slice(signals, func(i, j int) bool {
		if a, b := absScore(signals[i]), absScore(signals[j]); a != b {
			return a > b
		}
		return signals[i].Ticker < signals[j].Ticker
	})
	artifact.Signals = signals

	admitted := p.gate.Admit(signals)
	artifact.Admitted = make([]string, 0, len(admitted))
	for _, s := range admitted {
		artifact.Admitted = append(artifact.Admitted, s.Ticker)
	}

	stage2Start := time.Now()
	records, recErrs := p.runStage2(ctx, admitted)
	p.metrics.RecordStageLatency("stage2", time.Since(stage2Start).Seconds())
	for ticker, msg := range recErrs {
		artifact.Errors[ticker] = msg
	}
	artifact.Records = records

	artifact.FinishedAt = time.Now().UTC()
	p.metrics.RecordScan(len(universe), len(admitted), len(artifact.Errors))
	p.log.Info("scan finished",
		logger.String("run_id", artifact.RunID),
		logger.Int("signals", len(signals)),
		logger.Int("admitted", len(admitted)),
		logger.Int("errors", len(artifact.Errors)),
		logger.Duration("took", artifact.FinishedAt.Sub(started)),
	)
	return artifact, nil
}

func (p *ScanPipeline) fetchMacro(ctx context.Context) models.MacroReading {
	reading, err := p.macro.Weight(ctx)
	if err != nil {
		p.log.Warn("macro fetch failed, using neutral weight", logger.Error(err))
		p.metrics.RecordDegradedInput("macro")
		return models.MacroReading{Weight: 0, Available: false}
	}
	return reading
}

func (p *ScanPipeline) runStage1(ctx context.Context, universe []string, macro models.MacroReading) ([]*models.Stage1Signal, map[string]string) {
	var (
		mu      sync.Mutex
		signals []*models.Stage1Signal
		errs    = make(map[string]string)
	)

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range jobs {
				sig, err := p.scoreOne(ctx, ticker, macro)
				mu.Lock()
				if err != nil {
					errs[ticker] = err.Error()
					p.metrics.RecordInstrumentError(ticker)
				} else {
					signals = append(signals, sig)
				}
				mu.Unlock()
			}
		}()
	}
	for _, ticker := range universe {
		jobs <- ticker
	}
	close(jobs)
	wg.Wait()

	return signals, errs
}

// scoreOne produces the stage 1 signal for a single instrument. A panic in
// provider code is contained here so one bad instrument cannot take down
// the run.
func (p *ScanPipeline) scoreOne(ctx context.Context, ticker string, macro models.MacroReading) (sig *models.Stage1Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			sig = nil
			err = fmt.Errorf("panic scoring %s: %v", ticker, r)
		}
	}()

	series, err := p.prices.DailyHistory(ctx, ticker, p.cfg.Stage1LookbackDays)
	if err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}
	series.Ticker = ticker

	inputs := screen.Stage1Inputs{Series: series, Macro: macro}
	if !macro.Available {
		inputs.Degraded = append(inputs.Degraded, "macro")
	}

	news, err := p.news.Recent(ctx, ticker, p.cfg.NewsLookbackDays)
	if err != nil {
		p.metrics.RecordDegradedInput("news")
		inputs.Degraded = append(inputs.Degraded, "news")
		news = models.NewsPresence{LookbackDays: p.cfg.NewsLookbackDays}
	}
	inputs.News = news

	if p.quotes != nil {
		if last, ok := p.quotes.LastPrice(ticker); ok {
			inputs.RealtimePrice = &last
		}
	}

	sig = p.scorer.Score(inputs)
	sig.Narrative = p.stage1Narrative.Build(sig)
	p.metrics.RecordCompositeScore(sig.Ticker, sig.Score)
	return sig, nil
}

func (p *ScanPipeline) runStage2(ctx context.Context, admitted []*models.Stage1Signal) ([]*models.ReconciledRecord, map[string]string) {
	var (
		mu      sync.Mutex
		byTick  = make(map[string]*models.ReconciledRecord, len(admitted))
		errs    = make(map[string]string)
		jobs    = make(chan *models.Stage1Signal)
		wg      sync.WaitGroup
		workers = p.cfg.Concurrency
	)
	if workers > len(admitted) && len(admitted) > 0 {
		workers = len(admitted)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sig := range jobs {
				rec, err := p.analyzeOne(ctx, sig)
				mu.Lock()
				if err != nil {
					errs[sig.Ticker] = err.Error()
					p.metrics.RecordInstrumentError(sig.Ticker)
				} else {
					byTick[sig.Ticker] = rec
				}
				mu.Unlock()
			}
		}()
	}
	for _, sig := range admitted {
		jobs <- sig
	}
	close(jobs)
	wg.Wait()

	// Records keep the gate's admission order.
	records := make([]*models.ReconciledRecord, 0, len(byTick))
	for _, sig := range admitted {
		if rec, ok := byTick[sig.Ticker]; ok {
			records = append(records, rec)
		}
	}
	return records, errs
}

func (p *ScanPipeline) analyzeOne(ctx context.Context, sig *models.Stage1Signal) (rec *models.ReconciledRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("panic analyzing %s: %v", sig.Ticker, r)
		}
	}()

	series, err := p.prices.DailyHistory(ctx, sig.Ticker, p.cfg.Stage2LookbackDays)
	if err != nil {
		// Stage 2 without price history still produces a record; every
		// structure field just stays absent.
		p.log.Warn("stage2 price history unavailable",
			logger.String("ticker", sig.Ticker), logger.Error(err))
		p.metrics.RecordDegradedInput("prices")
		series = models.PriceSeries{Ticker: sig.Ticker}
	}
	series.Ticker = sig.Ticker

	var provided []screen.ProviderFundamentals
	for _, fp := range p.fundamentals {
		fields, ferr := fp.Fetch(ctx, sig.Ticker)
		if ferr != nil {
			p.metrics.RecordDegradedInput("fundamentals")
			p.log.Warn("fundamentals fetch failed",
				logger.String("ticker", sig.Ticker),
				logger.String("source", fp.Source()),
				logger.Error(ferr),
			)
			continue
		}
		provided = append(provided, screen.ProviderFundamentals{Source: fp.Source(), Fields: fields})
	}

	stage2 := p.analyzer.Analyze(series, provided)
	stage2.Narrative = p.stage2Narrative.Build(stage2)

	relevance := p.evidence.Relevance(stage2)
	risk := p.evidence.Risk(sig)

	fragments := []string{
		stage2.Narrative.Trend,
		stage2.Narrative.Fundamentals,
		stage2.Narrative.Volatility,
	}
	if sig.Narrative != nil {
		fragments = append(fragments, sig.Narrative.Summary)
	}

	rec = p.reconciler.Reconcile(screen.ReconcileInputs{
		Stage1:    sig,
		Stage2:    stage2,
		Relevance: &relevance,
		Risk:      &risk,
		Fragments: fragments,
	})
	p.metrics.RecordConfidence(rec.Ticker, rec.Confidence)
	return rec, nil
}

func absScore(s *models.Stage1Signal) float64 {
	if s.Score < 0 {
		return -s.Score
	}
	return s.Score
}

func newRunID(t time.Time) string {
	return "scan-" + t.Format("20060102T150405.000000000")
}
