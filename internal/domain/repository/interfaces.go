package repository

import (
	"context"
	"time"

	"QuantSift/internal/domain/models"
)

// PriceProvider fetches daily close history for a ticker. An empty series is
// a valid answer; an error means the collaborator itself failed.
type PriceProvider interface {
	DailyHistory(ctx context.Context, ticker string, days int) (models.PriceSeries, error)
}

// MacroProvider returns the market-wide macro backdrop weight, already
// clamped to [models.MacroWeightMin, models.MacroWeightMax]. An unconfigured
// provider answers a neutral reading (Available=false), not an error.
type MacroProvider interface {
	Weight(ctx context.Context) (models.MacroReading, error)
}

// NewsProvider reports recent headline presence for a ticker.
type NewsProvider interface {
	Recent(ctx context.Context, ticker string, lookbackDays int) (models.NewsPresence, error)
}

// FundamentalsProvider fetches named ratio fields for a ticker. Providers are
// called in an explicitly configured precedence order; the first non-nil
// value per field wins.
type FundamentalsProvider interface {
	Source() string
	Fetch(ctx context.Context, ticker string) (models.Fundamentals, error)
}

// QuoteStream supplies the optional realtime confirmation price.
type QuoteStream interface {
	Start(ctx context.Context) error
	LastPrice(ticker string) (float64, bool)
	Close() error
}

// ArtifactStore persists scan artifacts and serves them back to the API.
type ArtifactStore interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, a *models.ScanArtifact) error
	LatestRun(ctx context.Context) (*models.ScanArtifact, error)
	RunByID(ctx context.Context, runID string) (*models.ScanArtifact, error)
	RecordsByTicker(ctx context.Context, ticker string, since time.Time, limit int) ([]*models.ReconciledRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// RecordPublisher ships reconciled records downstream.
type RecordPublisher interface {
	PublishRecords(ctx context.Context, runID string, recs []*models.ReconciledRecord) error
	Close() error
}

// Metrics records pipeline observability counters.
type Metrics interface {
	RecordScan(scanned, admitted, failed int)
	RecordDegradedInput(input string)
	RecordInstrumentError(ticker string)
	RecordStageLatency(stage string, seconds float64)
	RecordCompositeScore(ticker string, score float64)
	RecordConfidence(ticker string, confidence float64)
}
