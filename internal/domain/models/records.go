package models

import "time"

// AnomalySignal is the cheap Stage 1 statistical readout for one instrument.
// Invariant: NPoints == 0 implies ZScore == 0 and Volatility == 0.
type AnomalySignal struct {
	ZScore     float64 `json:"z_score"`
	Volatility float64 `json:"volatility"`
	NPoints    int     `json:"n_points"`
}

// MacroWeightMin and MacroWeightMax bound the macro backdrop weight.
// Positive values are a tailwind, negative a headwind, zero neutral.
const (
	MacroWeightMin = -2.0
	MacroWeightMax = 2.0
)

// MacroReading is the macro collaborator's answer. Available=false means the
// source was unconfigured or unreachable and the weight is the neutral zero,
// which is a defined state, not an error.
type MacroReading struct {
	Weight    float64 `json:"weight"`
	Available bool    `json:"available"`
}

// MaxNewsTitles caps how many headline titles a NewsPresence carries.
const MaxNewsTitles = 5

// NewsPresence summarizes recent headline activity for one instrument.
type NewsPresence struct {
	Count        int      `json:"count"`
	Titles       []string `json:"titles,omitempty"`
	LookbackDays int      `json:"lookback_days"`
}

// Stage1Signal is the per-instrument output of the anomaly screen.
// Created once per scan cycle; immutable afterwards except for the
// additive Narrative attachment.
type Stage1Signal struct {
	Ticker        string           `json:"ticker"`
	Anomaly       AnomalySignal    `json:"anomaly"`
	MacroWeight   float64          `json:"macro_weight"`
	News          NewsPresence     `json:"news"`
	RealtimePrice *float64         `json:"realtime_price,omitempty"`
	Score         float64          `json:"score"`
	Severity      float64          `json:"severity"`
	Reason        string           `json:"reason"`
	Degraded      []string         `json:"degraded,omitempty"`
	Narrative     *Stage1Narrative `json:"narrative,omitempty"`
}

// Trend classification for the long-window structure profile.
const (
	TrendUp   = "uptrend"
	TrendDown = "downtrend"
	TrendFlat = "flat"
)

// StructureProfile holds long-window structural statistics. Every field is
// independently absent-capable (nil pointer / empty Trend): insufficient
// history for one statistic never blocks the others.
type StructureProfile struct {
	SMA20              *float64 `json:"sma20,omitempty"`
	SMA50              *float64 `json:"sma50,omitempty"`
	SMA200             *float64 `json:"sma200,omitempty"`
	Vol20              *float64 `json:"vol20,omitempty"`
	RangeCompression20 *float64 `json:"range_compression20,omitempty"`
	Trend              string   `json:"trend,omitempty"`
	RSI14              *float64 `json:"rsi14,omitempty"`
}

// Fundamentals maps named ratios (pe, pb, market_cap, ...) unioned from
// multiple sources, first-writer-wins per key in configured provider order.
type Fundamentals map[string]any

// MergeFundamentals unions sources left to right; the first non-nil value
// for a key wins and is never overwritten.
func MergeFundamentals(sources ...Fundamentals) Fundamentals {
	out := Fundamentals{}
	for _, src := range sources {
		for k, v := range src {
			if v == nil {
				continue
			}
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out
}

// SourceMeta records which collaborators contributed to a Stage2Record.
type SourceMeta struct {
	HistoryPoints      int      `json:"history_points"`
	FundamentalSources []string `json:"fundamental_sources,omitempty"`
}

// Stage2Record is the deep analysis output for one admitted instrument.
type Stage2Record struct {
	Ticker       string           `json:"ticker"`
	GeneratedAt  time.Time        `json:"generated_at"`
	Structure    StructureProfile `json:"structure"`
	Fundamentals Fundamentals     `json:"fundamentals,omitempty"`
	Meta         SourceMeta       `json:"meta"`
	Narrative    *Stage2Narrative `json:"narrative,omitempty"`
}

// ReconciledRecord is the terminal per-instrument artifact: both stage
// outputs, the assembled narrative, and the bounded confidence score.
type ReconciledRecord struct {
	Ticker     string        `json:"ticker"`
	Stage1     *Stage1Signal `json:"stage1"`
	Stage2     *Stage2Record `json:"stage2"`
	Narrative  string        `json:"narrative"`
	Confidence float64       `json:"confidence"`
}

// ScanArtifact is the per-run record produced at the pipeline boundary:
// every Stage1Signal, the admitted subset, the reconciled records, and
// per-instrument error markers for instruments that could not be processed.
type ScanArtifact struct {
	RunID      string              `json:"run_id"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Universe   []string            `json:"universe"`
	Signals    []*Stage1Signal     `json:"signals"`
	Admitted   []string            `json:"admitted"`
	Records    []*ReconciledRecord `json:"records"`
	Errors     map[string]string   `json:"errors,omitempty"`
	DryRun     bool                `json:"dry_run,omitempty"`
}

// AdmittedSet returns the admitted tickers as a lookup set.
func (a *ScanArtifact) AdmittedSet() map[string]bool {
	set := make(map[string]bool, len(a.Admitted))
	for _, t := range a.Admitted {
		set[t] = true
	}
	return set
}
