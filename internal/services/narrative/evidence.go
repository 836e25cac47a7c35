package narrative

import (
	"math"

	"QuantSift/internal/domain/models"
)

// Evidence derives the relevance and risk scores the reconciler combines
// into confidence. Both live in [0,1].
type Evidence struct{}

func NewEvidence() *Evidence { return &Evidence{} }

// Relevance rewards a complete structure profile: each present statistic
// contributes equally, so a fully absent profile scores 0 and a full one 1.
func (Evidence) Relevance(rec *models.Stage2Record) float64 {
	if rec == nil {
		return 0
	}
	p := rec.Structure
	present := 0
	for _, v := range []*float64{p.SMA20, p.SMA50, p.SMA200, p.Vol20, p.RangeCompression20, p.RSI14} {
		if v != nil {
			present++
		}
	}
	total := 7.0
	score := float64(present)
	if p.Trend != "" {
		score++
	}
	return score / total
}

// Risk maps anomaly magnitude to a 0..1 risk rating: |z| of 5 or more is
// maximum risk.
func (Evidence) Risk(sig *models.Stage1Signal) float64 {
	if sig == nil {
		return 0
	}
	r := math.Abs(sig.Anomaly.ZScore) / 5.0
	if r > 1 {
		r = 1
	}
	return r
}
