package service

import (
	"QuantSift/internal/domain/models"
)

// Stage1NarrativeBuilder turns a Stage1Signal's numeric drivers into a short
// summary, tags, and narrative text. One-way: it never feeds scoring.
type Stage1NarrativeBuilder interface {
	Build(sig *models.Stage1Signal) *models.Stage1Narrative
}

// Stage2NarrativeBuilder turns a Stage2Record into sentence fragments for
// the reconciler's final narrative.
type Stage2NarrativeBuilder interface {
	Build(rec *models.Stage2Record) *models.Stage2Narrative
}

// EvidenceScorer produces the externally-supplied relevance and risk scores,
// both in [0,1], consumed by the reconciler's confidence formula.
type EvidenceScorer interface {
	Relevance(rec *models.Stage2Record) float64
	Risk(sig *models.Stage1Signal) float64
}
