package screen

import "QuantSift/internal/domain/models"

// Confidence combination weights. They sum to 1; results are clamped after
// combination, never before, so partial cancellation is preserved.
const (
	relevanceWeight = 0.6
	riskWeight      = 0.4
)

// ReconcileInputs gathers one instrument's stage outputs with the
// externally produced relevance/risk scores and narrative fragments.
// Nil relevance or risk means the input was missing.
type ReconcileInputs struct {
	Stage1    *models.Stage1Signal
	Stage2    *models.Stage2Record
	Relevance *float64
	Risk      *float64
	Fragments []string
}

// Reconciler merges both stages into the terminal record.
type Reconciler struct{}

func NewReconciler() *Reconciler { return &Reconciler{} }

// Reconcile computes confidence = clamp(0.6*relevance + 0.4*(1-risk), 0, 1)
// and assembles the final narrative from the fragments in order, skipping
// empty ones. Missing relevance or risk defaults confidence to the neutral
// midpoint 0.5.
func (r *Reconciler) Reconcile(in ReconcileInputs) *models.ReconciledRecord {
	confidence := 0.5
	if in.Relevance != nil && in.Risk != nil {
		confidence = clamp01(relevanceWeight**in.Relevance + riskWeight*(1-*in.Risk))
	}

	narrative := joinFragments(in.Fragments)

	ticker := ""
	if in.Stage1 != nil {
		ticker = in.Stage1.Ticker
	} else if in.Stage2 != nil {
		ticker = in.Stage2.Ticker
	}

	return &models.ReconciledRecord{
		Ticker:     ticker,
		Stage1:     in.Stage1,
		Stage2:     in.Stage2,
		Narrative:  narrative,
		Confidence: round3(confidence),
	}
}

func joinFragments(fragments []string) string {
	out := ""
	for _, f := range fragments {
		if f == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += f
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
