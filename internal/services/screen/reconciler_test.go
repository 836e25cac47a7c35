package screen

import (
	"math"
	"testing"

	"QuantSift/internal/domain/models"
)

func fp(v float64) *float64 { return &v }

func TestReconcileKnownValues(t *testing.T) {
	r := NewReconciler()
	rec := r.Reconcile(ReconcileInputs{
		Stage1:    &models.Stage1Signal{Ticker: "ACME"},
		Relevance: fp(0.8),
		Risk:      fp(0.2),
	})
	// 0.6*0.8 + 0.4*0.8 = 0.80
	if math.Abs(rec.Confidence-0.8) > 1e-9 {
		t.Fatalf("expected 0.80, got %v", rec.Confidence)
	}
	if rec.Ticker != "ACME" {
		t.Fatalf("unexpected ticker %q", rec.Ticker)
	}
}

func TestConfidenceBounded(t *testing.T) {
	r := NewReconciler()
	for rel := 0.0; rel <= 1.0; rel += 0.1 {
		for risk := 0.0; risk <= 1.0; risk += 0.1 {
			rec := r.Reconcile(ReconcileInputs{Relevance: fp(rel), Risk: fp(risk)})
			if rec.Confidence < 0 || rec.Confidence > 1 {
				t.Fatalf("confidence out of range for rel=%v risk=%v: %v", rel, risk, rec.Confidence)
			}
		}
	}
}

func TestReconcileClampsAfterCombination(t *testing.T) {
	r := NewReconciler()
	// out-of-domain inputs partially cancel before bounding
	rec := r.Reconcile(ReconcileInputs{Relevance: fp(2.0), Risk: fp(2.0)})
	// 0.6*2 + 0.4*(-1) = 0.8, inside bounds without clamping
	if math.Abs(rec.Confidence-0.8) > 1e-9 {
		t.Fatalf("expected 0.8, got %v", rec.Confidence)
	}
	rec = r.Reconcile(ReconcileInputs{Relevance: fp(3.0), Risk: fp(0.0)})
	if rec.Confidence != 1.0 {
		t.Fatalf("expected clamp to 1.0, got %v", rec.Confidence)
	}
	rec = r.Reconcile(ReconcileInputs{Relevance: fp(-3.0), Risk: fp(1.0)})
	if rec.Confidence != 0.0 {
		t.Fatalf("expected clamp to 0.0, got %v", rec.Confidence)
	}
}

func TestReconcileMissingInputsNeutral(t *testing.T) {
	r := NewReconciler()
	rec := r.Reconcile(ReconcileInputs{Stage1: &models.Stage1Signal{Ticker: "X"}})
	if rec.Confidence != 0.5 {
		t.Fatalf("expected neutral 0.5, got %v", rec.Confidence)
	}
	rec = r.Reconcile(ReconcileInputs{Relevance: fp(0.9)})
	if rec.Confidence != 0.5 {
		t.Fatalf("expected neutral 0.5 with missing risk, got %v", rec.Confidence)
	}
}

func TestNarrativeJoinSkipsEmptyFragments(t *testing.T) {
	r := NewReconciler()
	rec := r.Reconcile(ReconcileInputs{
		Relevance: fp(0.5),
		Risk:      fp(0.5),
		Fragments: []string{"Trend is upward.", "", "Catalysts: earnings.", ""},
	})
	want := "Trend is upward. Catalysts: earnings."
	if rec.Narrative != want {
		t.Fatalf("expected %q, got %q", want, rec.Narrative)
	}
}

func TestReconcileTickerFallsBackToStage2(t *testing.T) {
	r := NewReconciler()
	rec := r.Reconcile(ReconcileInputs{Stage2: &models.Stage2Record{Ticker: "DEEP"}})
	if rec.Ticker != "DEEP" {
		t.Fatalf("expected stage2 ticker fallback, got %q", rec.Ticker)
	}
}
