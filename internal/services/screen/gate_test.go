package screen

import (
	"testing"

	"QuantSift/internal/domain/models"
)

func sigs(pairs ...any) []*models.Stage1Signal {
	out := make([]*models.Stage1Signal, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, &models.Stage1Signal{
			Ticker: pairs[i].(string),
			Score:  pairs[i+1].(float64),
		})
	}
	return out
}

func tickersOf(in []*models.Stage1Signal) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.Ticker
	}
	return out
}

func TestGateThreshold(t *testing.T) {
	g := NewGate(2.0, 0)
	admitted := g.Admit(sigs("A", 1.9, "B", 2.0, "C", -2.5, "D", 0.0))
	got := tickersOf(admitted)
	want := []string{"C", "B"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestGateCapAndTieBreak(t *testing.T) {
	g := NewGate(2.0, 2)
	// B and A tie on |score|; ticker order decides
	admitted := g.Admit(sigs("B", 3.0, "A", -3.0, "C", 2.5))
	got := tickersOf(admitted)
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("expected [A B], got %v", got)
	}
}

func TestGateIdempotent(t *testing.T) {
	g := NewGate(2.0, 3)
	in := sigs("E", 2.2, "A", -4.1, "C", 2.2, "B", 9.0, "D", 1.0)

	first := tickersOf(g.Admit(in))
	second := tickersOf(g.Admit(in))
	if len(first) != len(second) {
		t.Fatalf("idempotence violated: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("idempotence violated: %v vs %v", first, second)
		}
	}
}

func TestGateSkipsNil(t *testing.T) {
	g := NewGate(2.0, 0)
	in := append(sigs("A", 5.0), nil)
	if got := tickersOf(g.Admit(in)); len(got) != 1 || got[0] != "A" {
		t.Fatalf("expected [A], got %v", got)
	}
}
