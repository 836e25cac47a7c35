package screen

import (
	"math"
	"sort"

	"QuantSift/internal/domain/models"
)

// Gate applies threshold-based admission control between the cheap screen
// and the expensive deep pass.
type Gate struct {
	ScoreThreshold float64 // |score| needed for admission, default 2.0
	MaxSignals     int     // optional cap per run, 0 = unlimited
}

func NewGate(scoreThreshold float64, maxSignals int) Gate {
	if scoreThreshold <= 0 {
		scoreThreshold = 2.0
	}
	return Gate{ScoreThreshold: scoreThreshold, MaxSignals: maxSignals}
}

// Admit selects the subset warranting Stage 2. Candidates are ordered by
// |score| descending, ticker ascending on ties, so re-running on the same
// signal set always yields the same admitted subset in the same order.
func (g Gate) Admit(signals []*models.Stage1Signal) []*models.Stage1Signal {
	admitted := make([]*models.Stage1Signal, 0, len(signals))
	for _, s := range signals {
		if s == nil {
			continue
		}
		if math.Abs(s.Score) >= g.ScoreThreshold {
			admitted = append(admitted, s)
		}
	}
	sort.SliceStable(admitted, func(i, j int) bool {
		ai, aj := math.Abs(admitted[i].Score), math.Abs(admitted[j].Score)
		if ai != aj {
			return ai > aj
		}
		return admitted[i].Ticker < admitted[j].Ticker
	})
	if g.MaxSignals > 0 && len(admitted) > g.MaxSignals {
		admitted = admitted[:g.MaxSignals]
	}
	return admitted
}
