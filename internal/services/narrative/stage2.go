package narrative

import (
	"fmt"
	"strings"

	"QuantSift/internal/domain/models"
)

// Stage2Builder turns the deep-pass output into sentence fragments the
// reconciler joins into the final narrative.
type Stage2Builder struct{}

func NewStage2Builder() *Stage2Builder { return &Stage2Builder{} }

func (b *Stage2Builder) Build(rec *models.Stage2Record) *models.Stage2Narrative {
	trend := trendSentence(rec.Structure)
	funds := fundamentalsSentence(rec.Fundamentals)
	comp := compressionSentence(rec.Structure.RangeCompression20)

	text := strings.TrimSpace(fmt.Sprintf("%s %s %s 20-day volatility: %s.",
		trend, funds, comp, fmtFloat(rec.Structure.Vol20)))

	return &models.Stage2Narrative{
		Summary:      fmt.Sprintf("%s: deep-dive analysis integrating trend, valuation, and volatility.", rec.Ticker),
		Trend:        trend,
		Fundamentals: funds,
		Volatility:   fmt.Sprintf("20d vol = %s", fmtFloat(rec.Structure.Vol20)),
		Text:         text,
	}
}

func trendSentence(p models.StructureProfile) string {
	if p.Trend == "" {
		return "No identifiable long-term trend."
	}
	base := map[string]string{
		models.TrendUp:   "The long-term trend is upward",
		models.TrendDown: "The long-term trend is downward",
		models.TrendFlat: "The long-term trend is flat",
	}[p.Trend]
	if base == "" {
		base = "Trend is unclear"
	}
	if p.RSI14 == nil {
		return base + "."
	}
	switch {
	case *p.RSI14 > 70:
		return base + ", with RSI indicating overbought conditions."
	case *p.RSI14 < 30:
		return base + ", with RSI indicating oversold conditions."
	default:
		return base + ", with RSI in neutral territory."
	}
}

func fundamentalsSentence(f models.Fundamentals) string {
	if len(f) == 0 {
		return "No fundamentals available."
	}
	var parts []string
	if pe, ok := asFloat(f["pe"]); ok {
		if pe < 10 {
			parts = append(parts, "valuation appears low (PE < 10)")
		} else if pe > 30 {
			parts = append(parts, "valuation appears rich (PE > 30)")
		}
	}
	if mc, ok := asFloat(f["market_cap"]); ok {
		if mc > 50e9 {
			parts = append(parts, "large-cap profile")
		} else if mc < 2e9 {
			parts = append(parts, "small-cap profile")
		}
	}
	if len(parts) == 0 {
		return "Fundamentals retrieved but no strong valuation signals detected."
	}
	return "Fundamentals indicate: " + strings.Join(parts, "; ") + "."
}

func compressionSentence(v *float64) string {
	if v == nil {
		return "Range compression unavailable."
	}
	switch {
	case *v < 0.05:
		return "Price is in a tight consolidation range (high compression)."
	case *v > 0.15:
		return "Price has shown expanded volatility recently."
	default:
		return "Price is in a normal volatility range."
	}
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
