package narrative

import (
	"fmt"

	"QuantSift/internal/domain/models"
)

// Stage1Builder produces deterministic, cost-free narrative context for
// anomaly-screen signals: a one-line summary, tags, driver breakdown, and a
// short narrative. Output is attached to signals and never read back by the
// scoring path.
type Stage1Builder struct{}

func NewStage1Builder() *Stage1Builder { return &Stage1Builder{} }

func (b *Stage1Builder) Build(sig *models.Stage1Signal) *models.Stage1Narrative {
	z := sig.Anomaly.ZScore
	macro := sig.MacroWeight
	newsCount := sig.News.Count

	direction := "up"
	if z < 0 {
		direction = "down"
	}

	drivers := map[string]float64{
		"price_anomaly": z,
		"macro_weight":  macro,
		"news_count":    float64(newsCount),
		"volatility":    sig.Anomaly.Volatility,
	}

	first := fmt.Sprintf("The price action indicates a %s movement, with a z-score of %.2f.", wordsFor(tagForZ(z)), z)
	second := ""
	if macro > 0 {
		second = fmt.Sprintf("Macro conditions offer mild support (macro weight %.2f).", macro)
	} else if macro < 0 {
		second = fmt.Sprintf("Macro conditions are acting as a headwind (macro weight %.2f).", macro)
	}
	if newsCount > 0 {
		if second != "" {
			second += " "
		}
		second += fmt.Sprintf("Recent news activity (%d items) may be influencing sentiment.", newsCount)
	}
	text := first
	if second != "" {
		text += " " + second
	}

	return &models.Stage1Narrative{
		Summary: fmt.Sprintf("%s shows a %sward price anomaly (z=%.2f).", sig.Ticker, direction, z),
		Tags:    []string{tagForZ(z), tagForMacro(macro), tagForNews(newsCount)},
		Drivers: drivers,
		Text:    text,
	}
}

func tagForZ(z float64) string {
	switch {
	case z >= 4:
		return "extreme-up"
	case z >= 2:
		return "strong-up"
	case z >= 1:
		return "moderate-up"
	case z <= -4:
		return "extreme-down"
	case z <= -2:
		return "strong-down"
	case z <= -1:
		return "moderate-down"
	default:
		return "neutral"
	}
}

func tagForMacro(w float64) string {
	switch {
	case w > 1.0:
		return "macro-supportive"
	case w > 0.2:
		return "macro-positive"
	case w < -1.0:
		return "macro-headwind"
	case w < -0.2:
		return "macro-negative"
	default:
		return "macro-neutral"
	}
}

func tagForNews(count int) string {
	switch {
	case count >= 5:
		return "heavy-news"
	case count >= 2:
		return "moderate-news"
	case count == 1:
		return "single-news"
	default:
		return "no-news"
	}
}

func wordsFor(tag string) string {
	out := make([]byte, len(tag))
	for i := 0; i < len(tag); i++ {
		if tag[i] == '-' {
			out[i] = ' '
		} else {
			out[i] = tag[i]
		}
	}
	return string(out)
}
