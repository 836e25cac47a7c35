package models

// Stage1Narrative annotates a Stage1Signal with human-readable context.
// Narrative fields never feed back into numeric scoring.
type Stage1Narrative struct {
	Summary string             `json:"summary"`
	Tags    []string           `json:"tags,omitempty"`
	Drivers map[string]float64 `json:"drivers,omitempty"`
	Text    string             `json:"text"`
}

// Stage2Narrative annotates a Stage2Record with sentence fragments used by
// the reconciler's final narrative join.
type Stage2Narrative struct {
	Summary      string `json:"summary"`
	Trend        string `json:"trend,omitempty"`
	Fundamentals string `json:"fundamentals,omitempty"`
	Volatility   string `json:"volatility,omitempty"`
	Text         string `json:"text"`
}
