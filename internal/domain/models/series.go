package models

import "time"

// PricePoint is one daily sample of an instrument's price history.
type PricePoint struct {
	TS     time.Time `json:"ts"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume,omitempty"`
}

// PriceSeries holds an instrument's price history, ascending by time,
// no duplicate timestamps. Never mutated after construction; the stage
// that fetched it is its sole owner.
type PriceSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of samples.
func (s PriceSeries) Len() int { return len(s.Points) }

// Closes returns the close prices in time order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Volumes returns the volume column in time order.
func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Volume
	}
	return out
}

// LastClose returns the most recent close, or (0, false) on an empty series.
func (s PriceSeries) LastClose() (float64, bool) {
	if len(s.Points) == 0 {
		return 0, false
	}
	return s.Points[len(s.Points)-1].Close, true
}
