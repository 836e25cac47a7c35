package repository

// Default lookback windows, in calendar days, for the two pipeline stages.
const (
	DefaultStage1LookbackDays = 14
	DefaultStage2LookbackDays = 180
)

// NormalizeLookback converts a raw request value to a usable day count,
// falling back to def for non-positive inputs.
func NormalizeLookback(days, def int) int {
	if days <= 0 {
		return def
	}
	return days
}
