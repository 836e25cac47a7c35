package stats

import "math"

// Rolling statistics for the screening pipeline. All functions are pure,
// never panic, and resolve numeric edge cases (zero variance, zero
// denominator, short series) to defined neutral values instead of errors.

// RollingZScore computes the z-score of the latest close against the
// population mean/stddev of the most recent `window` samples (or fewer if
// the series is shorter). Returns 0 when fewer than 2 usable points exist
// or when the window has no variance.
func RollingZScore(closes []float64, window int) float64 {
	w := tail(closes, window)
	if len(w) < 2 {
		return 0
	}
	mean, std := meanStdPop(w)
	if std == 0 {
		return 0
	}
	return (w[len(w)-1] - mean) / std
}

// AnnualizedVolatility computes sqrt(tradingDaysPerYear) * stddev of simple
// period returns r_t = p_t/p_{t-1} - 1. Returns 0 with fewer than 2 returns.
func AnnualizedVolatility(closes []float64, tradingDaysPerYear int) float64 {
	rets := SimpleReturns(closes)
	if len(rets) < 2 {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for _, r := range rets {
		sum += r
		sum2 += r * r
	}
	n := float64(len(rets))
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * float64(tradingDaysPerYear))
}

// SimpleReturns computes r_t = p_t/p_{t-1} - 1. Non-positive prices yield a
// zero return for that step. Returns nil with fewer than 2 closes.
func SimpleReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}

// SMA computes the simple moving average of the most recent `window` closes.
// Absent (ok=false) when the series is shorter than the window.
func SMA(closes []float64, window int) (float64, bool) {
	if window <= 0 || len(closes) < window {
		return 0, false
	}
	w := tail(closes, window)
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	return sum / float64(window), true
}

// RangeCompression measures (max-min)/mean over the trailing window.
// Absent with fewer than window/2 points or a zero mean.
func RangeCompression(closes []float64, window int) (float64, bool) {
	w := tail(closes, window)
	if len(w) < window/2 || len(w) == 0 {
		return 0, false
	}
	lo, hi, sum := w[0], w[0], 0.0
	for _, v := range w {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
		sum += v
	}
	mean := sum / float64(len(w))
	if mean == 0 {
		return 0, false
	}
	return (hi - lo) / mean, true
}

// RSI computes a Wilder-style relative strength index using simple rolling
// means of gains and losses over `period`. Absent with insufficient data or
// when the average loss is zero (undefined division).
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}
	w := tail(closes, period+1)
	gains := 0.0
	losses := 0.0
	for i := 1; i < len(w); i++ {
		d := w[i] - w[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 0, false
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// TrendFromSMA classifies the long-term trend by comparing SMA50 to SMA200.
// Returns "" (absent) when either input is absent.
func TrendFromSMA(sma50, sma200 *float64) string {
	if sma50 == nil || sma200 == nil {
		return ""
	}
	switch {
	case *sma50 > *sma200:
		return "uptrend"
	case *sma50 < *sma200:
		return "downtrend"
	default:
		return "flat"
	}
}

func tail(xs []float64, n int) []float64 {
	if n <= 0 || len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

func meanStdPop(xs []float64) (float64, float64) {
	n := float64(len(xs))
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	mean := sum / n
	ss := 0.0
	for _, v := range xs {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / n)
}
