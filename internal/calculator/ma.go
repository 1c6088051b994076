package calculator

import "math"

// SMA computes the simple moving average over the trailing period.
// Returns NaN when fewer than period values are available; the snapshot
// sanitizer turns that into a zeroed field.
func SMA(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return math.NaN()
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period)
}

// EMA computes the exponential moving average with smoothing 2/(period+1),
// seeded at the first available value, and returns the value at the last bar.
func EMA(prices []float64, period int) float64 {
	s := EMASeries(prices, period)
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1]
}

// EMASeries returns the full exponential average series. Every position is
// defined from the first value onward (no warm-up window).
func EMASeries(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) == 0 {
		return nil
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(prices))
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = alpha*prices[i] + (1-alpha)*out[i-1]
	}
	return out
}
