package calculator

import "math"

// RSI computes the relative strength index as the ratio of simple-averaged
// gains to simple-averaged losses over the trailing period. When the average
// loss is zero the result is 100 for a rising window and 50 for a flat one,
// so a no-movement series does not read as overbought.
// Needs period+1 closes; returns NaN otherwise.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return math.NaN()
	}

	var avgGain, avgLoss float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		if avgGain > 0 {
			return 100.0
		}
		return 50.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
