package calculator

import "math"

// SafeRound clamps NaN and ±Inf to 0 and rounds to the given number of
// decimals. Applied once at the snapshot boundary so non-finite values from
// short windows never propagate downstream.
func SafeRound(val float64, decimals int) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0.0
	}
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
