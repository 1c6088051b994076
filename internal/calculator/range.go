package calculator

import "math"

// TrailingHigh scans the most recent n values and returns the maximum.
func TrailingHigh(values []float64, n int) float64 {
	if len(values) == 0 || n <= 0 {
		return math.NaN()
	}
	start := len(values) - n
	if start < 0 {
		start = 0
	}
	high := math.Inf(-1)
	for _, v := range values[start:] {
		if v > high {
			high = v
		}
	}
	return high
}

// TrailingLow scans the most recent n values and returns the minimum.
func TrailingLow(values []float64, n int) float64 {
	if len(values) == 0 || n <= 0 {
		return math.NaN()
	}
	start := len(values) - n
	if start < 0 {
		start = 0
	}
	low := math.Inf(1)
	for _, v := range values[start:] {
		if v < low {
			low = v
		}
	}
	return low
}

// VolumeRatio divides the current bar's volume by the mean volume of the
// preceding n bars, excluding the current one. Guarded to 1.0 when there is
// no usable history, so thin series read as neutral participation.
func VolumeRatio(volumes []float64, n int) float64 {
	if n <= 0 || len(volumes) < n+1 {
		return 1.0
	}
	sum := 0.0
	for i := len(volumes) - n - 1; i < len(volumes)-1; i++ {
		sum += volumes[i]
	}
	avg := sum / float64(n)
	if avg <= 0 || math.IsNaN(avg) {
		return 1.0
	}
	return volumes[len(volumes)-1] / avg
}
