package calculator

import (
	"math"

	"TitanQuant/internal/model"
)

// ATR computes the average true range as a simple moving average of the true
// range over the trailing period. True range for the first bar degrades to
// high−low since no previous close exists. Returns NaN when fewer than
// period bars are available.
func ATR(series model.Series, period int) float64 {
	if period <= 0 || len(series) < period {
		return math.NaN()
	}

	trs := make([]float64, len(series))
	for i, b := range series {
		tr := b.High - b.Low
		if i > 0 {
			prevClose := series[i-1].Close
			tr = math.Max(tr, math.Abs(b.High-prevClose))
			tr = math.Max(tr, math.Abs(b.Low-prevClose))
		}
		trs[i] = tr
	}
	return SMA(trs, period)
}
