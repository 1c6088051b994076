package calculator

import (
	"math"

	"TitanQuant/internal/model"
)

// MACD returns the EMA12−EMA26 difference line, its EMA9 signal, the
// histogram, and the cross state at the last bar: golden when the line has
// just crossed above the signal, death when just below, none otherwise.
func MACD(closes []float64) (line, signal, hist float64, cross string) {
	if len(closes) == 0 {
		return math.NaN(), math.NaN(), math.NaN(), model.CrossNone
	}

	fast := EMASeries(closes, 12)
	slow := EMASeries(closes, 26)
	diff := make([]float64, len(closes))
	for i := range closes {
		diff[i] = fast[i] - slow[i]
	}
	sig := EMASeries(diff, 9)

	n := len(closes) - 1
	line = diff[n]
	signal = sig[n]
	hist = line - signal

	cross = model.CrossNone
	if n >= 1 {
		prev := diff[n-1] - sig[n-1]
		switch {
		case prev <= 0 && hist > 0:
			cross = model.CrossGolden
		case prev >= 0 && hist < 0:
			cross = model.CrossDeath
		}
	}
	return line, signal, hist, cross
}
