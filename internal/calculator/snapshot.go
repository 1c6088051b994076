// Package calculator computes technical indicators over a canonical daily
// series. All functions are pure; windows are trailing and right-aligned at
// the last bar. Insufficient data yields NaN internally and zeroed fields at
// the snapshot boundary, never an error.
package calculator

import (
	"math"

	"TitanQuant/internal/model"
)

// minBars is the floor below which no indicator is meaningful.
const minBars = 5

// Compute derives the full indicator snapshot from the last bar of a series.
// Fewer than 5 bars yields an all-default snapshot. Every numeric output
// passes through SafeRound so NaN/±Inf never leave this package.
func Compute(series model.Series) model.Snapshot {
	if len(series) < minBars {
		return model.Snapshot{MACDCross: model.CrossNone, MAAlignment: model.AlignIndeterminate}
	}

	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	volumes := series.Volumes()
	price := closes[len(closes)-1]

	ma5 := SMA(closes, 5)
	ma10 := SMA(closes, 10)
	ma20 := SMA(closes, 20)
	ma60 := SMA(closes, 60)
	macdLine, macdSignal, macdHist, cross := MACD(closes)

	bias := 0.0
	if !math.IsNaN(ma5) && ma5 != 0 {
		bias = (price - ma5) / ma5 * 100
	}

	alignment := model.AlignIndeterminate
	if !anyNaN(ma5, ma10, ma20, ma60) {
		switch {
		case ma5 > ma10 && ma10 > ma20 && ma20 > ma60:
			alignment = model.AlignBullish
		case ma5 < ma10 && ma10 < ma20 && ma20 < ma60:
			alignment = model.AlignBearish
		}
	}

	// Support leans on MA20 when it exists: a single outlier low would put
	// the stop far below any level worth defending.
	low20 := TrailingLow(lows, 20)
	support := low20
	if !math.IsNaN(ma20) {
		support = math.Max(low20, ma20)
	}

	resistance := nearestAbove(price, TrailingHigh(highs, 20), ma5, ma10)
	if math.IsNaN(resistance) {
		resistance = price * 1.05
	}

	return model.Snapshot{
		CurrentPrice:    SafeRound(price, 2),
		MA5:             SafeRound(ma5, 2),
		MA10:            SafeRound(ma10, 2),
		MA20:            SafeRound(ma20, 2),
		MA60:            SafeRound(ma60, 2),
		EMA13:           SafeRound(EMA(closes, 13), 2),
		EMA26:           SafeRound(EMA(closes, 26), 2),
		RSI14:           SafeRound(RSI(closes, 14), 2),
		ATR14:           SafeRound(ATR(series, 14), 3),
		MACD:            SafeRound(macdLine, 3),
		MACDSignal:      SafeRound(macdSignal, 3),
		MACDHist:        SafeRound(macdHist, 3),
		MACDCross:       cross,
		BiasMA5:         SafeRound(bias, 2),
		VolumeRatio:     SafeRound(VolumeRatio(volumes, 5), 2),
		MAAlignment:     alignment,
		SupportLevel:    SafeRound(support, 2),
		ResistanceLevel: SafeRound(resistance, 2),
	}
}

// nearestAbove picks the smallest candidate level strictly above price,
// ignoring undefined candidates. NaN when nothing clears the price.
func nearestAbove(price float64, candidates ...float64) float64 {
	best := math.NaN()
	for _, c := range candidates {
		if math.IsNaN(c) || c <= price {
			continue
		}
		if math.IsNaN(best) || c < best {
			best = c
		}
	}
	return best
}

func anyNaN(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
