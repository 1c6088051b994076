package calculator

import (
	"testing"
	"time"

	"TitanQuant/internal/model"
)

func barsFromCloses(closes []float64) model.Series {
	series := make(model.Series, len(closes))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		series[i] = model.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return series
}

func TestCompute_ShortSeriesDefaults(t *testing.T) {
	snap := Compute(barsFromCloses([]float64{1, 2, 3, 4}))
	if snap.CurrentPrice != 0 {
		t.Errorf("expected zero price, got %.2f", snap.CurrentPrice)
	}
	if snap.MACDCross != model.CrossNone {
		t.Errorf("expected no cross, got %q", snap.MACDCross)
	}
	if snap.MAAlignment != model.AlignIndeterminate {
		t.Errorf("expected indeterminate alignment, got %q", snap.MAAlignment)
	}
}

func TestCompute_NoNonFiniteOutputs(t *testing.T) {
	// 10 bars: MA20/MA60/RSI windows are unsatisfied and must zero out.
	snap := Compute(barsFromCloses([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))
	if snap.MA20 != 0 || snap.MA60 != 0 || snap.RSI14 != 0 {
		t.Errorf("unsatisfied windows must read 0: ma20=%.2f ma60=%.2f rsi=%.2f",
			snap.MA20, snap.MA60, snap.RSI14)
	}
	if snap.CurrentPrice != 10 {
		t.Errorf("expected price 10, got %.2f", snap.CurrentPrice)
	}
	if snap.MAAlignment != model.AlignIndeterminate {
		t.Errorf("partial MA set cannot align, got %q", snap.MAAlignment)
	}
}

func TestCompute_SupportIgnoresOutlierLow(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}
	series := barsFromCloses(closes)
	// One flash-crash wick inside the 20-day window.
	series[20].Low = 80

	snap := Compute(series)
	if snap.SupportLevel != 100 {
		t.Errorf("support should hold at MA20 100, got %.2f", snap.SupportLevel)
	}
}

func TestCompute_ResistancePicksNearestAbove(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 129 - float64(i)
	}
	snap := Compute(barsFromCloses(closes))
	// Price 100; candidates above: MA5 102, MA10 104.5, 20d high 119.
	if snap.ResistanceLevel != 102 {
		t.Errorf("expected nearest level 102, got %.2f", snap.ResistanceLevel)
	}
}

func TestCompute_ResistanceFallbackAtHighs(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	snap := Compute(barsFromCloses(closes))
	// Price 129 is the all-time high; no level clears it.
	if snap.ResistanceLevel != 135.45 {
		t.Errorf("expected 5%% fallback 135.45, got %.2f", snap.ResistanceLevel)
	}
}

func TestCompute_Alignment(t *testing.T) {
	up := make([]float64, 70)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	if snap := Compute(barsFromCloses(up)); snap.MAAlignment != model.AlignBullish {
		t.Errorf("rising series should stack bullishly, got %q", snap.MAAlignment)
	}

	down := make([]float64, 70)
	for i := range down {
		down[i] = 200 - float64(i)
	}
	if snap := Compute(barsFromCloses(down)); snap.MAAlignment != model.AlignBearish {
		t.Errorf("falling series should stack bearishly, got %q", snap.MAAlignment)
	}
}

func TestCompute_BiasAndVolumeRatio(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 100, 100}
	series := barsFromCloses(closes)
	series[len(series)-1].Volume = 2000

	snap := Compute(series)
	if snap.BiasMA5 != 0 {
		t.Errorf("flat series should carry zero bias, got %.2f", snap.BiasMA5)
	}
	if snap.VolumeRatio != 2.0 {
		t.Errorf("expected volume ratio 2.0, got %.2f", snap.VolumeRatio)
	}
}
