package model

// MACD cross states at the most recent bar.
const (
	CrossGolden = "golden"
	CrossDeath  = "death"
	CrossNone   = "none"
)

// Moving-average alignment classifications.
const (
	AlignBullish       = "bullish-stack"
	AlignBearish       = "bearish-stack"
	AlignIndeterminate = "indeterminate"
)

// Snapshot holds all indicators computed at the last bar of a series.
// Every numeric field is finite: NaN and ±Inf are sanitized to 0 before the
// snapshot is exposed.
type Snapshot struct {
	CurrentPrice    float64 `json:"current_price"`
	MA5             float64 `json:"ma5"`
	MA10            float64 `json:"ma10"`
	MA20            float64 `json:"ma20"`
	MA60            float64 `json:"ma60"`
	EMA13           float64 `json:"ema13"`
	EMA26           float64 `json:"ema26"`
	RSI14           float64 `json:"rsi14"`
	ATR14           float64 `json:"atr14"`
	MACD            float64 `json:"macd"`
	MACDSignal      float64 `json:"macd_signal"`
	MACDHist        float64 `json:"macd_hist"`
	MACDCross       string  `json:"macd_cross"`
	BiasMA5         float64 `json:"bias_ma5"`
	VolumeRatio     float64 `json:"volume_ratio"`
	MAAlignment     string  `json:"ma_alignment"`
	SupportLevel    float64 `json:"support_level"`
	ResistanceLevel float64 `json:"resistance_level"`
}
