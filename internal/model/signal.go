package model

// Signal labels, strongest to weakest.
const (
	SignalStrongBuy = "strong-buy"
	SignalBuy       = "buy"
	SignalHold      = "hold"
	SignalSell      = "sell"
)

// Signal is the final output of the strategy engine for one symbol:
// a discrete recommendation plus the supporting score, reasons and
// ATR-scaled risk levels. Recomputed fresh per request, never mutated.
type Signal struct {
	Label           string   `json:"signal"`
	TrendScore      int      `json:"trend_score"`
	Reasons         []string `json:"signal_reasons"`
	RiskFactors     []string `json:"risk_factors"`
	StopLoss        float64  `json:"stop_loss"`
	TakeProfit      float64  `json:"take_profit"`
	SuggestedBuy    float64  `json:"suggested_buy"`
	SupportLevel    float64  `json:"support_level"`
	ResistanceLevel float64  `json:"resistance_level"`
}

// RiskPlan converts a risk budget into a lot-rounded share count.
type RiskPlan struct {
	RiskPerShare     float64 `json:"risk_per_share"`
	AccountRiskMoney float64 `json:"risk_money"`
	SuggestedShares  int     `json:"suggested_position"`
	EstimatedCost    float64 `json:"estimated_cost"`
}
