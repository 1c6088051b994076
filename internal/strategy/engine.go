package strategy

import (
	"math"

	"TitanQuant/internal/calculator"
	"TitanQuant/internal/model"
)

// Options controls scoring thresholds and risk geometry.
// Zero values are not usable, call DefaultOptions first.
type Options struct {
	// VolatilityMultiplier scales ATR when placing the stop-loss.
	VolatilityMultiplier float64
	// StrongScore and ModerateScore are the score boundaries
	// selecting the reward multiple for the take-profit target.
	StrongScore    int
	ModerateScore  int
	StrongReward   float64
	ModerateReward float64
	WeakReward     float64
}

// DefaultOptions returns the tuning for a market. Hong Kong names swing
// wider intraday and get a looser stop.
func DefaultOptions(market model.Market) Options {
	opts := Options{
		VolatilityMultiplier: 2.0,
		StrongScore:          80,
		ModerateScore:        60,
		StrongReward:         3.0,
		ModerateReward:       2.0,
		WeakReward:           1.5,
	}
	if market == model.MarketHK {
		opts.VolatilityMultiplier = 2.5
	}
	return opts
}

// Evaluate scores a technical snapshot and derives the trade plan:
// label, stop-loss, take-profit and suggested entry.
func Evaluate(snap model.Snapshot, opts Options) *model.Signal {
	price := snap.CurrentPrice
	score := 50
	reasons := make([]string, 0, 6)
	risks := make([]string, 0, 3)

	if price > snap.MA5 {
		score += 10
	}
	if price > snap.MA20 {
		score += 20
		reasons = append(reasons, "站上月线")
	} else {
		score -= 20
		reasons = append(reasons, "跌破月线")
		risks = append(risks, "跌破月线")
	}

	switch {
	case snap.RSI14 > 70:
		score -= 10
		reasons = append(reasons, "RSI超买")
		risks = append(risks, "RSI超买")
	case snap.RSI14 < 30:
		if price > snap.MA5 {
			score += 15
			reasons = append(reasons, "RSI严重超卖反弹 ✅")
		} else {
			score += 5
			reasons = append(reasons, "RSI超卖但未企稳 ⚠️")
			risks = append(risks, "RSI超卖但未企稳")
		}
	}

	switch snap.MACDCross {
	case model.CrossGolden:
		score += 15
		reasons = append(reasons, "MACD金叉 🔥")
	case model.CrossDeath:
		score -= 15
		reasons = append(reasons, "MACD死叉 ⚠️")
		risks = append(risks, "MACD死叉")
	}

	if snap.VolumeRatio > 1.5 {
		score += 10
		reasons = append(reasons, "放量上涨")
	} else if snap.VolumeRatio < 0.8 {
		reasons = append(reasons, "缩量整理")
	}

	label := model.SignalHold
	deathBelow := snap.MACDCross == model.CrossDeath &&
		price < snap.MA20 && snap.MA5 < snap.MA20
	switch {
	case deathBelow:
		label = model.SignalSell
		reasons = append(reasons, "空头趋势确认")
	case price > snap.MA20 && snap.MA5 > snap.MA20:
		spread := math.Abs(snap.MA5-snap.MA20) / snap.MA20
		if spread < 0.05 {
			label = model.SignalStrongBuy
			reasons = append(reasons, "均线粘合突破 (VCP特征)")
		} else {
			label = model.SignalBuy
			reasons = append(reasons, "多头趋势")
		}
	}

	atr := snap.ATR14
	if atr <= 0 {
		// flat or short history, synthesize a 3% band
		atr = price * 0.03
	}
	stop := price - opts.VolatilityMultiplier*atr
	if snap.SupportLevel > 0 {
		stop = math.Max(stop, snap.SupportLevel*0.98)
	}

	riskPerShare := price - stop
	if riskPerShare <= 0 {
		riskPerShare = atr
	}
	reward := opts.WeakReward
	if score >= opts.StrongScore {
		reward = opts.StrongReward
	} else if score >= opts.ModerateScore {
		reward = opts.ModerateReward
	}
	takeProfit := price + reward*riskPerShare

	suggestedBuy := math.Max(snap.SupportLevel, price*0.98)

	return &model.Signal{
		Label:           label,
		TrendScore:      score,
		Reasons:         reasons,
		RiskFactors:     risks,
		StopLoss:        calculator.SafeRound(stop, 2),
		TakeProfit:      calculator.SafeRound(takeProfit, 2),
		SuggestedBuy:    calculator.SafeRound(suggestedBuy, 2),
		SupportLevel:    snap.SupportLevel,
		ResistanceLevel: snap.ResistanceLevel,
	}
}
