package strategy

import (
	"TitanQuant/internal/calculator"
	"TitanQuant/internal/model"
)

// LotSize is the exchange board lot. Both markets covered here trade
// in multiples of 100 shares.
const LotSize = 100

// riskEpsilon guards against a stop sitting on top of the entry price.
const riskEpsilon = 1e-4

// PositionSize converts account balance and per-trade risk budget into
// a share count. The count is floored to whole lots and the total cost
// never exceeds the balance.
func PositionSize(balance, riskFraction, price, stopLoss, atr float64) model.RiskPlan {
	riskPerShare := price - stopLoss
	if riskPerShare <= riskEpsilon {
		riskPerShare = atr
	}
	if riskPerShare <= riskEpsilon && price > 0 {
		riskPerShare = price * 0.03
	}

	riskMoney := balance * riskFraction
	shares := 0
	if riskPerShare > riskEpsilon {
		shares = int(riskMoney/riskPerShare) / LotSize * LotSize
	}
	if shares < LotSize {
		shares = 0
	}

	cost := float64(shares) * price
	if cost > balance && price > 0 {
		shares = int(balance/price) / LotSize * LotSize
		if shares < LotSize {
			shares = 0
		}
		cost = float64(shares) * price
	}

	return model.RiskPlan{
		RiskPerShare:     calculator.SafeRound(riskPerShare, 2),
		AccountRiskMoney: calculator.SafeRound(riskMoney, 2),
		SuggestedShares:  shares,
		EstimatedCost:    calculator.SafeRound(cost, 2),
	}
}
