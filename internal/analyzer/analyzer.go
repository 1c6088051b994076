// Package analyzer runs the full pipeline for one instrument: history
// acquisition, indicator computation, signal scoring and position
// sizing, assembled into a single report.
package analyzer

import (
	"context"
	"log"
	"time"

	"TitanQuant/internal/calculator"
	"TitanQuant/internal/collector"
	"TitanQuant/internal/metrics"
	"TitanQuant/internal/model"
	"TitanQuant/internal/refdata"
	"TitanQuant/internal/strategy"
)

// HistorySource supplies normalized daily bars for an exchange code.
// *collector.Collector satisfies it; tests substitute a stub.
type HistorySource interface {
	History(ctx context.Context, code string) model.Series
}

// Request carries one analysis invocation. Balance and RiskFraction of
// zero fall back to the analyzer defaults.
type Request struct {
	Code         string
	Name         string
	Balance      float64
	RiskFraction float64
}

// Result is the complete analysis report for one instrument.
type Result struct {
	Code      string          `json:"code"`
	Name      string          `json:"name,omitempty"`
	Market    model.Market    `json:"market"`
	IsETF     bool            `json:"is_etf"`
	Bars      int             `json:"bars"`
	Technical model.Snapshot  `json:"technical"`
	Signal    *model.Signal   `json:"signal,omitempty"`
	RiskCtrl  *model.RiskPlan `json:"risk_ctrl,omitempty"`
	Err       string          `json:"error,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// Analyzer binds the pipeline stages together with account defaults.
type Analyzer struct {
	History HistorySource
	ETF     *refdata.Classifier

	DefaultBalance      float64
	DefaultRiskFraction float64
	CNOptions           strategy.Options
	HKOptions           strategy.Options
}

// New returns an Analyzer with the standard tuning for both markets.
func New(history HistorySource) *Analyzer {
	return &Analyzer{
		History:             history,
		ETF:                 refdata.Default(),
		DefaultBalance:      100000,
		DefaultRiskFraction: 0.01,
		CNOptions:           strategy.DefaultOptions(model.MarketCN),
		HKOptions:           strategy.DefaultOptions(model.MarketHK),
	}
}

// FetchHistory exposes the acquisition stage on its own, for callers that
// want bars without the scoring layers.
func (a *Analyzer) FetchHistory(ctx context.Context, code string) model.Series {
	return a.History.History(ctx, code)
}

// Analyze runs the pipeline end to end. It never returns nil; when no
// provider can supply data the report carries Err and default values.
func (a *Analyzer) Analyze(ctx context.Context, req Request) *Result {
	start := time.Now()
	defer func() {
		metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	}()

	market, symbol, ok := collector.Route(req.Code)
	if !ok {
		market, symbol = model.MarketCN, req.Code
	}

	res := &Result{
		Code:      symbol,
		Name:      req.Name,
		Market:    market,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if a.ETF != nil {
		res.IsETF = a.ETF.IsETF(symbol, req.Name, market)
	}

	series := a.History.History(ctx, req.Code)
	res.Bars = len(series)
	if series.Empty() {
		res.Err = "no data"
		res.Technical = calculator.Compute(nil)
		metrics.Analyses.WithLabelValues("no-data").Inc()
		log.Printf("[WARN] analysis for %s produced no data", req.Code)
		return res
	}

	res.Technical = calculator.Compute(series)

	opts := a.CNOptions
	if market == model.MarketHK {
		opts = a.HKOptions
	}
	res.Signal = strategy.Evaluate(res.Technical, opts)

	balance := req.Balance
	if balance <= 0 {
		balance = a.DefaultBalance
	}
	fraction := req.RiskFraction
	if fraction <= 0 {
		fraction = a.DefaultRiskFraction
	}
	plan := strategy.PositionSize(
		balance, fraction,
		res.Technical.CurrentPrice, res.Signal.StopLoss, res.Technical.ATR14,
	)
	res.RiskCtrl = &plan

	metrics.Analyses.WithLabelValues(res.Signal.Label).Inc()
	log.Printf("[INFO] analyzed %s: %s score=%d bars=%d",
		symbol, res.Signal.Label, res.Signal.TrendScore, res.Bars)
	return res
}
