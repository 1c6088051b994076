package analyzer

import (
	"context"
	"testing"
	"time"

	"TitanQuant/internal/model"
)

type stubHistory struct {
	series model.Series
}

func (s *stubHistory) History(_ context.Context, _ string) model.Series {
	return s.series
}

func risingSeries(n int) model.Series {
	series := make(model.Series, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		p := 100 + float64(i)
		series[i] = model.Bar{
			Date: base.AddDate(0, 0, i),
			Open: p, High: p + 0.5, Low: p - 0.5, Close: p,
			Volume: 1000,
		}
	}
	return series
}

func TestAnalyze_FullPipeline(t *testing.T) {
	a := New(&stubHistory{series: risingSeries(70)})
	res := a.Analyze(context.Background(), Request{Code: "600519"})

	if res.Err != "" {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	if res.Market != model.MarketCN || res.Code != "600519" {
		t.Errorf("unexpected routing: %s %s", res.Market, res.Code)
	}
	if res.Bars != 70 {
		t.Errorf("expected 70 bars, got %d", res.Bars)
	}
	if res.Signal == nil || res.RiskCtrl == nil {
		t.Fatal("expected signal and risk plan")
	}
	if res.Signal.TrendScore <= 50 {
		t.Errorf("rising series should score above neutral, got %d", res.Signal.TrendScore)
	}
	if res.RiskCtrl.SuggestedShares%100 != 0 {
		t.Errorf("shares must be whole lots, got %d", res.RiskCtrl.SuggestedShares)
	}
	if res.Signal.StopLoss >= res.Technical.CurrentPrice {
		t.Errorf("stop %.2f must sit below price %.2f",
			res.Signal.StopLoss, res.Technical.CurrentPrice)
	}
}

func TestAnalyze_NoData(t *testing.T) {
	a := New(&stubHistory{})
	res := a.Analyze(context.Background(), Request{Code: "600519"})

	if res.Err != "no data" {
		t.Errorf("expected no-data marker, got %q", res.Err)
	}
	if res.Signal != nil || res.RiskCtrl != nil {
		t.Error("no data must not produce a signal or plan")
	}
	if res.Technical.MACDCross != model.CrossNone {
		t.Errorf("expected default snapshot, got cross %q", res.Technical.MACDCross)
	}
}

func TestAnalyze_ETFClassification(t *testing.T) {
	a := New(&stubHistory{series: risingSeries(40)})

	if res := a.Analyze(context.Background(), Request{Code: "510050"}); !res.IsETF {
		t.Error("510050 should classify as ETF")
	}
	if res := a.Analyze(context.Background(), Request{Code: "600519"}); res.IsETF {
		t.Error("600519 should not classify as ETF")
	}
	if res := a.Analyze(context.Background(), Request{Code: "02800"}); !res.IsETF {
		t.Error("02800 should classify as HK ETF")
	}
}

func TestAnalyze_HKGetsWiderStop(t *testing.T) {
	a := New(&stubHistory{series: risingSeries(70)})

	cn := a.Analyze(context.Background(), Request{Code: "600519"})
	hk := a.Analyze(context.Background(), Request{Code: "00700"})
	if hk.Market != model.MarketHK {
		t.Fatalf("expected HK routing, got %s", hk.Market)
	}
	if hk.Signal.StopLoss >= cn.Signal.StopLoss {
		t.Errorf("HK stop %.2f should sit below CN stop %.2f",
			hk.Signal.StopLoss, cn.Signal.StopLoss)
	}
}

func TestAnalyze_BalanceDefaults(t *testing.T) {
	a := New(&stubHistory{series: risingSeries(70)})
	a.DefaultBalance = 50000
	a.DefaultRiskFraction = 0.02

	res := a.Analyze(context.Background(), Request{Code: "600519"})
	if res.RiskCtrl.AccountRiskMoney != 1000 {
		t.Errorf("expected default risk money 1000, got %.2f", res.RiskCtrl.AccountRiskMoney)
	}

	res = a.Analyze(context.Background(), Request{Code: "600519", Balance: 200000, RiskFraction: 0.01})
	if res.RiskCtrl.AccountRiskMoney != 2000 {
		t.Errorf("expected explicit risk money 2000, got %.2f", res.RiskCtrl.AccountRiskMoney)
	}
}
