package collector

import (
	"context"
	"errors"
	"testing"

	"TitanQuant/internal/model"
	"TitanQuant/internal/source"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		code   string
		market model.Market
		symbol string
		ok     bool
	}{
		{"600519", model.MarketCN, "600519", true},
		{"sh600519", model.MarketCN, "600519", true},
		{"sz000001", model.MarketCN, "000001", true},
		{"159915", model.MarketCN, "159915", true},
		{"00700", model.MarketHK, "00700", true},
		{"HK700", model.MarketHK, "00700", true},
		{"hk2800", model.MarketHK, "02800", true},
		{"", "", "", false},
		{"abc", "", "", false},
		{"HKxyz", "", "", false},
	}
	for _, tt := range tests {
		market, symbol, ok := Route(tt.code)
		if ok != tt.ok {
			t.Errorf("Route(%q): expected ok=%v, got %v", tt.code, tt.ok, ok)
			continue
		}
		if !ok {
			continue
		}
		if market != tt.market || symbol != tt.symbol {
			t.Errorf("Route(%q): expected (%s, %s), got (%s, %s)",
				tt.code, tt.market, tt.symbol, market, symbol)
		}
	}
}

func TestHistory_FallbackOrder(t *testing.T) {
	broken := &source.MockSource{SourceName: "broken", Err: errors.New("boom")}
	good := &source.MockSource{SourceName: "good", Rows: source.GenerateRows(100, 40)}
	spare := &source.MockSource{SourceName: "spare", Rows: source.GenerateRows(100, 40)}

	c := &Collector{CN: []ChainEntry{
		{Source: broken, MinBars: MinViableBars},
		{Source: good, MinBars: MinViableBars},
		{Source: spare, MinBars: MinViableBars},
	}}
	series := c.History(context.Background(), "600519")
	if len(series) != 40 {
		t.Fatalf("expected 40 bars, got %d", len(series))
	}
	if broken.Calls != 1 || good.Calls != 1 {
		t.Errorf("expected one call each to broken and good, got %d/%d", broken.Calls, good.Calls)
	}
	if spare.Calls != 0 {
		t.Errorf("later adapters must not run after success, got %d calls", spare.Calls)
	}
}

func TestHistory_RetriesOnlyConfiguredEntry(t *testing.T) {
	flaky := &source.MockSource{SourceName: "flaky", Err: errors.New("timeout")}
	backup := &source.MockSource{SourceName: "backup", Err: errors.New("down")}
	good := &source.MockSource{SourceName: "good", Rows: source.GenerateRows(50, 35)}

	c := &Collector{CN: []ChainEntry{
		{Source: flaky, Retries: 2, MinBars: MinViableBars},
		{Source: backup, MinBars: MinViableBars},
		{Source: good, MinBars: MinViableBars},
	}}
	series := c.History(context.Background(), "600519")
	if series.Empty() {
		t.Fatal("expected data from the final adapter")
	}
	if flaky.Calls != 3 {
		t.Errorf("retryable entry should attempt 3 times, got %d", flaky.Calls)
	}
	if backup.Calls != 1 {
		t.Errorf("non-retryable entry should attempt once, got %d", backup.Calls)
	}
}

func TestHistory_RejectsShortSeries(t *testing.T) {
	thin := &source.MockSource{SourceName: "thin", Rows: source.GenerateRows(100, 10)}
	lastResort := &source.MockSource{SourceName: "last", Rows: source.GenerateRows(100, 10)}

	c := &Collector{CN: []ChainEntry{
		{Source: thin, MinBars: MinViableBars},
		{Source: lastResort, MinBars: 1},
	}}
	series := c.History(context.Background(), "600519")
	if len(series) != 10 {
		t.Fatalf("expected the last-resort 10 bars, got %d", len(series))
	}
	if thin.Calls != 1 || lastResort.Calls != 1 {
		t.Errorf("unexpected call counts: thin=%d last=%d", thin.Calls, lastResort.Calls)
	}
}

func TestHistory_TotalFailureIsEmptyNotError(t *testing.T) {
	c := &Collector{CN: []ChainEntry{
		{Source: &source.MockSource{SourceName: "a", Err: errors.New("x")}, MinBars: MinViableBars},
		{Source: &source.MockSource{SourceName: "b", Err: errors.New("y")}, MinBars: MinViableBars},
	}}
	if series := c.History(context.Background(), "600519"); !series.Empty() {
		t.Errorf("expected empty series, got %d bars", len(series))
	}
}

func TestHistory_RoutesHKChain(t *testing.T) {
	cn := &source.MockSource{SourceName: "cn", Rows: source.GenerateRows(100, 40)}
	hk := &source.MockSource{SourceName: "hk", Rows: source.GenerateRows(300, 40)}

	c := &Collector{
		CN: []ChainEntry{{Source: cn, MinBars: MinViableBars}},
		HK: []ChainEntry{{Source: hk, MinBars: 1}},
	}
	series := c.History(context.Background(), "00700")
	if series.Empty() {
		t.Fatal("expected bars from the HK chain")
	}
	if cn.Calls != 0 || hk.Calls != 1 {
		t.Errorf("expected only the HK chain to run, got cn=%d hk=%d", cn.Calls, hk.Calls)
	}
}

func TestHistory_UnroutableCode(t *testing.T) {
	cn := &source.MockSource{SourceName: "cn", Rows: source.GenerateRows(100, 40)}
	c := &Collector{CN: []ChainEntry{{Source: cn, MinBars: MinViableBars}}}
	if series := c.History(context.Background(), "not-a-code"); !series.Empty() {
		t.Error("unroutable code must yield empty series")
	}
	if cn.Calls != 0 {
		t.Error("no adapter should run for an unroutable code")
	}
}

func TestHistory_CancelledContextStopsChain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &source.MockSource{SourceName: "m", Rows: source.GenerateRows(100, 40)}
	c := &Collector{CN: []ChainEntry{{Source: m, MinBars: MinViableBars}}}
	if series := c.History(ctx, "600519"); !series.Empty() {
		t.Error("cancelled context must abort before fetching")
	}
	if m.Calls != 0 {
		t.Errorf("expected no fetch after cancellation, got %d", m.Calls)
	}
}
