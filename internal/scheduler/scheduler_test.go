package scheduler

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"TitanQuant/internal/analyzer"
	"TitanQuant/internal/collector"
	"TitanQuant/internal/source"
)

type captureRecorder struct {
	mu       sync.Mutex
	analyses []string
	contexts int
}

func (r *captureRecorder) RecordAnalysis(res *analyzer.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses = append(r.analyses, res.Code)
	return nil
}

func (r *captureRecorder) RecordMarketContext(_ *collector.MarketContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts++
	return nil
}

func (r *captureRecorder) Close() error { return nil }

func testCollector() *collector.Collector {
	rows := source.GenerateRows(100, 40)
	return &collector.Collector{
		CN: []collector.ChainEntry{{Source: &source.MockSource{Rows: rows}, MinBars: 1}},
		HK: []collector.ChainEntry{{Source: &source.MockSource{Rows: rows}, MinBars: 1}},
		// Unreachable index endpoint; the scan degrades to Correction.
		Index: &source.IndexSource{
			BaseURL: "http://127.0.0.1:1",
			Symbol:  "sh000001",
			Client:  &http.Client{Timeout: 100 * time.Millisecond},
		},
	}
}

func TestScanTask_CoversWatchlist(t *testing.T) {
	col := testCollector()
	rec := &captureRecorder{}
	s := NewScheduler(context.Background(), analyzer.New(col), col, rec, []string{"600519", "00700"})

	s.RunScanNow()

	if rec.contexts != 1 {
		t.Errorf("expected one market context record, got %d", rec.contexts)
	}
	if len(rec.analyses) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(rec.analyses))
	}
	if rec.analyses[0] != "600519" || rec.analyses[1] != "00700" {
		t.Errorf("unexpected scan order: %v", rec.analyses)
	}
}

func TestScanTask_EmptyWatchlistIsNoop(t *testing.T) {
	col := testCollector()
	rec := &captureRecorder{}
	s := NewScheduler(context.Background(), analyzer.New(col), col, rec, nil)

	s.RunScanNow()
	if rec.contexts != 0 || len(rec.analyses) != 0 {
		t.Error("empty watchlist must not touch the recorder")
	}
}

func TestRegister_InvalidCron(t *testing.T) {
	col := testCollector()
	s := NewScheduler(context.Background(), analyzer.New(col), col, &captureRecorder{}, nil)
	if err := s.Register("not a cron spec"); err == nil {
		t.Error("expected error for malformed cron expression")
	}
	if err := s.Register("0 30 15 * * 1-5"); err != nil {
		t.Errorf("valid six-field expression rejected: %v", err)
	}
}
