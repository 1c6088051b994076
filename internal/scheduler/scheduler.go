package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"TitanQuant/internal/analyzer"
	"TitanQuant/internal/collector"
	"TitanQuant/internal/recorder"
)

// Scheduler runs periodic watchlist scans.
type Scheduler struct {
	Cron      *cron.Cron
	Analyzer  *analyzer.Analyzer
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Watchlist []string
	Ctx       context.Context
}

// NewScheduler creates a Scheduler over a watchlist of exchange codes.
func NewScheduler(ctx context.Context, an *analyzer.Analyzer, col *collector.Collector, rec recorder.Recorder, watchlist []string) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Analyzer:  an,
		Collector: col,
		Recorder:  rec,
		Watchlist: watchlist,
		Ctx:       ctx,
	}
}

// Register wires the scan job to its cron expression.
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow executes the scan immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	if len(s.Watchlist) == 0 {
		return
	}
	log.Printf("[INFO] running watchlist scan (%d codes)", len(s.Watchlist))

	mc := s.Collector.MarketContext(s.Ctx)
	if err := s.Recorder.RecordMarketContext(&mc); err != nil {
		log.Printf("[ERROR] record market context: %v", err)
	}
	log.Printf("[INFO] market status: %s (index %.2f vs MA20 %.2f)",
		mc.Status, mc.IndexPrice, mc.IndexMA20)

	for _, code := range s.Watchlist {
		if s.Ctx.Err() != nil {
			return
		}
		res := s.Analyzer.Analyze(s.Ctx, analyzer.Request{Code: code})
		if err := s.Recorder.RecordAnalysis(res); err != nil {
			log.Printf("[ERROR] record analysis for %s: %v", code, err)
		}
	}
	log.Println("[INFO] watchlist scan complete")
}
