package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"TitanQuant/internal/analyzer"
	"TitanQuant/internal/collector"
	"TitanQuant/internal/config"
	"TitanQuant/internal/model"
	"TitanQuant/internal/recorder"
	"TitanQuant/internal/refdata"
	"TitanQuant/internal/scheduler"
	"TitanQuant/internal/server"
	"TitanQuant/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] TitanQuant starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init collector
	col := collector.New(collector.Options{
		ProxyURL:     cfg.Collector.Proxy,
		Timeout:      cfg.Timeout(),
		TdxAddr:      cfg.Collector.TdxAddr,
		JitterMin:    cfg.JitterMin(),
		JitterMax:    cfg.JitterMax(),
		RetryBackoff: cfg.RetryBackoff(),
	})

	// Init ETF classification rules
	etf, err := refdata.Load(cfg.ETFRulesPath)
	if err != nil {
		log.Fatalf("[FATAL] load etf rules: %v", err)
	}

	// Init analyzer with configured risk tuning
	an := analyzer.New(col)
	an.ETF = etf
	an.DefaultBalance = cfg.Risk.Balance
	an.DefaultRiskFraction = cfg.Risk.Fraction
	an.CNOptions = buildOptions(cfg, model.MarketCN)
	an.HKOptions = buildOptions(cfg, model.MarketHK)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, an, col, rec, cfg.Schedule.Watchlist)
	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Init HTTP server
	srv, err := server.New(server.Config{
		Addr:      cfg.Server.Addr,
		Analyzer:  an,
		Collector: col,
		Recorder:  rec,
	})
	if err != nil {
		log.Fatalf("[FATAL] init http server: %v", err)
	}
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.Run(ctx) }()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing watchlist scan now")
		go sched.RunScanNow()
	}

	log.Println("[INFO] TitanQuant is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal or server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case err := <-srvErr:
		if err != nil {
			log.Printf("[ERROR] http server: %v", err)
		}
	}

	cancel()
	log.Println("[INFO] TitanQuant stopped")
}

func buildOptions(cfg *config.Config, market model.Market) strategy.Options {
	opts := strategy.DefaultOptions(market)
	opts.StrongScore = cfg.Risk.StrongScore
	opts.ModerateScore = cfg.Risk.ModerateScore
	opts.StrongReward = cfg.Risk.StrongReward
	opts.ModerateReward = cfg.Risk.ModerateReward
	opts.WeakReward = cfg.Risk.WeakReward
	if market == model.MarketHK {
		opts.VolatilityMultiplier = cfg.Risk.HKMultiplier
	} else {
		opts.VolatilityMultiplier = cfg.Risk.CNMultiplier
	}
	return opts
}
