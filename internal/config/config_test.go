package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("expected default addr :8000, got %s", cfg.Server.Addr)
	}
	if cfg.Risk.Balance != 100000 || cfg.Risk.Fraction != 0.01 {
		t.Errorf("unexpected risk defaults: %+v", cfg.Risk)
	}
	if cfg.Risk.StrongReward != 3.0 || cfg.Risk.ModerateReward != 2.0 || cfg.Risk.WeakReward != 1.5 {
		t.Errorf("unexpected reward tiers: %+v", cfg.Risk)
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.Timeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`server:
  addr: ":9000"
risk:
  balance: 250000
schedule:
  watchlist: ["600519", "00700"]
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QUANTD_ADDR", ":9100")
	t.Setenv("RISK_FRACTION", "0.02")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9100" {
		t.Errorf("env must override file, got %s", cfg.Server.Addr)
	}
	if cfg.Risk.Balance != 250000 {
		t.Errorf("expected file balance 250000, got %.0f", cfg.Risk.Balance)
	}
	if cfg.Risk.Fraction != 0.02 {
		t.Errorf("expected env fraction 0.02, got %.3f", cfg.Risk.Fraction)
	}
	if len(cfg.Schedule.Watchlist) != 2 {
		t.Errorf("expected 2 watchlist codes, got %d", len(cfg.Schedule.Watchlist))
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	cfg.Risk.Fraction = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("fraction above 1 must fail validation")
	}
	cfg.Risk.Fraction = 0.01

	cfg.Risk.ModerateScore = 90
	if err := cfg.Validate(); err == nil {
		t.Error("inverted score tiers must fail validation")
	}
	cfg.Risk.ModerateScore = 60

	cfg.Collector.JitterMinMs = 1000
	cfg.Collector.JitterMaxMs = 1
	if err := cfg.Validate(); err == nil {
		t.Error("jitter_max below jitter_min must fail validation")
	}
}
