package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Collector struct {
		Proxy          string `yaml:"proxy"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		TdxAddr        string `yaml:"tdx_addr"`
		JitterMinMs    int    `yaml:"jitter_min_ms"`
		JitterMaxMs    int    `yaml:"jitter_max_ms"`
		RetryBackoffMs int    `yaml:"retry_backoff_ms"`
	} `yaml:"collector"`
	Risk struct {
		Balance        float64 `yaml:"balance"`
		Fraction       float64 `yaml:"fraction"`
		StrongScore    int     `yaml:"strong_score"`
		ModerateScore  int     `yaml:"moderate_score"`
		StrongReward   float64 `yaml:"strong_reward"`
		ModerateReward float64 `yaml:"moderate_reward"`
		WeakReward     float64 `yaml:"weak_reward"`
		CNMultiplier   float64 `yaml:"cn_multiplier"`
		HKMultiplier   float64 `yaml:"hk_multiplier"`
	} `yaml:"risk"`
	Schedule struct {
		ScanCron  string   `yaml:"scan_cron"`
		Watchlist []string `yaml:"watchlist"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	ETFRulesPath string `yaml:"etf_rules_path"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("QUANTD_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Collector.Proxy = v
	}
	if v := os.Getenv("TDX_ADDR"); v != "" {
		cfg.Collector.TdxAddr = v
	}
	if v := os.Getenv("ACCOUNT_BALANCE"); v != "" {
		var balance float64
		if _, err := fmt.Sscanf(v, "%f", &balance); err == nil {
			cfg.Risk.Balance = balance
		}
	}
	if v := os.Getenv("RISK_FRACTION"); v != "" {
		var fraction float64
		if _, err := fmt.Sscanf(v, "%f", &fraction); err == nil {
			cfg.Risk.Fraction = fraction
		}
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Collector.TimeoutSeconds == 0 {
		cfg.Collector.TimeoutSeconds = 10
	}
	if cfg.Collector.JitterMinMs == 0 {
		cfg.Collector.JitterMinMs = 100
	}
	if cfg.Collector.JitterMaxMs == 0 {
		cfg.Collector.JitterMaxMs = 500
	}
	if cfg.Collector.RetryBackoffMs == 0 {
		cfg.Collector.RetryBackoffMs = 1000
	}
	if cfg.Risk.Balance == 0 {
		cfg.Risk.Balance = 100000
	}
	if cfg.Risk.Fraction == 0 {
		cfg.Risk.Fraction = 0.01
	}
	if cfg.Risk.StrongScore == 0 {
		cfg.Risk.StrongScore = 80
	}
	if cfg.Risk.ModerateScore == 0 {
		cfg.Risk.ModerateScore = 60
	}
	if cfg.Risk.StrongReward == 0 {
		cfg.Risk.StrongReward = 3.0
	}
	if cfg.Risk.ModerateReward == 0 {
		cfg.Risk.ModerateReward = 2.0
	}
	if cfg.Risk.WeakReward == 0 {
		cfg.Risk.WeakReward = 1.5
	}
	if cfg.Risk.CNMultiplier == 0 {
		cfg.Risk.CNMultiplier = 2.0
	}
	if cfg.Risk.HKMultiplier == 0 {
		cfg.Risk.HKMultiplier = 2.5
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 30 15 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/titanquant.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are consistent.
func (c *Config) Validate() error {
	if c.Risk.Balance <= 0 {
		return fmt.Errorf("risk.balance must be positive")
	}
	if c.Risk.Fraction <= 0 || c.Risk.Fraction >= 1 {
		return fmt.Errorf("risk.fraction must be in (0, 1)")
	}
	if c.Risk.ModerateScore >= c.Risk.StrongScore {
		return fmt.Errorf("risk.moderate_score must be below risk.strong_score")
	}
	if c.Collector.JitterMaxMs < c.Collector.JitterMinMs {
		return fmt.Errorf("collector.jitter_max_ms must not be below jitter_min_ms")
	}
	return nil
}

// Timeout returns the per-source HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Collector.TimeoutSeconds) * time.Second
}

// JitterMin returns the lower bound of the pre-request delay.
func (c *Config) JitterMin() time.Duration {
	return time.Duration(c.Collector.JitterMinMs) * time.Millisecond
}

// JitterMax returns the upper bound of the pre-request delay.
func (c *Config) JitterMax() time.Duration {
	return time.Duration(c.Collector.JitterMaxMs) * time.Millisecond
}

// RetryBackoff returns the delay between retry attempts on the primary source.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.Collector.RetryBackoffMs) * time.Millisecond
}
