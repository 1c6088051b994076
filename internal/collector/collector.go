// Package collector orchestrates the multi-provider fallback chains: try
// adapters in fixed priority order, normalize what comes back, accept the
// first series long enough to analyze. Provider failures never escape this
// package; total failure is an empty series, not an error.
package collector

import (
	"context"
	"log"
	"math/rand"
	"time"

	"TitanQuant/internal/metrics"
	"TitanQuant/internal/model"
	"TitanQuant/internal/normalize"
	"TitanQuant/internal/source"
)

// MinViableBars is the acceptance threshold on the primary equity path.
// The Hong Kong chain is last-resort and accepts any non-empty series.
const MinViableBars = 30

// ChainEntry pairs one adapter with its acceptance and retry policy.
type ChainEntry struct {
	Source  source.Source
	Retries int // extra attempts after the first; >0 only for the retryable primary
	MinBars int
}

// Options tunes the orchestrator. Zero values mean library defaults;
// JitterMax=0 disables the pre-call delay (tests rely on this).
type Options struct {
	ProxyURL     string
	Timeout      time.Duration
	TdxAddr      string
	JitterMin    time.Duration
	JitterMax    time.Duration
	RetryBackoff time.Duration
}

// Collector holds the per-market adapter chains. It is stateless across
// invocations; callers may run many collectors or invocations concurrently.
type Collector struct {
	CN    []ChainEntry
	HK    []ChainEntry
	Index *source.IndexSource

	jitterMin    time.Duration
	jitterMax    time.Duration
	retryBackoff time.Duration
}

// New wires the production chains in the Titan priority order: fastest and
// most stable upstreams first, anti-blocking and legacy interfaces later,
// international last.
func New(opts Options) *Collector {
	if opts.Timeout <= 0 {
		opts.Timeout = source.DefaultTimeout
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}

	cn := []ChainEntry{
		{Source: source.NewEastMoneySource(opts.ProxyURL, opts.Timeout), MinBars: MinViableBars},
		{Source: source.NewEMHistSource(opts.ProxyURL, opts.Timeout), Retries: 2, MinBars: MinViableBars},
		{Source: source.NewTencentSource(opts.ProxyURL, opts.Timeout), MinBars: MinViableBars},
		{Source: source.NewTongHuaShunSource(opts.ProxyURL, opts.Timeout), MinBars: MinViableBars},
		{Source: source.NewTdxSource(opts.TdxAddr, opts.Timeout), MinBars: MinViableBars},
		{Source: source.NewBaoStockSource(opts.ProxyURL, opts.Timeout), MinBars: MinViableBars},
		{Source: source.NewSinaSource(opts.ProxyURL, opts.Timeout), MinBars: MinViableBars},
		{Source: source.NewYahooSource(opts.ProxyURL, opts.Timeout), MinBars: 1},
	}
	hk := []ChainEntry{
		{Source: source.NewSinaHKSource(opts.ProxyURL, opts.Timeout), MinBars: 1},
		{Source: source.NewYahooSource(opts.ProxyURL, opts.Timeout), MinBars: 1},
	}

	return &Collector{
		CN:           cn,
		HK:           hk,
		Index:        source.NewIndexSource(opts.ProxyURL, opts.Timeout),
		jitterMin:    opts.JitterMin,
		jitterMax:    opts.JitterMax,
		retryBackoff: opts.RetryBackoff,
	}
}

// History fetches and normalizes the daily series for one exchange code.
// It never returns an error: an empty series means no provider could supply
// enough data, and callers must treat that as absence, not failure.
func (c *Collector) History(ctx context.Context, code string) model.Series {
	market, symbol, ok := Route(code)
	if !ok {
		log.Printf("[WARN] unroutable code %q", code)
		return nil
	}

	// One randomized delay per request keeps many concurrent invocations
	// from hammering the same upstream in lockstep.
	c.jitter(ctx)

	chain := c.CN
	if market == model.MarketHK {
		chain = c.HK
	}

	for _, entry := range chain {
		if series := c.tryEntry(ctx, entry, symbol, market); !series.Empty() {
			return series
		}
	}
	log.Printf("[WARN] all sources exhausted for %s (%s)", code, market)
	return nil
}

func (c *Collector) tryEntry(ctx context.Context, entry ChainEntry, symbol string, market model.Market) model.Series {
	attempts := 1 + entry.Retries
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return nil
		}
		metrics.FetchAttempts.WithLabelValues(entry.Source.Name()).Inc()

		batch, err := entry.Source.Fetch(ctx, symbol, market)
		if err != nil {
			metrics.FetchFailures.WithLabelValues(entry.Source.Name()).Inc()
			log.Printf("[WARN] %s failed for %s (attempt %d/%d): %v",
				entry.Source.Name(), symbol, attempt, attempts, err)
			if attempt < attempts {
				sleep(ctx, c.retryBackoff)
			}
			continue
		}

		series := normalize.Normalize(batch)
		minBars := entry.MinBars
		if minBars <= 0 {
			minBars = 1
		}
		if len(series) >= minBars {
			log.Printf("[INFO] %s supplied %d bars for %s", entry.Source.Name(), len(series), symbol)
			return series
		}
		metrics.FetchFailures.WithLabelValues(entry.Source.Name()).Inc()
		log.Printf("[WARN] %s returned %d bars for %s, need %d",
			entry.Source.Name(), len(series), symbol, minBars)
	}
	return nil
}

func (c *Collector) jitter(ctx context.Context) {
	if c.jitterMax <= 0 {
		return
	}
	span := c.jitterMax - c.jitterMin
	d := c.jitterMin
	if span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
