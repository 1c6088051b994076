// Package source contains one adapter per upstream market-data provider.
// Adapters share a capability interface and differ in symbol formatting,
// transport and response shape. They never panic on ordinary failures
// (timeout, malformed payload, empty result): they return an error and let
// the orchestrator move on to the next provider.
package source

import (
	"context"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"TitanQuant/internal/model"
)

// Row is one provider-shaped record. Keys are whatever the provider calls
// its columns; the normalizer owns the mapping to the canonical schema.
type Row map[string]any

// RawBatch is the untyped record set returned by a single Fetch call.
// It is owned transiently by the caller and discarded after normalization.
type RawBatch struct {
	Provider string
	Rows     []Row
}

// Empty reports whether the batch holds no rows.
func (b RawBatch) Empty() bool { return len(b.Rows) == 0 }

// Source fetches a window of historical daily bars for one symbol.
type Source interface {
	// Fetch takes a bare numeric symbol (6 digits for CN, 5 for HK) and
	// applies the provider's own formatting rules.
	Fetch(ctx context.Context, symbol string, market model.Market) (RawBatch, error)
	Name() string
}

// DefaultTimeout bounds a single provider call so one slow upstream cannot
// stall the whole fallback chain.
const DefaultTimeout = 10 * time.Second

// newHTTPClient builds a per-adapter client with optional proxy support.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

var uaPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

// randomUA rotates request user agents to avoid provider-side bot filtering.
func randomUA() string { return uaPool[rand.Intn(len(uaPool))] }

// marketPrefix derives the domestic exchange prefix from the leading digit:
// Shanghai listings start with 6, everything else trades in Shenzhen.
func marketPrefix(symbol string) string {
	if len(symbol) > 0 && symbol[0] == '6' {
		return "sh"
	}
	return "sz"
}
