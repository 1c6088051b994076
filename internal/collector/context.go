package collector

import (
	"context"
	"log"
	"math"
	"time"

	"TitanQuant/internal/calculator"
	"TitanQuant/internal/normalize"
)

// Market context statuses derived from the index trend.
const (
	StatusBull       = "Bull"
	StatusBear       = "Bear"
	StatusCorrection = "Correction"
)

// MarketContext summarizes the broad-market environment: index close against
// its 20-day average.
type MarketContext struct {
	Status     string  `json:"market_status"`
	IndexPrice float64 `json:"index_price"`
	IndexMA20  float64 `json:"index_ma20"`
	Timestamp  string  `json:"timestamp"`
	Err        string  `json:"error,omitempty"`
}

// MarketContext fetches the Shanghai composite daily series and classifies
// the environment. Failures degrade to Correction rather than erroring:
// downstream consumers always get a usable status.
func (c *Collector) MarketContext(ctx context.Context) MarketContext {
	now := time.Now().Format("2006-01-02 15:04:05")

	batch, err := c.Index.FetchDaily(ctx)
	if err != nil {
		log.Printf("[WARN] market context fetch: %v", err)
		return MarketContext{Status: StatusCorrection, Timestamp: now, Err: err.Error()}
	}
	series := normalize.Normalize(batch)
	if series.Empty() {
		log.Printf("[WARN] market context: index series empty")
		return MarketContext{Status: StatusCorrection, Timestamp: now, Err: "index data empty"}
	}

	price := series.Last().Close
	ma20 := calculator.SMA(series.Closes(), 20)

	status := StatusBear
	if math.IsNaN(ma20) {
		status = StatusCorrection
	} else if price > ma20 {
		status = StatusBull
	}
	return MarketContext{
		Status:     status,
		IndexPrice: calculator.SafeRound(price, 2),
		IndexMA20:  calculator.SafeRound(ma20, 2),
		Timestamp:  now,
	}
}
