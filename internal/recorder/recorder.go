package recorder

import (
	"TitanQuant/internal/analyzer"
	"TitanQuant/internal/collector"
)

// Recorder persists analysis output for later review.
type Recorder interface {
	RecordAnalysis(res *analyzer.Result) error
	RecordMarketContext(mc *collector.MarketContext) error
	Close() error
}
