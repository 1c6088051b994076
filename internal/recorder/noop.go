package recorder

import (
	"TitanQuant/internal/analyzer"
	"TitanQuant/internal/collector"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ *analyzer.Result) error              { return nil }
func (n *NoopRecorder) RecordMarketContext(_ *collector.MarketContext) error { return nil }
func (n *NoopRecorder) Close() error                                         { return nil }
