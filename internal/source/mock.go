package source

import (
	"context"
	"fmt"
	"time"

	"TitanQuant/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	SourceName string
	Rows       []Row
	Err        error
	Calls      int
}

func (m *MockSource) Name() string {
	if m.SourceName == "" {
		return "mock"
	}
	return m.SourceName
}

func (m *MockSource) Fetch(_ context.Context, _ string, _ model.Market) (RawBatch, error) {
	m.Calls++
	if m.Err != nil {
		return RawBatch{}, m.Err
	}
	return RawBatch{Provider: m.Name(), Rows: m.Rows}, nil
}

// GenerateRows builds count canonical-keyed rows drifting around basePrice,
// newest last.
func GenerateRows(basePrice float64, count int) []Row {
	rows := make([]Row, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		rows[i] = Row{
			"date":   time.Now().AddDate(0, 0, -(count - i)).Format("2006-01-02"),
			"open":   fmt.Sprintf("%.2f", p*0.999),
			"high":   fmt.Sprintf("%.2f", p*1.005),
			"low":    fmt.Sprintf("%.2f", p*0.995),
			"close":  fmt.Sprintf("%.2f", p),
			"volume": "1000000",
		}
	}
	return rows
}
