package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"TitanQuant/internal/model"
)

// TencentSource reads the legacy gtimg fqkline interface. The response nests
// list-of-list OHLC rows under the composite symbol key, ordered
// [date, open, close, high, low, volume, ...].
type TencentSource struct {
	BaseURL string
	Client  *http.Client
}

func NewTencentSource(proxyURL string, timeout time.Duration) *TencentSource {
	return &TencentSource{
		BaseURL: "http://web.ifzq.gtimg.cn",
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (s *TencentSource) Name() string { return "tencent" }

type tencentKline struct {
	Data map[string]struct {
		Day    [][]any `json:"day"`
		QfqDay [][]any `json:"qfqday"`
	} `json:"data"`
}

func (s *TencentSource) Fetch(ctx context.Context, symbol string, market model.Market) (RawBatch, error) {
	if market == model.MarketHK {
		return RawBatch{}, fmt.Errorf("tencent: hk not supported")
	}
	fullCode := marketPrefix(symbol) + symbol
	u := fmt.Sprintf("%s/appstock/app/fqkline/get?param=%s,day,,,320,qfq", s.BaseURL, fullCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return RawBatch{}, err
	}
	req.Header.Set("User-Agent", randomUA())

	resp, err := s.Client.Do(req)
	if err != nil {
		return RawBatch{}, fmt.Errorf("tencent fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawBatch{}, fmt.Errorf("tencent read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return RawBatch{}, fmt.Errorf("tencent: status %d", resp.StatusCode)
	}

	var payload tencentKline
	if err := json.Unmarshal(body, &payload); err != nil {
		return RawBatch{}, fmt.Errorf("tencent decode: %w", err)
	}
	entry, ok := payload.Data[fullCode]
	if !ok {
		return RawBatch{}, fmt.Errorf("tencent: symbol %s missing from response", fullCode)
	}
	days := entry.QfqDay
	if len(days) == 0 {
		days = entry.Day
	}
	if len(days) == 0 {
		return RawBatch{}, fmt.Errorf("tencent: no bars for %s", fullCode)
	}

	rows := make([]Row, 0, len(days))
	for _, d := range days {
		if len(d) < 6 {
			continue
		}
		rows = append(rows, Row{
			"date":   d[0],
			"open":   d[1],
			"close":  d[2],
			"high":   d[3],
			"low":    d[4],
			"volume": d[5],
		})
	}
	return RawBatch{Provider: s.Name(), Rows: rows}, nil
}
