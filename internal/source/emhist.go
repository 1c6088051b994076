package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TitanQuant/internal/model"
)

// EMHistSource scrapes the qfq-adjusted history endpoint the way the
// EastMoney web frontend labels it: records come back with Chinese column
// names, which the normalizer maps onto the canonical schema. Second in the
// domestic chain and the only adapter the orchestrator retries.
type EMHistSource struct {
	BaseURL string
	Client  *http.Client
}

func NewEMHistSource(proxyURL string, timeout time.Duration) *EMHistSource {
	return &EMHistSource{
		BaseURL: "https://push2his.eastmoney.com",
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (s *EMHistSource) Name() string { return "emhist" }

func (s *EMHistSource) Fetch(ctx context.Context, symbol string, market model.Market) (RawBatch, error) {
	u := fmt.Sprintf("%s/api/qt/stock/kline/get?secid=%s&klt=101&fqt=1&beg=19900101&end=20500101&fields1=f1,f2,f3&fields2=f51,f52,f53,f54,f55,f56,f57",
		s.BaseURL, secID(symbol, market))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return RawBatch{}, err
	}
	req.Header.Set("User-Agent", randomUA())
	req.Header.Set("Referer", "https://quote.eastmoney.com/")

	resp, err := s.Client.Do(req)
	if err != nil {
		return RawBatch{}, fmt.Errorf("emhist fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawBatch{}, fmt.Errorf("emhist read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return RawBatch{}, fmt.Errorf("emhist: status %d", resp.StatusCode)
	}

	var payload eastMoneyKline
	if err := json.Unmarshal(body, &payload); err != nil {
		return RawBatch{}, fmt.Errorf("emhist decode: %w", err)
	}
	if payload.Data == nil || len(payload.Data.Klines) == 0 {
		return RawBatch{}, fmt.Errorf("emhist: no klines for %s", symbol)
	}

	rows := make([]Row, 0, len(payload.Data.Klines))
	for _, k := range payload.Data.Klines {
		parts := strings.Split(k, ",")
		if len(parts) < 6 {
			continue
		}
		rows = append(rows, Row{
			"日期":  parts[0],
			"开盘":  parts[1],
			"收盘":  parts[2],
			"最高":  parts[3],
			"最低":  parts[4],
			"成交量": parts[5],
		})
	}
	return RawBatch{Provider: s.Name(), Rows: rows}, nil
}
