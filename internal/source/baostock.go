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

// BaoStockSource queries the official data-platform gateway. The response
// carries a field-name list plus positional string rows, which are zipped
// back into keyed records here. All values arrive as strings; the normalizer
// coerces them.
type BaoStockSource struct {
	BaseURL string
	Window  time.Duration
	Client  *http.Client
}

func NewBaoStockSource(proxyURL string, timeout time.Duration) *BaoStockSource {
	return &BaoStockSource{
		BaseURL: "http://baostock.com",
		Window:  365 * 24 * time.Hour,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (s *BaoStockSource) Name() string { return "baostock" }

type baoStockResp struct {
	ErrorCode string     `json:"error_code"`
	ErrorMsg  string     `json:"error_msg"`
	Fields    []string   `json:"fields"`
	Data      [][]string `json:"data"`
}

func (s *BaoStockSource) Fetch(ctx context.Context, symbol string, market model.Market) (RawBatch, error) {
	if market == model.MarketHK {
		return RawBatch{}, fmt.Errorf("baostock: hk not supported")
	}
	end := time.Now()
	start := end.Add(-s.Window)
	// Official symbol format is prefix-dotted, e.g. sh.600519.
	u := fmt.Sprintf("%s/api/query_history_k_data_plus?code=%s.%s&fields=date,open,high,low,close,volume&frequency=d&adjustflag=1&start_date=%s&end_date=%s",
		s.BaseURL, marketPrefix(symbol), symbol,
		start.Format("2006-01-02"), end.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return RawBatch{}, err
	}
	req.Header.Set("User-Agent", randomUA())

	resp, err := s.Client.Do(req)
	if err != nil {
		return RawBatch{}, fmt.Errorf("baostock fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawBatch{}, fmt.Errorf("baostock read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return RawBatch{}, fmt.Errorf("baostock: status %d", resp.StatusCode)
	}

	var payload baoStockResp
	if err := json.Unmarshal(body, &payload); err != nil {
		return RawBatch{}, fmt.Errorf("baostock decode: %w", err)
	}
	if payload.ErrorCode != "" && payload.ErrorCode != "0" {
		return RawBatch{}, fmt.Errorf("baostock api error %s: %s", payload.ErrorCode, payload.ErrorMsg)
	}
	if len(payload.Fields) == 0 || len(payload.Data) == 0 {
		return RawBatch{}, fmt.Errorf("baostock: no bars for %s", symbol)
	}

	rows := make([]Row, 0, len(payload.Data))
	for _, rec := range payload.Data {
		if len(rec) < len(payload.Fields) {
			continue
		}
		row := Row{}
		for i, f := range payload.Fields {
			row[f] = rec[i]
		}
		rows = append(rows, row)
	}
	return RawBatch{Provider: s.Name(), Rows: rows}, nil
}
