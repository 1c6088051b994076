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

// EastMoneySource fetches daily klines from the EastMoney quote-history API.
// Fastest and most stable upstream; first in the domestic chain.
type EastMoneySource struct {
	BaseURL string
	Limit   int
	Client  *http.Client
}

// NewEastMoneySource creates the adapter with optional proxy support.
func NewEastMoneySource(proxyURL string, timeout time.Duration) *EastMoneySource {
	return &EastMoneySource{
		BaseURL: "https://push2his.eastmoney.com",
		Limit:   320,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (s *EastMoneySource) Name() string { return "eastmoney" }

// secID maps a bare symbol onto EastMoney's market-qualified id
// (1 = Shanghai, 0 = Shenzhen, 116 = Hong Kong).
func secID(symbol string, market model.Market) string {
	if market == model.MarketHK {
		return "116." + symbol
	}
	if marketPrefix(symbol) == "sh" {
		return "1." + symbol
	}
	return "0." + symbol
}

type eastMoneyKline struct {
	Data *struct {
		Code   string   `json:"code"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

func (s *EastMoneySource) Fetch(ctx context.Context, symbol string, market model.Market) (RawBatch, error) {
	u := fmt.Sprintf("%s/api/qt/stock/kline/get?secid=%s&klt=101&fqt=1&lmt=%d&end=20500101&fields1=f1,f2,f3&fields2=f51,f52,f53,f54,f55,f56",
		s.BaseURL, secID(symbol, market), s.Limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return RawBatch{}, err
	}
	req.Header.Set("User-Agent", randomUA())

	resp, err := s.Client.Do(req)
	if err != nil {
		return RawBatch{}, fmt.Errorf("eastmoney fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawBatch{}, fmt.Errorf("eastmoney read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return RawBatch{}, fmt.Errorf("eastmoney: status %d", resp.StatusCode)
	}

	var payload eastMoneyKline
	if err := json.Unmarshal(body, &payload); err != nil {
		return RawBatch{}, fmt.Errorf("eastmoney decode: %w", err)
	}
	if payload.Data == nil || len(payload.Data.Klines) == 0 {
		return RawBatch{}, fmt.Errorf("eastmoney: no klines for %s", symbol)
	}

	// Each kline is "date,open,close,high,low,volume" comma-joined.
	rows := make([]Row, 0, len(payload.Data.Klines))
	for _, k := range payload.Data.Klines {
		parts := strings.Split(k, ",")
		if len(parts) < 6 {
			continue
		}
		rows = append(rows, Row{
			"date":   parts[0],
			"open":   parts[1],
			"close":  parts[2],
			"high":   parts[3],
			"low":    parts[4],
			"volume": parts[5],
		})
	}
	return RawBatch{Provider: s.Name(), Rows: rows}, nil
}
