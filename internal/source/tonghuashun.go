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

// TongHuaShunSource queries the Tonghuashun data service, an upstream
// independent from the EastMoney and Tencent stacks.
type TongHuaShunSource struct {
	BaseURL string
	Client  *http.Client
}

func NewTongHuaShunSource(proxyURL string, timeout time.Duration) *TongHuaShunSource {
	return &TongHuaShunSource{
		BaseURL: "https://d.10jqka.com.cn",
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (s *TongHuaShunSource) Name() string { return "tonghuashun" }

type thsRecord struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	Close float64 `json:"close"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Vol   float64 `json:"vol"`
}

type thsKline struct {
	Code string      `json:"code"`
	Data []thsRecord `json:"data"`
}

func (s *TongHuaShunSource) Fetch(ctx context.Context, symbol string, market model.Market) (RawBatch, error) {
	if market == model.MarketHK {
		return RawBatch{}, fmt.Errorf("tonghuashun: hk not supported")
	}
	u := fmt.Sprintf("%s/v6/line/hs_%s/01/last.js", s.BaseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return RawBatch{}, err
	}
	req.Header.Set("User-Agent", randomUA())
	req.Header.Set("Referer", "http://www.10jqka.com.cn/")

	resp, err := s.Client.Do(req)
	if err != nil {
		return RawBatch{}, fmt.Errorf("tonghuashun fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawBatch{}, fmt.Errorf("tonghuashun read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return RawBatch{}, fmt.Errorf("tonghuashun: status %d", resp.StatusCode)
	}

	var payload thsKline
	if err := json.Unmarshal(body, &payload); err != nil {
		return RawBatch{}, fmt.Errorf("tonghuashun decode: %w", err)
	}
	if len(payload.Data) == 0 {
		return RawBatch{}, fmt.Errorf("tonghuashun: no bars for %s", symbol)
	}

	rows := make([]Row, 0, len(payload.Data))
	for _, r := range payload.Data {
		rows = append(rows, Row{
			"date":  r.Date,
			"open":  r.Open,
			"close": r.Close,
			"high":  r.High,
			"low":   r.Low,
			"vol":   r.Vol,
		})
	}
	return RawBatch{Provider: s.Name(), Rows: rows}, nil
}
