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

// SinaSource reads the legacy Sina daily-kline interface. Kept late in the
// chain: old but rarely blocked. Records key the date column as "day".
type SinaSource struct {
	BaseURL string
	Client  *http.Client
}

func NewSinaSource(proxyURL string, timeout time.Duration) *SinaSource {
	return &SinaSource{
		BaseURL: "https://quotes.sina.cn",
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (s *SinaSource) Name() string { return "sina" }

type sinaBar struct {
	Day    string `json:"day"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}

func (s *SinaSource) Fetch(ctx context.Context, symbol string, market model.Market) (RawBatch, error) {
	if market == model.MarketHK {
		return RawBatch{}, fmt.Errorf("sina: use sinahk for hk symbols")
	}
	fullCode := marketPrefix(symbol) + symbol
	u := fmt.Sprintf("%s/cn/api/jsonp_v2.php/var/CN_MarketDataService.getKLineData?symbol=%s&scale=240&ma=no&datalen=320", s.BaseURL, fullCode)

	rows, err := s.fetchRows(ctx, u)
	if err != nil {
		return RawBatch{}, err
	}
	return RawBatch{Provider: s.Name(), Rows: rows}, nil
}

func (s *SinaSource) fetchRows(ctx context.Context, u string) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", randomUA())
	req.Header.Set("Referer", "https://finance.sina.com.cn/")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sina fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sina read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sina: status %d", resp.StatusCode)
	}

	var bars []sinaBar
	if err := json.Unmarshal(stripJSONP(body), &bars); err != nil {
		return nil, fmt.Errorf("sina decode: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("sina: no bars")
	}

	rows := make([]Row, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, Row{
			"day":    b.Day,
			"open":   b.Open,
			"high":   b.High,
			"low":    b.Low,
			"close":  b.Close,
			"volume": b.Volume,
		})
	}
	return rows, nil
}

// stripJSONP unwraps "var=( ... )" style padding down to the JSON body.
func stripJSONP(body []byte) []byte {
	start := -1
	for i, c := range body {
		if c == '[' || c == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		return body
	}
	end := len(body)
	for end > start {
		c := body[end-1]
		if c == ']' || c == '}' {
			break
		}
		end--
	}
	return body[start:end]
}
