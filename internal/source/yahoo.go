package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"TitanQuant/internal/model"
)

// YahooSource implements the last-resort international fallback using the
// Yahoo Finance chart API.
type YahooSource struct {
	BaseURL string
	Range   string
	Client  *http.Client
}

// NewYahooSource creates a new Yahoo Finance adapter.
func NewYahooSource(proxyURL string, timeout time.Duration) *YahooSource {
	return &YahooSource{
		BaseURL: "https://query1.finance.yahoo.com",
		Range:   "1y",
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (s *YahooSource) Name() string { return "yahoo" }

// yahooSymbol maps a bare numeric symbol onto Yahoo's ticker convention:
// exchange suffix for the mainland, zero-trimmed 4-digit codes for Hong Kong.
func yahooSymbol(symbol string, market model.Market) string {
	if market == model.MarketHK {
		if n, err := strconv.Atoi(symbol); err == nil {
			return fmt.Sprintf("%04d.HK", n)
		}
		return symbol + ".HK"
	}
	if marketPrefix(symbol) == "sh" {
		return symbol + ".SS"
	}
	return symbol + ".SZ"
}

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []any `json:"open"`
					High   []any `json:"high"`
					Low    []any `json:"low"`
					Close  []any `json:"close"`
					Volume []any `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (s *YahooSource) Fetch(ctx context.Context, symbol string, market model.Market) (RawBatch, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		s.BaseURL, url.PathEscape(yahooSymbol(symbol, market)), s.Range)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return RawBatch{}, err
	}
	req.Header.Set("User-Agent", randomUA())

	resp, err := s.Client.Do(req)
	if err != nil {
		return RawBatch{}, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawBatch{}, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return RawBatch{}, fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return RawBatch{}, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return RawBatch{}, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return RawBatch{}, fmt.Errorf("yahoo: no data for %s", symbol)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	rows := make([]Row, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.Close) {
			break
		}
		// Null entries mark holidays; keep them, the normalizer drops them.
		rows = append(rows, Row{
			"date":   ts,
			"open":   quote.Open[i],
			"high":   quote.High[i],
			"low":    quote.Low[i],
			"close":  quote.Close[i],
			"volume": quote.Volume[i],
		})
	}
	return RawBatch{Provider: s.Name(), Rows: rows}, nil
}
