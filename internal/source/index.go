package source

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// IndexSource fetches the Shanghai composite index daily series used by the
// market-context check. Indexes are not part of the per-symbol fallback
// chain; one stable upstream is enough.
type IndexSource struct {
	BaseURL string
	Symbol  string
	Client  *http.Client
}

func NewIndexSource(proxyURL string, timeout time.Duration) *IndexSource {
	return &IndexSource{
		BaseURL: "https://quotes.sina.cn",
		Symbol:  "sh000001",
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

// FetchDaily returns the most recent daily rows for the configured index.
func (s *IndexSource) FetchDaily(ctx context.Context) (RawBatch, error) {
	u := fmt.Sprintf("%s/cn/api/jsonp_v2.php/var/CN_MarketDataService.getKLineData?symbol=%s&scale=240&ma=no&datalen=60", s.BaseURL, s.Symbol)
	inner := &SinaSource{Client: s.Client}
	rows, err := inner.fetchRows(ctx, u)
	if err != nil {
		return RawBatch{}, fmt.Errorf("index: %w", err)
	}
	return RawBatch{Provider: "index", Rows: rows}, nil
}
