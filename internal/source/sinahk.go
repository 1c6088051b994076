package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"TitanQuant/internal/model"
)

// SinaHKSource is the primary Hong Kong provider, reading the Sina
// international daily-kline interface with qfq adjustment.
type SinaHKSource struct {
	BaseURL string
	Client  *http.Client
}

func NewSinaHKSource(proxyURL string, timeout time.Duration) *SinaHKSource {
	return &SinaHKSource{
		BaseURL: "https://finance.sina.com.cn",
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (s *SinaHKSource) Name() string { return "sinahk" }

func (s *SinaHKSource) Fetch(ctx context.Context, symbol string, market model.Market) (RawBatch, error) {
	if market != model.MarketHK {
		return RawBatch{}, fmt.Errorf("sinahk: cn symbols take the domestic chain")
	}
	u := fmt.Sprintf("%s/stock/hkstock/%s/klc_kl.js?d=daily&fq=qfq&datalen=320", s.BaseURL, symbol)

	inner := &SinaSource{Client: s.Client}
	rows, err := inner.fetchRows(ctx, u)
	if err != nil {
		return RawBatch{}, fmt.Errorf("sinahk: %w", err)
	}
	return RawBatch{Provider: s.Name(), Rows: rows}, nil
}
