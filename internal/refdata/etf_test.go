package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"TitanQuant/internal/model"
)

func TestIsETF_Defaults(t *testing.T) {
	c := Default()
	tests := []struct {
		code   string
		name   string
		market model.Market
		want   bool
	}{
		{"510050", "上证50ETF", model.MarketCN, true},
		{"510300", "", model.MarketCN, true},
		{"159915", "创业板ETF", model.MarketCN, true},
		{"588000", "", model.MarketCN, true},
		{"560010", "", model.MarketCN, true},
		{"600519", "贵州茅台", model.MarketCN, false},
		{"000001", "平安银行", model.MarketCN, false},
		{"02800", "盈富基金", model.MarketHK, true},
		{"03033", "南方恒生科技", model.MarketHK, true},
		{"00700", "腾讯控股", model.MarketHK, false},
		{"09988", "阿里巴巴", model.MarketHK, false},
		// Outside the code ranges, the name hint still classifies.
		{"07200", "FL二南方恒指ETF", model.MarketHK, true},
	}
	for _, tt := range tests {
		if got := c.IsETF(tt.code, tt.name, tt.market); got != tt.want {
			t.Errorf("IsETF(%q, %q, %s): expected %v, got %v",
				tt.code, tt.name, tt.market, tt.want, got)
		}
	}
}

func TestLoad_OverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	data := []byte(`version: 2
cn_prefixes: ["999"]
hk_ranges:
  - from: 100
    to: 200
name_hints: []
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load override: %v", err)
	}
	if !c.IsETF("999001", "", model.MarketCN) {
		t.Error("override prefix should classify")
	}
	if c.IsETF("510050", "", model.MarketCN) {
		t.Error("embedded defaults must not leak into an override")
	}
	if !c.IsETF("00150", "", model.MarketHK) {
		t.Error("override range should classify")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing rules file")
	}
}

func TestLoad_EmptyRulesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for rules with no entries")
	}
}
