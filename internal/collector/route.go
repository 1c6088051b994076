package collector

import (
	"fmt"
	"strconv"
	"strings"

	"TitanQuant/internal/model"
)

// Route classifies a raw exchange code by shape: 5-digit codes belong to the
// Hong Kong path, everything else to the domestic one. Exchange prefixes
// ("sh"/"sz"/"HK") are stripped; the bare numeric symbol is returned.
func Route(code string) (model.Market, string, bool) {
	c := strings.TrimSpace(code)
	if c == "" {
		return "", "", false
	}

	if upper := strings.ToUpper(c); strings.HasPrefix(upper, "HK") {
		digits := strings.TrimPrefix(upper, "HK")
		n, err := strconv.Atoi(digits)
		if err != nil || n < 0 {
			return "", "", false
		}
		return model.MarketHK, fmt.Sprintf("%05d", n), true
	}

	symbol := strings.ToLower(c)
	symbol = strings.TrimPrefix(symbol, "sh")
	symbol = strings.TrimPrefix(symbol, "sz")
	if !isDigits(symbol) {
		return "", "", false
	}
	if len(symbol) == 5 {
		return model.MarketHK, symbol, true
	}
	return model.MarketCN, symbol, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
