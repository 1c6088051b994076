// Package refdata holds static instrument classification tables. The
// tables ship embedded and can be superseded by a YAML file on disk so
// new fund code ranges do not require a rebuild.
package refdata

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"TitanQuant/internal/model"
)

//go:embed etf_rules.yaml
var defaultRules []byte

type codeRange struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

type rules struct {
	Version    int         `yaml:"version"`
	CNPrefixes []string    `yaml:"cn_prefixes"`
	HKRanges   []codeRange `yaml:"hk_ranges"`
	NameHints  []string    `yaml:"name_hints"`
}

// Classifier answers whether an instrument is an exchange traded fund.
type Classifier struct {
	rules rules
}

// Load builds a Classifier from the YAML file at path, or from the
// embedded table when path is empty.
func Load(path string) (*Classifier, error) {
	raw := defaultRules
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read etf rules: %w", err)
		}
		raw = data
	}
	var r rules
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("parse etf rules: %w", err)
	}
	if len(r.CNPrefixes) == 0 && len(r.HKRanges) == 0 {
		return nil, fmt.Errorf("etf rules: no classification entries")
	}
	return &Classifier{rules: r}, nil
}

// Default returns a Classifier backed by the embedded table. The
// embedded rules are validated at build time so this cannot fail.
func Default() *Classifier {
	c, err := Load("")
	if err != nil {
		panic(err)
	}
	return c
}

// IsETF classifies by code shape first, then falls back to a name
// substring match for listings outside the known ranges.
func (c *Classifier) IsETF(code, name string, market model.Market) bool {
	code = strings.TrimSpace(code)
	switch market {
	case model.MarketCN:
		for _, p := range c.rules.CNPrefixes {
			if strings.HasPrefix(code, p) {
				return true
			}
		}
	case model.MarketHK:
		if n, err := strconv.Atoi(code); err == nil {
			for _, r := range c.rules.HKRanges {
				if n >= r.From && n <= r.To {
					return true
				}
			}
		}
	}
	upper := strings.ToUpper(name)
	for _, hint := range c.rules.NameHints {
		if hint != "" && strings.Contains(upper, strings.ToUpper(hint)) {
			return true
		}
	}
	return false
}
