// Package normalize maps provider-shaped record sets onto the canonical
// daily-bar schema. Providers label columns in English, Chinese or legacy
// short forms and ship values as strings, floats or unix stamps; everything
// funnels through here before any indicator math runs.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"TitanQuant/internal/model"
	"TitanQuant/internal/source"
)

// aliases maps each canonical field to the column labels seen upstream.
var aliases = map[string][]string{
	"date":   {"date", "日期", "day", "datetime", "Date", "timestamp"},
	"open":   {"open", "开盘", "Open"},
	"high":   {"high", "最高", "High"},
	"low":    {"low", "最低", "Low"},
	"close":  {"close", "收盘", "Close"},
	"volume": {"volume", "成交量", "成交", "vol", "Volume"},
}

// Normalize converts a raw batch into a canonical series: columns located via
// the alias table, dates truncated to calendar days, numerics coerced, rows
// without open or close dropped, output sorted ascending with duplicate dates
// collapsed. An unmappable batch or one with no surviving rows yields an
// empty series, never an error.
func Normalize(batch source.RawBatch) model.Series {
	if batch.Empty() {
		return nil
	}

	keys, ok := resolveColumns(batch.Rows)
	if !ok {
		// Partially-filled bars are worse than no bars.
		return nil
	}

	series := make(model.Series, 0, len(batch.Rows))
	for _, row := range batch.Rows {
		date, ok := parseDate(row[keys["date"]])
		if !ok {
			continue
		}
		open := toFloat(row[keys["open"]])
		cls := toFloat(row[keys["close"]])
		if math.IsNaN(open) || math.IsNaN(cls) {
			continue
		}
		high := toFloat(row[keys["high"]])
		low := toFloat(row[keys["low"]])
		vol := toFloat(row[keys["volume"]])
		// Canonical bars carry only finite values.
		if math.IsNaN(high) {
			high = math.Max(open, cls)
		}
		if math.IsNaN(low) {
			low = math.Min(open, cls)
		}
		if math.IsNaN(vol) || vol < 0 {
			vol = 0
		}
		series = append(series, model.Bar{
			Date: date, Open: open, High: high, Low: low, Close: cls, Volume: vol,
		})
	}
	if len(series) == 0 {
		return nil
	}

	series.Sort()
	return dedupe(series)
}

// resolveColumns finds the concrete key for each canonical field, scanning
// rows until one yields a value (sparse rows may omit columns).
func resolveColumns(rows []source.Row) (map[string]string, bool) {
	keys := make(map[string]string, len(aliases))
	for field, names := range aliases {
	search:
		for _, name := range names {
			for _, row := range rows {
				if _, present := row[name]; present {
					keys[field] = name
					break search
				}
			}
		}
		if _, found := keys[field]; !found {
			return nil, false
		}
	}
	return keys, true
}

// dedupe collapses duplicate dates in a sorted series, keeping the last
// occurrence (later providers re-send the live bar).
func dedupe(s model.Series) model.Series {
	out := s[:0]
	for i, b := range s {
		if i+1 < len(s) && s[i+1].Date.Equal(b.Date) {
			continue
		}
		out = append(out, b)
	}
	return out
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// parseDate accepts unix seconds or any known string layout and truncates to
// calendar-date granularity, discarding time-of-day and timezone.
func parseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case int64:
		return dateOnly(time.Unix(t, 0).UTC()), true
	case int:
		return dateOnly(time.Unix(int64(t), 0).UTC()), true
	case float64:
		return dateOnly(time.Unix(int64(t), 0).UTC()), true
	case time.Time:
		return dateOnly(t), true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return dateOnly(parsed), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// toFloat coerces a provider value to float64, returning NaN for anything
// non-numeric so callers can treat it as missing.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" || s == "-" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
