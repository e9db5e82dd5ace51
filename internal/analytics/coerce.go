package analytics

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"casaora/server/config"
)

// The coercion layer is the only place untyped record values are
// interpreted. Malformed input coerces to a zero value or nil, never to a
// panic.

func asString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func asNumber(value any) float64 {
	n, ok := numericValue(value)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// asOptionalNumber is used where "unset" must be distinguished from zero,
// e.g. valuation fields and fx rates.
func asOptionalNumber(value any) *float64 {
	n, ok := numericValue(value)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func normalizedStatus(value any) string {
	return strings.ToLower(strings.TrimSpace(asString(value)))
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func toDate(value any) *time.Time {
	switch v := value.(type) {
	case time.Time:
		return &v
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return &t
			}
		}
	}
	return nil
}

// convertToPyg normalizes an amount in the record's currency to the
// canonical currency. A foreign-currency amount without a usable rate is
// passed through unconverted rather than dropped.
func convertToPyg(amount float64, currency string, fxRate *float64) float64 {
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if cur == "" || cur == config.CanonicalCurrency {
		return amount
	}
	if fxRate != nil && *fxRate > 0 {
		return amount * *fxRate
	}
	return amount
}
