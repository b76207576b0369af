package utils

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseFloat parses an exchange-formatted decimal string ("60000.00").
// Empty, malformed and non-finite inputs report false.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToFloat coerces a loosely typed JSON value to float64.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32:
		return ToFloat(float64(t))
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		return ParseFloat(t.String())
	case string:
		return ParseFloat(t)
	}
	return 0, false
}

// ToInt64 coerces a loosely typed JSON value to an integer, truncating decimals.
func ToInt64(v any) (int64, bool) {
	f, ok := ToFloat(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
