package analysis

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RawJSONer is implemented by values that carry an undecoded JSON scalar.
type RawJSONer interface {
	RawJSON() json.RawMessage
}

// CoerceDecimal converts an arbitrary JSON scalar into a fixed-point number.
// Missing values (nil, JSON null, "", "null", "none", "nan" in any case) and
// anything that does not parse to a finite float yield def.
func CoerceDecimal(value interface{}, def decimal.Decimal) decimal.Decimal {
	f, ok := toFloat(value)
	if !ok {
		return def
	}
	return decimal.NewFromFloat(f)
}

// CoerceFloat is CoerceDecimal for callers that only need a float64.
func CoerceFloat(value interface{}, def float64) float64 {
	f, ok := toFloat(value)
	if !ok {
		return def
	}
	return f
}

// CoerceInt64 truncates the coerced value toward zero.
func CoerceInt64(value interface{}, def int64) int64 {
	f, ok := toFloat(value)
	if !ok || f >= math.MaxInt64 || f <= math.MinInt64 {
		return def
	}
	return int64(f)
}

// CoerceOptionalDecimal returns nil where CoerceDecimal would fall back to a default.
func CoerceOptionalDecimal(value interface{}) *decimal.Decimal {
	f, ok := toFloat(value)
	if !ok {
		return nil
	}
	d := decimal.NewFromFloat(f)
	return &d
}

// CoerceOptionalInt64 returns nil for missing or invalid values.
func CoerceOptionalInt64(value interface{}) *int64 {
	f, ok := toFloat(value)
	if !ok || f >= math.MaxInt64 || f <= math.MinInt64 {
		return nil
	}
	i := int64(f)
	return &i
}

// IsMissing reports whether value counts as absent.
func IsMissing(value interface{}) bool {
	s, ok := toText(value)
	return !ok || isMissingText(s)
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case decimal.Decimal:
		return v.InexactFloat64(), true
	case *decimal.Decimal:
		if v == nil {
			return 0, false
		}
		return v.InexactFloat64(), true
	}

	s, ok := toText(value)
	if !ok || isMissingText(s) {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if isHexText(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

// toText renders value as the text a float parser would see.
// ok is false for values with no textual form (nil, bools, containers).
func toText(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case json.Number:
		return string(v), true
	case json.RawMessage:
		return rawText(v)
	case RawJSONer:
		return rawText(v.RawJSON())
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case int, int32, int64, uint, uint32, uint64, float32:
		return strconv.FormatFloat(CoerceFloat(v, 0), 'g', -1, 64), true
	default:
		return "", false
	}
}

func rawText(raw json.RawMessage) (string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", false
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return "", false
		}
		return s, true
	}
	switch trimmed[0] {
	case '{', '[', 't', 'f':
		return "", false
	}
	return trimmed, true
}

func isMissingText(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "none", "nan":
		return true
	}
	return false
}

// isHexText reports Go hex-float syntax, which ParseFloat accepts and plain decimal input never uses.
func isHexText(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
