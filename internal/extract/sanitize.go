package extract

import (
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/susdigest/internal/report"
)

var nullWords = map[string]bool{
	"":     true,
	"null": true,
	"n/a":  true,
	"none": true,
}

// sanitize normalizes an LLM response object in place before validation.
// Unknown keys are dropped unless strict is set; their names are returned.
// Values that cannot be coerced are left alone for validation to reject.
func sanitize(obj map[string]any, strict bool) (dropped []string) {
	for key, val := range obj {
		kind, known := report.KindOf(key)
		if !known {
			if !strict {
				delete(obj, key)
				dropped = append(dropped, key)
			}
			continue
		}
		obj[key] = coerce(kind, val)
	}
	return dropped
}

func coerce(kind report.Kind, val any) any {
	if s, ok := val.(string); ok && nullWords[strings.ToLower(strings.TrimSpace(s))] {
		return nil
	}

	switch kind {
	case report.KindString:
		switch v := val.(type) {
		case string:
			return strings.TrimSpace(v)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	case report.KindNumber:
		if s, ok := val.(string); ok {
			if f, ok := parseNumber(s); ok {
				return f
			}
		}
	case report.KindInteger:
		f, ok := val.(float64)
		if s, isStr := val.(string); isStr {
			f, ok = parseNumber(s)
		}
		// Integral values stay float64; encoding/json writes them without a
		// fraction so they decode into int fields.
		if ok && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return f
		}
	}
	return val
}

// parseNumber accepts report-style numerals: "1,234", " 55% ", "12.5".
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
