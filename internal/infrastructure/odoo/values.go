package odoo

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Odoo devuelve false para campos vacíos; estos helpers normalizan los valores de search_read.

func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

func toID(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case []any: // many2one: [id, display_name]
		if len(t) > 0 {
			return toID(t[0])
		}
	}
	return 0
}

func idString(v any) string {
	if n := toID(v); n != 0 {
		return strconv.FormatInt(n, 10)
	}
	return ""
}

// many2oneName devuelve el display_name de un many2one.
func many2oneName(v any) string {
	if t, ok := v.([]any); ok && len(t) > 1 {
		return str(t[1])
	}
	return ""
}

func amount(v any) decimal.Decimal {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t).Round(2)
	case int64:
		return decimal.NewFromInt(t)
	case string:
		d, err := decimal.NewFromString(t)
		if err == nil {
			return d
		}
	}
	return decimal.Zero
}

func date(v any) time.Time {
	s := str(v)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseID(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil && n > 0
}
