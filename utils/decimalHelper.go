package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal accepts common user-formatted amount strings like:
// - "20000"
// - "20,000"
// - "IDR 20,000"
// - "Rp -20,000"
//
// Keep digits, '.', and a leading '-' only.
func ParseDecimal(v string) (decimal.Decimal, error) {
	s := strings.TrimSpace(v)
	if s != "" {
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, "IDR", "")
		s = strings.ReplaceAll(s, "idr", "")
		s = strings.ReplaceAll(s, "Rp", "")
		s = strings.ReplaceAll(s, "rp", "")
		s = strings.TrimSpace(s)
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}
	// Strip everything except digits and '.'.
	var b strings.Builder
	b.Grow(len(s) + 1)
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return decimal.NewFromInt(0), fmt.Errorf("invalid value")
	}
	if neg {
		clean = "-" + clean
	}

	val, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.NewFromInt(0), err
	}
	return val, nil
}
