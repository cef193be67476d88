// Package brl normalizes Brazilian-locale money and date strings and formats
// decimals back into the accounting display used across the exports.
package brl

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the DD-MM-YYYY pattern used by the ML statement.
const DateLayout = "02-01-2006"

// ParseAmount converts "1.234,56" into 1234.56. Thousands dots are stripped
// and the decimal comma becomes a point. Empty input normalizes to zero; this
// is the invoice/ledger policy, the statement path uses ParseOptionalAmount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}

	normalized := strings.ReplaceAll(raw, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d, nil
}

// ParseOptionalAmount is the ML-statement policy: empty input stays absent
// (nil) instead of collapsing to zero.
func ParseOptionalAmount(raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := ParseAmount(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseDate parses a strict DD-MM-YYYY date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, nil
}

// Format renders a decimal as "R$ 1.234,56": dot-grouped thousands, comma
// decimals, two places with banker's rounding.
func Format(d decimal.Decimal) string {
	fixed := d.StringFixedBank(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("R$ %s%s,%s", sign, grouped.String(), fracPart)
}
