package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are carried as decimals with two fractional digits. All arithmetic
// rounds half-up at scale 2 so repeated partial payments cannot drift.
const scale = 2

var hundred = decimal.NewFromInt(100)

// Parse converts raw input into a monetary amount.
func Parse(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return d.Round(scale), nil
}

// Sum adds the provided amounts at monetary scale.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total.Round(scale)
}

// Percent applies pct (0..100) to base: base × pct / 100.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred).Round(scale)
}

// ClampZero floors the amount at zero.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ValidPercentage reports whether pct lies in [0,100].
func ValidPercentage(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

// Format renders the amount as a dollar string with thousands separators,
// e.g. 1234.5 → "$1,234.50".
func Format(d decimal.Decimal) string {
	fixed := d.Round(scale).StringFixed(scale)

	negative := strings.HasPrefix(fixed, "-")
	if negative {
		fixed = fixed[1:]
	}

	parts := strings.SplitN(fixed, ".", 2)
	whole := parts[0]

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	out := "$" + grouped.String() + "." + parts[1]
	if negative {
		return "-" + out
	}
	return out
}
