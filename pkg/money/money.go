package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineTotal is price times quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Sum adds the given amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Parse reads a user-entered amount. Blank input is reported as absent.
func Parse(raw string) (decimal.Decimal, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}

// RoundToUnit rounds half away from zero to a whole currency unit, as the
// payment gateway expects.
func RoundToUnit(amount decimal.Decimal) int64 {
	return amount.Round(0).IntPart()
}

// Format renders an amount with two decimals.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Plain renders an amount without trailing zeros ("8.00" becomes "8").
func Plain(amount decimal.Decimal) string {
	return amount.String()
}
