// Package money converts between exact decimal amounts and the integer
// minor units (cents) kept in storage.
//
// Arithmetic is done on decimal.Decimal and never rounds; rounding happens
// only when an amount is persisted (ToCents) or rendered (Display).
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimals is the number of minor-unit digits for the shop currency (USD).
const Decimals = 2

var hundred = decimal.NewFromInt(100)

// FromCents returns the decimal value of an amount stored in cents.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -Decimals)
}

// ToCents rounds d half away from zero to whole cents.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// Round returns d rounded to cent precision.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Decimals)
}

// Display formats d with exactly two decimals, e.g. "27.50".
func Display(d decimal.Decimal) string {
	return d.StringFixed(Decimals)
}

// Format renders d as a dollar amount, e.g. "$27.50" or "-$3.10".
func Format(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + Display(d.Neg())
	}
	return "$" + Display(d)
}

// Parse reads a decimal amount such as "12.99". Amounts with sub-cent
// precision are rejected so that stored prices are exact.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if !d.Equal(Round(d)) {
		return decimal.Zero, fmt.Errorf("amount %q has more than %d decimals", s, Decimals)
	}
	return d, nil
}
