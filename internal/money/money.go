// Package money holds the fixed-point helpers shared by the ledger, the
// services and the CLI. Every amount is a decimal held to two fractional
// digits; binary floats never appear in the money path.
package money

import (
	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every stored amount carries.
const Scale = 2

var hundred = decimal.NewFromInt(100)

// Parse reads a decimal string such as "12.50".
func Parse(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// HasValidScale reports whether d has at most Scale fractional digits.
func HasValidScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(Scale))
}

// IsValidAmount reports whether d is positive and representable in cents.
func IsValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && HasValidScale(d)
}

// SplitEqual divides total into n shares that sum exactly to total.
// The leftover cents go one each to the first shares, so callers order
// participants by who should absorb the remainder.
func SplitEqual(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	cents := total.Shift(Scale).IntPart()
	base := cents / int64(n)
	rem := cents % int64(n)

	shares := make([]decimal.Decimal, n)
	for i := range shares {
		c := base
		if int64(i) < rem {
			c++
		}
		shares[i] = decimal.New(c, -Scale)
	}
	return shares
}

// SplitPercent divides total by the given percentages, which must add up to
// 100. Each share is floored to the cent and the leftover cents are handed
// out in slice order, as with SplitEqual.
func SplitPercent(total decimal.Decimal, percents []decimal.Decimal) []decimal.Decimal {
	if len(percents) == 0 {
		return nil
	}
	cents := total.Shift(Scale).IntPart()
	centsDec := decimal.NewFromInt(cents)

	raw := make([]int64, len(percents))
	var allocated int64
	for i, p := range percents {
		raw[i] = centsDec.Mul(p).Div(hundred).Floor().IntPart()
		allocated += raw[i]
	}

	for i := 0; allocated < cents; i = (i + 1) % len(raw) {
		raw[i]++
		allocated++
	}

	shares := make([]decimal.Decimal, len(raw))
	for i, c := range raw {
		shares[i] = decimal.New(c, -Scale)
	}
	return shares
}

// Sum adds amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, amounts...)
}

// IsCurrency reports whether code is a known ISO 4217 currency.
func IsCurrency(code string) bool {
	return gomoney.GetCurrency(code) != nil
}

// Format renders d in the currency's display form, e.g. "$1,234.50".
// Unknown currencies fall back to "1234.50 XXX".
func Format(d decimal.Decimal, currency string) string {
	cur := gomoney.GetCurrency(currency)
	if cur == nil {
		return d.StringFixed(Scale) + " " + currency
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return gomoney.New(minor, cur.Code).Display()
}
