// Package money converts between the REAL columns the store persists and the
// decimal amounts the domain computes with.
package money

import "github.com/shopspring/decimal"

// Places is the number of fractional digits kept for every amount.
const Places = 2

// Round rounds d to cents, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// FromFloat reads a stored REAL value as a rounded amount.
func FromFloat(f float64) decimal.Decimal {
	return Round(decimal.NewFromFloat(f))
}

// Float renders d for a REAL column.
func Float(d decimal.Decimal) float64 {
	f, _ := Round(d).Float64()
	return f
}

// Cents builds an amount from an integer number of cents.
func Cents(cents int64) decimal.Decimal {
	return decimal.New(cents, -Places)
}
