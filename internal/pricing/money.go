package pricing

import "github.com/shopspring/decimal"

var halfCent = decimal.New(5, -1)

// RoundCents rounds an amount to two decimal places using half-up semantics on the
// value expressed in minor units: multiply by 100, round to the nearest integer, divide by 100.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Shift(2).Add(halfCent).Floor().Shift(-2)
}

// FromMinor converts an amount stored in minor units (cents) into a decimal amount.
func FromMinor(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToMinor converts a decimal amount into minor units, rounding to the nearest cent first.
func ToMinor(d decimal.Decimal) int64 {
	return RoundCents(d).Shift(2).IntPart()
}
