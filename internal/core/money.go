// Package core holds the ledger domain types and money handling.
//
// Amounts cross the API as decimal currency units but are stored as signed
// cents to keep arithmetic exact.
package core

import "math"

// ToCents converts a decimal amount to cents, rounding to the nearest cent.
// The sign is preserved.
//
// Examples:
//
//	ToCents(12.34) -> 1234
//	ToCents(-20)   -> -2000
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Units returns the decimal currency value for display and serialization.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}
