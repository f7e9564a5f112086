package utils

import (
	"math"
)

// ToCents converts a price expressed in major units to integer minor
// units. Monetary arithmetic happens in cents so that sums cannot
// accumulate binary floating-point drift.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts integer minor units back to the external
// major-unit representation.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}
