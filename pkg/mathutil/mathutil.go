// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/orefront/mineral-valuation/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent $ millions in
// reports. Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*100) / 100
}

// RoundTo rounds a value to the given number of decimal places.
func RoundTo(val float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(val*scale) / scale
}

// IsPositive checks if a value is positive (greater than tolerance).
func IsPositive(val float64) bool {
	return val > constants.ValueTolerance
}

// WithinTolerance checks if two values are within a specified tolerance.
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Clamp restricts a value to the closed interval [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// ClampInt restricts an integer to the closed interval [lo, hi].
func ClampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// FractionalRate normalizes a rate that may have been reported as a
// percentage. Rates above 1 are treated as percentages and divided by 100.
func FractionalRate(rate float64) float64 {
	if rate > 1 {
		return rate / constants.PercentageMultiplier
	}
	return rate
}
