// Package format provides currency formatting helpers for valuation reports.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Millions returns a currency string for a $ millions value (e.g. "$1,234.5M",
// "-$12.3M").
func Millions(amount float64) string {
	formatted := groupThousands(fmt.Sprintf("%.1f", math.Abs(amount)))
	if amount < 0 {
		return "-$" + formatted + "M"
	}
	return "$" + formatted + "M"
}

// Currency returns a currency string with a dollar sign and thousands
// separators (e.g. "-$1,234.56").
func Currency(amount float64) string {
	formatted := groupThousands(fmt.Sprintf("%.2f", math.Abs(amount)))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Percent formats a fractional rate as a percentage string (e.g. "12.3%").
func Percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

func groupThousands(formatted string) string {
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := ""
	if len(parts) == 2 {
		decPart = "." + parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + decPart
}
