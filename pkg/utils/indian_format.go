// Package utils provides number, ticker and date helpers shared by the
// dashboard's reports and loaders.
package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatIndian formats a number with Indian digit grouping and a fixed
// number of decimal places, rounding half away from zero.
func FormatIndian(amount float64, places int32) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "-"
	}
	d := decimal.NewFromFloat(amount).Round(places)
	negative := d.IsNegative()

	intPart, frac, _ := strings.Cut(d.Abs().StringFixed(places), ".")
	out := formatIndianNumber(intPart)
	if places > 0 {
		out += "." + frac
	}
	if negative {
		return "-" + out
	}
	return out
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// formatIndianNumber groups a string of digits Indian style (last 3, then 2s).
func formatIndianNumber(s string) string {
	if len(s) <= 3 {
		return s
	}
	result := s[len(s)-3:]
	remaining := s[:len(s)-3]
	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	if remaining != "" {
		result = remaining + "," + result
	}
	return result
}
