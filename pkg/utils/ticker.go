package utils

import (
	"regexp"
	"strings"
)

// Common NSE ticker aliases and normalizations.
var tickerAliases = map[string]string{
	"RIL":           "RELIANCE",
	"INFOSYS":       "INFY",
	"HDFC BANK":     "HDFCBANK",
	"ICICI BANK":    "ICICIBANK",
	"SBI":           "SBIN",
	"AIRTEL":        "BHARTIARTL",
	"BAJAJ FIN":     "BAJFINANCE",
	"L&T":           "LT",
	"TATA MOTORS":   "TATAMOTORS",
	"TATA STEEL":    "TATASTEEL",
	"HCL TECH":      "HCLTECH",
	"KOTAK":         "KOTAKBANK",
	"AXIS BANK":     "AXISBANK",
	"SUN PHARMA":    "SUNPHARMA",
	"ASIAN PAINTS":  "ASIANPAINT",
	"NESTLE":        "NESTLEIND",
	"ULTRATECH":     "ULTRACEMCO",
	"TECH MAHINDRA": "TECHM",
	"MAHINDRA":      "M&M",
	"ADANI":         "ADANIENT",
	"HUL":           "HINDUNILVR",
	"COAL INDIA":    "COALINDIA",
}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9&._-]*$`)

// NormalizeTicker normalizes a user-input ticker to its canonical form.
// It handles aliases, uppercasing, whitespace and exchange suffixes.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))

	// Remove $ prefix if present (common in chat)
	ticker = strings.TrimPrefix(ticker, "$")
	ticker = strings.TrimSuffix(ticker, ".NS")
	ticker = strings.TrimSuffix(ticker, ".BO")

	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// IsValidTicker reports whether a normalized ticker is safe to use as a
// file name: letters, digits and & . _ - only, no path separators.
func IsValidTicker(ticker string) bool {
	return len(ticker) <= 32 && tickerPattern.MatchString(ticker) && !strings.Contains(ticker, "..")
}
