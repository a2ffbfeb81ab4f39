package utils

import "testing"

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"reliance", "RELIANCE"},
		{"  tcs  ", "TCS"},
		{"RIL", "RELIANCE"},
		{"infosys", "INFY"},
		{"$HDFCBANK", "HDFCBANK"},
		{"hdfc bank", "HDFCBANK"},
		{"l&t", "LT"},
		{"INFY.NS", "INFY"},
		{"TCS.BO", "TCS"},
		{"UNKNOWNCO", "UNKNOWNCO"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeTicker(tt.input); got != tt.expected {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsValidTicker(t *testing.T) {
	valid := []string{"TCS", "M&M", "BAJAJ-AUTO", "NAM_INDIA", "ABB.X"}
	for _, s := range valid {
		if !IsValidTicker(s) {
			t.Errorf("IsValidTicker(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "../ETC", "A/B", "tcs", "A..B", "-TCS", "HDFC BANK"}
	for _, s := range invalid {
		if IsValidTicker(s) {
			t.Errorf("IsValidTicker(%q) = true, want false", s)
		}
	}
}
