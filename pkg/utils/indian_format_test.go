package utils

import (
	"math"
	"testing"
)

func TestFormatIndian(t *testing.T) {
	tests := []struct {
		input    float64
		places   int32
		expected string
	}{
		{1234567.891, 2, "12,34,567.89"},
		{-98765.4, 1, "-98,765.4"},
		{999.5, 0, "1,000"},
		{-0.001, 2, "0.00"},
		{math.NaN(), 2, "-"},
		{math.Inf(1), 2, "-"},
	}
	for _, tt := range tests {
		if got := FormatIndian(tt.input, tt.places); got != tt.expected {
			t.Errorf("FormatIndian(%v, %d) = %s, want %s", tt.input, tt.places, got, tt.expected)
		}
	}
}

func TestFormatPct(t *testing.T) {
	tests := map[float64]string{
		2.45:  "+2.45%",
		-1.23: "-1.23%",
		0:     "+0.00%",
	}
	for in, want := range tests {
		if got := FormatPct(in); got != want {
			t.Errorf("FormatPct(%v) = %s, want %s", in, got, want)
		}
	}
}
