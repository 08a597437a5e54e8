package format

import "testing"

func TestMillions(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"small value", 12.34, "$12.3M"},
		{"thousands grouped", 1234.5, "$1,234.5M"},
		{"negative value", -12.34, "-$12.3M"},
		{"zero", 0, "$0.0M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Millions(tt.amount); got != tt.expected {
				t.Errorf("Millions(%v) = %q, expected %q", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"plain value", 950.0, "$950.00"},
		{"thousands grouped", 1900.5, "$1,900.50"},
		{"millions grouped", 2500000, "$2,500,000.00"},
		{"negative value", -1234.56, "-$1,234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.amount); got != tt.expected {
				t.Errorf("Currency(%v) = %q, expected %q", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(0.085); got != "8.5%" {
		t.Errorf("Percent(0.085) = %q, expected 8.5%%", got)
	}
	if got := Percent(1.0); got != "100.0%" {
		t.Errorf("Percent(1.0) = %q, expected 100.0%%", got)
	}
}
