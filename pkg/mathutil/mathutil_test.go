package mathutil

import "testing"

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		val      float64
		expected float64
	}{
		{"rounds half up", 1.005, 1.0}, // 1.005 is stored just below 1.005
		{"two decimals kept", 12.344, 12.34},
		{"rounds up", 12.346, 12.35},
		{"negative value", -3.456, -3.46},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round(tt.val); got != tt.expected {
				t.Errorf("Round(%v) = %v, expected %v", tt.val, got, tt.expected)
			}
		})
	}
}

func TestRoundTo(t *testing.T) {
	if got := RoundTo(0.123456, 4); got != 0.1235 {
		t.Errorf("RoundTo(0.123456, 4) = %v, expected 0.1235", got)
	}
	if got := RoundTo(1234.5, 0); got != 1235 {
		t.Errorf("RoundTo(1234.5, 0) = %v, expected 1235", got)
	}
}

func TestIsPositive(t *testing.T) {
	if IsPositive(0.005) {
		t.Error("IsPositive(0.005) should be false within tolerance")
	}
	if !IsPositive(0.02) {
		t.Error("IsPositive(0.02) should be true")
	}
	if IsPositive(-1) {
		t.Error("IsPositive(-1) should be false")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name             string
		val, lo, hi, out float64
	}{
		{"below range", -1, 0, 1, 0},
		{"above range", 2, 0, 1, 1},
		{"inside range", 0.5, 0, 1, 0.5},
		{"at lower bound", 0, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.val, tt.lo, tt.hi); got != tt.out {
				t.Errorf("Clamp(%v, %v, %v) = %v, expected %v", tt.val, tt.lo, tt.hi, got, tt.out)
			}
		})
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(10, 1, 4); got != 4 {
		t.Errorf("ClampInt(10, 1, 4) = %v, expected 4", got)
	}
	if got := ClampInt(0, 1, 4); got != 1 {
		t.Errorf("ClampInt(0, 1, 4) = %v, expected 1", got)
	}
	if got := ClampInt(3, 1, 4); got != 3 {
		t.Errorf("ClampInt(3, 1, 4) = %v, expected 3", got)
	}
}

func TestFractionalRate(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		expected float64
	}{
		{"already fractional", 0.08, 0.08},
		{"percentage form", 8, 0.08},
		{"exactly one stays", 1, 1},
		{"zero stays", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FractionalRate(tt.rate); got != tt.expected {
				t.Errorf("FractionalRate(%v) = %v, expected %v", tt.rate, got, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(1.0, 1.005, 0.01) {
		t.Error("WithinTolerance(1.0, 1.005, 0.01) should be true")
	}
	if WithinTolerance(1.0, 1.05, 0.01) {
		t.Error("WithinTolerance(1.0, 1.05, 0.01) should be false")
	}
}
