package services

import "testing"

func TestRemainingQuantity_NoBinaryDrift(t *testing.T) {
	if got := RemainingQuantity(100, 98.991); got != 1.009 {
		t.Errorf("RemainingQuantity(100, 98.991) = %v, want 1.009", got)
	}
}

func TestExceeds(t *testing.T) {
	tests := []struct {
		requested, remaining float64
		want                 bool
	}{
		{1.009, 1.009, false},
		{0.1 + 0.2, 0.3, false},
		{1.0000005, 1, false},
		{1.00001, 1, true},
		{5, 0, true},
	}
	for _, tt := range tests {
		if got := exceeds(toQty(tt.requested), toQty(tt.remaining)); got != tt.want {
			t.Errorf("exceeds(%v, %v) = %v, want %v", tt.requested, tt.remaining, got, tt.want)
		}
	}
}

func TestIsFullyBilled(t *testing.T) {
	for remaining, want := range map[float64]bool{0: true, 0.0000001: true, 0.001: false, -0.5: true} {
		if got := IsFullyBilled(remaining); got != want {
			t.Errorf("IsFullyBilled(%v) = %v, want %v", remaining, got, want)
		}
	}
}

func TestNormalizeDescription(t *testing.T) {
	if got := normalizeDescription("  Excavation  in\tSoil "); got != "excavation in soil" {
		t.Errorf("normalizeDescription() = %q", got)
	}
}
