package validation

import "testing"

type color string

func TestFormatValidValues(t *testing.T) {
	got := FormatValidValues([]color{"red", "green", "blue"})
	if got != "red, green, blue" {
		t.Fatalf("FormatValidValues = %q", got)
	}
}

func TestFormatAlternatives(t *testing.T) {
	tests := []struct {
		values []color
		want   string
	}{
		{nil, ""},
		{[]color{"red"}, "red"},
		{[]color{"red", "green"}, "red or green"},
		{[]color{"low", "medium", "high"}, "low, medium, or high"},
	}

	for _, tt := range tests {
		if got := FormatAlternatives(tt.values); got != tt.want {
			t.Errorf("FormatAlternatives(%v) = %q, want %q", tt.values, got, tt.want)
		}
	}
}
