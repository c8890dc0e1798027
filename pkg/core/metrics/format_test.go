package metrics

import "testing"

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{125_000_000, "₹12.50 Cr"},
		{10_000_000, "₹1.00 Cr"},
		{2_500_000, "₹25.00 L"},
		{150_000, "₹1.50 L"},
		{5_000, "₹5.0K"},
		{1_250, "₹1.2K"},
		{950, "₹950.00"},
		{0, "₹0.00"},
		{-1_500_000, "₹-1,500,000.00"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.value); got != tc.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestFormatPercentage(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{0.925, "92.5%"},
		{0, "0.0%"},
		{1, "100.0%"},
		{0.07143, "7.1%"},
	}
	for _, tc := range cases {
		if got := FormatPercentage(tc.value); got != tc.want {
			t.Errorf("FormatPercentage(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}
