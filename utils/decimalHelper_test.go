package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"20000", "20000"},
		{"20,000", "20000"},
		{"IDR 20,000", "20000"},
		{"Rp 20,000", "20000"},
		{"rp 20,000.50", "20000.5"},
		{"-20,000", "-20000"},
		{"Rp -20,000", "-20000"},
		{"  15500.25  ", "15500.25"},
	}
	for _, tt := range tests {
		got, err := ParseDecimal(tt.in)
		if err != nil {
			t.Fatalf("ParseDecimal(%q): unexpected error: %v", tt.in, err)
		}
		want, _ := decimal.NewFromString(tt.want)
		if !got.Equal(want) {
			t.Fatalf("ParseDecimal(%q) = %s, want %s", tt.in, got, want)
		}
	}
}

func TestParseDecimalInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "IDR", "abc"} {
		if _, err := ParseDecimal(in); err == nil {
			t.Fatalf("ParseDecimal(%q): expected error", in)
		}
	}
}
