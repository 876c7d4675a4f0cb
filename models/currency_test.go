package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestConvertToIdr(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		rate     string
		want     string
	}{
		{"usd", "100", "USD", "15500", "1550000"},
		{"fractional rate", "250.50", "SGD", "11850.25", "2968487.625"},
		{"idr identity", "20000", "IDR", "15500", "20000"},
		{"idr ignores zero rate", "20000", "IDR", "0", "20000"},
		{"idr ignores negative rate", "20000", "IDR", "-3", "20000"},
	}
	for _, tt := range tests {
		amount, _ := decimal.NewFromString(tt.amount)
		rate, _ := decimal.NewFromString(tt.rate)
		want, _ := decimal.NewFromString(tt.want)

		got, err := ConvertToIdr(amount, tt.currency, rate)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%s: converted = %s, want %s", tt.name, got, want)
		}
	}
}

func TestConvertToIdrInvalidRate(t *testing.T) {
	for _, rate := range []int64{0, -1} {
		_, err := ConvertToIdr(decimal.NewFromInt(100), "USD", decimal.NewFromInt(rate))
		if !errors.Is(err, ErrInvalidExchangeRate) {
			t.Fatalf("rate %d: expected ErrInvalidExchangeRate, got %v", rate, err)
		}
	}
}
