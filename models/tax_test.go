package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculateTax(t *testing.T) {
	tests := []struct {
		name      string
		amount    int64
		taxRate   int64
		isTaxable bool
		want      int64
	}{
		{"standard ppn", 3000000, 11, true, 330000},
		{"zero rate", 3000000, 0, true, 0},
		{"not taxable", 3000000, 11, false, 0},
		{"zero amount", 0, 11, true, 0},
	}
	for _, tt := range tests {
		got, err := CalculateTax(decimal.NewFromInt(tt.amount), decimal.NewFromInt(tt.taxRate), tt.isTaxable)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Fatalf("%s: tax = %s, want %d", tt.name, got, tt.want)
		}
	}
}

func TestCalculateTaxNegativeRate(t *testing.T) {
	_, err := CalculateTax(decimal.NewFromInt(1000), decimal.NewFromInt(-1), true)
	if !errors.Is(err, ErrInvalidTaxRate) {
		t.Fatalf("expected ErrInvalidTaxRate, got %v", err)
	}

	// the rate check fires even for non-taxable amounts
	_, err = CalculateTax(decimal.NewFromInt(1000), decimal.NewFromInt(-1), false)
	if !errors.Is(err, ErrInvalidTaxRate) {
		t.Fatalf("expected ErrInvalidTaxRate for non-taxable, got %v", err)
	}
}

func TestCalculateTotalWithTax(t *testing.T) {
	breakdown, err := CalculateTotalWithTax(decimal.NewFromInt(3000000), DefaultTaxRate(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !breakdown.Amount.Equal(decimal.NewFromInt(3000000)) {
		t.Fatalf("amount = %s, want 3000000", breakdown.Amount)
	}
	if !breakdown.TaxAmount.Equal(decimal.NewFromInt(330000)) {
		t.Fatalf("tax = %s, want 330000", breakdown.TaxAmount)
	}
	if !breakdown.TotalAmount.Equal(decimal.NewFromInt(3330000)) {
		t.Fatalf("total = %s, want 3330000", breakdown.TotalAmount)
	}

	untaxed, err := CalculateTotalWithTax(decimal.NewFromInt(3000000), DefaultTaxRate(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !untaxed.TotalAmount.Equal(untaxed.Amount) {
		t.Fatalf("non-taxable total = %s, want %s", untaxed.TotalAmount, untaxed.Amount)
	}
}

func TestDefaultTaxRate(t *testing.T) {
	if !DefaultTaxRate().Equal(decimal.NewFromInt(11)) {
		t.Fatalf("default tax rate = %s, want 11", DefaultTaxRate())
	}
}
