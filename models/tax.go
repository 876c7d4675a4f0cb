package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidTaxRate = errors.New("tax rate must not be negative")

var decimalOneHundred = decimal.NewFromInt(100)

// DefaultTaxRate is the PPN rate (percent) applied whenever a caller omits an
// explicit rate. Resolved at the call boundary so tests can pass their own rate.
func DefaultTaxRate() decimal.Decimal {
	return decimal.NewFromInt(11)
}

// TaxBreakdown is the tax-inclusive total for one invoiceable amount.
type TaxBreakdown struct {
	Amount      decimal.Decimal `json:"amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// CalculateTax computes the tax portion of an amount. Non-taxable amounts carry
// zero tax; a negative rate is out-of-domain caller input, not a validation state.
func CalculateTax(amount decimal.Decimal, taxRate decimal.Decimal, isTaxable bool) (decimal.Decimal, error) {
	if taxRate.IsNegative() {
		return decimal.Zero, ErrInvalidTaxRate
	}
	if !isTaxable {
		return decimal.Zero, nil
	}
	return amount.Mul(taxRate).Div(decimalOneHundred), nil
}

func CalculateTotalWithTax(amount decimal.Decimal, taxRate decimal.Decimal, isTaxable bool) (*TaxBreakdown, error) {
	taxAmount, err := CalculateTax(amount, taxRate, isTaxable)
	if err != nil {
		return nil, err
	}
	return &TaxBreakdown{
		Amount:      amount,
		TaxAmount:   taxAmount,
		TotalAmount: amount.Add(taxAmount),
	}, nil
}
