package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/kargodata/forwarding_backend/utils"
	"github.com/shopspring/decimal"
)

// NewLineItem is the shared input shape for cost and revenue line items.
// ExchangeRate and TaxRate are optional: a missing rate falls back to the
// latest dated default for the currency, a missing tax rate to the PPN
// default. IsTaxable defaults to true.
type NewLineItem struct {
	ChargeTypeId int    `json:"charge_type_id" binding:"required"`
	Currency     string `json:"currency"`
	UnitPrice    string `json:"unit_price" binding:"required"`
	Quantity     string `json:"quantity" binding:"required"`
	ExchangeRate string `json:"exchange_rate"`
	IsTaxable    *bool  `json:"is_taxable"`
	TaxRate      string `json:"tax_rate"`
}

// lineItemAmounts holds everything computed at write time. Amounts are fixed
// when the row is written; later rate or tax changes never rewrite posted
// items.
type lineItemAmounts struct {
	Currency     string
	UnitPrice    decimal.Decimal
	Quantity     decimal.Decimal
	Amount       decimal.Decimal
	ExchangeRate decimal.Decimal
	AmountBase   decimal.Decimal
	IsTaxable    *bool
	TaxRate      decimal.Decimal
	TaxAmount    decimal.Decimal
	TotalAmount  decimal.Decimal
}

func computeLineItemAmounts(ctx context.Context, businessId string, input *NewLineItem) (*lineItemAmounts, error) {
	currency := input.Currency
	if currency == "" {
		currency = BaseCurrency
	}
	if err := validateCurrencySymbol(ctx, businessId, currency); err != nil {
		return nil, err
	}

	unitPrice, err := utils.ParseDecimal(input.UnitPrice)
	if err != nil {
		return nil, err
	}
	quantity, err := utils.ParseDecimal(input.Quantity)
	if err != nil {
		return nil, err
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("quantity must be greater than 0")
	}
	amount := unitPrice.Mul(quantity)

	exchangeRate := decimal.NewFromInt(1)
	if currency != BaseCurrency {
		if input.ExchangeRate != "" {
			exchangeRate, err = utils.ParseDecimal(input.ExchangeRate)
			if err != nil {
				return nil, err
			}
		} else {
			exchangeRate, err = LatestExchangeRate(ctx, currency, time.Now())
			if err != nil {
				return nil, err
			}
		}
	}

	amountBase, err := ConvertToIdr(amount, currency, exchangeRate)
	if err != nil {
		return nil, err
	}

	isTaxable := input.IsTaxable
	if isTaxable == nil {
		isTaxable = utils.NewTrue()
	}
	taxRate := DefaultTaxRate()
	if input.TaxRate != "" {
		taxRate, err = utils.ParseDecimal(input.TaxRate)
		if err != nil {
			return nil, err
		}
	}

	breakdown, err := CalculateTotalWithTax(amountBase, taxRate, *isTaxable)
	if err != nil {
		return nil, err
	}

	return &lineItemAmounts{
		Currency:     currency,
		UnitPrice:    unitPrice,
		Quantity:     quantity,
		Amount:       amount,
		ExchangeRate: exchangeRate,
		AmountBase:   amountBase,
		IsTaxable:    isTaxable,
		TaxRate:      taxRate,
		TaxAmount:    breakdown.TaxAmount,
		TotalAmount:  breakdown.TotalAmount,
	}, nil
}
