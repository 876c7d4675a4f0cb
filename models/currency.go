package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/kargodata/forwarding_backend/config"
	"bitbucket.org/kargodata/forwarding_backend/utils"
	"github.com/shopspring/decimal"
)

// BaseCurrency is the reporting currency. All foreign-currency line items are
// converted to it before aggregation.
const BaseCurrency = "IDR"

var ErrInvalidExchangeRate = errors.New("exchange rate must be greater than zero")

// ConvertToIdr converts an amount to the base currency. A base-currency amount
// passes through unchanged regardless of the supplied rate; a foreign-currency
// amount requires a positive rate.
func ConvertToIdr(amount decimal.Decimal, currency string, exchangeRate decimal.Decimal) (decimal.Decimal, error) {
	if currency == BaseCurrency {
		return amount, nil
	}
	if exchangeRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidExchangeRate
	}
	return amount.Mul(exchangeRate), nil
}

type Currency struct {
	ID            int       `gorm:"primary_key" json:"id"`
	BusinessId    string    `gorm:"index;not null" json:"business_id" binding:"required"`
	Symbol        string    `gorm:"size:10;not null" json:"symbol" binding:"required"`
	Name          string    `gorm:"size:100;not null" json:"name" binding:"required"`
	DecimalPlaces string    `gorm:"size:2;default:'2'" json:"decimal_places"`
	IsActive      *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCurrency struct {
	Symbol        string `json:"symbol" binding:"required"`
	Name          string `json:"name" binding:"required"`
	DecimalPlaces string `json:"decimal_places"`
}

func CreateCurrency(ctx context.Context, input *NewCurrency) (*Currency, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateUnique[Currency](ctx, businessId, "symbol", input.Symbol, 0); err != nil {
		return nil, err
	}

	currency := Currency{
		BusinessId:    businessId,
		Symbol:        input.Symbol,
		Name:          input.Name,
		DecimalPlaces: input.DecimalPlaces,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&currency).Error; err != nil {
		return nil, err
	}
	return &currency, nil
}

func GetCurrencies(ctx context.Context) ([]*Currency, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchAllModels[Currency](ctx, businessId)
}

// resolve a currency symbol for the business; base currency always resolves
func validateCurrencySymbol(ctx context.Context, businessId string, symbol string) error {
	if symbol == BaseCurrency {
		return nil
	}
	count, err := utils.ResourceCountWhere[Currency](ctx, businessId, "symbol = ?", symbol)
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.New("currency not found")
	}
	return nil
}
