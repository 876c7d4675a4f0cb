package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/kargodata/forwarding_backend/config"
	"bitbucket.org/kargodata/forwarding_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CurrencyExchange holds the dated default rate for one foreign currency. Line
// items that omit an explicit rate fall back to the latest rate on or before
// their date.
type CurrencyExchange struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BusinessId   string          `gorm:"index;not null" json:"business_id" binding:"required"`
	Symbol       string          `gorm:"size:10;not null;index" json:"symbol" binding:"required"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"exchange_rate"`
	RateDate     time.Time       `gorm:"not null;index" json:"rate_date"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCurrencyExchange struct {
	Symbol       string `json:"symbol" binding:"required"`
	ExchangeRate string `json:"exchange_rate" binding:"required"`
	RateDate     string `json:"rate_date" binding:"required"`
}

func CreateCurrencyExchange(ctx context.Context, input *NewCurrencyExchange) (*CurrencyExchange, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if input.Symbol == BaseCurrency {
		return nil, errors.New("base currency has no exchange rate")
	}
	if err := validateCurrencySymbol(ctx, businessId, input.Symbol); err != nil {
		return nil, err
	}

	rate, err := utils.ParseDecimal(input.ExchangeRate)
	if err != nil {
		return nil, err
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidExchangeRate
	}

	rateDate, err := time.Parse("2006-01-02", input.RateDate)
	if err != nil {
		return nil, errors.New("rate date must be yyyy-mm-dd")
	}

	exchange := CurrencyExchange{
		BusinessId:   businessId,
		Symbol:       input.Symbol,
		ExchangeRate: rate,
		RateDate:     rateDate,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&exchange).Error; err != nil {
		return nil, err
	}

	// stale cached rate must not outlive the new row
	if err := utils.InvalidateRedis[CurrencyExchange](businessId, exchange.Symbol); err != nil {
		config.LogError(config.GetLogger(), "models", "CreateCurrencyExchange", "invalidate cache", exchange.Symbol, err)
	}

	return &exchange, nil
}

// LatestExchangeRate returns the most recent rate on or before asOf for the
// symbol, consulting the redis cache first.
func LatestExchangeRate(ctx context.Context, symbol string, asOf time.Time) (decimal.Decimal, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return decimal.Zero, errors.New("business id is required")
	}

	if symbol == BaseCurrency {
		return decimal.NewFromInt(1), nil
	}

	if cached, found, _ := utils.RetrieveRedis[CurrencyExchange](businessId, symbol); found {
		if !cached.RateDate.After(asOf) {
			return cached.ExchangeRate, nil
		}
	}

	var exchange CurrencyExchange
	db := config.GetDB()
	result := db.WithContext(ctx).
		Where("business_id = ? AND symbol = ? AND rate_date <= ?", businessId, symbol, asOf).
		Order("rate_date DESC").
		First(&exchange)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrInvalidExchangeRate
		}
		return decimal.Zero, result.Error
	}

	if err := utils.StoreRedis[CurrencyExchange](&exchange, businessId, symbol); err != nil {
		config.LogError(config.GetLogger(), "models", "LatestExchangeRate", "store cache", symbol, err)
	}

	return exchange.ExchangeRate, nil
}
