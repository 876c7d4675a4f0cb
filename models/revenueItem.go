package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/kargodata/forwarding_backend/config"
	"bitbucket.org/kargodata/forwarding_backend/utils"
	"github.com/shopspring/decimal"
)

// RevenueItem is one revenue line item against a booking. Posted items change
// only through billing-status transitions and are never deleted.
type RevenueItem struct {
	ID           int               `gorm:"primary_key" json:"id"`
	BusinessId   string            `gorm:"index;not null" json:"business_id"`
	BookingId    int               `gorm:"index;not null" json:"booking_id"`
	ChargeTypeId int               `gorm:"index;not null" json:"charge_type_id"`
	ChargeType   *ChargeType       `json:"charge_type"`
	Currency     string            `gorm:"size:10;not null;default:'IDR'" json:"currency"`
	UnitPrice    decimal.Decimal   `gorm:"type:decimal(20,2);not null" json:"unit_price"`
	Quantity     decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"quantity"`
	Amount       decimal.Decimal   `gorm:"type:decimal(20,2);not null" json:"amount"`
	ExchangeRate decimal.Decimal   `gorm:"type:decimal(20,6);not null;default:1" json:"exchange_rate"`
	AmountBase   decimal.Decimal   `gorm:"type:decimal(20,2);not null" json:"amount_base"`
	IsTaxable    *bool             `gorm:"not null;default:true" json:"is_taxable"`
	TaxRate      decimal.Decimal   `gorm:"type:decimal(8,4);not null" json:"tax_rate"`
	TaxAmount    decimal.Decimal   `gorm:"type:decimal(20,2);not null" json:"tax_amount"`
	TotalAmount  decimal.Decimal   `gorm:"type:decimal(20,2);not null" json:"total_amount"`
	Status       RevenueItemStatus `gorm:"size:20;not null;default:'unbilled'" json:"status"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

var revenueItemTransitions = map[RevenueItemStatus][]RevenueItemStatus{
	RevenueItemStatusUnbilled: {RevenueItemStatusBilled},
	RevenueItemStatusBilled:   {RevenueItemStatusPaid},
	RevenueItemStatusPaid:     {},
}

func CreateRevenueItem(ctx context.Context, bookingId int, input *NewLineItem) (*RevenueItem, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateResourceId[Booking](ctx, businessId, bookingId); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[ChargeType](ctx, businessId, input.ChargeTypeId); err != nil {
		return nil, err
	}

	amounts, err := computeLineItemAmounts(ctx, businessId, input)
	if err != nil {
		return nil, err
	}

	item := RevenueItem{
		BusinessId:   businessId,
		BookingId:    bookingId,
		ChargeTypeId: input.ChargeTypeId,
		Currency:     amounts.Currency,
		UnitPrice:    amounts.UnitPrice,
		Quantity:     amounts.Quantity,
		Amount:       amounts.Amount,
		ExchangeRate: amounts.ExchangeRate,
		AmountBase:   amounts.AmountBase,
		IsTaxable:    amounts.IsTaxable,
		TaxRate:      amounts.TaxRate,
		TaxAmount:    amounts.TaxAmount,
		TotalAmount:  amounts.TotalAmount,
		Status:       RevenueItemStatusUnbilled,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func GetRevenueItems(ctx context.Context, bookingId int) ([]*RevenueItem, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var items []*RevenueItem
	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("business_id = ? AND booking_id = ?", businessId, bookingId).
		Preload("ChargeType").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func UpdateRevenueItemStatus(ctx context.Context, id int, next RevenueItemStatus) (*RevenueItem, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	item, err := utils.FetchModel[RevenueItem](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, s := range revenueItemTransitions[item.Status] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, errors.New("cannot move revenue item from " + string(item.Status) + " to " + string(next))
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(item).Update("status", next).Error; err != nil {
		return nil, err
	}
	item.Status = next
	return item, nil
}
