package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/kargodata/forwarding_backend/config"
	"bitbucket.org/kargodata/forwarding_backend/utils"
	"github.com/shopspring/decimal"
)

// Booking is a job order: the unit a term set splits and profitability is
// reported against.
type Booking struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id"`
	BookingNumber string          `gorm:"size:50;not null" json:"booking_number"`
	CustomerId    int             `gorm:"index;not null" json:"customer_id"`
	Customer      *Customer       `json:"customer"`
	Status        JobOrderStatus  `gorm:"size:30;not null;default:'draft'" json:"status"`
	TotalRevenue  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_revenue"`
	Currency      string          `gorm:"size:10;not null;default:'IDR'" json:"currency"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBooking struct {
	BookingNumber string `json:"booking_number" binding:"required"`
	CustomerId    int    `json:"customer_id" binding:"required"`
	TotalRevenue  string `json:"total_revenue" binding:"required"`
	Currency      string `json:"currency"`
}

// legal job order transitions; invoiced can be skipped when a booking closes
// without any term invoiced
var jobOrderTransitions = map[JobOrderStatus][]JobOrderStatus{
	JobOrderStatusDraft:              {JobOrderStatusInProgress},
	JobOrderStatusInProgress:         {JobOrderStatusCompleted},
	JobOrderStatusCompleted:          {JobOrderStatusSubmittedToFinance},
	JobOrderStatusSubmittedToFinance: {JobOrderStatusInvoiced, JobOrderStatusClosed},
	JobOrderStatusInvoiced:           {JobOrderStatusClosed},
	JobOrderStatusClosed:             {},
}

func CreateBooking(ctx context.Context, input *NewBooking) (*Booking, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateUnique[Booking](ctx, businessId, "booking_number", input.BookingNumber, 0); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Customer](ctx, businessId, input.CustomerId); err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = BaseCurrency
	}
	if err := validateCurrencySymbol(ctx, businessId, currency); err != nil {
		return nil, err
	}

	totalRevenue, err := utils.ParseDecimal(input.TotalRevenue)
	if err != nil {
		return nil, err
	}
	if totalRevenue.IsNegative() {
		return nil, errors.New("total revenue must not be negative")
	}

	booking := Booking{
		BusinessId:    businessId,
		BookingNumber: input.BookingNumber,
		CustomerId:    input.CustomerId,
		Status:        JobOrderStatusDraft,
		TotalRevenue:  totalRevenue,
		Currency:      currency,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func GetBooking(ctx context.Context, id int) (*Booking, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[Booking](ctx, businessId, id, "Customer")
}

func GetBookings(ctx context.Context) ([]*Booking, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchAllModels[Booking](ctx, businessId, "Customer")
}

// UpdateBookingStatus moves the job order along its lifecycle. Terms are never
// touched here; their statuses are recomputed from the new job order status on
// the next read.
func UpdateBookingStatus(ctx context.Context, id int, next JobOrderStatus) (*Booking, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	booking, err := utils.FetchModel[Booking](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, s := range jobOrderTransitions[booking.Status] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, errors.New("cannot move booking from " + string(booking.Status) + " to " + string(next))
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(booking).Update("status", next).Error; err != nil {
		return nil, err
	}
	booking.Status = next
	return booking, nil
}
