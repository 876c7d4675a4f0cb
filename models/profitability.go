package models

import (
	"context"
	"errors"

	"bitbucket.org/kargodata/forwarding_backend/utils"
	"github.com/shopspring/decimal"
)

// DefaultMarginTarget is the minimum acceptable profit-margin percentage used
// for the indicator color. Resolved at the call boundary.
func DefaultMarginTarget() decimal.Decimal {
	return decimal.NewFromInt(20)
}

func AggregateCosts(costs []CostItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range costs {
		total = total.Add(item.AmountBase)
	}
	return total
}

func AggregateRevenue(revenue []RevenueItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range revenue {
		total = total.Add(item.AmountBase)
	}
	return total
}

func CalculateGrossProfit(revenue decimal.Decimal, cost decimal.Decimal) decimal.Decimal {
	return revenue.Sub(cost)
}

// CalculateProfitMargin is the gross profit as a percentage of revenue. Zero
// when revenue is not positive; may be negative or exceed 100.
func CalculateProfitMargin(revenue decimal.Decimal, cost decimal.Decimal) decimal.Decimal {
	if revenue.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return revenue.Sub(cost).Div(revenue).Mul(decimalOneHundred)
}

// GetMarginIndicator color-codes a margin against the target: green at or
// above target, yellow from half the target up to it, red below half.
func GetMarginIndicator(margin decimal.Decimal, target decimal.Decimal) MarginIndicator {
	if margin.GreaterThanOrEqual(target) {
		return MarginIndicatorGreen
	}
	if margin.GreaterThanOrEqual(target.Div(decimal.NewFromInt(2))) {
		return MarginIndicatorYellow
	}
	return MarginIndicatorRed
}

// ProfitabilitySnapshot is the derived per-booking financial summary. It is
// computed on read and never persisted.
type ProfitabilitySnapshot struct {
	BookingId          int               `json:"booking_id"`
	BookingNumber      string            `json:"booking_number"`
	CustomerId         int               `json:"customer_id"`
	CustomerName       string            `json:"customer_name"`
	TotalRevenue       decimal.Decimal   `json:"total_revenue"`
	TotalCost          decimal.Decimal   `json:"total_cost"`
	GrossProfit        decimal.Decimal   `json:"gross_profit"`
	ProfitMargin       decimal.Decimal   `json:"profit_margin"`
	MarginIndicator    MarginIndicator   `json:"margin_indicator"`
	RevenueStatus      RevenueItemStatus `json:"revenue_status"`
	HasUnbilledRevenue bool              `json:"has_unbilled_revenue"`
}

// SnapshotFilter is a conjunction: every supplied predicate must match. Nil
// fields are skipped.
type SnapshotFilter struct {
	CustomerId    *int               `json:"customer_id" form:"customer_id"`
	RevenueStatus *RevenueItemStatus `json:"revenue_status" form:"revenue_status"`
	MarginMin     *decimal.Decimal   `json:"margin_min" form:"margin_min"`
	MarginMax     *decimal.Decimal   `json:"margin_max" form:"margin_max"`
	UnbilledOnly  bool               `json:"unbilled_only" form:"unbilled_only"`
}

func (f *SnapshotFilter) matches(s ProfitabilitySnapshot) bool {
	if f.CustomerId != nil && s.CustomerId != *f.CustomerId {
		return false
	}
	if f.RevenueStatus != nil && s.RevenueStatus != *f.RevenueStatus {
		return false
	}
	if f.MarginMin != nil && s.ProfitMargin.LessThan(*f.MarginMin) {
		return false
	}
	if f.MarginMax != nil && s.ProfitMargin.GreaterThan(*f.MarginMax) {
		return false
	}
	if f.UnbilledOnly && !s.HasUnbilledRevenue {
		return false
	}
	return true
}

// FilterSnapshots keeps the snapshots matching every supplied predicate,
// preserving order and identity. Filtering an already-filtered result changes
// nothing.
func FilterSnapshots(snapshots []ProfitabilitySnapshot, filter SnapshotFilter) []ProfitabilitySnapshot {
	matched := make([]ProfitabilitySnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if filter.matches(s) {
			matched = append(matched, s)
		}
	}
	return matched
}

// slowest status wins: any unbilled item keeps the booking unbilled, fully
// paid requires every item paid
func deriveRevenueStatus(items []RevenueItem) (RevenueItemStatus, bool) {
	if len(items) == 0 {
		return RevenueItemStatusUnbilled, false
	}
	hasUnbilled := false
	hasBilled := false
	for _, item := range items {
		switch item.Status {
		case RevenueItemStatusUnbilled:
			hasUnbilled = true
		case RevenueItemStatusBilled:
			hasBilled = true
		}
	}
	if hasUnbilled {
		return RevenueItemStatusUnbilled, true
	}
	if hasBilled {
		return RevenueItemStatusBilled, false
	}
	return RevenueItemStatusPaid, false
}

func buildSnapshot(booking *Booking, costs []CostItem, revenue []RevenueItem, marginTarget decimal.Decimal) ProfitabilitySnapshot {
	totalCost := AggregateCosts(costs)
	totalRevenue := AggregateRevenue(revenue)
	margin := CalculateProfitMargin(totalRevenue, totalCost)
	revenueStatus, hasUnbilled := deriveRevenueStatus(revenue)

	customerName := ""
	if booking.Customer != nil {
		customerName = booking.Customer.Name
	}

	return ProfitabilitySnapshot{
		BookingId:          booking.ID,
		BookingNumber:      booking.BookingNumber,
		CustomerId:         booking.CustomerId,
		CustomerName:       customerName,
		TotalRevenue:       totalRevenue,
		TotalCost:          totalCost,
		GrossProfit:        CalculateGrossProfit(totalRevenue, totalCost),
		ProfitMargin:       margin,
		MarginIndicator:    GetMarginIndicator(margin, marginTarget),
		RevenueStatus:      revenueStatus,
		HasUnbilledRevenue: hasUnbilled,
	}
}

// GetBookingProfitability computes the snapshot for one booking from its
// posted line items.
func GetBookingProfitability(ctx context.Context, bookingId int) (*ProfitabilitySnapshot, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	booking, err := utils.FetchModel[Booking](ctx, businessId, bookingId, "Customer")
	if err != nil {
		return nil, err
	}

	costs, err := GetCostItems(ctx, bookingId)
	if err != nil {
		return nil, err
	}
	revenue, err := GetRevenueItems(ctx, bookingId)
	if err != nil {
		return nil, err
	}

	snapshot := buildSnapshot(booking, derefCostItems(costs), derefRevenueItems(revenue), DefaultMarginTarget())
	return &snapshot, nil
}

// GetProfitabilityDashboard computes snapshots for every booking and applies
// the filter.
func GetProfitabilityDashboard(ctx context.Context, filter SnapshotFilter) ([]ProfitabilitySnapshot, error) {
	bookings, err := GetBookings(ctx)
	if err != nil {
		return nil, err
	}

	snapshots := make([]ProfitabilitySnapshot, 0, len(bookings))
	for _, booking := range bookings {
		costs, err := GetCostItems(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		revenue, err := GetRevenueItems(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, buildSnapshot(booking, derefCostItems(costs), derefRevenueItems(revenue), DefaultMarginTarget()))
	}

	return FilterSnapshots(snapshots, filter), nil
}

func derefCostItems(items []*CostItem) []CostItem {
	out := make([]CostItem, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}

func derefRevenueItems(items []*RevenueItem) []RevenueItem {
	out := make([]RevenueItem, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}
