package models

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func costItems(amounts ...int64) []CostItem {
	items := make([]CostItem, 0, len(amounts))
	for _, a := range amounts {
		items = append(items, CostItem{AmountBase: decimal.NewFromInt(a)})
	}
	return items
}

func revenueItems(amounts ...int64) []RevenueItem {
	items := make([]RevenueItem, 0, len(amounts))
	for _, a := range amounts {
		items = append(items, RevenueItem{AmountBase: decimal.NewFromInt(a), Status: RevenueItemStatusBilled})
	}
	return items
}

func TestAggregates(t *testing.T) {
	if got := AggregateCosts(nil); !got.IsZero() {
		t.Fatalf("empty costs = %s, want 0", got)
	}
	if got := AggregateRevenue(nil); !got.IsZero() {
		t.Fatalf("empty revenue = %s, want 0", got)
	}
	if got := AggregateCosts(costItems(1000000, 250000)); !got.Equal(decimal.NewFromInt(1250000)) {
		t.Fatalf("costs = %s, want 1250000", got)
	}
	if got := AggregateRevenue(revenueItems(1500000)); !got.Equal(decimal.NewFromInt(1500000)) {
		t.Fatalf("revenue = %s, want 1500000", got)
	}
}

func TestCalculateProfitMargin(t *testing.T) {
	tests := []struct {
		name    string
		revenue int64
		cost    int64
		want    string
	}{
		{"zero revenue", 0, 500, "0"},
		{"negative revenue", -100, 500, "0"},
		{"loss goes negative", 1000, 1500, "-50"},
		{"zero cost exceeds none", 1000, 0, "100"},
		{"negative cost exceeds 100", 1000, -500, "150"},
		{"even split", 1000, 500, "50"},
	}
	for _, tt := range tests {
		want, _ := decimal.NewFromString(tt.want)
		got := CalculateProfitMargin(decimal.NewFromInt(tt.revenue), decimal.NewFromInt(tt.cost))
		if !got.Equal(want) {
			t.Fatalf("%s: margin = %s, want %s", tt.name, got, want)
		}
	}
}

func TestProfitabilityScenario(t *testing.T) {
	costs := costItems(1000000)
	revenue := revenueItems(1500000)

	totalCost := AggregateCosts(costs)
	totalRevenue := AggregateRevenue(revenue)

	profit := CalculateGrossProfit(totalRevenue, totalCost)
	if !profit.Equal(decimal.NewFromInt(500000)) {
		t.Fatalf("gross profit = %s, want 500000", profit)
	}

	margin := CalculateProfitMargin(totalRevenue, totalCost)
	want := decimal.NewFromFloat(33.33)
	if margin.Sub(want).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
		t.Fatalf("margin = %s, want about 33.33", margin)
	}
}

func TestGetMarginIndicator(t *testing.T) {
	target := DefaultMarginTarget()
	tests := []struct {
		name   string
		margin string
		want   MarginIndicator
	}{
		{"well above target", "35", MarginIndicatorGreen},
		{"exactly target", "20", MarginIndicatorGreen},
		{"just below target", "19.99", MarginIndicatorYellow},
		{"exactly half target", "10", MarginIndicatorYellow},
		{"just below half", "9.99", MarginIndicatorRed},
		{"negative", "-5", MarginIndicatorRed},
	}
	for _, tt := range tests {
		margin, _ := decimal.NewFromString(tt.margin)
		if got := GetMarginIndicator(margin, target); got != tt.want {
			t.Fatalf("%s: indicator = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func dashboardFixture() []ProfitabilitySnapshot {
	return []ProfitabilitySnapshot{
		{BookingId: 1, CustomerId: 10, ProfitMargin: decimal.NewFromInt(30), RevenueStatus: RevenueItemStatusBilled},
		{BookingId: 2, CustomerId: 10, ProfitMargin: decimal.NewFromInt(5), RevenueStatus: RevenueItemStatusUnbilled, HasUnbilledRevenue: true},
		{BookingId: 3, CustomerId: 20, ProfitMargin: decimal.NewFromInt(-10), RevenueStatus: RevenueItemStatusPaid},
		{BookingId: 4, CustomerId: 20, ProfitMargin: decimal.NewFromInt(50), RevenueStatus: RevenueItemStatusUnbilled, HasUnbilledRevenue: true},
	}
}

func snapshotIds(snapshots []ProfitabilitySnapshot) []int {
	ids := make([]int, 0, len(snapshots))
	for _, s := range snapshots {
		ids = append(ids, s.BookingId)
	}
	return ids
}

func TestFilterSnapshots(t *testing.T) {
	snapshots := dashboardFixture()
	customerId := 10
	unbilled := RevenueItemStatusUnbilled
	marginMin := decimal.NewFromInt(0)
	marginMax := decimal.NewFromInt(40)

	tests := []struct {
		name   string
		filter SnapshotFilter
		want   []int
	}{
		{"no predicates keeps all", SnapshotFilter{}, []int{1, 2, 3, 4}},
		{"by customer", SnapshotFilter{CustomerId: &customerId}, []int{1, 2}},
		{"by revenue status", SnapshotFilter{RevenueStatus: &unbilled}, []int{2, 4}},
		{"by margin range", SnapshotFilter{MarginMin: &marginMin, MarginMax: &marginMax}, []int{1, 2}},
		{"unbilled only", SnapshotFilter{UnbilledOnly: true}, []int{2, 4}},
		{"predicates AND together", SnapshotFilter{CustomerId: &customerId, UnbilledOnly: true}, []int{2}},
	}
	for _, tt := range tests {
		got := FilterSnapshots(snapshots, tt.filter)
		if !reflect.DeepEqual(snapshotIds(got), tt.want) {
			t.Fatalf("%s: matched %v, want %v", tt.name, snapshotIds(got), tt.want)
		}
	}
}

func TestFilterSnapshotsIdempotent(t *testing.T) {
	snapshots := dashboardFixture()
	filter := SnapshotFilter{UnbilledOnly: true}

	once := FilterSnapshots(snapshots, filter)
	twice := FilterSnapshots(once, filter)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filtering a filtered result changed it: %v vs %v", snapshotIds(once), snapshotIds(twice))
	}
}

func TestDeriveRevenueStatus(t *testing.T) {
	tests := []struct {
		name        string
		statuses    []RevenueItemStatus
		want        RevenueItemStatus
		hasUnbilled bool
	}{
		{"empty", nil, RevenueItemStatusUnbilled, false},
		{"all paid", []RevenueItemStatus{RevenueItemStatusPaid, RevenueItemStatusPaid}, RevenueItemStatusPaid, false},
		{"mixed billed and paid", []RevenueItemStatus{RevenueItemStatusBilled, RevenueItemStatusPaid}, RevenueItemStatusBilled, false},
		{"any unbilled wins", []RevenueItemStatus{RevenueItemStatusPaid, RevenueItemStatusUnbilled}, RevenueItemStatusUnbilled, true},
	}
	for _, tt := range tests {
		items := make([]RevenueItem, 0, len(tt.statuses))
		for _, s := range tt.statuses {
			items = append(items, RevenueItem{Status: s})
		}
		got, hasUnbilled := deriveRevenueStatus(items)
		if got != tt.want || hasUnbilled != tt.hasUnbilled {
			t.Fatalf("%s: status = %s hasUnbilled = %v, want %s %v", tt.name, got, hasUnbilled, tt.want, tt.hasUnbilled)
		}
	}
}
