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

var (
	ErrTermSetLocked       = errors.New("term set has an invoiced term and can no longer be edited")
	ErrTermAlreadyInvoiced = errors.New("term is already invoiced")
	ErrTermNotReady        = errors.New("term trigger has not fired yet")
	ErrInvalidTermSet      = errors.New("term percentages must sum to 100")
)

// percentage sum must land within this of 100 before a set is usable
var percentageTolerance = decimal.NewFromFloat(0.01)

// InvoiceTerm is one percentage-weighted slice of a booking's total revenue,
// invoiced separately once its trigger milestone has occurred. A term set
// mutates only while no term in it is invoiced.
type InvoiceTerm struct {
	ID          int             `gorm:"primary_key" json:"id"`
	BusinessId  string          `gorm:"index;not null" json:"business_id"`
	BookingId   int             `gorm:"index;not null" json:"booking_id"`
	Percentage  decimal.Decimal `gorm:"type:decimal(8,4);not null" json:"percentage"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Trigger     TriggerKind     `gorm:"size:20;not null" json:"trigger"`
	Invoiced    *bool           `gorm:"not null;default:false" json:"invoiced"`
	InvoicedAt  *time.Time      `json:"invoiced_at"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *InvoiceTerm) IsInvoiced() bool {
	return t.Invoiced != nil && *t.Invoiced
}

type NewInvoiceTerm struct {
	Percentage  string      `json:"percentage" binding:"required"`
	Description string      `json:"description" binding:"required"`
	Trigger     TriggerKind `json:"trigger" binding:"required"`
}

type NewInvoiceTermSet struct {
	Preset TermPreset       `json:"preset" binding:"required"`
	Terms  []NewInvoiceTerm `json:"terms"`
}

/* PercentageAllocator */

// GetPresetTerms returns the template terms for a preset. Every call returns
// independent copies so a caller can edit them without touching the template
// or any other caller's set. The custom preset starts empty.
func GetPresetTerms(preset TermPreset) []InvoiceTerm {
	switch preset {
	case TermPresetSingle:
		return []InvoiceTerm{
			{Percentage: decimal.NewFromInt(100), Description: "Full payment", Trigger: TriggerKindJoCreated, Invoiced: utils.NewFalse()},
		}
	case TermPresetDpFinal:
		return []InvoiceTerm{
			{Percentage: decimal.NewFromInt(30), Description: "Down payment", Trigger: TriggerKindJoCreated, Invoiced: utils.NewFalse()},
			{Percentage: decimal.NewFromInt(70), Description: "Final payment", Trigger: TriggerKindDelivery, Invoiced: utils.NewFalse()},
		}
	case TermPresetDpDeliveryFinal:
		return []InvoiceTerm{
			{Percentage: decimal.NewFromInt(30), Description: "Down payment", Trigger: TriggerKindJoCreated, Invoiced: utils.NewFalse()},
			{Percentage: decimal.NewFromInt(50), Description: "Delivery payment", Trigger: TriggerKindSuratJalan, Invoiced: utils.NewFalse()},
			{Percentage: decimal.NewFromInt(20), Description: "Final payment", Trigger: TriggerKindBeritaAcara, Invoiced: utils.NewFalse()},
		}
	default:
		return []InvoiceTerm{}
	}
}

// ValidateTermsTotal reports whether the set is non-empty and its percentages
// sum to 100 within the tolerance.
func ValidateTermsTotal(terms []InvoiceTerm) bool {
	if len(terms) == 0 {
		return false
	}
	sum := decimal.Zero
	for _, term := range terms {
		sum = sum.Add(term.Percentage)
	}
	return sum.Sub(decimalOneHundred).Abs().LessThan(percentageTolerance)
}

// ValidateTermSet collects every field-level problem in the set so a form can
// render all of them at once.
func ValidateTermSet(terms []InvoiceTerm) utils.FieldErrors {
	var fieldErrors utils.FieldErrors

	if len(terms) == 0 {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "terms", Message: "at least one term is required"})
		return fieldErrors
	}

	validTriggers := map[TriggerKind]bool{
		TriggerKindJoCreated:   true,
		TriggerKindSuratJalan:  true,
		TriggerKindBeritaAcara: true,
		TriggerKindDelivery:    true,
	}

	for i, term := range terms {
		field := "terms[" + utils.IntToString(i) + "]"
		if term.Percentage.LessThanOrEqual(decimal.Zero) {
			fieldErrors = append(fieldErrors, utils.FieldError{Field: field + ".percentage", Message: "percentage must be greater than 0"})
		} else if term.Percentage.GreaterThan(decimalOneHundred) {
			fieldErrors = append(fieldErrors, utils.FieldError{Field: field + ".percentage", Message: "percentage must not exceed 100"})
		}
		if term.Description == "" {
			fieldErrors = append(fieldErrors, utils.FieldError{Field: field + ".description", Message: "description is required"})
		}
		if !validTriggers[term.Trigger] {
			fieldErrors = append(fieldErrors, utils.FieldError{Field: field + ".trigger", Message: "invalid trigger"})
		}
	}

	if !ValidateTermsTotal(terms) {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "terms", Message: "percentages must sum to 100"})
	}

	return fieldErrors
}

// CalculateTermAmount is the invoiceable subtotal of one term before tax.
func CalculateTermAmount(revenue decimal.Decimal, percentage decimal.Decimal) decimal.Decimal {
	return revenue.Mul(percentage).Div(decimalOneHundred)
}

/* Trigger state machine */

// GetTermStatus derives a term's status from the operational signals. Statuses
// are computed on demand and never stored, so a newly recorded document or a
// status change unlocks eligible terms immediately.
//
// The invoiced flag is terminal and overrides every other signal.
func GetTermStatus(term InvoiceTerm, jobOrderStatus JobOrderStatus, hasSuratJalan bool, hasBeritaAcara bool) TermStatus {
	if term.IsInvoiced() {
		return TermStatusInvoiced
	}

	switch term.Trigger {
	case TriggerKindJoCreated:
		return TermStatusReady
	case TriggerKindSuratJalan:
		if hasSuratJalan {
			return TermStatusReady
		}
	case TriggerKindBeritaAcara:
		if hasBeritaAcara {
			return TermStatusReady
		}
	case TriggerKindDelivery:
		switch jobOrderStatus {
		case JobOrderStatusCompleted, JobOrderStatusSubmittedToFinance, JobOrderStatusInvoiced, JobOrderStatusClosed:
			return TermStatusReady
		}
	}
	return TermStatusLocked
}

/* Invoice generation tracker */

// HasAnyInvoicedTerm is the immutability gate: once true, every percentage or
// trigger edit on the owning set must be rejected.
func HasAnyInvoicedTerm(terms []InvoiceTerm) bool {
	for _, term := range terms {
		if term.IsInvoiced() {
			return true
		}
	}
	return false
}

// CalculateTotalInvoicedFromTerms sums the tax-inclusive totals of the terms
// already invoiced against the booking's revenue.
func CalculateTotalInvoicedFromTerms(terms []InvoiceTerm, revenue decimal.Decimal, taxRate decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, term := range terms {
		if !term.IsInvoiced() {
			continue
		}
		breakdown, err := CalculateTotalWithTax(CalculateTermAmount(revenue, term.Percentage), taxRate, true)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(breakdown.TotalAmount)
	}
	return total, nil
}

/* Persistence write paths */

func termsFromInput(input *NewInvoiceTermSet) ([]InvoiceTerm, error) {
	if input.Preset != TermPresetCustom {
		return GetPresetTerms(input.Preset), nil
	}
	terms := make([]InvoiceTerm, 0, len(input.Terms))
	for _, in := range input.Terms {
		percentage, err := utils.ParseDecimal(in.Percentage)
		if err != nil {
			return nil, err
		}
		terms = append(terms, InvoiceTerm{
			Percentage:  percentage,
			Description: in.Description,
			Trigger:     in.Trigger,
			Invoiced:    utils.NewFalse(),
		})
	}
	return terms, nil
}

// CreateInvoiceTerms configures a booking's term set from a preset or custom
// input. Fails when the booking already has terms; ReplaceInvoiceTerms is the
// edit path.
func CreateInvoiceTerms(ctx context.Context, bookingId int, input *NewInvoiceTermSet) ([]*InvoiceTerm, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateResourceId[Booking](ctx, businessId, bookingId); err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[InvoiceTerm](ctx, businessId, "booking_id = ?", bookingId)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("booking already has invoice terms")
	}

	terms, err := termsFromInput(input)
	if err != nil {
		return nil, err
	}
	if fieldErrors := ValidateTermSet(terms); fieldErrors.HasErrors() {
		return nil, fieldErrors
	}

	return insertTerms(ctx, businessId, bookingId, terms)
}

// ReplaceInvoiceTerms swaps the booking's term set. Rejected once any term is
// invoiced.
func ReplaceInvoiceTerms(ctx context.Context, bookingId int, input *NewInvoiceTermSet) ([]*InvoiceTerm, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateResourceId[Booking](ctx, businessId, bookingId); err != nil {
		return nil, err
	}

	existing, err := fetchBookingTerms(ctx, businessId, bookingId)
	if err != nil {
		return nil, err
	}
	if HasAnyInvoicedTerm(existing) {
		return nil, ErrTermSetLocked
	}

	terms, err := termsFromInput(input)
	if err != nil {
		return nil, err
	}
	if fieldErrors := ValidateTermSet(terms); fieldErrors.HasErrors() {
		return nil, fieldErrors
	}

	var created []*InvoiceTerm
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the lock check above can race a concurrent invoice; re-check inside
		// the transaction against the invoiced flag itself
		var invoicedCount int64
		if err := tx.Model(&InvoiceTerm{}).
			Where("business_id = ? AND booking_id = ? AND invoiced = ?", businessId, bookingId, true).
			Count(&invoicedCount).Error; err != nil {
			return err
		}
		if invoicedCount > 0 {
			return ErrTermSetLocked
		}
		if err := tx.Where("business_id = ? AND booking_id = ?", businessId, bookingId).
			Delete(&InvoiceTerm{}).Error; err != nil {
			return err
		}
		for i := range terms {
			terms[i].BusinessId = businessId
			terms[i].BookingId = bookingId
			if err := tx.Create(&terms[i]).Error; err != nil {
				return err
			}
			created = append(created, &terms[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func insertTerms(ctx context.Context, businessId string, bookingId int, terms []InvoiceTerm) ([]*InvoiceTerm, error) {
	var created []*InvoiceTerm
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range terms {
			terms[i].BusinessId = businessId
			terms[i].BookingId = bookingId
			if err := tx.Create(&terms[i]).Error; err != nil {
				return err
			}
			created = append(created, &terms[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func fetchBookingTerms(ctx context.Context, businessId string, bookingId int) ([]InvoiceTerm, error) {
	var terms []InvoiceTerm
	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("business_id = ? AND booking_id = ?", businessId, bookingId).
		Order("id ASC").
		Find(&terms).Error
	if err != nil {
		return nil, err
	}
	return terms, nil
}

// InvoiceTermView is one term with its computed status and subtotal.
type InvoiceTermView struct {
	Term   InvoiceTerm     `json:"term"`
	Status TermStatus      `json:"status"`
	Amount decimal.Decimal `json:"amount"`
}

// GetBookingTermStatuses returns the booking's terms with statuses computed
// from the current job order status and document signals.
func GetBookingTermStatuses(ctx context.Context, bookingId int) ([]InvoiceTermView, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	booking, err := utils.FetchModel[Booking](ctx, businessId, bookingId)
	if err != nil {
		return nil, err
	}

	terms, err := fetchBookingTerms(ctx, businessId, bookingId)
	if err != nil {
		return nil, err
	}

	hasSuratJalan, hasBeritaAcara, err := shipmentDocumentFlags(ctx, businessId, bookingId)
	if err != nil {
		return nil, err
	}

	views := make([]InvoiceTermView, 0, len(terms))
	for _, term := range terms {
		views = append(views, InvoiceTermView{
			Term:   term,
			Status: GetTermStatus(term, booking.Status, hasSuratJalan, hasBeritaAcara),
			Amount: CalculateTermAmount(booking.TotalRevenue, term.Percentage),
		})
	}
	return views, nil
}

// MarkTermInvoiced flips the invoiced flag with a conditional write keyed on
// invoiced = false. Zero rows affected means another actor won the race (or
// the term does not exist); the caller should re-fetch and recompute before
// retrying.
func MarkTermInvoiced(ctx context.Context, bookingId int, termId int) error {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return errors.New("business id is required")
	}

	now := time.Now()
	db := config.GetDB()
	result := db.WithContext(ctx).Model(&InvoiceTerm{}).
		Where("business_id = ? AND booking_id = ? AND id = ? AND invoiced = ?", businessId, bookingId, termId, false).
		Updates(map[string]interface{}{"invoiced": true, "invoiced_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTermAlreadyInvoiced
	}
	return nil
}

// TermInvoice is the breakdown generated when a ready term is invoiced.
type TermInvoice struct {
	BookingId     int             `json:"booking_id"`
	TermId        int             `json:"term_id"`
	Description   string          `json:"description"`
	Percentage    decimal.Decimal `json:"percentage"`
	Amount        decimal.Decimal `json:"amount"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalInvoiced decimal.Decimal `json:"total_invoiced"`
}

// GenerateTermInvoice computes the invoice breakdown for one term and marks it
// invoiced. The term must be ready; the status is recomputed here rather than
// trusted from the caller.
func GenerateTermInvoice(ctx context.Context, bookingId int, termId int, taxRate decimal.Decimal) (*TermInvoice, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	booking, err := utils.FetchModel[Booking](ctx, businessId, bookingId)
	if err != nil {
		return nil, err
	}

	terms, err := fetchBookingTerms(ctx, businessId, bookingId)
	if err != nil {
		return nil, err
	}
	var term *InvoiceTerm
	for i := range terms {
		if terms[i].ID == termId {
			term = &terms[i]
			break
		}
	}
	if term == nil {
		return nil, utils.ErrorRecordNotFound
	}

	hasSuratJalan, hasBeritaAcara, err := shipmentDocumentFlags(ctx, businessId, bookingId)
	if err != nil {
		return nil, err
	}

	switch GetTermStatus(*term, booking.Status, hasSuratJalan, hasBeritaAcara) {
	case TermStatusInvoiced:
		return nil, ErrTermAlreadyInvoiced
	case TermStatusLocked:
		return nil, ErrTermNotReady
	}

	amount := CalculateTermAmount(booking.TotalRevenue, term.Percentage)
	breakdown, err := CalculateTotalWithTax(amount, taxRate, true)
	if err != nil {
		return nil, err
	}

	if err := MarkTermInvoiced(ctx, bookingId, termId); err != nil {
		return nil, err
	}
	term.Invoiced = utils.NewTrue()

	totalInvoiced, err := CalculateTotalInvoicedFromTerms(terms, booking.TotalRevenue, taxRate)
	if err != nil {
		return nil, err
	}

	return &TermInvoice{
		BookingId:     bookingId,
		TermId:        termId,
		Description:   term.Description,
		Percentage:    term.Percentage,
		Amount:        breakdown.Amount,
		TaxRate:       taxRate,
		TaxAmount:     breakdown.TaxAmount,
		TotalAmount:   breakdown.TotalAmount,
		TotalInvoiced: totalInvoiced,
	}, nil
}
