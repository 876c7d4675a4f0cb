package models

import (
	"encoding/json"
	"errors"
)

type JobOrderStatus string

const (
	JobOrderStatusDraft              JobOrderStatus = "draft"
	JobOrderStatusInProgress         JobOrderStatus = "in_progress"
	JobOrderStatusCompleted          JobOrderStatus = "completed"
	JobOrderStatusSubmittedToFinance JobOrderStatus = "submitted_to_finance"
	JobOrderStatusInvoiced           JobOrderStatus = "invoiced"
	JobOrderStatusClosed             JobOrderStatus = "closed"
)

// convert input to enum type
func (s *JobOrderStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("job order status must be string")
	}

	jobOrderStatus := map[string]JobOrderStatus{
		"draft":                JobOrderStatusDraft,
		"in_progress":          JobOrderStatusInProgress,
		"completed":            JobOrderStatusCompleted,
		"submitted_to_finance": JobOrderStatusSubmittedToFinance,
		"invoiced":             JobOrderStatusInvoiced,
		"closed":               JobOrderStatusClosed,
	}

	v, ok := jobOrderStatus[str]
	if !ok {
		return errors.New("invalid job order status")
	}
	*s = v
	return nil
}

type TriggerKind string

const (
	TriggerKindJoCreated   TriggerKind = "jo_created"
	TriggerKindSuratJalan  TriggerKind = "surat_jalan"
	TriggerKindBeritaAcara TriggerKind = "berita_acara"
	TriggerKindDelivery    TriggerKind = "delivery"
)

func (t *TriggerKind) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("trigger must be string")
	}

	triggerKind := map[string]TriggerKind{
		"jo_created":   TriggerKindJoCreated,
		"surat_jalan":  TriggerKindSuratJalan,
		"berita_acara": TriggerKindBeritaAcara,
		"delivery":     TriggerKindDelivery,
	}

	v, ok := triggerKind[str]
	if !ok {
		return errors.New("invalid trigger")
	}
	*t = v
	return nil
}

type TermStatus string

const (
	TermStatusInvoiced TermStatus = "invoiced"
	TermStatusReady    TermStatus = "ready"
	TermStatusLocked   TermStatus = "locked"
)

type TermPreset string

const (
	TermPresetSingle          TermPreset = "single"
	TermPresetDpFinal         TermPreset = "dp_final"
	TermPresetDpDeliveryFinal TermPreset = "dp_delivery_final"
	TermPresetCustom          TermPreset = "custom"
)

func (p *TermPreset) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("term preset must be string")
	}

	termPreset := map[string]TermPreset{
		"single":            TermPresetSingle,
		"dp_final":          TermPresetDpFinal,
		"dp_delivery_final": TermPresetDpDeliveryFinal,
		"custom":            TermPresetCustom,
	}

	v, ok := termPreset[str]
	if !ok {
		return errors.New("invalid term preset")
	}
	*p = v
	return nil
}

type ShipmentDocumentType string

const (
	ShipmentDocumentTypeSuratJalan  ShipmentDocumentType = "surat_jalan"
	ShipmentDocumentTypeBeritaAcara ShipmentDocumentType = "berita_acara"
)

func (t *ShipmentDocumentType) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("shipment document type must be string")
	}
	switch str {
	case "surat_jalan":
		*t = ShipmentDocumentTypeSuratJalan
	case "berita_acara":
		*t = ShipmentDocumentTypeBeritaAcara
	default:
		return errors.New("invalid shipment document type")
	}
	return nil
}

type CostItemStatus string

const (
	CostItemStatusUnpaid  CostItemStatus = "unpaid"
	CostItemStatusPartial CostItemStatus = "partial"
	CostItemStatusPaid    CostItemStatus = "paid"
)

func (s *CostItemStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("cost item status must be string")
	}
	switch str {
	case "unpaid":
		*s = CostItemStatusUnpaid
	case "partial":
		*s = CostItemStatusPartial
	case "paid":
		*s = CostItemStatusPaid
	default:
		return errors.New("invalid cost item status")
	}
	return nil
}

type RevenueItemStatus string

const (
	RevenueItemStatusUnbilled RevenueItemStatus = "unbilled"
	RevenueItemStatusBilled   RevenueItemStatus = "billed"
	RevenueItemStatusPaid     RevenueItemStatus = "paid"
)

func (s *RevenueItemStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("revenue item status must be string")
	}
	switch str {
	case "unbilled":
		*s = RevenueItemStatusUnbilled
	case "billed":
		*s = RevenueItemStatusBilled
	case "paid":
		*s = RevenueItemStatusPaid
	default:
		return errors.New("invalid revenue item status")
	}
	return nil
}

type MarginIndicator string

const (
	MarginIndicatorGreen  MarginIndicator = "green"
	MarginIndicatorYellow MarginIndicator = "yellow"
	MarginIndicatorRed    MarginIndicator = "red"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "A"
	UserRoleStaff UserRole = "S"
)

func (p *UserRole) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("user role must be string")
	}

	userRole := map[string]UserRole{
		"A": UserRoleAdmin,
		"S": UserRoleStaff,
	}

	v, ok := userRole[str]
	if !ok {
		return errors.New("invalid user role")
	}
	*p = v
	return nil
}
