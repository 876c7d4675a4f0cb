package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/kargodata/forwarding_backend/config"
	"bitbucket.org/kargodata/forwarding_backend/utils"
)

// ShipmentDocument records an operational milestone document. The existence of
// a row is the boolean signal the trigger state machine consumes.
type ShipmentDocument struct {
	ID             int                  `gorm:"primary_key" json:"id"`
	BusinessId     string               `gorm:"index;not null" json:"business_id"`
	BookingId      int                  `gorm:"index;not null" json:"booking_id"`
	DocumentType   ShipmentDocumentType `gorm:"size:20;not null" json:"document_type"`
	DocumentNumber string               `gorm:"size:50;not null" json:"document_number"`
	IssuedDate     time.Time            `gorm:"not null" json:"issued_date"`
	CreatedAt      time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewShipmentDocument struct {
	DocumentType   ShipmentDocumentType `json:"document_type" binding:"required"`
	DocumentNumber string               `json:"document_number" binding:"required"`
	IssuedDate     string               `json:"issued_date" binding:"required"`
}

func CreateShipmentDocument(ctx context.Context, bookingId int, input *NewShipmentDocument) (*ShipmentDocument, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateResourceId[Booking](ctx, businessId, bookingId); err != nil {
		return nil, err
	}

	issuedDate, err := time.Parse("2006-01-02", input.IssuedDate)
	if err != nil {
		return nil, errors.New("issued date must be yyyy-mm-dd")
	}

	document := ShipmentDocument{
		BusinessId:     businessId,
		BookingId:      bookingId,
		DocumentType:   input.DocumentType,
		DocumentNumber: input.DocumentNumber,
		IssuedDate:     issuedDate,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&document).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

func GetShipmentDocuments(ctx context.Context, bookingId int) ([]*ShipmentDocument, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var documents []*ShipmentDocument
	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("business_id = ? AND booking_id = ?", businessId, bookingId).
		Order("issued_date ASC").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}

// HasShipmentDocument reports whether the booking has at least one document of
// the type.
func HasShipmentDocument(ctx context.Context, businessId string, bookingId int, documentType ShipmentDocumentType) (bool, error) {
	count, err := utils.ResourceCountWhere[ShipmentDocument](ctx, businessId,
		"booking_id = ? AND document_type = ?", bookingId, documentType)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func shipmentDocumentFlags(ctx context.Context, businessId string, bookingId int) (hasSuratJalan bool, hasBeritaAcara bool, err error) {
	hasSuratJalan, err = HasShipmentDocument(ctx, businessId, bookingId, ShipmentDocumentTypeSuratJalan)
	if err != nil {
		return false, false, err
	}
	hasBeritaAcara, err = HasShipmentDocument(ctx, businessId, bookingId, ShipmentDocumentTypeBeritaAcara)
	if err != nil {
		return false, false, err
	}
	return hasSuratJalan, hasBeritaAcara, nil
}
