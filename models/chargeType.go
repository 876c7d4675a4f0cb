package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/kargodata/forwarding_backend/config"
	"bitbucket.org/kargodata/forwarding_backend/utils"
)

// ChargeType classifies cost and revenue line items (trucking, customs
// clearance, handling and so on).
type ChargeType struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewChargeType struct {
	Name string `json:"name" binding:"required"`
}

func CreateChargeType(ctx context.Context, input *NewChargeType) (*ChargeType, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := utils.ValidateUnique[ChargeType](ctx, businessId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	chargeType := ChargeType{
		BusinessId: businessId,
		Name:       input.Name,
		IsActive:   utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&chargeType).Error; err != nil {
		return nil, err
	}
	return &chargeType, nil
}

func GetChargeTypes(ctx context.Context) ([]*ChargeType, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchAllModels[ChargeType](ctx, businessId)
}
