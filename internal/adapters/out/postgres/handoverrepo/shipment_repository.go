package handoverrepo

import (
	"context"

	"fulfillment/internal/core/domain/model/handover"

	"gorm.io/gorm"
)

type GormShipmentRepository struct {
	db *gorm.DB
}

func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

func (r *GormShipmentRepository) Add(ctx context.Context, shipment handover.Shipment) error {
	dto := shipmentFromDomain(shipment)
	return r.db.WithContext(ctx).Create(&dto).Error
}
