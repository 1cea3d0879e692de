// Package riderrepo stores the delivery riders packages are handed to.
package riderrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/rider"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RiderDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"size:255"`
	Phone           string    `gorm:"size:32"`
	VehicleType     string    `gorm:"size:32"`
	Availability    int       `gorm:"index"`
	Rating          float64
	TotalDeliveries int
	IsActive        bool `gorm:"index"`
}

func (RiderDTO) TableName() string {
	return "riders"
}

func FromDomain(r *rider.Rider) RiderDTO {
	s := r.State()
	return RiderDTO{
		ID:              s.ID.Bytes(),
		Name:            s.Name,
		Phone:           s.Phone,
		VehicleType:     s.VehicleType,
		Availability:    int(s.Availability),
		Rating:          s.Rating,
		TotalDeliveries: s.TotalDeliveries,
		IsActive:        s.IsActive,
	}
}

func toDomain(dto RiderDTO) (*rider.Rider, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return rider.RestoreRider(rider.RestoreParams{
		ID:              id,
		Name:            dto.Name,
		Phone:           dto.Phone,
		VehicleType:     dto.VehicleType,
		Availability:    rider.Availability(dto.Availability),
		Rating:          dto.Rating,
		TotalDeliveries: dto.TotalDeliveries,
		IsActive:        dto.IsActive,
	})
}

type GormRiderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormRiderRepository(db *gorm.DB, tracker aggregateTracker) *GormRiderRepository {
	return &GormRiderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Get locks the row for the rest of the transaction so two handovers cannot
// take the same rider concurrently.
func (r *GormRiderRepository) Get(ctx context.Context, id kernel.UUID) (*rider.Rider, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RiderDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("rider", id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormRiderRepository) Update(ctx context.Context, aggregate *rider.Rider) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := FromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&RiderDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}
