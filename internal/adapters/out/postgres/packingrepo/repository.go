package packingrepo

import (
	"context"
	"errors"

	"fulfillment/internal/adapters/out/postgres/pgerr"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormPackingJobRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormPackingJobRepository(db *gorm.DB, tracker aggregateTracker) *GormPackingJobRepository {
	return &GormPackingJobRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormPackingJobRepository) Add(ctx context.Context, aggregate *packing.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)
	if err := db.Create(&dto.job).Error; err != nil {
		return pgerr.Translate(err, "waveId")
	}
	if err := r.saveChildren(db, dto); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormPackingJobRepository) Update(ctx context.Context, aggregate *packing.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)
	result := db.Model(&JobDTO{}).Where("id = ?", dto.job.ID).Select("*").Updates(&dto.job)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	if err := r.saveChildren(db, dto); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// saveChildren upserts items; photos and seals are evidence and are only
// ever inserted.
func (r *GormPackingJobRepository) saveChildren(db *gorm.DB, dto aggregateDTO) error {
	if len(dto.items) > 0 {
		if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&dto.items).Error; err != nil {
			return err
		}
	}
	if len(dto.photos) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&dto.photos).Error; err != nil {
			return err
		}
	}
	if len(dto.seals) > 0 {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&dto.seals).Error; err != nil {
			return err
		}
	}
	return nil
}

// Get locks the job row for the rest of the transaction.
func (r *GormPackingJobRepository) Get(ctx context.Context, id kernel.UUID) (*packing.Job, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	var dto aggregateDTO
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&dto.job, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("packingJob", id.String())
		}
		return nil, err
	}
	if err := db.Where("job_id = ?", dto.job.ID).Order("sku, id").Find(&dto.items).Error; err != nil {
		return nil, err
	}
	if err := db.Where("job_id = ?", dto.job.ID).Order("captured_at, id").Find(&dto.photos).Error; err != nil {
		return nil, err
	}
	if err := db.Where("job_id = ?", dto.job.ID).Order("applied_at, id").Find(&dto.seals).Error; err != nil {
		return nil, err
	}

	return toDomain(dto)
}
