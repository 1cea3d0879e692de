package handoverrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRetryLedger keeps one row per handover and LMS operation.
type GormRetryLedger struct {
	db *gorm.DB
}

func NewGormRetryLedger(db *gorm.DB) *GormRetryLedger {
	return &GormRetryLedger{db: db}
}

func (l *GormRetryLedger) Get(ctx context.Context, handoverID kernel.UUID, op handover.SyncOperation) (handover.RetryEntry, error) {
	var dto RetryEntryDTO
	err := l.db.WithContext(ctx).
		Where("handover_id = ? AND operation = ?", handoverID.Bytes(), string(op)).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return handover.RetryEntry{}, errs.NewObjectNotFoundError("retryEntry", handoverID.String())
		}
		return handover.RetryEntry{}, err
	}
	return retryEntryToDomain(dto)
}

// Save replaces the queued entry for the same handover and operation. The
// row keeps its original id and created_at.
func (l *GormRetryLedger) Save(ctx context.Context, entry handover.RetryEntry) error {
	dto := retryEntryFromDomain(entry)
	return l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "handover_id"}, {Name: "operation"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"target_status", "attempts", "next_attempt_at", "last_error", "updated_at",
		}),
	}).Create(&dto).Error
}

func (l *GormRetryLedger) Delete(ctx context.Context, handoverID kernel.UUID, op handover.SyncOperation) error {
	return l.db.WithContext(ctx).
		Where("handover_id = ? AND operation = ?", handoverID.Bytes(), string(op)).
		Delete(&RetryEntryDTO{}).Error
}

func (l *GormRetryLedger) Due(ctx context.Context, now time.Time, maxAttempts, limit int) ([]handover.RetryEntry, error) {
	query := l.db.WithContext(ctx).
		Where("next_attempt_at <= ? AND attempts < ?", now, maxAttempts).
		Order("next_attempt_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dtos []RetryEntryDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	entries := make([]handover.RetryEntry, 0, len(dtos))
	for _, dto := range dtos {
		entry, err := retryEntryToDomain(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
