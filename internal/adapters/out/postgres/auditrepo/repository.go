// Package auditrepo appends wave and packing job events to audit_events.
package auditrepo

import (
	"context"
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/audit"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventDTO struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	StreamType string         `gorm:"size:32;index:idx_audit_stream"`
	StreamID   uuid.UUID      `gorm:"type:uuid;index:idx_audit_stream"`
	EventType  string         `gorm:"size:64"`
	Data       datatypes.JSON `gorm:"type:jsonb"`
	UserID     *uuid.UUID     `gorm:"type:uuid"`
	OccurredAt time.Time      `gorm:"index:idx_audit_stream"`
}

func (EventDTO) TableName() string {
	return "audit_events"
}

func fromDomain(e audit.Event) (EventDTO, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return EventDTO{}, err
	}
	dto := EventDTO{
		ID:         e.ID.Bytes(),
		StreamType: string(e.StreamType),
		StreamID:   e.StreamID.Bytes(),
		EventType:  e.Type,
		Data:       datatypes.JSON(data),
		OccurredAt: e.OccurredAt,
	}
	if e.UserID != nil {
		userID := e.UserID.Bytes()
		dto.UserID = &userID
	}
	return dto, nil
}

type GormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) Append(ctx context.Context, events ...audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dto, err := fromDomain(e)
		if err != nil {
			return err
		}
		dtos = append(dtos, dto)
	}
	return r.db.WithContext(ctx).Create(&dtos).Error
}
