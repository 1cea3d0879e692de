// Package handoverrepo stores rider handovers together with the LMS
// shipment log and the retry ledger of pending LMS operations.
package handoverrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type HandoverDTO struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	HandoverNumber      string    `gorm:"size:64;uniqueIndex"`
	JobID               uuid.UUID `gorm:"type:uuid;index"`
	RiderID             uuid.UUID `gorm:"type:uuid;index"`
	Status              int       `gorm:"index"`
	SpecialInstructions string
	ConfirmationCode    string `gorm:"size:64"`
	AssignedAt          time.Time
	ConfirmedAt         *time.Time
	PickedUpAt          *time.Time
	DeliveredAt         *time.Time
	CancelledAt         *time.Time
	CancellationReason  string
	SLADeadline         time.Time `gorm:"column:sla_deadline;index"`
	SyncStatus          int       `gorm:"index"`
	SyncAttempts        int
	LastSyncError       string
	SyncedAt            *time.Time
	TrackingNumber      string `gorm:"size:64;index"`
	ManifestNumber      string `gorm:"size:64"`
}

func (HandoverDTO) TableName() string {
	return "handovers"
}

type ShipmentDTO struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	HandoverID      uuid.UUID      `gorm:"type:uuid;index"`
	LMSReference    string         `gorm:"column:lms_reference;size:128"`
	TrackingNumber  string         `gorm:"size:64"`
	Status          string         `gorm:"size:32"`
	ResponsePayload datatypes.JSON `gorm:"type:jsonb"`
	RetryCount      int
	CreatedAt       time.Time
}

func (ShipmentDTO) TableName() string {
	return "lms_shipments"
}

type RetryEntryDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	HandoverID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_lms_retry_handover_operation"`
	Operation     string    `gorm:"size:32;uniqueIndex:idx_lms_retry_handover_operation"`
	TargetStatus  string    `gorm:"size:32"`
	Attempts      int
	NextAttemptAt time.Time `gorm:"index"`
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (RetryEntryDTO) TableName() string {
	return "lms_retry_queue"
}

func FromDomain(h *handover.Handover) HandoverDTO {
	s := h.State()
	return HandoverDTO{
		ID:                  s.ID.Bytes(),
		HandoverNumber:      s.Number,
		JobID:               s.JobID.Bytes(),
		RiderID:             s.RiderID.Bytes(),
		Status:              int(s.Status),
		SpecialInstructions: s.SpecialInstructions,
		ConfirmationCode:    s.ConfirmationCode,
		AssignedAt:          s.AssignedAt,
		ConfirmedAt:         s.ConfirmedAt,
		PickedUpAt:          s.PickedUpAt,
		DeliveredAt:         s.DeliveredAt,
		CancelledAt:         s.CancelledAt,
		CancellationReason:  s.CancellationReason,
		SLADeadline:         s.SLADeadline,
		SyncStatus:          int(s.SyncStatus),
		SyncAttempts:        s.SyncAttempts,
		LastSyncError:       s.LastSyncError,
		SyncedAt:            s.SyncedAt,
		TrackingNumber:      s.TrackingNumber,
		ManifestNumber:      s.ManifestNumber,
	}
}

func toDomain(dto HandoverDTO) (*handover.Handover, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	jobID, err := kernel.UUIDFromBytes(dto.JobID[:])
	if err != nil {
		return nil, err
	}
	riderID, err := kernel.UUIDFromBytes(dto.RiderID[:])
	if err != nil {
		return nil, err
	}
	return handover.RestoreHandover(handover.State{
		ID:                  id,
		Number:              dto.HandoverNumber,
		JobID:               jobID,
		RiderID:             riderID,
		Status:              handover.Status(dto.Status),
		SpecialInstructions: dto.SpecialInstructions,
		ConfirmationCode:    dto.ConfirmationCode,
		AssignedAt:          dto.AssignedAt,
		ConfirmedAt:         dto.ConfirmedAt,
		PickedUpAt:          dto.PickedUpAt,
		DeliveredAt:         dto.DeliveredAt,
		CancelledAt:         dto.CancelledAt,
		CancellationReason:  dto.CancellationReason,
		SLADeadline:         dto.SLADeadline,
		SyncStatus:          handover.SyncStatus(dto.SyncStatus),
		SyncAttempts:        dto.SyncAttempts,
		LastSyncError:       dto.LastSyncError,
		SyncedAt:            dto.SyncedAt,
		TrackingNumber:      dto.TrackingNumber,
		ManifestNumber:      dto.ManifestNumber,
	})
}

func shipmentFromDomain(s handover.Shipment) ShipmentDTO {
	payload := datatypes.JSON(s.ResponsePayload)
	if len(payload) == 0 {
		payload = datatypes.JSON("{}")
	}
	return ShipmentDTO{
		ID:              s.ID.Bytes(),
		HandoverID:      s.HandoverID.Bytes(),
		LMSReference:    s.LMSReference,
		TrackingNumber:  s.TrackingNumber,
		Status:          s.Status,
		ResponsePayload: payload,
		RetryCount:      s.RetryCount,
		CreatedAt:       s.CreatedAt,
	}
}

func retryEntryFromDomain(e handover.RetryEntry) RetryEntryDTO {
	return RetryEntryDTO{
		ID:            e.ID.Bytes(),
		HandoverID:    e.HandoverID.Bytes(),
		Operation:     string(e.Operation),
		TargetStatus:  e.TargetStatus,
		Attempts:      e.Attempts,
		NextAttemptAt: e.NextAttemptAt,
		LastError:     e.LastError,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func retryEntryToDomain(dto RetryEntryDTO) (handover.RetryEntry, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return handover.RetryEntry{}, err
	}
	handoverID, err := kernel.UUIDFromBytes(dto.HandoverID[:])
	if err != nil {
		return handover.RetryEntry{}, err
	}
	return handover.RetryEntry{
		ID:            id,
		HandoverID:    handoverID,
		Operation:     handover.SyncOperation(dto.Operation),
		TargetStatus:  dto.TargetStatus,
		Attempts:      dto.Attempts,
		NextAttemptAt: dto.NextAttemptAt,
		LastError:     dto.LastError,
		CreatedAt:     dto.CreatedAt,
		UpdatedAt:     dto.UpdatedAt,
	}, nil
}
