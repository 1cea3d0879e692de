package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/rider"
)

type RiderRepository interface {
	Get(ctx context.Context, id kernel.UUID) (*rider.Rider, error)
	Update(ctx context.Context, aggregate *rider.Rider) error
}

// HandoverRepository persists handovers. At most one handover per job is
// live at a time; Add fails with errs.ErrConflict otherwise.
type HandoverRepository interface {
	Add(ctx context.Context, aggregate *handover.Handover) error
	Update(ctx context.Context, aggregate *handover.Handover) error
	Get(ctx context.Context, id kernel.UUID) (*handover.Handover, error)
}

// ShipmentRepository is the append-only log of shipments created in the LMS.
type ShipmentRepository interface {
	Add(ctx context.Context, shipment handover.Shipment) error
}

// RetryLedger holds LMS operations waiting to be replayed, one row per
// handover and operation.
type RetryLedger interface {
	// Get fails with errs.ErrObjectNotFound when nothing is queued.
	Get(ctx context.Context, handoverID kernel.UUID, op handover.SyncOperation) (handover.RetryEntry, error)

	// Save inserts the entry or replaces the one queued for the same
	// handover and operation.
	Save(ctx context.Context, entry handover.RetryEntry) error

	Delete(ctx context.Context, handoverID kernel.UUID, op handover.SyncOperation) error

	// Due returns entries whose next attempt is at or before now and whose
	// attempts are below maxAttempts, oldest first.
	Due(ctx context.Context, now time.Time, maxAttempts, limit int) ([]handover.RetryEntry, error)
}
