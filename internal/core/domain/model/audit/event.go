// Package audit holds the append-only history of state transitions on waves
// and packing jobs. Events are written for reconstruction and debugging and
// are never read back into business decisions.
package audit

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

type StreamType string

const (
	StreamWave       StreamType = "PICKING_WAVE"
	StreamPackingJob StreamType = "PACKING_JOB"
)

const (
	WaveGenerated   = "wave.generated"
	WaveAssigned    = "wave.assigned"
	PickingStarted  = "picking.started"
	ItemScanned     = "item.scanned"
	ItemPartialPick = "item.partial_picked"
	WaveCompleted   = "wave.completed"
	WaveCancelled   = "wave.cancelled"

	PackingStarted    = "packing.started"
	ItemVerified      = "item.verified"
	PackingCompleted  = "packing.completed"
	PackingReassigned = "packing.reassigned"
	PhotoUploaded     = "photo.uploaded"

	HandoverAssigned      = "handover.assigned"
	HandoverConfirmed     = "handover.confirmed"
	HandoverStatusChanged = "handover.status_changed"
	LMSSyncSucceeded      = "lms.sync_succeeded"
	LMSSyncFailed         = "lms.sync_failed"
)

type Event struct {
	ID         kernel.UUID
	StreamType StreamType
	StreamID   kernel.UUID
	Type       string
	Data       map[string]any
	UserID     *kernel.UUID
	OccurredAt time.Time
}

func NewEvent(stream StreamType, streamID kernel.UUID, eventType string, userID *kernel.UUID, data map[string]any, at time.Time) Event {
	if data == nil {
		data = map[string]any{}
	}
	return Event{
		ID:         kernel.NewUUID(),
		StreamType: stream,
		StreamID:   streamID,
		Type:       eventType,
		Data:       data,
		UserID:     userID,
		OccurredAt: at,
	}
}

// Actor is a convenience for events raised by a known user.
func Actor(id kernel.UUID) *kernel.UUID {
	return &id
}
