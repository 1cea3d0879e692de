package handover

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// Shipment is the append-only record of a shipment created in the external
// logistics system.
type Shipment struct {
	ID              kernel.UUID
	HandoverID      kernel.UUID
	LMSReference    string
	TrackingNumber  string
	Status          string
	ResponsePayload []byte
	RetryCount      int
	CreatedAt       time.Time
}

// SyncOperation names the call to replay against the logistics system.
type SyncOperation string

const (
	OperationCreateShipment SyncOperation = "CREATE_SHIPMENT"
	OperationUpdateStatus   SyncOperation = "UPDATE_STATUS"
)

// RetryEntry is a persisted pending sync, one per handover and operation.
type RetryEntry struct {
	ID            kernel.UUID
	HandoverID    kernel.UUID
	Operation     SyncOperation
	TargetStatus  string
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
