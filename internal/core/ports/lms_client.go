package ports

import (
	"context"
	"time"
)

// ShipmentRequest is what the LMS needs to open a shipment for a handover.
type ShipmentRequest struct {
	HandoverID          string
	HandoverNumber      string
	JobNumber           string
	RiderID             string
	TrackingNumber      string
	ManifestNumber      string
	TotalItems          int
	SpecialInstructions string
	RequestedAt         time.Time
}

// ShipmentReceipt is the LMS answer to a created shipment.
type ShipmentReceipt struct {
	LMSReference   string
	TrackingNumber string
	Status         string
	Payload        []byte
}

type ShipmentStatusUpdate struct {
	Status    string
	Reason    string
	UpdatedAt time.Time
}

// LMSClient talks to the external Logistics Management System. Server
// errors are retried inside the client; an error returned here means the
// retry budget is spent or the request was rejected.
type LMSClient interface {
	CreateShipment(ctx context.Context, req ShipmentRequest) (ShipmentReceipt, error)
	UpdateShipmentStatus(ctx context.Context, trackingNumber string, update ShipmentStatusUpdate) error
	Health(ctx context.Context) error
}
