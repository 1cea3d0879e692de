package packing

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// Item is one picked line being packed. packedQuantity never exceeds
// pickedQuantity; the item is COMPLETED only once the full ordered quantity
// is packed.
type Item struct {
	ID               kernel.UUID
	JobID            kernel.UUID
	OrderID          kernel.UUID
	SKU              string
	ProductName      string
	Quantity         int
	PickedQuantity   int
	PackedQuantity   int
	VerifiedQuantity int
	Status           ItemStatus
	VerifiedAt       *time.Time
}

// PhotoEvidence is a photo taken while sealing a package.
type PhotoEvidence struct {
	ID                 kernel.UUID
	JobID              kernel.UUID
	OrderID            *kernel.UUID
	PhotoURL           string
	ThumbnailURL       string
	PhotoType          string
	CapturedAt         time.Time
	Latitude           *float64
	Longitude          *float64
	DeviceInfo         string
	VerificationStatus string
}

// Seal is a tamper seal applied to a package.
type Seal struct {
	ID                 kernel.UUID
	JobID              kernel.UUID
	OrderID            *kernel.UUID
	SealNumber         string
	SealType           string
	AppliedAt          time.Time
	VerificationStatus string
}

const VerificationPending = "PENDING"
