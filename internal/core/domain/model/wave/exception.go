package wave

import (
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// PartialReason explains why a line was picked short.
type PartialReason string

const (
	ReasonOutOfStock PartialReason = "OOS"
	ReasonDamaged    PartialReason = "DAMAGED"
	ReasonExpiry     PartialReason = "EXPIRY"
	ReasonOther      PartialReason = "OTHER"
)

func ParsePartialReason(s string) (PartialReason, error) {
	switch r := PartialReason(s); r {
	case ReasonOutOfStock, ReasonDamaged, ReasonExpiry, ReasonOther:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("reason", fmt.Errorf("%q is not one of OOS, DAMAGED, EXPIRY, OTHER", s))
	}
}

// RaisesException reports whether a partial pick with this reason needs
// follow-up by the inventory team.
func (r PartialReason) RaisesException() bool {
	return r == ReasonOutOfStock || r == ReasonDamaged || r == ReasonExpiry
}

type Severity string

const (
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

type ExceptionStatus string

const (
	ExceptionOpen       ExceptionStatus = "OPEN"
	ExceptionInProgress ExceptionStatus = "IN_PROGRESS"
	ExceptionResolved   ExceptionStatus = "RESOLVED"
	ExceptionEscalated  ExceptionStatus = "ESCALATED"
)

const (
	highSeverityResolution   = time.Hour
	mediumSeverityResolution = 4 * time.Hour
)

// PickingException is raised by a partial pick for OOS, DAMAGED or EXPIRY.
// Expired stock is HIGH severity with a one hour resolution window; the rest
// are MEDIUM with four hours.
type PickingException struct {
	ID          kernel.UUID
	WaveID      kernel.UUID
	ItemID      kernel.UUID
	OrderID     kernel.UUID
	SKU         string
	Reason      PartialReason
	Severity    Severity
	Status      ExceptionStatus
	SLADeadline time.Time
	ReportedBy  kernel.UUID
	Notes       string
	PhotoURL    string
	CreatedAt   time.Time
}

func newPickingException(w *Wave, item *PicklistItem, reason PartialReason, reportedBy kernel.UUID, notes, photoURL string, now time.Time) *PickingException {
	severity, window := SeverityMedium, mediumSeverityResolution
	if reason == ReasonExpiry {
		severity, window = SeverityHigh, highSeverityResolution
	}
	return &PickingException{
		ID:          kernel.NewUUID(),
		WaveID:      w.id,
		ItemID:      item.id,
		OrderID:     item.orderID,
		SKU:         item.sku,
		Reason:      reason,
		Severity:    severity,
		Status:      ExceptionOpen,
		SLADeadline: now.Add(window),
		ReportedBy:  reportedBy,
		Notes:       notes,
		PhotoURL:    photoURL,
		CreatedAt:   now,
	}
}
