package queries

import (
	"encoding/json"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/guard"
)

var ErrPackingJobStatusQueryIsNotConstructed = errors.New(
	"PackingJobStatusQuery must be created via NewPackingJobStatusQuery constructor",
)

// PackingJobStatusQuery returns a job with its items, evidence counts, SLA
// health and audit trail.
type PackingJobStatusQuery struct {
	jobID kernel.UUID

	guard guard.ConstructorGuard
}

func NewPackingJobStatusQuery(jobID kernel.UUID) (PackingJobStatusQuery, error) {
	if err := jobID.Validate(); err != nil {
		return PackingJobStatusQuery{}, err
	}
	return PackingJobStatusQuery{jobID: jobID, guard: guard.NewConstructorGuard()}, nil
}

func (q PackingJobStatusQuery) Validate() error {
	return q.guard.Validate(ErrPackingJobStatusQueryIsNotConstructed)
}

type PackingJobItemView struct {
	ID               kernel.UUID `json:"id"`
	OrderID          kernel.UUID `json:"orderId"`
	SKU              string      `json:"sku"`
	ProductName      string      `json:"productName"`
	Quantity         int         `json:"quantity"`
	PickedQuantity   int         `json:"pickedQuantity"`
	PackedQuantity   int         `json:"packedQuantity"`
	VerifiedQuantity int         `json:"verifiedQuantity"`
	Status           string      `json:"status"`
}

type PackingEventView struct {
	Type       string          `json:"eventType"`
	Data       json.RawMessage `json:"data"`
	UserID     *kernel.UUID    `json:"userId,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

type PackingJobStatusResponse struct {
	ID                kernel.UUID            `json:"id"`
	JobNumber         string                 `json:"jobNumber"`
	WaveID            kernel.UUID            `json:"waveId"`
	PackerID          *kernel.UUID           `json:"packerId,omitempty"`
	Status            string                 `json:"status"`
	Priority          string                 `json:"priority"`
	WorkflowType      string                 `json:"workflowType"`
	TotalItems        int                    `json:"totalItems"`
	PackedItems       int                    `json:"packedItems"`
	VerifiedItems     int                    `json:"verifiedItems"`
	EstimatedDuration int                    `json:"estimatedDuration"`
	SLADeadline       time.Time              `json:"slaDeadline"`
	SLA               services.SLAAssessment `json:"sla"`
	CompletedAt       *time.Time             `json:"completedAt,omitempty"`
	PhotoCount        int                    `json:"photoCount"`
	SealCount         int                    `json:"sealCount"`
	Items             []PackingJobItemView   `json:"items"`
	Events            []PackingEventView     `json:"events"`
}
