package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/guard"
)

var ErrAwaitingHandoverQueryIsNotConstructed = errors.New(
	"AwaitingHandoverQuery must be created via NewAwaitingHandoverQuery constructor",
)

// AwaitingHandoverQuery lists packed jobs waiting for a rider, most urgent
// first.
type AwaitingHandoverQuery struct {
	guard guard.ConstructorGuard
}

func NewAwaitingHandoverQuery() AwaitingHandoverQuery {
	return AwaitingHandoverQuery{guard: guard.NewConstructorGuard()}
}

func (q AwaitingHandoverQuery) Validate() error {
	return q.guard.Validate(ErrAwaitingHandoverQueryIsNotConstructed)
}

type AwaitingHandoverJob struct {
	JobID       kernel.UUID            `json:"jobId"`
	JobNumber   string                 `json:"jobNumber"`
	WaveID      kernel.UUID            `json:"waveId"`
	Priority    string                 `json:"priority"`
	TotalItems  int                    `json:"totalItems"`
	PhotoCount  int                    `json:"photoCount"`
	SealCount   int                    `json:"sealCount"`
	CompletedAt *time.Time             `json:"completedAt,omitempty"`
	SLADeadline time.Time              `json:"slaDeadline"`
	SLA         services.SLAAssessment `json:"sla"`
}
