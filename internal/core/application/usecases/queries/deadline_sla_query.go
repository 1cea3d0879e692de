package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrPackingSLAQueryIsNotConstructed = errors.New(
		"PackingSLAQuery must be created via NewPackingSLAQuery constructor",
	)
	ErrHandoverSLAQueryIsNotConstructed = errors.New(
		"HandoverSLAQuery must be created via NewHandoverSLAQuery constructor",
	)
)

// PackingSLAQuery reports deadline health for jobs still being packed.
type PackingSLAQuery struct {
	guard guard.ConstructorGuard
}

func NewPackingSLAQuery() PackingSLAQuery {
	return PackingSLAQuery{guard: guard.NewConstructorGuard()}
}

func (q PackingSLAQuery) Validate() error {
	return q.guard.Validate(ErrPackingSLAQueryIsNotConstructed)
}

// HandoverSLAQuery reports deadline health for handovers a rider has not
// delivered or cancelled yet.
type HandoverSLAQuery struct {
	guard guard.ConstructorGuard
}

func NewHandoverSLAQuery() HandoverSLAQuery {
	return HandoverSLAQuery{guard: guard.NewConstructorGuard()}
}

func (q HandoverSLAQuery) Validate() error {
	return q.guard.Validate(ErrHandoverSLAQueryIsNotConstructed)
}

// DeadlineView is one packing job or handover with its SLA assessment.
type DeadlineView struct {
	ID               kernel.UUID        `json:"id"`
	Number           string             `json:"number"`
	Status           string             `json:"status"`
	AssigneeID       *kernel.UUID       `json:"assigneeId,omitempty"`
	SLADeadline      time.Time          `json:"slaDeadline"`
	RemainingMinutes int                `json:"remainingMinutes"`
	SLAStatus        services.SLABucket `json:"slaStatus"`
	Critical         bool               `json:"critical"`
}

type DeadlineSLAResponse struct {
	Items   []DeadlineView      `json:"items"`
	Summary services.SLASummary `json:"summary"`
}
