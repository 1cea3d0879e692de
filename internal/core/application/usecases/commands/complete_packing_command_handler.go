package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/clock"
)

type CompletePackingResult struct {
	JobID       kernel.UUID `json:"jobId"`
	JobNumber   string      `json:"jobNumber"`
	Status      string      `json:"status"`
	TotalItems  int         `json:"totalItems"`
	PackedItems int         `json:"packedItems"`
	Photos      int         `json:"photos"`
	Seals       int         `json:"seals"`
	CompletedAt time.Time   `json:"completedAt"`
}

// CompletePackingCommandHandler stores evidence, seals and the job status in
// one transaction.
type CompletePackingCommandHandler struct {
	uowFactory PackingUoWFactory
	clock      clock.Clock
}

func NewCompletePackingCommandHandler(uowFactory PackingUoWFactory, clk clock.Clock) CompletePackingCommandHandler {
	return CompletePackingCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h CompletePackingCommandHandler) Handle(ctx context.Context, cmd CompletePackingCommand) (CompletePackingResult, error) {
	if err := cmd.Validate(); err != nil {
		return CompletePackingResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CompletePackingResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.PackingJobRepository()
	job, err := jobRepo.Get(ctx, cmd.JobID())
	if err != nil {
		return CompletePackingResult{}, err
	}

	now := h.clock.Now()
	if err = job.Complete(cmd.Photos(), cmd.Seals(), now); err != nil {
		return CompletePackingResult{}, err
	}
	if err = jobRepo.Update(ctx, job); err != nil {
		return CompletePackingResult{}, err
	}
	if err = uow.AuditRepository().Append(ctx, audit.NewEvent(
		audit.StreamPackingJob, job.ID(), audit.PackingCompleted, cmd.UserID(), map[string]any{
			"jobNumber":  job.Number(),
			"totalItems": job.TotalItems(),
			"photos":     len(cmd.Photos()),
			"seals":      len(cmd.Seals()),
		}, now,
	)); err != nil {
		return CompletePackingResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CompletePackingResult{}, err
	}

	return CompletePackingResult{
		JobID:       job.ID(),
		JobNumber:   job.Number(),
		Status:      job.Status().String(),
		TotalItems:  job.TotalItems(),
		PackedItems: job.PackedItems(),
		Photos:      len(job.Photos()),
		Seals:       len(job.Seals()),
		CompletedAt: now,
	}, nil
}
