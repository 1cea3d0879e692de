package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/clock"
)

type ReassignPackingJobResult struct {
	JobID          kernel.UUID  `json:"jobId"`
	JobNumber      string       `json:"jobNumber"`
	Status         string       `json:"status"`
	PackerID       kernel.UUID  `json:"packerId"`
	PreviousPacker *kernel.UUID `json:"previousPackerId,omitempty"`
}

type ReassignPackingJobCommandHandler struct {
	uowFactory PackingUoWFactory
	clock      clock.Clock
	logger     *slog.Logger
}

func NewReassignPackingJobCommandHandler(
	uowFactory PackingUoWFactory,
	clk clock.Clock,
	logger *slog.Logger,
) ReassignPackingJobCommandHandler {
	return ReassignPackingJobCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
		logger:     logger.With("component", "PackingJobManager"),
	}
}

func (h ReassignPackingJobCommandHandler) Handle(ctx context.Context, cmd ReassignPackingJobCommand) (ReassignPackingJobResult, error) {
	if err := cmd.Validate(); err != nil {
		return ReassignPackingJobResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ReassignPackingJobResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.PackingJobRepository()
	job, err := jobRepo.Get(ctx, cmd.JobID())
	if err != nil {
		return ReassignPackingJobResult{}, err
	}

	now := h.clock.Now()
	previous, err := job.Reassign(cmd.NewPackerID(), now)
	if err != nil {
		return ReassignPackingJobResult{}, err
	}
	if err = jobRepo.Update(ctx, job); err != nil {
		return ReassignPackingJobResult{}, err
	}

	data := map[string]any{
		"newPackerId": cmd.NewPackerID().String(),
		"reason":      cmd.Reason(),
	}
	if previous != nil {
		data["previousPackerId"] = previous.String()
	}
	if err = uow.AuditRepository().Append(ctx, audit.NewEvent(
		audit.StreamPackingJob, job.ID(), audit.PackingReassigned, cmd.UserID(), data, now,
	)); err != nil {
		return ReassignPackingJobResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ReassignPackingJobResult{}, err
	}

	h.logger.InfoContext(ctx, "packing job reassigned",
		"jobNumber", job.Number(),
		"previousPackerId", previous,
		"newPackerId", cmd.NewPackerID(),
		"reason", cmd.Reason(),
	)

	return ReassignPackingJobResult{
		JobID:          job.ID(),
		JobNumber:      job.Number(),
		Status:         job.Status().String(),
		PackerID:       cmd.NewPackerID(),
		PreviousPacker: previous,
	}, nil
}
