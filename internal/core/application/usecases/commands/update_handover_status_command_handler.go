package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/pkg/clock"
)

// UpdateHandoverStatusCommandHandler applies a status change and its
// cascade: DELIVERED completes the job and frees the rider, CANCELLED frees
// the rider and puts the job back in the handover queue.
type UpdateHandoverStatusCommandHandler struct {
	uowFactory HandoverUoWFactory
	syncer     ShipmentSyncer
	clock      clock.Clock
	logger     *slog.Logger
}

func NewUpdateHandoverStatusCommandHandler(
	uowFactory HandoverUoWFactory,
	syncer ShipmentSyncer,
	clk clock.Clock,
	logger *slog.Logger,
) UpdateHandoverStatusCommandHandler {
	return UpdateHandoverStatusCommandHandler{
		uowFactory: uowFactory,
		syncer:     syncer,
		clock:      clk,
		logger:     logger.With("component", "HandoverCoordinator"),
	}
}

func (h UpdateHandoverStatusCommandHandler) Handle(ctx context.Context, cmd UpdateHandoverStatusCommand) (HandoverStatusResult, error) {
	if err := cmd.Validate(); err != nil {
		return HandoverStatusResult{}, err
	}

	result, err := h.update(ctx, cmd)
	if err != nil {
		return HandoverStatusResult{}, err
	}

	syncStatus(ctx, h.syncer, h.logger, cmd.HandoverID(), cmd.Status(), cmd.Reason())
	return result, nil
}

func (h UpdateHandoverStatusCommandHandler) update(ctx context.Context, cmd UpdateHandoverStatusCommand) (HandoverStatusResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return HandoverStatusResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	handoverRepo := uow.HandoverRepository()
	ho, err := handoverRepo.Get(ctx, cmd.HandoverID())
	if err != nil {
		return HandoverStatusResult{}, err
	}

	previous := ho.Status()
	now := h.clock.Now()
	if err = ho.TransitionTo(cmd.Status(), handover.StatusDetails{CancellationReason: cmd.Reason()}, now); err != nil {
		return HandoverStatusResult{}, err
	}
	if err = handoverRepo.Update(ctx, ho); err != nil {
		return HandoverStatusResult{}, err
	}

	jobRepo := uow.PackingJobRepository()
	job, err := jobRepo.Get(ctx, ho.JobID())
	if err != nil {
		return HandoverStatusResult{}, err
	}

	result := HandoverStatusResult{
		HandoverID:     ho.ID(),
		HandoverNumber: ho.Number(),
		Status:         ho.Status().String(),
	}

	if cmd.Status() == handover.StatusDelivered || cmd.Status() == handover.StatusCancelled {
		riderRepo := uow.RiderRepository()
		r, err := riderRepo.Get(ctx, ho.RiderID())
		if err != nil {
			return HandoverStatusResult{}, err
		}

		if cmd.Status() == handover.StatusDelivered {
			err = job.MarkDelivered()
			r.CompleteDelivery()
		} else {
			err = job.ReleaseHandover()
			r.Release()
		}
		if err != nil {
			return HandoverStatusResult{}, err
		}

		if err = jobRepo.Update(ctx, job); err != nil {
			return HandoverStatusResult{}, err
		}
		if err = riderRepo.Update(ctx, r); err != nil {
			return HandoverStatusResult{}, err
		}
		result.RiderStatus = r.Availability().String()
	}
	result.JobStatus = job.Status().String()

	data := map[string]any{
		"handoverId": ho.ID().String(),
		"from":       previous.String(),
		"to":         ho.Status().String(),
	}
	if cmd.Reason() != "" {
		data["reason"] = cmd.Reason()
	}
	if err = uow.AuditRepository().Append(ctx, audit.NewEvent(
		audit.StreamPackingJob, ho.JobID(), audit.HandoverStatusChanged, cmd.UserID(), data, now,
	)); err != nil {
		return HandoverStatusResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return HandoverStatusResult{}, err
	}
	return result, nil
}
