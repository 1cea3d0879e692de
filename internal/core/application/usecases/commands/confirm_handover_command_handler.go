package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/clock"
)

type HandoverStatusResult struct {
	HandoverID     kernel.UUID `json:"handoverId"`
	HandoverNumber string      `json:"handoverNumber"`
	Status         string      `json:"status"`
	JobStatus      string      `json:"jobStatus"`
	RiderStatus    string      `json:"riderStatus,omitempty"`
}

type ConfirmHandoverCommandHandler struct {
	uowFactory HandoverUoWFactory
	syncer     ShipmentSyncer
	clock      clock.Clock
	logger     *slog.Logger
}

func NewConfirmHandoverCommandHandler(
	uowFactory HandoverUoWFactory,
	syncer ShipmentSyncer,
	clk clock.Clock,
	logger *slog.Logger,
) ConfirmHandoverCommandHandler {
	return ConfirmHandoverCommandHandler{
		uowFactory: uowFactory,
		syncer:     syncer,
		clock:      clk,
		logger:     logger.With("component", "HandoverCoordinator"),
	}
}

func (h ConfirmHandoverCommandHandler) Handle(ctx context.Context, cmd ConfirmHandoverCommand) (HandoverStatusResult, error) {
	if err := cmd.Validate(); err != nil {
		return HandoverStatusResult{}, err
	}

	result, err := h.confirm(ctx, cmd)
	if err != nil {
		return HandoverStatusResult{}, err
	}

	syncStatus(ctx, h.syncer, h.logger, cmd.HandoverID(), handover.StatusConfirmed, "")
	return result, nil
}

func (h ConfirmHandoverCommandHandler) confirm(ctx context.Context, cmd ConfirmHandoverCommand) (HandoverStatusResult, error) {
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

	now := h.clock.Now()
	if err = ho.Confirm(cmd.RiderID(), cmd.ConfirmationCode(), now); err != nil {
		return HandoverStatusResult{}, err
	}
	if err = handoverRepo.Update(ctx, ho); err != nil {
		return HandoverStatusResult{}, err
	}

	job, err := uow.PackingJobRepository().Get(ctx, ho.JobID())
	if err != nil {
		return HandoverStatusResult{}, err
	}
	if err = uow.AuditRepository().Append(ctx, audit.NewEvent(
		audit.StreamPackingJob, ho.JobID(), audit.HandoverConfirmed, audit.Actor(cmd.RiderID()), map[string]any{
			"handoverId":     ho.ID().String(),
			"handoverNumber": ho.Number(),
		}, now,
	)); err != nil {
		return HandoverStatusResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return HandoverStatusResult{}, err
	}

	return HandoverStatusResult{
		HandoverID:     ho.ID(),
		HandoverNumber: ho.Number(),
		Status:         ho.Status().String(),
		JobStatus:      job.Status().String(),
	}, nil
}

// syncStatus pushes a status change to the LMS after commit. Failures are
// queued by the syncer and only logged here.
func syncStatus(
	ctx context.Context,
	syncer ShipmentSyncer,
	logger *slog.Logger,
	handoverID kernel.UUID,
	status handover.Status,
	reason string,
) {
	outcome, err := syncer.UpdateShipmentStatus(ctx, handoverID, status, reason)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "shipment status sync was not recorded", "handoverId", handoverID, "error", err)
	case !outcome.Synced && !outcome.Skipped:
		logger.WarnContext(ctx, "shipment status sync failed, queued for retry",
			"handoverId", handoverID, "status", status.String(), "error", outcome.Error)
	}
}
