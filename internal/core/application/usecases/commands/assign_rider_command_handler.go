package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/clock"
)

const handoverNumberPrefix = "HO"

type AssignRiderResult struct {
	HandoverID     kernel.UUID `json:"handoverId"`
	HandoverNumber string      `json:"handoverNumber"`
	JobID          kernel.UUID `json:"jobId"`
	RiderID        kernel.UUID `json:"riderId"`
	Status         string      `json:"status"`
	SLADeadline    time.Time   `json:"slaDeadline"`
	LMSSyncStatus  string      `json:"lmsSyncStatus"`
	TrackingNumber string      `json:"trackingNumber,omitempty"`
}

// AssignRiderCommandHandler creates the handover and, once committed, pushes
// the shipment to the LMS. A failed push is recorded on the handover and
// never fails the assignment.
type AssignRiderCommandHandler struct {
	uowFactory HandoverUoWFactory
	syncer     ShipmentSyncer
	numbers    services.NumberSource
	clock      clock.Clock
	slaWindow  time.Duration
	logger     *slog.Logger
}

func NewAssignRiderCommandHandler(
	uowFactory HandoverUoWFactory,
	syncer ShipmentSyncer,
	numbers services.NumberSource,
	clk clock.Clock,
	slaWindow time.Duration,
	logger *slog.Logger,
) AssignRiderCommandHandler {
	if slaWindow <= 0 {
		slaWindow = handover.DefaultSLAWindow
	}
	return AssignRiderCommandHandler{
		uowFactory: uowFactory,
		syncer:     syncer,
		numbers:    numbers,
		clock:      clk,
		slaWindow:  slaWindow,
		logger:     logger.With("component", "HandoverCoordinator"),
	}
}

func (h AssignRiderCommandHandler) Handle(ctx context.Context, cmd AssignRiderCommand) (AssignRiderResult, error) {
	if err := cmd.Validate(); err != nil {
		return AssignRiderResult{}, err
	}

	ho, err := h.assign(ctx, cmd)
	if err != nil {
		return AssignRiderResult{}, err
	}

	result := AssignRiderResult{
		HandoverID:     ho.ID(),
		HandoverNumber: ho.Number(),
		JobID:          ho.JobID(),
		RiderID:        ho.RiderID(),
		Status:         ho.Status().String(),
		SLADeadline:    ho.SLADeadline(),
		LMSSyncStatus:  ho.SyncStatus().String(),
	}

	outcome, err := h.syncer.CreateShipment(ctx, ho.ID())
	if err != nil {
		h.logger.WarnContext(ctx, "shipment sync was not recorded", "handoverId", ho.ID(), "error", err)
		return result, nil
	}
	if outcome.Synced {
		result.LMSSyncStatus = handover.SyncSynced.String()
		result.TrackingNumber = outcome.TrackingNumber
	} else {
		result.LMSSyncStatus = handover.SyncFailed.String()
		h.logger.WarnContext(ctx, "shipment sync failed, queued for retry",
			"handoverId", ho.ID(), "error", outcome.Error)
	}
	return result, nil
}

func (h AssignRiderCommandHandler) assign(ctx context.Context, cmd AssignRiderCommand) (*handover.Handover, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.PackingJobRepository()
	job, err := jobRepo.Get(ctx, cmd.JobID())
	if err != nil {
		return nil, err
	}
	riderRepo := uow.RiderRepository()
	r, err := riderRepo.Get(ctx, cmd.RiderID())
	if err != nil {
		return nil, err
	}

	if err = job.AssignHandover(); err != nil {
		return nil, err
	}
	if err = r.TakeHandover(); err != nil {
		return nil, err
	}

	now := h.clock.Now()
	ho, err := handover.NewHandover(handover.NewHandoverParams{
		ID:                  kernel.NewUUID(),
		Number:              h.numbers.Next(handoverNumberPrefix),
		JobID:               job.ID(),
		RiderID:             r.ID(),
		SpecialInstructions: cmd.SpecialInstructions(),
		AssignedAt:          now,
		SLAWindow:           h.slaWindow,
	})
	if err != nil {
		return nil, err
	}

	if err = uow.HandoverRepository().Add(ctx, ho); err != nil {
		return nil, err
	}
	if err = jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}
	if err = riderRepo.Update(ctx, r); err != nil {
		return nil, err
	}
	if err = uow.AuditRepository().Append(ctx, audit.NewEvent(
		audit.StreamPackingJob, job.ID(), audit.HandoverAssigned, cmd.UserID(), map[string]any{
			"handoverId":     ho.ID().String(),
			"handoverNumber": ho.Number(),
			"riderId":        r.ID().String(),
		}, now,
	)); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return ho, nil
}
