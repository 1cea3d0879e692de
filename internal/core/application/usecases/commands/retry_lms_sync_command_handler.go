package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/application/lmssync"
	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/pkg/errs"
)

var ErrHandoverAlreadySynced = errs.NewValueIsInvalidErrorWithCause(
	"lmsSyncStatus", errors.New("handover is already synced with LMS"),
)

// RetryLMSSyncCommandHandler re-issues shipment creation from scratch for a
// handover that is not synced yet.
type RetryLMSSyncCommandHandler struct {
	uowFactory HandoverUoWFactory
	syncer     ShipmentSyncer
}

func NewRetryLMSSyncCommandHandler(uowFactory HandoverUoWFactory, syncer ShipmentSyncer) RetryLMSSyncCommandHandler {
	return RetryLMSSyncCommandHandler{uowFactory: uowFactory, syncer: syncer}
}

func (h RetryLMSSyncCommandHandler) Handle(ctx context.Context, cmd RetryLMSSyncCommand) (lmssync.Outcome, error) {
	if err := cmd.Validate(); err != nil {
		return lmssync.Outcome{}, err
	}

	if err := h.ensureNotSynced(ctx, cmd); err != nil {
		return lmssync.Outcome{}, err
	}

	return h.syncer.CreateShipment(ctx, cmd.HandoverID())
}

func (h RetryLMSSyncCommandHandler) ensureNotSynced(ctx context.Context, cmd RetryLMSSyncCommand) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ho, err := uow.HandoverRepository().Get(ctx, cmd.HandoverID())
	if err != nil {
		return err
	}
	if ho.SyncStatus() == handover.SyncSynced {
		return ErrHandoverAlreadySynced
	}
	return nil
}
