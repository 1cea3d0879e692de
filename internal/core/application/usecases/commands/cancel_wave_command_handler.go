package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/pkg/clock"
)

type CancelWaveCommandHandler struct {
	uowFactory PickingUoWFactory
	clock      clock.Clock
}

func NewCancelWaveCommandHandler(uowFactory PickingUoWFactory, clk clock.Clock) CancelWaveCommandHandler {
	return CancelWaveCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h CancelWaveCommandHandler) Handle(ctx context.Context, cmd CancelWaveCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	waveRepo := uow.WaveRepository()
	w, err := waveRepo.Get(ctx, cmd.WaveID())
	if err != nil {
		return err
	}

	now := h.clock.Now()
	if err = w.Cancel(cmd.Reason(), now); err != nil {
		return err
	}
	if err = waveRepo.Update(ctx, w); err != nil {
		return err
	}
	if err = uow.AuditRepository().Append(ctx, audit.NewEvent(
		audit.StreamWave, w.ID(), audit.WaveCancelled, cmd.UserID(),
		map[string]any{"waveNumber": w.Number(), "reason": cmd.Reason()}, now,
	)); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
