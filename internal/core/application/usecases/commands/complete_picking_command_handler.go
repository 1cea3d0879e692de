package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/clock"
)

type CompletePickingResult struct {
	WaveID           kernel.UUID `json:"waveId"`
	WaveNumber       string      `json:"waveNumber"`
	Status           string      `json:"status"`
	TotalItems       int         `json:"totalItems"`
	PickedItems      int         `json:"pickedItems"`
	Accuracy         float64     `json:"accuracy"`
	AlreadyCompleted bool        `json:"alreadyCompleted"`
}

// CompletePickingCommandHandler is idempotent with the scan auto-complete:
// a wave that is already COMPLETED is reported again without a second
// completion event.
type CompletePickingCommandHandler struct {
	uowFactory PickingUoWFactory
	clock      clock.Clock
}

func NewCompletePickingCommandHandler(uowFactory PickingUoWFactory, clk clock.Clock) CompletePickingCommandHandler {
	return CompletePickingCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h CompletePickingCommandHandler) Handle(ctx context.Context, cmd CompletePickingCommand) (CompletePickingResult, error) {
	if err := cmd.Validate(); err != nil {
		return CompletePickingResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CompletePickingResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	waveRepo := uow.WaveRepository()
	w, err := waveRepo.Get(ctx, cmd.WaveID())
	if err != nil {
		return CompletePickingResult{}, err
	}

	now := h.clock.Now()
	alreadyCompleted, err := w.CompletePicking(cmd.PickerID(), now)
	if err != nil {
		return CompletePickingResult{}, err
	}

	if !alreadyCompleted {
		if err = waveRepo.Update(ctx, w); err != nil {
			return CompletePickingResult{}, err
		}
		if err = uow.AuditRepository().Append(ctx, audit.NewEvent(
			audit.StreamWave, w.ID(), audit.WaveCompleted, audit.Actor(cmd.PickerID()), map[string]any{
				"waveNumber": w.Number(),
				"accuracy":   w.Accuracy().InexactFloat64(),
				"trigger":    "manual",
			}, now,
		)); err != nil {
			return CompletePickingResult{}, err
		}
		if err = uow.Commit(ctx); err != nil {
			return CompletePickingResult{}, err
		}
	}

	return CompletePickingResult{
		WaveID:           w.ID(),
		WaveNumber:       w.Number(),
		Status:           w.Status().String(),
		TotalItems:       w.TotalItems(),
		PickedItems:      w.PickedQuantity(),
		Accuracy:         w.Accuracy().InexactFloat64(),
		AlreadyCompleted: alreadyCompleted,
	}, nil
}
