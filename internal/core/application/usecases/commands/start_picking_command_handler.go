package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/clock"
)

type StartPickingResult struct {
	WaveID     kernel.UUID        `json:"waveId"`
	WaveNumber string             `json:"waveNumber"`
	Status     string             `json:"status"`
	Items      []PicklistItemView `json:"items"`
}

type StartPickingCommandHandler struct {
	uowFactory PickingUoWFactory
	clock      clock.Clock
}

func NewStartPickingCommandHandler(uowFactory PickingUoWFactory, clk clock.Clock) StartPickingCommandHandler {
	return StartPickingCommandHandler{uowFactory: uowFactory, clock: clk}
}

// Handle returns the picklist in scan order.
func (h StartPickingCommandHandler) Handle(ctx context.Context, cmd StartPickingCommand) (StartPickingResult, error) {
	if err := cmd.Validate(); err != nil {
		return StartPickingResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return StartPickingResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	waveRepo := uow.WaveRepository()
	w, err := waveRepo.Get(ctx, cmd.WaveID())
	if err != nil {
		return StartPickingResult{}, err
	}

	now := h.clock.Now()
	if err = w.StartPicking(cmd.PickerID(), now); err != nil {
		return StartPickingResult{}, err
	}
	if err = waveRepo.Update(ctx, w); err != nil {
		return StartPickingResult{}, err
	}
	if err = uow.AuditRepository().Append(ctx, audit.NewEvent(
		audit.StreamWave, w.ID(), audit.PickingStarted, audit.Actor(cmd.PickerID()),
		map[string]any{"waveNumber": w.Number()}, now,
	)); err != nil {
		return StartPickingResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return StartPickingResult{}, err
	}

	items := w.Items()
	views := make([]PicklistItemView, 0, len(items))
	for _, item := range items {
		views = append(views, newPicklistItemView(item))
	}
	return StartPickingResult{
		WaveID:     w.ID(),
		WaveNumber: w.Number(),
		Status:     w.Status().String(),
		Items:      views,
	}, nil
}
