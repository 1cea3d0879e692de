package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/clock"
)

type PickingExceptionView struct {
	ID          kernel.UUID `json:"id"`
	Reason      string      `json:"reason"`
	Severity    string      `json:"severity"`
	Status      string      `json:"status"`
	SLADeadline time.Time   `json:"slaDeadline"`
}

type ReportPartialPickResult struct {
	Item      PicklistItemView      `json:"item"`
	Exception *PickingExceptionView `json:"exception,omitempty"`
}

// ReportPartialPickCommandHandler marks the line PARTIAL and files a picking
// exception for OOS, DAMAGED and EXPIRY. The wave is never completed here.
type ReportPartialPickCommandHandler struct {
	uowFactory PickingUoWFactory
	clock      clock.Clock
}

func NewReportPartialPickCommandHandler(uowFactory PickingUoWFactory, clk clock.Clock) ReportPartialPickCommandHandler {
	return ReportPartialPickCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h ReportPartialPickCommandHandler) Handle(ctx context.Context, cmd ReportPartialPickCommand) (ReportPartialPickResult, error) {
	if err := cmd.Validate(); err != nil {
		return ReportPartialPickResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ReportPartialPickResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	waveRepo := uow.WaveRepository()
	w, err := waveRepo.Get(ctx, cmd.WaveID())
	if err != nil {
		return ReportPartialPickResult{}, err
	}

	now := h.clock.Now()
	item, exception, err := w.ReportPartialPick(cmd.PickerID(), cmd.Pick(), now)
	if err != nil {
		return ReportPartialPickResult{}, err
	}
	if err = waveRepo.Update(ctx, w); err != nil {
		return ReportPartialPickResult{}, err
	}

	data := map[string]any{
		"itemId":         item.ID().String(),
		"sku":            item.SKU(),
		"reason":         string(cmd.Pick().Reason),
		"pickedQuantity": item.PickedQuantity(),
		"quantity":       item.Quantity(),
	}
	result := ReportPartialPickResult{Item: newPicklistItemView(item)}
	if exception != nil {
		if err = waveRepo.AddException(ctx, exception); err != nil {
			return ReportPartialPickResult{}, err
		}
		data["exceptionId"] = exception.ID.String()
		data["severity"] = string(exception.Severity)
		result.Exception = &PickingExceptionView{
			ID:          exception.ID,
			Reason:      string(exception.Reason),
			Severity:    string(exception.Severity),
			Status:      string(exception.Status),
			SLADeadline: exception.SLADeadline,
		}
	}

	if err = uow.AuditRepository().Append(ctx, audit.NewEvent(
		audit.StreamWave, w.ID(), audit.ItemPartialPick, audit.Actor(cmd.PickerID()), data, now,
	)); err != nil {
		return ReportPartialPickResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ReportPartialPickResult{}, err
	}

	return result, nil
}
