package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/pkg/clock"
)

type ScanItemResult struct {
	Item          PicklistItemView `json:"item"`
	WaveCompleted bool             `json:"waveCompleted"`
	WaveStatus    string           `json:"waveStatus"`
}

// ScanItemCommandHandler applies a scan and completes the wave when it
// closes the last open line.
type ScanItemCommandHandler struct {
	uowFactory PickingUoWFactory
	clock      clock.Clock
}

func NewScanItemCommandHandler(uowFactory PickingUoWFactory, clk clock.Clock) ScanItemCommandHandler {
	return ScanItemCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h ScanItemCommandHandler) Handle(ctx context.Context, cmd ScanItemCommand) (ScanItemResult, error) {
	if err := cmd.Validate(); err != nil {
		return ScanItemResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ScanItemResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	waveRepo := uow.WaveRepository()
	w, err := waveRepo.Get(ctx, cmd.WaveID())
	if err != nil {
		return ScanItemResult{}, err
	}

	now := h.clock.Now()
	scan, err := w.Scan(cmd.PickerID(), cmd.SKU(), cmd.BinLocation(), cmd.Quantity(), now)
	if err != nil {
		return ScanItemResult{}, err
	}
	if err = waveRepo.Update(ctx, w); err != nil {
		return ScanItemResult{}, err
	}

	actor := audit.Actor(cmd.PickerID())
	events := []audit.Event{audit.NewEvent(audit.StreamWave, w.ID(), audit.ItemScanned, actor, map[string]any{
		"itemId":         scan.Item.ID().String(),
		"sku":            scan.Item.SKU(),
		"binLocation":    scan.Item.BinLocation(),
		"scannedQty":     cmd.Quantity(),
		"pickedQuantity": scan.Item.PickedQuantity(),
		"status":         scan.Item.Status().String(),
	}, now)}
	if scan.WaveCompleted {
		events = append(events, audit.NewEvent(audit.StreamWave, w.ID(), audit.WaveCompleted, actor, map[string]any{
			"waveNumber": w.Number(),
			"accuracy":   w.Accuracy().InexactFloat64(),
			"trigger":    "scan",
		}, now))
	}
	if err = uow.AuditRepository().Append(ctx, events...); err != nil {
		return ScanItemResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ScanItemResult{}, err
	}

	return ScanItemResult{
		Item:          newPicklistItemView(scan.Item),
		WaveCompleted: scan.WaveCompleted,
		WaveStatus:    w.Status().String(),
	}, nil
}
