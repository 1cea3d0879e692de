package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/clock"
)

type PackingItemView struct {
	ID             kernel.UUID `json:"id"`
	OrderID        kernel.UUID `json:"orderId"`
	SKU            string      `json:"sku"`
	Quantity       int         `json:"quantity"`
	PickedQuantity int         `json:"pickedQuantity"`
	PackedQuantity int         `json:"packedQuantity"`
	Status         string      `json:"status"`
}

type VerifyItemResult struct {
	Item          PackingItemView `json:"item"`
	JobStatus     string          `json:"jobStatus"`
	PackedItems   int             `json:"packedItems"`
	VerifiedItems int             `json:"verifiedItems"`
	TotalItems    int             `json:"totalItems"`
}

type VerifyItemCommandHandler struct {
	uowFactory PackingUoWFactory
	clock      clock.Clock
}

func NewVerifyItemCommandHandler(uowFactory PackingUoWFactory, clk clock.Clock) VerifyItemCommandHandler {
	return VerifyItemCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h VerifyItemCommandHandler) Handle(ctx context.Context, cmd VerifyItemCommand) (VerifyItemResult, error) {
	if err := cmd.Validate(); err != nil {
		return VerifyItemResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return VerifyItemResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.PackingJobRepository()
	job, err := jobRepo.Get(ctx, cmd.JobID())
	if err != nil {
		return VerifyItemResult{}, err
	}

	now := h.clock.Now()
	item, err := job.VerifyItem(cmd.OrderID(), cmd.SKU(), cmd.PackedQuantity(), now)
	if err != nil {
		return VerifyItemResult{}, err
	}
	if err = jobRepo.Update(ctx, job); err != nil {
		return VerifyItemResult{}, err
	}
	if err = uow.AuditRepository().Append(ctx, audit.NewEvent(
		audit.StreamPackingJob, job.ID(), audit.ItemVerified, cmd.UserID(), map[string]any{
			"orderId":        item.OrderID.String(),
			"sku":            item.SKU,
			"packedQuantity": item.PackedQuantity,
			"status":         item.Status.String(),
		}, now,
	)); err != nil {
		return VerifyItemResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return VerifyItemResult{}, err
	}

	return VerifyItemResult{
		Item: PackingItemView{
			ID:             item.ID,
			OrderID:        item.OrderID,
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			PickedQuantity: item.PickedQuantity,
			PackedQuantity: item.PackedQuantity,
			Status:         item.Status.String(),
		},
		JobStatus:     job.Status().String(),
		PackedItems:   job.PackedItems(),
		VerifiedItems: job.VerifiedItems(),
		TotalItems:    job.TotalItems(),
	}, nil
}
