package commands

import (
	"context"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/pkg/errs"
)

const packingJobNumberPrefix = "PJ"

type StartPackingResult struct {
	JobID             kernel.UUID  `json:"jobId"`
	JobNumber         string       `json:"jobNumber"`
	WaveID            kernel.UUID  `json:"waveId"`
	PackerID          *kernel.UUID `json:"packerId,omitempty"`
	Status            string       `json:"status"`
	Workflow          string       `json:"workflowType"`
	TotalItems        int          `json:"totalItems"`
	SLADeadline       time.Time    `json:"slaDeadline"`
	EstimatedDuration int          `json:"estimatedDuration"`
}

type StartPackingCommandHandler struct {
	uowFactory PackingUoWFactory
	numbers    services.NumberSource
	clock      clock.Clock
}

func NewStartPackingCommandHandler(
	uowFactory PackingUoWFactory,
	numbers services.NumberSource,
	clk clock.Clock,
) StartPackingCommandHandler {
	return StartPackingCommandHandler{uowFactory: uowFactory, numbers: numbers, clock: clk}
}

func (h StartPackingCommandHandler) Handle(ctx context.Context, cmd StartPackingCommand) (StartPackingResult, error) {
	if err := cmd.Validate(); err != nil {
		return StartPackingResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return StartPackingResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	w, err := uow.WaveRepository().Get(ctx, cmd.WaveID())
	if err != nil {
		return StartPackingResult{}, err
	}
	if w.Status() != wave.StatusCompleted {
		return StartPackingResult{}, errs.NewValueIsInvalidErrorWithCause(
			"waveStatus", fmt.Errorf("wave %s is %s, expected COMPLETED", w.Number(), w.Status()),
		)
	}

	packerID := cmd.PackerID()
	if packerID == nil && cmd.Workflow() == packing.WorkflowPickerPacks {
		packerID = w.PickerID()
	}
	priority := w.Priority()
	if cmd.Priority() != nil {
		priority = *cmd.Priority()
	}

	sources := make([]packing.SourceItem, 0, len(w.Items()))
	for _, item := range w.Items() {
		sources = append(sources, packing.SourceItem{
			OrderID:        item.OrderID(),
			SKU:            item.SKU(),
			ProductName:    item.ProductName(),
			Quantity:       item.Quantity(),
			PickedQuantity: item.PickedQuantity(),
		})
	}

	now := h.clock.Now()
	job, err := packing.NewJob(packing.NewJobParams{
		ID:       kernel.NewUUID(),
		Number:   h.numbers.Next(packingJobNumberPrefix),
		WaveID:   w.ID(),
		PackerID: packerID,
		Priority: priority,
		Workflow: cmd.Workflow(),
		Items:    sources,
		Now:      now,
	})
	if err != nil {
		return StartPackingResult{}, err
	}

	if err = uow.PackingJobRepository().Add(ctx, job); err != nil {
		return StartPackingResult{}, err
	}
	if err = uow.AuditRepository().Append(ctx, audit.NewEvent(
		audit.StreamPackingJob, job.ID(), audit.PackingStarted, cmd.UserID(), map[string]any{
			"jobNumber":    job.Number(),
			"waveId":       w.ID().String(),
			"workflowType": string(job.Workflow()),
			"totalItems":   job.TotalItems(),
		}, now,
	)); err != nil {
		return StartPackingResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return StartPackingResult{}, err
	}

	return StartPackingResult{
		JobID:             job.ID(),
		JobNumber:         job.Number(),
		WaveID:            job.WaveID(),
		PackerID:          job.PackerID(),
		Status:            job.Status().String(),
		Workflow:          string(job.Workflow()),
		TotalItems:        job.TotalItems(),
		SLADeadline:       job.SLADeadline(),
		EstimatedDuration: job.EstimatedDuration(),
	}, nil
}
