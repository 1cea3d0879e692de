package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/clock"
)

type GeneratedWave struct {
	ID          kernel.UUID `json:"id"`
	WaveNumber  string      `json:"waveNumber"`
	Priority    string      `json:"priority"`
	TotalOrders int         `json:"totalOrders"`
	TotalItems  int         `json:"totalItems"`
	SLADeadline time.Time   `json:"slaDeadline"`
}

type GenerateWavesResult struct {
	Waves       []GeneratedWave `json:"waves"`
	TotalOrders int             `json:"totalOrders"`
	TotalItems  int             `json:"totalItems"`
}

// GenerateWavesCommandHandler resolves every order, splits them into waves
// and stores the waves with their picklists in one transaction. An unknown
// order ID aborts the whole batch.
type GenerateWavesCommandHandler struct {
	uowFactory PickingUoWFactory
	generator  services.WaveGenerator
	clock      clock.Clock
	logger     *slog.Logger
}

func NewGenerateWavesCommandHandler(
	uowFactory PickingUoWFactory,
	generator services.WaveGenerator,
	clk clock.Clock,
	logger *slog.Logger,
) GenerateWavesCommandHandler {
	return GenerateWavesCommandHandler{
		uowFactory: uowFactory,
		generator:  generator,
		clock:      clk,
		logger:     logger,
	}
}

func (h GenerateWavesCommandHandler) Handle(ctx context.Context, cmd GenerateWavesCommand) (GenerateWavesResult, error) {
	if err := cmd.Validate(); err != nil {
		return GenerateWavesResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return GenerateWavesResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders, err := uow.OrderRepository().GetByIDs(ctx, cmd.OrderIDs())
	if err != nil {
		return GenerateWavesResult{}, err
	}

	now := h.clock.Now()
	waves, issues, err := h.generator.Generate(services.GenerateParams{
		Orders:           orders,
		Priority:         cmd.Priority(),
		MaxOrdersPerWave: cmd.MaxOrdersPerWave(),
		Options:          cmd.Options(),
		Now:              now,
	})
	if err != nil {
		return GenerateWavesResult{}, err
	}
	for _, issue := range issues {
		h.logger.WarnContext(ctx, "Order cart is malformed, treated as empty",
			"orderId", issue.OrderID.String(), "error", issue.Err)
	}

	waveRepo := uow.WaveRepository()
	events := make([]audit.Event, 0, len(waves))
	result := GenerateWavesResult{Waves: make([]GeneratedWave, 0, len(waves))}
	for _, w := range waves {
		if err = waveRepo.Add(ctx, w); err != nil {
			return GenerateWavesResult{}, err
		}
		events = append(events, audit.NewEvent(audit.StreamWave, w.ID(), audit.WaveGenerated, cmd.UserID(), map[string]any{
			"waveNumber":  w.Number(),
			"totalOrders": w.TotalOrders(),
			"totalItems":  w.TotalItems(),
			"priority":    w.Priority().String(),
		}, now))

		result.Waves = append(result.Waves, GeneratedWave{
			ID:          w.ID(),
			WaveNumber:  w.Number(),
			Priority:    w.Priority().String(),
			TotalOrders: w.TotalOrders(),
			TotalItems:  w.TotalItems(),
			SLADeadline: w.SLADeadline(),
		})
		result.TotalOrders += w.TotalOrders()
		result.TotalItems += w.TotalItems()
	}

	if err = uow.AuditRepository().Append(ctx, events...); err != nil {
		return GenerateWavesResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return GenerateWavesResult{}, err
	}

	return result, nil
}
