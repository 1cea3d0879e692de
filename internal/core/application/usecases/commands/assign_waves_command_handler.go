package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/clock"
)

type AssignWavesResult struct {
	Assigned    int                   `json:"assigned"`
	Assignments []services.Assignment `json:"assignments"`
}

// AssignWavesCommandHandler round-robins GENERATED waves over eligible
// pickers. See services.WaveAssigner for the skipping rule.
type AssignWavesCommandHandler struct {
	uowFactory PickingUoWFactory
	assigner   services.WaveAssigner
	clock      clock.Clock
}

func NewAssignWavesCommandHandler(uowFactory PickingUoWFactory, clk clock.Clock) AssignWavesCommandHandler {
	return AssignWavesCommandHandler{
		uowFactory: uowFactory,
		assigner:   services.NewWaveAssigner(),
		clock:      clk,
	}
}

func (h AssignWavesCommandHandler) Handle(ctx context.Context, cmd AssignWavesCommand) (AssignWavesResult, error) {
	if err := cmd.Validate(); err != nil {
		return AssignWavesResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AssignWavesResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	waveRepo := uow.WaveRepository()

	pickers, err := uow.PickerRepository().ListActive(ctx)
	if err != nil {
		return AssignWavesResult{}, err
	}
	loads, err := waveRepo.CountActiveByPicker(ctx)
	if err != nil {
		return AssignWavesResult{}, err
	}
	pool := make([]services.PickerLoad, 0, len(pickers))
	for _, p := range pickers {
		pool = append(pool, services.PickerLoad{Picker: p, ActiveWaves: loads[p.ID()]})
	}

	waves, err := waveRepo.ListUnassigned(ctx)
	if err != nil {
		return AssignWavesResult{}, err
	}

	now := h.clock.Now()
	assignments, err := h.assigner.Assign(waves, pool, cmd.MaxWavesPerPicker(), now)
	if err != nil {
		return AssignWavesResult{}, err
	}

	byID := make(map[string]*wave.Wave, len(waves))
	for _, w := range waves {
		byID[w.ID().String()] = w
	}

	events := make([]audit.Event, 0, len(assignments))
	for _, a := range assignments {
		if err = waveRepo.Update(ctx, byID[a.WaveID.String()]); err != nil {
			return AssignWavesResult{}, err
		}
		events = append(events, audit.NewEvent(audit.StreamWave, a.WaveID, audit.WaveAssigned, cmd.UserID(), map[string]any{
			"waveNumber": a.WaveNumber,
			"pickerId":   a.PickerID.String(),
			"pickerName": a.PickerName,
		}, now))
	}

	if err = uow.AuditRepository().Append(ctx, events...); err != nil {
		return AssignWavesResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return AssignWavesResult{}, err
	}

	return AssignWavesResult{Assigned: len(assignments), Assignments: assignments}, nil
}
