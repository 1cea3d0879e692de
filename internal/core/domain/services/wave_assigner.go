package services

import (
	"slices"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/picker"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/pkg/errs"
)

const DefaultMaxWavesPerPicker = 3

// PickerLoad is a picker together with the number of waves it currently
// holds in ASSIGNED or PICKING.
type PickerLoad struct {
	Picker      *picker.Picker
	ActiveWaves int
}

type Assignment struct {
	WaveID     kernel.UUID `json:"waveId"`
	WaveNumber string      `json:"waveNumber"`
	PickerID   kernel.UUID `json:"pickerId"`
	PickerName string      `json:"pickerName"`
}

// WaveAssigner round-robins unassigned waves over eligible pickers.
//
// It is a greedy pass: when the picker whose turn it is has reached the cap,
// that wave is left unassigned and the turn moves on. Capacity of later
// pickers is not used to backfill within the same pass; the next run picks
// the remaining waves up.
type WaveAssigner struct{}

func NewWaveAssigner() WaveAssigner {
	return WaveAssigner{}
}

func (WaveAssigner) Assign(waves []*wave.Wave, pickers []PickerLoad, maxWavesPerPicker int, now time.Time) ([]Assignment, error) {
	if maxWavesPerPicker <= 0 {
		maxWavesPerPicker = DefaultMaxWavesPerPicker
	}

	eligible := make([]PickerLoad, 0, len(pickers))
	for _, p := range pickers {
		if p.Picker != nil && p.Picker.IsEligible() {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return nil, errs.NewObjectNotFoundError("picker", "eligible and available")
	}

	queue := slices.Clone(waves)
	SortForAssignment(queue)

	assignments := make([]Assignment, 0, len(queue))
	turn := 0
	for _, w := range queue {
		if w.Status() != wave.StatusGenerated || w.PickerID() != nil {
			continue
		}

		candidate := &eligible[turn%len(eligible)]
		turn++
		if candidate.ActiveWaves >= maxWavesPerPicker {
			continue
		}

		if err := w.AssignTo(candidate.Picker.ID(), now); err != nil {
			return nil, err
		}
		candidate.ActiveWaves++
		assignments = append(assignments, Assignment{
			WaveID:     w.ID(),
			WaveNumber: w.Number(),
			PickerID:   candidate.Picker.ID(),
			PickerName: candidate.Picker.Name(),
		})
	}

	return assignments, nil
}

// SortForAssignment orders waves by priority (most urgent first), then by the
// earliest SLA deadline.
func SortForAssignment(waves []*wave.Wave) {
	slices.SortStableFunc(waves, func(a, b *wave.Wave) int {
		if a.Priority() != b.Priority() {
			return b.Priority().Rank() - a.Priority().Rank()
		}
		return a.SLADeadline().Compare(b.SLADeadline())
	})
}
