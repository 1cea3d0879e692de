package services_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/picker"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generatedWave(t *testing.T, number string, priority kernel.Priority, deadline time.Time) *wave.Wave {
	t.Helper()
	item, err := wave.NewPicklistItem(wave.NewItemParams{OrderID: kernel.NewUUID(), SKU: "A", Quantity: 1})
	require.NoError(t, err)
	w, err := wave.NewWave(wave.NewWaveParams{
		ID: kernel.NewUUID(), Number: number, Priority: priority, TotalOrders: 1,
		Items: []*wave.PicklistItem{item}, SLADeadline: deadline, CreatedAt: now,
	})
	require.NoError(t, err)
	return w
}

func eligiblePicker(t *testing.T, name string) *picker.Picker {
	t.Helper()
	p, err := picker.RestorePicker(kernel.NewUUID(), name, true, picker.AvailabilityAvailable, []string{picker.PermissionExecute})
	require.NoError(t, err)
	return p
}

func TestWaveAssigner_Assign(t *testing.T) {
	t.Run("round_robins_in_priority_then_deadline_order", func(t *testing.T) {
		low := generatedWave(t, "WV-LOW", kernel.PriorityLow, now.Add(time.Hour))
		urgent := generatedWave(t, "WV-URG", kernel.PriorityUrgent, now.Add(10*time.Hour))
		highLate := generatedWave(t, "WV-HI-2", kernel.PriorityHigh, now.Add(5*time.Hour))
		highEarly := generatedWave(t, "WV-HI-1", kernel.PriorityHigh, now.Add(2*time.Hour))
		ana, budi := eligiblePicker(t, "Ana"), eligiblePicker(t, "Budi")

		assignments, err := services.NewWaveAssigner().Assign(
			[]*wave.Wave{low, urgent, highLate, highEarly},
			[]services.PickerLoad{{Picker: ana}, {Picker: budi}},
			3, now,
		)

		require.NoError(t, err)
		require.Len(t, assignments, 4)
		got := []string{}
		for _, a := range assignments {
			got = append(got, a.WaveNumber+"/"+a.PickerName)
		}
		assert.Equal(t, []string{"WV-URG/Ana", "WV-HI-1/Budi", "WV-HI-2/Ana", "WV-LOW/Budi"}, got)
		assert.Equal(t, wave.StatusAssigned, urgent.Status())
		assert.True(t, ana.ID().IsEqual(*urgent.PickerID()))
	})

	t.Run("capped_picker_turn_is_skipped_without_backfill", func(t *testing.T) {
		w1 := generatedWave(t, "WV-1", kernel.PriorityMedium, now.Add(1*time.Hour))
		w2 := generatedWave(t, "WV-2", kernel.PriorityMedium, now.Add(2*time.Hour))
		w3 := generatedWave(t, "WV-3", kernel.PriorityMedium, now.Add(3*time.Hour))
		busy, free := eligiblePicker(t, "Busy"), eligiblePicker(t, "Free")

		assignments, err := services.NewWaveAssigner().Assign(
			[]*wave.Wave{w1, w2, w3},
			[]services.PickerLoad{{Picker: busy, ActiveWaves: 3}, {Picker: free}},
			3, now,
		)

		require.NoError(t, err)
		require.Len(t, assignments, 1)
		assert.Equal(t, "WV-2", assignments[0].WaveNumber)
		assert.Equal(t, wave.StatusGenerated, w1.Status())
		assert.Equal(t, wave.StatusGenerated, w3.Status())
	})

	t.Run("respects_cap_within_a_pass", func(t *testing.T) {
		waves := []*wave.Wave{
			generatedWave(t, "WV-1", kernel.PriorityMedium, now.Add(1*time.Hour)),
			generatedWave(t, "WV-2", kernel.PriorityMedium, now.Add(2*time.Hour)),
			generatedWave(t, "WV-3", kernel.PriorityMedium, now.Add(3*time.Hour)),
		}

		assignments, err := services.NewWaveAssigner().Assign(waves, []services.PickerLoad{{Picker: eligiblePicker(t, "Solo")}}, 2, now)

		require.NoError(t, err)
		assert.Len(t, assignments, 2)
	})

	t.Run("no_eligible_picker", func(t *testing.T) {
		inactive, err := picker.RestorePicker(kernel.NewUUID(), "Off", false, picker.AvailabilityAvailable, []string{picker.PermissionExecute})
		require.NoError(t, err)

		_, err = services.NewWaveAssigner().Assign(
			[]*wave.Wave{generatedWave(t, "WV-1", kernel.PriorityLow, now)},
			[]services.PickerLoad{{Picker: inactive}},
			3, now,
		)

		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}
