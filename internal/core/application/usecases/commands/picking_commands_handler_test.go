package commands_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/testutil/memuow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoLineCart = `[{"sku":"A","productName":"Apple","binLocation":"A-1","quantity":2},{"sku":"B","productName":"Bread","binLocation":"B-1","quantity":1}]`

func TestGenerateWavesCommandHandler_Handle(t *testing.T) {
	t.Run("chunks_orders_and_records_events", func(t *testing.T) {
		// Arrange
		store := memuow.NewStore()
		ids := make([]kernel.UUID, 0, 5)
		for range 5 {
			ids = append(ids, seedOrder(t, store, twoLineCart).ID())
		}
		cmd, err := commands.NewGenerateWavesCommand(ids, "HIGH", 2, wave.Options{}, nil)
		require.NoError(t, err)
		h := commands.NewGenerateWavesCommandHandler(pickingFactory{store.Factory()}, newGenerator(), fixedClock, discardLogger())

		// Act
		result, err := h.Handle(t.Context(), cmd)

		// Assert
		require.NoError(t, err)
		require.Len(t, result.Waves, 3)
		assert.Equal(t, 5, result.TotalOrders)
		assert.Equal(t, 15, result.TotalItems)
		assert.Len(t, store.Waves(), 3)
		assert.Equal(t, []string{audit.WaveGenerated, audit.WaveGenerated, audit.WaveGenerated}, store.EventTypes())
		for _, w := range store.Waves() {
			assert.Equal(t, wave.StatusGenerated, w.Status())
			assert.Equal(t, kernel.PriorityHigh, w.Priority())
		}
	})

	t.Run("unknown_order_creates_nothing", func(t *testing.T) {
		// Arrange
		store := memuow.NewStore()
		known := seedOrder(t, store, twoLineCart)
		cmd, err := commands.NewGenerateWavesCommand([]kernel.UUID{known.ID(), kernel.NewUUID()}, "", 0, wave.Options{}, nil)
		require.NoError(t, err)
		h := commands.NewGenerateWavesCommandHandler(pickingFactory{store.Factory()}, newGenerator(), fixedClock, discardLogger())

		// Act
		_, err = h.Handle(t.Context(), cmd)

		// Assert
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		assert.Empty(t, store.Waves())
		assert.Empty(t, store.Events())
	})

	t.Run("not_constructed_command", func(t *testing.T) {
		h := commands.NewGenerateWavesCommandHandler(pickingFactory{memuow.NewStore().Factory()}, newGenerator(), fixedClock, discardLogger())

		_, err := h.Handle(t.Context(), commands.GenerateWavesCommand{})

		require.ErrorIs(t, err, commands.ErrGenerateWavesCommandIsNotConstructed)
	})
}

func TestAssignWavesCommandHandler_Handle(t *testing.T) {
	t.Run("round_robins_generated_waves", func(t *testing.T) {
		// Arrange
		store := memuow.NewStore()
		ids := []kernel.UUID{
			seedOrder(t, store, twoLineCart).ID(),
			seedOrder(t, store, twoLineCart).ID(),
		}
		genCmd, err := commands.NewGenerateWavesCommand(ids, "MEDIUM", 1, wave.Options{}, nil)
		require.NoError(t, err)
		_, err = commands.NewGenerateWavesCommandHandler(pickingFactory{store.Factory()}, newGenerator(), fixedClock, discardLogger()).
			Handle(t.Context(), genCmd)
		require.NoError(t, err)

		ana := seedPicker(t, store, "Ana")
		budi := seedPicker(t, store, "Budi")
		cmd, err := commands.NewAssignWavesCommand(0, nil)
		require.NoError(t, err)
		h := commands.NewAssignWavesCommandHandler(pickingFactory{store.Factory()}, fixedClock)

		// Act
		result, err := h.Handle(t.Context(), cmd)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, result.Assigned)
		pickers := map[kernel.UUID]bool{}
		for _, w := range store.Waves() {
			assert.Equal(t, wave.StatusAssigned, w.Status())
			require.NotNil(t, w.PickerID())
			pickers[*w.PickerID()] = true
		}
		assert.True(t, pickers[ana.ID()])
		assert.True(t, pickers[budi.ID()])
	})

	t.Run("no_eligible_picker", func(t *testing.T) {
		store := memuow.NewStore()
		cmd, err := commands.NewAssignWavesCommand(3, nil)
		require.NoError(t, err)

		_, err = commands.NewAssignWavesCommandHandler(pickingFactory{store.Factory()}, fixedClock).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestPickingFlow(t *testing.T) {
	t.Run("scan_auto_completes_and_manual_complete_is_idempotent", func(t *testing.T) {
		// Arrange
		store := memuow.NewStore()
		pickerID := kernel.NewUUID()
		w := seedPickingWave(t, store, pickerID)
		factory := pickingFactory{store.Factory()}
		scan := commands.NewScanItemCommandHandler(factory, fixedClock)

		// Act
		first, err := commands.NewScanItemCommand(w.ID(), pickerID, "A", "A-1", 5)
		require.NoError(t, err)
		firstResult, err := scan.Handle(t.Context(), first)
		require.NoError(t, err)

		second, err := commands.NewScanItemCommand(w.ID(), pickerID, "B", "B-1", 1)
		require.NoError(t, err)
		secondResult, err := scan.Handle(t.Context(), second)
		require.NoError(t, err)

		completeCmd, err := commands.NewCompletePickingCommand(w.ID(), pickerID)
		require.NoError(t, err)
		completed, err := commands.NewCompletePickingCommandHandler(factory, fixedClock).Handle(t.Context(), completeCmd)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, firstResult.Item.PickedQuantity, "scan is clamped to the ordered quantity")
		assert.False(t, firstResult.WaveCompleted)
		assert.True(t, secondResult.WaveCompleted)
		assert.Equal(t, "COMPLETED", secondResult.WaveStatus)
		assert.True(t, completed.AlreadyCompleted)
		assert.InDelta(t, 100.0, completed.Accuracy, 0.001)
		assert.Equal(t, []string{audit.ItemScanned, audit.ItemScanned, audit.WaveCompleted}, store.EventTypes())
	})

	t.Run("start_picking_requires_assigned_picker", func(t *testing.T) {
		store := memuow.NewStore()
		pickerID := kernel.NewUUID()
		w, err := wave.NewWave(wave.NewWaveParams{
			ID:          kernel.NewUUID(),
			Number:      "WV-9",
			Priority:    kernel.PriorityMedium,
			TotalOrders: 1,
			Items:       []*wave.PicklistItem{newItem(t, "A", "A-1", 1, 1)},
			SLADeadline: now,
			CreatedAt:   now,
		})
		require.NoError(t, err)
		require.NoError(t, w.AssignTo(pickerID, now))
		store.SeedWaves(w)
		h := commands.NewStartPickingCommandHandler(pickingFactory{store.Factory()}, fixedClock)

		other, err := commands.NewStartPickingCommand(w.ID(), kernel.NewUUID())
		require.NoError(t, err)
		_, err = h.Handle(t.Context(), other)
		require.ErrorIs(t, err, errs.ErrForbidden)

		own, err := commands.NewStartPickingCommand(w.ID(), pickerID)
		require.NoError(t, err)
		result, err := h.Handle(t.Context(), own)
		require.NoError(t, err)
		assert.Equal(t, "PICKING", result.Status)
		assert.Equal(t, wave.StatusPicking, store.Wave(w.ID()).Status())
	})

	t.Run("partial_pick_raises_exception_without_completing", func(t *testing.T) {
		// Arrange
		store := memuow.NewStore()
		pickerID := kernel.NewUUID()
		w := seedPickingWave(t, store, pickerID)
		cmd, err := commands.NewReportPartialPickCommand(w.ID(), pickerID, "A", "A-1", "EXPIRY", 1, "dented", "")
		require.NoError(t, err)

		// Act
		result, err := commands.NewReportPartialPickCommandHandler(pickingFactory{store.Factory()}, fixedClock).Handle(t.Context(), cmd)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "PARTIAL", result.Item.Status)
		require.NotNil(t, result.Exception)
		assert.Equal(t, "HIGH", result.Exception.Severity)
		assert.Equal(t, now.Add(time.Hour), result.Exception.SLADeadline)
		assert.Len(t, store.Exceptions(), 1)
		assert.Equal(t, wave.StatusPicking, store.Wave(w.ID()).Status())
	})

	t.Run("partial_pick_other_has_no_exception", func(t *testing.T) {
		store := memuow.NewStore()
		pickerID := kernel.NewUUID()
		w := seedPickingWave(t, store, pickerID)
		cmd, err := commands.NewReportPartialPickCommand(w.ID(), pickerID, "B", "B-1", "OTHER", 0, "", "")
		require.NoError(t, err)

		result, err := commands.NewReportPartialPickCommandHandler(pickingFactory{store.Factory()}, fixedClock).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Nil(t, result.Exception)
		assert.Empty(t, store.Exceptions())
	})

	t.Run("complete_with_open_items_fails", func(t *testing.T) {
		store := memuow.NewStore()
		pickerID := kernel.NewUUID()
		w := seedPickingWave(t, store, pickerID)
		cmd, err := commands.NewCompletePickingCommand(w.ID(), pickerID)
		require.NoError(t, err)

		_, err = commands.NewCompletePickingCommandHandler(pickingFactory{store.Factory()}, fixedClock).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Empty(t, store.Events())
	})

	t.Run("cancel_wave", func(t *testing.T) {
		store := memuow.NewStore()
		w := seedPickingWave(t, store, kernel.NewUUID())
		cmd, err := commands.NewCancelWaveCommand(w.ID(), "customer cancelled", nil)
		require.NoError(t, err)

		err = commands.NewCancelWaveCommandHandler(pickingFactory{store.Factory()}, fixedClock).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, wave.StatusCancelled, store.Wave(w.ID()).Status())
		assert.Equal(t, []string{audit.WaveCancelled}, store.EventTypes())
	})
}
