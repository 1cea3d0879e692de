package commands_test

import (
	"bytes"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerateWavesCommand(t *testing.T) {
	id := kernel.NewUUID()

	t.Run("defaults", func(t *testing.T) {
		cmd, err := commands.NewGenerateWavesCommand([]kernel.UUID{id}, "", 0, wave.Options{}, nil)
		require.NoError(t, err)
		assert.Equal(t, kernel.PriorityMedium, cmd.Priority())
		assert.Equal(t, 20, cmd.MaxOrdersPerWave())
	})

	t.Run("explicit_max_orders_kept", func(t *testing.T) {
		cmd, err := commands.NewGenerateWavesCommand([]kernel.UUID{id}, "", 5, wave.Options{}, nil)
		require.NoError(t, err)
		assert.Equal(t, 5, cmd.MaxOrdersPerWave())
	})

	t.Run("negative_max_orders", func(t *testing.T) {
		_, err := commands.NewGenerateWavesCommand([]kernel.UUID{id}, "", -1, wave.Options{}, nil)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("duplicates_rejected", func(t *testing.T) {
		_, err := commands.NewGenerateWavesCommand([]kernel.UUID{id, id}, "", 0, wave.Options{}, nil)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("empty_order_ids", func(t *testing.T) {
		_, err := commands.NewGenerateWavesCommand(nil, "", 0, wave.Options{}, nil)
		require.ErrorIs(t, err, commands.ErrOrderIDsAreRequired)
	})

	t.Run("unknown_priority", func(t *testing.T) {
		_, err := commands.NewGenerateWavesCommand([]kernel.UUID{id}, "ASAP", 0, wave.Options{}, nil)
		require.Error(t, err)
	})
}

func TestNewScanItemCommand(t *testing.T) {
	_, err := commands.NewScanItemCommand(kernel.NewUUID(), kernel.NewUUID(), "", "A-1", 0)
	require.ErrorIs(t, err, commands.ErrSKUIsRequired)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = commands.NewScanItemCommand(kernel.UUID{}, kernel.NewUUID(), "A", "A-1", 1)
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestNewReportPartialPickCommand(t *testing.T) {
	cmd, err := commands.NewReportPartialPickCommand(kernel.NewUUID(), kernel.NewUUID(), "A", "A-1", "OOS", 0, "", "")
	require.NoError(t, err)
	assert.Equal(t, wave.ReasonOutOfStock, cmd.Pick().Reason)

	_, err = commands.NewReportPartialPickCommand(kernel.NewUUID(), kernel.NewUUID(), "A", "A-1", "LOST", 0, "", "")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestNewStartPackingCommand(t *testing.T) {
	cmd, err := commands.NewStartPackingCommand(kernel.NewUUID(), nil, "", "", nil)
	require.NoError(t, err)
	assert.Nil(t, cmd.Priority())
	assert.Equal(t, packing.WorkflowDedicatedPacker, cmd.Workflow())

	cmd, err = commands.NewStartPackingCommand(kernel.NewUUID(), nil, "URGENT", "PICKER_PACKS", nil)
	require.NoError(t, err)
	require.NotNil(t, cmd.Priority())
	assert.Equal(t, kernel.PriorityUrgent, *cmd.Priority())

	_, err = commands.NewStartPackingCommand(kernel.NewUUID(), nil, "", "ROBOT", nil)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestNewCompletePackingCommand(t *testing.T) {
	_, err := commands.NewCompletePackingCommand(kernel.NewUUID(),
		[]commands.PhotoInput{{PhotoType: "PACKAGE"}},
		[]commands.SealInput{{SealType: "TAPE"}},
		nil,
	)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestNewUploadPackingPhotoCommand(t *testing.T) {
	cmd, err := commands.NewUploadPackingPhotoCommand(kernel.NewUUID(), "", "", bytes.NewReader([]byte("x")), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "PACKAGE", cmd.PhotoType())

	_, err = commands.NewUploadPackingPhotoCommand(kernel.NewUUID(), "", "", nil, 0, nil)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestNewVerifyItemCommand(t *testing.T) {
	_, err := commands.NewVerifyItemCommand(kernel.NewUUID(), kernel.NewUUID(), "A", -1, nil)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
