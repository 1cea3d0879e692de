package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/testutil/memuow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPhotoStorage struct{ mock.Mock }

func (m *MockPhotoStorage) Upload(ctx context.Context, photo ports.PhotoUpload) (ports.StoredPhoto, error) {
	args := m.Called(ctx, photo)
	return args.Get(0).(ports.StoredPhoto), args.Error(1)
}

func startPacking(t *testing.T, store *memuow.Store, waveID kernel.UUID, workflow string) commands.StartPackingResult {
	t.Helper()
	cmd, err := commands.NewStartPackingCommand(waveID, nil, "", workflow, nil)
	require.NoError(t, err)
	result, err := commands.NewStartPackingCommandHandler(packingFactory{store.Factory()}, &sequenceNumbers{}, fixedClock).
		Handle(t.Context(), cmd)
	require.NoError(t, err)
	return result
}

func TestStartPackingCommandHandler_Handle(t *testing.T) {
	t.Run("picker_packs_defaults_packer_and_inherits_priority", func(t *testing.T) {
		// Arrange
		store := memuow.NewStore()
		pickerID := kernel.NewUUID()
		w := seedCompletedWave(t, store, pickerID)

		// Act
		result := startPacking(t, store, w.ID(), "PICKER_PACKS")

		// Assert
		require.NotNil(t, result.PackerID)
		assert.Equal(t, pickerID, *result.PackerID)
		assert.Equal(t, "PACKING", result.Status)
		assert.Equal(t, 4, result.TotalItems)
		assert.Equal(t, 9, result.EstimatedDuration)
		assert.Equal(t, now.Add(packing.SLAWindow), result.SLADeadline)

		job := store.Job(result.JobID)
		require.NotNil(t, job)
		assert.Equal(t, kernel.PriorityUrgent, job.Priority())
		require.Len(t, job.Items(), 2)
		assert.Equal(t, []string{audit.PackingStarted}, store.EventTypes())
	})

	t.Run("dedicated_without_packer_is_pending", func(t *testing.T) {
		store := memuow.NewStore()
		w := seedCompletedWave(t, store, kernel.NewUUID())

		result := startPacking(t, store, w.ID(), "")

		assert.Nil(t, result.PackerID)
		assert.Equal(t, "PENDING", result.Status)
	})

	t.Run("second_job_for_wave_conflicts", func(t *testing.T) {
		store := memuow.NewStore()
		w := seedCompletedWave(t, store, kernel.NewUUID())
		startPacking(t, store, w.ID(), "")

		cmd, err := commands.NewStartPackingCommand(w.ID(), nil, "", "", nil)
		require.NoError(t, err)
		_, err = commands.NewStartPackingCommandHandler(packingFactory{store.Factory()}, &sequenceNumbers{}, fixedClock).
			Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
		assert.Len(t, store.Jobs(), 1)
	})

	t.Run("wave_not_completed", func(t *testing.T) {
		store := memuow.NewStore()
		w := seedPickingWave(t, store, kernel.NewUUID())
		cmd, err := commands.NewStartPackingCommand(w.ID(), nil, "", "", nil)
		require.NoError(t, err)

		_, err = commands.NewStartPackingCommandHandler(packingFactory{store.Factory()}, &sequenceNumbers{}, fixedClock).
			Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Empty(t, store.Jobs())
	})
}

func TestPackingFlow(t *testing.T) {
	t.Run("verify_rejects_over_pick_and_leaves_job_untouched", func(t *testing.T) {
		// Arrange
		store := memuow.NewStore()
		w := seedCompletedWave(t, store, kernel.NewUUID())
		started := startPacking(t, store, w.ID(), "PICKER_PACKS")
		b := w.Items()[1]
		cmd, err := commands.NewVerifyItemCommand(started.JobID, b.OrderID(), "B", 2, nil)
		require.NoError(t, err)

		// Act
		_, err = commands.NewVerifyItemCommandHandler(packingFactory{store.Factory()}, fixedClock).Handle(t.Context(), cmd)

		// Assert
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		job := store.Job(started.JobID)
		assert.Equal(t, packing.StatusPacking, job.Status())
		assert.Zero(t, job.PackedItems())
	})

	t.Run("complete_requires_every_item_completed", func(t *testing.T) {
		// Arrange
		store := memuow.NewStore()
		w := seedCompletedWave(t, store, kernel.NewUUID())
		started := startPacking(t, store, w.ID(), "PICKER_PACKS")
		verify := commands.NewVerifyItemCommandHandler(packingFactory{store.Factory()}, fixedClock)
		a, b := w.Items()[0], w.Items()[1]

		cmdA, err := commands.NewVerifyItemCommand(started.JobID, a.OrderID(), "A", 2, nil)
		require.NoError(t, err)
		resA, err := verify.Handle(t.Context(), cmdA)
		require.NoError(t, err)

		cmdB, err := commands.NewVerifyItemCommand(started.JobID, b.OrderID(), "B", 1, nil)
		require.NoError(t, err)
		resB, err := verify.Handle(t.Context(), cmdB)
		require.NoError(t, err)

		complete, err := commands.NewCompletePackingCommand(started.JobID, nil, nil, nil)
		require.NoError(t, err)

		// Act
		_, err = commands.NewCompletePackingCommandHandler(packingFactory{store.Factory()}, fixedClock).Handle(t.Context(), complete)

		// Assert
		assert.Equal(t, "COMPLETED", resA.Item.Status)
		assert.Equal(t, "VERIFIED", resB.Item.Status)
		assert.Equal(t, "VERIFYING", resB.JobStatus)
		assert.Equal(t, 3, resB.PackedItems)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, packing.StatusVerifying, store.Job(started.JobID).Status())
	})

	t.Run("complete_packing", func(t *testing.T) {
		// Arrange
		store := memuow.NewStore()
		orderID := kernel.NewUUID()
		job, err := packing.NewJob(packing.NewJobParams{
			ID:       kernel.NewUUID(),
			Number:   "PJ-7",
			WaveID:   kernel.NewUUID(),
			Priority: kernel.PriorityMedium,
			Workflow: packing.WorkflowDedicatedPacker,
			Items:    []packing.SourceItem{{OrderID: orderID, SKU: "A", Quantity: 2, PickedQuantity: 2}},
			Now:      now,
		})
		require.NoError(t, err)
		_, err = job.VerifyItem(orderID, "A", 2, now)
		require.NoError(t, err)
		store.SeedJobs(job)

		cmd, err := commands.NewCompletePackingCommand(job.ID(),
			[]commands.PhotoInput{{PhotoURL: "https://photos/1.jpg", PhotoType: "PACKAGE"}},
			[]commands.SealInput{{SealNumber: "S-1", SealType: "TAPE"}},
			nil,
		)
		require.NoError(t, err)
		h := commands.NewCompletePackingCommandHandler(packingFactory{store.Factory()}, fixedClock)

		// Act
		result, err := h.Handle(t.Context(), cmd)
		_, again := h.Handle(t.Context(), cmd)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "AWAITING_HANDOVER", result.Status)
		assert.Equal(t, 1, result.Photos)
		assert.Equal(t, 1, result.Seals)
		stored := store.Job(job.ID())
		assert.Len(t, stored.Photos(), 1)
		assert.Len(t, stored.Seals(), 1)
		require.ErrorIs(t, again, errs.ErrConflict)
		assert.Equal(t, []string{audit.PackingCompleted}, store.EventTypes())
	})

	t.Run("reassign_pending_job", func(t *testing.T) {
		store := memuow.NewStore()
		w := seedCompletedWave(t, store, kernel.NewUUID())
		started := startPacking(t, store, w.ID(), "")
		packer := kernel.NewUUID()
		cmd, err := commands.NewReassignPackingJobCommand(started.JobID, packer, "shift change", nil)
		require.NoError(t, err)

		result, err := commands.NewReassignPackingJobCommandHandler(packingFactory{store.Factory()}, fixedClock, discardLogger()).
			Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Nil(t, result.PreviousPacker)
		assert.Equal(t, "PACKING", result.Status)
		assert.Equal(t, packer, *store.Job(started.JobID).PackerID())
	})

	t.Run("reassign_packed_job_fails", func(t *testing.T) {
		store := memuow.NewStore()
		job := seedPackedJob(t, store)
		cmd, err := commands.NewReassignPackingJobCommand(job.ID(), kernel.NewUUID(), "", nil)
		require.NoError(t, err)

		_, err = commands.NewReassignPackingJobCommandHandler(packingFactory{store.Factory()}, fixedClock, discardLogger()).
			Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestUploadPackingPhotoCommandHandler_Handle(t *testing.T) {
	t.Run("uploads_for_existing_job", func(t *testing.T) {
		// Arrange
		store := memuow.NewStore()
		job := seedPackedJob(t, store)
		storage := new(MockPhotoStorage)
		storage.On("Upload", mock.Anything, mock.MatchedBy(func(p ports.PhotoUpload) bool {
			return p.JobID == job.ID().String() && p.PhotoType == "SEAL" && p.Size == 3
		})).Return(ports.StoredPhoto{PhotoURL: "http://minio/p.jpg", ThumbnailURL: "http://minio/p.jpg"}, nil).Once()
		cmd, err := commands.NewUploadPackingPhotoCommand(job.ID(), "SEAL", "image/jpeg", bytes.NewReader([]byte("jpg")), 3, nil)
		require.NoError(t, err)

		// Act
		result, err := commands.NewUploadPackingPhotoCommandHandler(packingFactory{store.Factory()}, storage, fixedClock).
			Handle(t.Context(), cmd)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "http://minio/p.jpg", result.PhotoURL)
		assert.Equal(t, []string{audit.PhotoUploaded}, store.EventTypes())
		storage.AssertExpectations(t)
	})

	t.Run("unknown_job_does_not_upload", func(t *testing.T) {
		store := memuow.NewStore()
		storage := new(MockPhotoStorage)
		cmd, err := commands.NewUploadPackingPhotoCommand(kernel.NewUUID(), "", "", bytes.NewReader([]byte("x")), 1, nil)
		require.NoError(t, err)

		_, err = commands.NewUploadPackingPhotoCommandHandler(packingFactory{store.Factory()}, storage, fixedClock).
			Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})

	t.Run("storage_failure", func(t *testing.T) {
		store := memuow.NewStore()
		job := seedPackedJob(t, store)
		storage := new(MockPhotoStorage)
		storage.On("Upload", mock.Anything, mock.Anything).Return(ports.StoredPhoto{}, errors.New("bucket missing")).Once()
		cmd, err := commands.NewUploadPackingPhotoCommand(job.ID(), "", "", bytes.NewReader([]byte("x")), 1, nil)
		require.NoError(t, err)

		_, err = commands.NewUploadPackingPhotoCommandHandler(packingFactory{store.Factory()}, storage, fixedClock).
			Handle(t.Context(), cmd)

		require.Error(t, err)
		assert.Empty(t, store.Events())
	})
}
