package lmssync_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/core/application/lmssync"
	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/testutil/memuow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type MockLMSClient struct{ mock.Mock }

func (m *MockLMSClient) CreateShipment(ctx context.Context, req ports.ShipmentRequest) (ports.ShipmentReceipt, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.ShipmentReceipt), args.Error(1)
}

func (m *MockLMSClient) UpdateShipmentStatus(ctx context.Context, trackingNumber string, update ports.ShipmentStatusUpdate) error {
	args := m.Called(ctx, trackingNumber, update)
	return args.Error(0)
}

func (m *MockLMSClient) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type uowFactory struct{ f memuow.Factory }

func (u uowFactory) Create() lmssync.UoW { return u.f.Create() }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedHandover(t *testing.T, store *memuow.Store) *handover.Handover {
	t.Helper()
	job, err := packing.NewJob(packing.NewJobParams{
		ID:       kernel.NewUUID(),
		Number:   "PJ-1",
		WaveID:   kernel.NewUUID(),
		Priority: kernel.PriorityHigh,
		Workflow: packing.WorkflowDedicatedPacker,
		Items: []packing.SourceItem{
			{OrderID: kernel.NewUUID(), SKU: "A", Quantity: 2, PickedQuantity: 2},
		},
		Now: now,
	})
	require.NoError(t, err)
	h, err := handover.NewHandover(handover.NewHandoverParams{
		ID:         kernel.NewUUID(),
		Number:     "HO-1",
		JobID:      job.ID(),
		RiderID:    kernel.NewUUID(),
		AssignedAt: now,
	})
	require.NoError(t, err)
	store.SeedJobs(job)
	store.SeedHandovers(h)
	return h
}

func newEngine(store *memuow.Store, client ports.LMSClient) *lmssync.Engine {
	return lmssync.NewEngine(uowFactory{store.Factory()}, client, clock.Fixed{At: now}, discardLogger(), lmssync.Config{
		RetryBaseDelay: time.Minute,
		MaxAttempts:    3,
	})
}

func TestEngine_CreateShipment_Success(t *testing.T) {
	ctx := t.Context()
	store := memuow.NewStore()
	h := seedHandover(t, store)
	client := new(MockLMSClient)

	client.On("CreateShipment", ctx, mock.MatchedBy(func(req ports.ShipmentRequest) bool {
		return req.TrackingNumber == "TRK-"+h.ID().String()+"-1772359200000" &&
			req.ManifestNumber == "MF-"+h.ID().String()+"-1772359200000" &&
			req.JobNumber == "PJ-1" && req.TotalItems == 2
	})).Return(ports.ShipmentReceipt{LMSReference: "LMS-9", Status: "CREATED", Payload: []byte(`{"id":"LMS-9"}`)}, nil).Once()

	out, err := newEngine(store, client).CreateShipment(ctx, h.ID())

	require.NoError(t, err)
	assert.True(t, out.Synced)
	assert.Equal(t, "TRK-"+h.ID().String()+"-1772359200000", out.TrackingNumber)

	stored := store.Handover(h.ID())
	assert.Equal(t, handover.SyncSynced, stored.SyncStatus())
	assert.Equal(t, out.TrackingNumber, stored.TrackingNumber())
	require.Len(t, store.Shipments(), 1)
	assert.Equal(t, "LMS-9", store.Shipments()[0].LMSReference)
	assert.Empty(t, store.Ledger())
	assert.Equal(t, []string{audit.LMSSyncSucceeded}, store.EventTypes())
	client.AssertExpectations(t)
}

func TestEngine_CreateShipment_FailureCountsOneAttemptPerCall(t *testing.T) {
	ctx := t.Context()
	store := memuow.NewStore()
	h := seedHandover(t, store)
	client := new(MockLMSClient)
	client.On("CreateShipment", ctx, mock.Anything).
		Return(ports.ShipmentReceipt{}, errors.New("lms responded 500")).Once()

	out, err := newEngine(store, client).CreateShipment(ctx, h.ID())

	require.NoError(t, err)
	assert.False(t, out.Synced)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, "lms responded 500", out.Error)

	stored := store.Handover(h.ID())
	assert.Equal(t, handover.SyncFailed, stored.SyncStatus())
	assert.Equal(t, 1, stored.SyncAttempts())
	assert.Equal(t, "lms responded 500", stored.LastSyncError())
	assert.Empty(t, stored.TrackingNumber())

	ledger := store.Ledger()
	require.Len(t, ledger, 1)
	assert.Equal(t, handover.OperationCreateShipment, ledger[0].Operation)
	assert.Equal(t, 1, ledger[0].Attempts)
	assert.Equal(t, now.Add(time.Minute), ledger[0].NextAttemptAt)
	assert.Empty(t, store.Shipments())
}

func TestEngine_UpdateShipmentStatus_SkipsWithoutTrackingNumber(t *testing.T) {
	store := memuow.NewStore()
	h := seedHandover(t, store)
	client := new(MockLMSClient)

	out, err := newEngine(store, client).UpdateShipmentStatus(t.Context(), h.ID(), handover.StatusConfirmed, "")

	require.NoError(t, err)
	assert.True(t, out.Skipped)
	client.AssertNotCalled(t, "UpdateShipmentStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_UpdateShipmentStatus_FailureIsQueued(t *testing.T) {
	ctx := t.Context()
	store := memuow.NewStore()
	h := seedHandover(t, store)
	h.MarkSynced("TRK-1", "MF-1", now)
	store.SeedHandovers(h)
	client := new(MockLMSClient)
	client.On("UpdateShipmentStatus", ctx, "TRK-1", mock.MatchedBy(func(u ports.ShipmentStatusUpdate) bool {
		return u.Status == "IN_TRANSIT"
	})).Return(errors.New("timeout")).Once()

	out, err := newEngine(store, client).UpdateShipmentStatus(ctx, h.ID(), handover.StatusInTransit, "")

	require.NoError(t, err)
	assert.False(t, out.Synced)
	ledger := store.Ledger()
	require.Len(t, ledger, 1)
	assert.Equal(t, handover.OperationUpdateStatus, ledger[0].Operation)
	assert.Equal(t, "IN_TRANSIT", ledger[0].TargetStatus)
	assert.Equal(t, handover.SyncSynced, store.Handover(h.ID()).SyncStatus())
}

func TestEngine_RetryDue(t *testing.T) {
	t.Run("replays_due_create_and_clears_ledger", func(t *testing.T) {
		ctx := t.Context()
		store := memuow.NewStore()
		h := seedHandover(t, store)
		client := new(MockLMSClient)
		client.On("CreateShipment", ctx, mock.Anything).
			Return(ports.ShipmentReceipt{}, errors.New("down")).Once()
		client.On("CreateShipment", ctx, mock.Anything).
			Return(ports.ShipmentReceipt{LMSReference: "LMS-1"}, nil).Once()

		_, err := newEngine(store, client).CreateShipment(ctx, h.ID())
		require.NoError(t, err)

		later := lmssync.NewEngine(uowFactory{store.Factory()}, client, clock.Fixed{At: now.Add(2 * time.Minute)},
			discardLogger(), lmssync.Config{RetryBaseDelay: time.Minute, MaxAttempts: 3})
		report, err := later.RetryDue(ctx)

		require.NoError(t, err)
		assert.Equal(t, lmssync.RetryReport{Attempted: 1, Succeeded: 1}, report)
		assert.Empty(t, store.Ledger())
		require.Len(t, store.Shipments(), 1)
		assert.Equal(t, 1, store.Shipments()[0].RetryCount)
		assert.Equal(t, handover.SyncSynced, store.Handover(h.ID()).SyncStatus())
	})

	t.Run("not_yet_due_is_left_alone", func(t *testing.T) {
		ctx := t.Context()
		store := memuow.NewStore()
		h := seedHandover(t, store)
		client := new(MockLMSClient)
		client.On("CreateShipment", ctx, mock.Anything).
			Return(ports.ShipmentReceipt{}, errors.New("down")).Once()

		engine := newEngine(store, client)
		_, err := engine.CreateShipment(ctx, h.ID())
		require.NoError(t, err)

		report, err := engine.RetryDue(ctx)

		require.NoError(t, err)
		assert.Zero(t, report.Attempted)
		assert.Len(t, store.Ledger(), 1)
	})

	t.Run("cancelled_handover_is_dropped", func(t *testing.T) {
		ctx := t.Context()
		store := memuow.NewStore()
		h := seedHandover(t, store)
		client := new(MockLMSClient)
		client.On("CreateShipment", ctx, mock.Anything).
			Return(ports.ShipmentReceipt{}, errors.New("down")).Once()

		_, err := newEngine(store, client).CreateShipment(ctx, h.ID())
		require.NoError(t, err)

		cancelled := store.Handover(h.ID())
		require.NoError(t, cancelled.TransitionTo(handover.StatusCancelled, handover.StatusDetails{}, now))
		store.SeedHandovers(cancelled)

		later := lmssync.NewEngine(uowFactory{store.Factory()}, client, clock.Fixed{At: now.Add(time.Hour)},
			discardLogger(), lmssync.Config{RetryBaseDelay: time.Minute, MaxAttempts: 3})
		report, err := later.RetryDue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Dropped)
		assert.Empty(t, store.Ledger())
		client.AssertNumberOfCalls(t, "CreateShipment", 1)
	})
}

func TestLedgerDelay(t *testing.T) {
	assert.Equal(t, time.Minute, lmssync.LedgerDelay(time.Minute, 1))
	assert.Equal(t, 4*time.Minute, lmssync.LedgerDelay(time.Minute, 3))
	assert.Equal(t, time.Hour, lmssync.LedgerDelay(time.Minute, 20))
	assert.Equal(t, time.Minute, lmssync.LedgerDelay(time.Minute, 0))
}
