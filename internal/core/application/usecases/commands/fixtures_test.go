package commands_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"fulfillment/internal/core/application/lmssync"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/core/domain/model/picker"
	"fulfillment/internal/core/domain/model/rider"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/testutil/memuow"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

var fixedClock = clock.Fixed{At: now}

type pickingFactory struct{ f memuow.Factory }

func (p pickingFactory) Create() commands.PickingUoW { return p.f.Create() }

type packingFactory struct{ f memuow.Factory }

func (p packingFactory) Create() commands.PackingUoW { return p.f.Create() }

type handoverFactory struct{ f memuow.Factory }

func (h handoverFactory) Create() commands.HandoverUoW { return h.f.Create() }

type sequenceNumbers struct{ n int }

func (s *sequenceNumbers) Next(prefix string) string {
	s.n++
	return fmt.Sprintf("%s-%d", prefix, s.n)
}

type MockShipmentSyncer struct{ mock.Mock }

func (m *MockShipmentSyncer) CreateShipment(ctx context.Context, handoverID kernel.UUID) (lmssync.Outcome, error) {
	args := m.Called(ctx, handoverID)
	return args.Get(0).(lmssync.Outcome), args.Error(1)
}

func (m *MockShipmentSyncer) UpdateShipmentStatus(
	ctx context.Context,
	handoverID kernel.UUID,
	status handover.Status,
	reason string,
) (lmssync.Outcome, error) {
	args := m.Called(ctx, handoverID, status, reason)
	return args.Get(0).(lmssync.Outcome), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newGenerator() services.WaveGenerator {
	return services.NewWaveGenerator(&sequenceNumbers{}, rand.New(rand.NewPCG(7, 11)))
}

func seedOrder(t *testing.T, store *memuow.Store, cart string) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(kernel.NewUUID(), "ORD-"+kernel.NewUUID().String()[:8], []byte(cart), "paid")
	require.NoError(t, err)
	store.SeedOrders(o)
	return o
}

func seedPicker(t *testing.T, store *memuow.Store, name string) *picker.Picker {
	t.Helper()
	p, err := picker.RestorePicker(kernel.NewUUID(), name, true, picker.AvailabilityAvailable, []string{picker.PermissionExecute})
	require.NoError(t, err)
	store.SeedPickers(p)
	return p
}

func seedRider(t *testing.T, store *memuow.Store) *rider.Rider {
	t.Helper()
	r, err := rider.NewRider(kernel.NewUUID(), "Rudi", "+62811", "motorbike")
	require.NoError(t, err)
	store.SeedRiders(r)
	return r
}

func newItem(t *testing.T, sku, bin string, qty, seq int) *wave.PicklistItem {
	t.Helper()
	item, err := wave.NewPicklistItem(wave.NewItemParams{
		OrderID:      kernel.NewUUID(),
		SKU:          sku,
		ProductName:  sku + " product",
		BinLocation:  bin,
		Quantity:     qty,
		ScanSequence: seq,
	})
	require.NoError(t, err)
	return item
}

// seedPickingWave stores a wave in PICKING for pickerID with lines A@A-1 x2
// and B@B-1 x1.
func seedPickingWave(t *testing.T, store *memuow.Store, pickerID kernel.UUID) *wave.Wave {
	t.Helper()
	w, err := wave.NewWave(wave.NewWaveParams{
		ID:          kernel.NewUUID(),
		Number:      "WV-PICK",
		Priority:    kernel.PriorityHigh,
		TotalOrders: 2,
		Items:       []*wave.PicklistItem{newItem(t, "A", "A-1", 2, 1), newItem(t, "B", "B-1", 1, 2)},
		SLADeadline: now.Add(24 * time.Hour),
		CreatedAt:   now,
	})
	require.NoError(t, err)
	require.NoError(t, w.AssignTo(pickerID, now))
	require.NoError(t, w.StartPicking(pickerID, now))
	store.SeedWaves(w)
	return w
}

// seedCompletedWave stores a picked-out wave; B was picked short (1 of 2).
func seedCompletedWave(t *testing.T, store *memuow.Store, pickerID kernel.UUID) *wave.Wave {
	t.Helper()
	w, err := wave.NewWave(wave.NewWaveParams{
		ID:          kernel.NewUUID(),
		Number:      "WV-DONE",
		Priority:    kernel.PriorityUrgent,
		TotalOrders: 1,
		Items:       []*wave.PicklistItem{newItem(t, "A", "A-1", 2, 1), newItem(t, "B", "B-1", 2, 2)},
		SLADeadline: now.Add(24 * time.Hour),
		CreatedAt:   now,
	})
	require.NoError(t, err)
	require.NoError(t, w.AssignTo(pickerID, now))
	require.NoError(t, w.StartPicking(pickerID, now))
	_, err = w.Scan(pickerID, "A", "A-1", 2, now)
	require.NoError(t, err)
	_, err = w.Scan(pickerID, "B", "B-1", 1, now)
	require.NoError(t, err)
	require.Equal(t, wave.StatusCompleted, w.Status())
	store.SeedWaves(w)
	return w
}

// seedPackedJob stores a job in AWAITING_HANDOVER.
func seedPackedJob(t *testing.T, store *memuow.Store) *packing.Job {
	t.Helper()
	orderID := kernel.NewUUID()
	packer := kernel.NewUUID()
	job, err := packing.NewJob(packing.NewJobParams{
		ID:       kernel.NewUUID(),
		Number:   "PJ-READY",
		WaveID:   kernel.NewUUID(),
		PackerID: &packer,
		Priority: kernel.PriorityMedium,
		Workflow: packing.WorkflowDedicatedPacker,
		Items:    []packing.SourceItem{{OrderID: orderID, SKU: "A", Quantity: 1, PickedQuantity: 1}},
		Now:      now,
	})
	require.NoError(t, err)
	_, err = job.VerifyItem(orderID, "A", 1, now)
	require.NoError(t, err)
	require.NoError(t, job.Complete(nil, nil, now))
	store.SeedJobs(job)
	return job
}
