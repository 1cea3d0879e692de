// Package memuow is an in-memory ports.UnitOfWork for use-case tests.
// Aggregates are stored as their persisted state and restored on every read,
// so a handler only sees what it wrote through a repository. Rollback puts
// back the state captured at Begin.
package memuow

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/core/domain/model/picker"
	"fulfillment/internal/core/domain/model/rider"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

var ErrNoTransaction = errors.New("no active transaction")

type waveRecord struct {
	state wave.State
	items []wave.ItemState
}

type jobRecord struct {
	state  packing.State
	items  []packing.Item
	photos []packing.PhotoEvidence
	seals  []packing.Seal
}

type ledgerKey struct {
	handoverID kernel.UUID
	op         handover.SyncOperation
}

type data struct {
	orders     map[kernel.UUID]*order.Order
	pickers    []*picker.Picker
	waves      map[kernel.UUID]waveRecord
	exceptions []wave.PickingException
	jobs       map[kernel.UUID]jobRecord
	riders     map[kernel.UUID]rider.RestoreParams
	handovers  map[kernel.UUID]handover.State
	shipments  []handover.Shipment
	ledger     map[ledgerKey]handover.RetryEntry
	events     []audit.Event
}

func (d data) clone() data {
	return data{
		orders:     maps.Clone(d.orders),
		pickers:    slices.Clone(d.pickers),
		waves:      maps.Clone(d.waves),
		exceptions: slices.Clone(d.exceptions),
		jobs:       maps.Clone(d.jobs),
		riders:     maps.Clone(d.riders),
		handovers:  maps.Clone(d.handovers),
		shipments:  slices.Clone(d.shipments),
		ledger:     maps.Clone(d.ledger),
		events:     slices.Clone(d.events),
	}
}

// Store is the shared backing state. Seed it, hand Factory() to the handler
// under test and inspect it afterwards.
type Store struct {
	mu sync.Mutex
	d  data

	// CommitErr, when set, is returned by the next Commit and the
	// transaction is rolled back.
	CommitErr error
}

func NewStore() *Store {
	return &Store{d: data{
		orders:    map[kernel.UUID]*order.Order{},
		waves:     map[kernel.UUID]waveRecord{},
		jobs:      map[kernel.UUID]jobRecord{},
		riders:    map[kernel.UUID]rider.RestoreParams{},
		handovers: map[kernel.UUID]handover.State{},
		ledger:    map[ledgerKey]handover.RetryEntry{},
	}}
}

func (s *Store) Factory() Factory {
	return Factory{store: s}
}

func (s *Store) SeedOrders(orders ...*order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range orders {
		s.d.orders[o.ID()] = o
	}
}

func (s *Store) SeedPickers(pickers ...*picker.Picker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.pickers = append(s.d.pickers, pickers...)
}

func (s *Store) SeedRiders(riders ...*rider.Rider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range riders {
		s.d.riders[r.ID()] = r.State()
	}
}

func (s *Store) SeedWaves(waves ...*wave.Wave) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range waves {
		s.putWave(w)
	}
}

func (s *Store) SeedJobs(jobs ...*packing.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range jobs {
		s.putJob(j)
	}
}

func (s *Store) SeedHandovers(handovers ...*handover.Handover) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range handovers {
		s.d.handovers[h.ID()] = h.State()
	}
}

func (s *Store) Waves() []*wave.Wave {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*wave.Wave, 0, len(s.d.waves))
	for _, rec := range s.d.waves {
		w, _ := restoreWave(rec)
		out = append(out, w)
	}
	slices.SortFunc(out, func(a, b *wave.Wave) int { return compareStrings(a.Number(), b.Number()) })
	return out
}

func (s *Store) Wave(id kernel.UUID) *wave.Wave {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.d.waves[id]
	if !ok {
		return nil
	}
	w, _ := restoreWave(rec)
	return w
}

func (s *Store) Exceptions() []wave.PickingException {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.d.exceptions)
}

func (s *Store) Jobs() []*packing.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*packing.Job, 0, len(s.d.jobs))
	for _, rec := range s.d.jobs {
		j, _ := restoreJob(rec)
		out = append(out, j)
	}
	return out
}

func (s *Store) Job(id kernel.UUID) *packing.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.d.jobs[id]
	if !ok {
		return nil
	}
	j, _ := restoreJob(rec)
	return j
}

func (s *Store) Rider(id kernel.UUID) *rider.Rider {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.d.riders[id]
	if !ok {
		return nil
	}
	r, _ := rider.RestoreRider(p)
	return r
}

func (s *Store) Handovers() []*handover.Handover {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*handover.Handover, 0, len(s.d.handovers))
	for _, st := range s.d.handovers {
		h, _ := handover.RestoreHandover(st)
		out = append(out, h)
	}
	return out
}

func (s *Store) Handover(id kernel.UUID) *handover.Handover {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.d.handovers[id]
	if !ok {
		return nil
	}
	h, _ := handover.RestoreHandover(st)
	return h
}

func (s *Store) Shipments() []handover.Shipment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.d.shipments)
}

func (s *Store) Ledger() []handover.RetryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(maps.Values(s.d.ledger))
}

func (s *Store) Events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.d.events)
}

// EventTypes lists recorded event types in order.
func (s *Store) EventTypes() []string {
	events := s.Events()
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func (s *Store) putWave(w *wave.Wave) {
	items := w.Items()
	states := make([]wave.ItemState, 0, len(items))
	for _, item := range items {
		states = append(states, item.State())
	}
	s.d.waves[w.ID()] = waveRecord{state: w.State(), items: states}
}

func (s *Store) putJob(j *packing.Job) {
	items := make([]packing.Item, 0)
	for _, item := range j.Items() {
		items = append(items, *item)
	}
	s.d.jobs[j.ID()] = jobRecord{state: j.State(), items: items, photos: j.Photos(), seals: j.Seals()}
}

func restoreWave(rec waveRecord) (*wave.Wave, error) {
	items := make([]*wave.PicklistItem, 0, len(rec.items))
	for _, st := range rec.items {
		items = append(items, wave.RestorePicklistItem(st))
	}
	return wave.RestoreWave(rec.state, items)
}

func restoreJob(rec jobRecord) (*packing.Job, error) {
	items := make([]*packing.Item, 0, len(rec.items))
	for _, item := range rec.items {
		items = append(items, &item)
	}
	return packing.RestoreJob(rec.state, items, slices.Clone(rec.photos), slices.Clone(rec.seals))
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type Factory struct {
	store *Store
}

func (f Factory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork implements ports.UnitOfWork over a Store.
type UnitOfWork struct {
	store    *Store
	snapshot *data
}

func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.snapshot != nil {
		return nil
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	snap := u.store.d.clone()
	u.snapshot = &snap
	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.snapshot == nil {
		return ErrNoTransaction
	}
	if err := u.store.CommitErr; err != nil {
		u.store.CommitErr = nil
		_ = u.Rollback(ctx)
		return err
	}
	u.snapshot = nil
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if u.snapshot == nil {
		return ErrNoTransaction
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.d = *u.snapshot
	u.snapshot = nil
	return nil
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository           { return orderRepo{u.store} }
func (u *UnitOfWork) PickerRepository() ports.PickerRepository         { return pickerRepo{u.store} }
func (u *UnitOfWork) WaveRepository() ports.WaveRepository             { return waveRepo{u.store} }
func (u *UnitOfWork) PackingJobRepository() ports.PackingJobRepository { return jobRepo{u.store} }
func (u *UnitOfWork) RiderRepository() ports.RiderRepository           { return riderRepo{u.store} }
func (u *UnitOfWork) HandoverRepository() ports.HandoverRepository     { return handoverRepo{u.store} }
func (u *UnitOfWork) ShipmentRepository() ports.ShipmentRepository     { return shipmentRepo{u.store} }
func (u *UnitOfWork) RetryLedger() ports.RetryLedger                   { return ledgerRepo{u.store} }
func (u *UnitOfWork) AuditRepository() ports.AuditRepository           { return auditRepo{u.store} }

type orderRepo struct{ s *Store }

func (r orderRepo) GetByIDs(_ context.Context, ids []kernel.UUID) ([]*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*order.Order, 0, len(ids))
	for _, id := range ids {
		o, ok := r.s.d.orders[id]
		if !ok {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		out = append(out, o)
	}
	return out, nil
}

type pickerRepo struct{ s *Store }

func (r pickerRepo) ListActive(_ context.Context) ([]*picker.Picker, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*picker.Picker, 0, len(r.s.d.pickers))
	for _, p := range r.s.d.pickers {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

type waveRepo struct{ s *Store }

func (r waveRepo) Add(_ context.Context, w *wave.Wave) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.waves[w.ID()]; ok {
		return errs.NewConflictError("wave")
	}
	r.s.putWave(w)
	return nil
}

func (r waveRepo) Update(_ context.Context, w *wave.Wave) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.waves[w.ID()]; !ok {
		return errs.NewObjectNotFoundError("wave", w.ID().String())
	}
	r.s.putWave(w)
	return nil
}

func (r waveRepo) Get(_ context.Context, id kernel.UUID) (*wave.Wave, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.d.waves[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("wave", id.String())
	}
	return restoreWave(rec)
}

func (r waveRepo) ListUnassigned(_ context.Context) ([]*wave.Wave, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*wave.Wave
	for _, rec := range r.s.d.waves {
		if rec.state.Status != wave.StatusGenerated || rec.state.PickerID != nil {
			continue
		}
		w, err := restoreWave(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (r waveRepo) CountActiveByPicker(_ context.Context) (map[kernel.UUID]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[kernel.UUID]int{}
	for _, rec := range r.s.d.waves {
		if rec.state.PickerID != nil && rec.state.Status.IsActive() {
			out[*rec.state.PickerID]++
		}
	}
	return out, nil
}

func (r waveRepo) AddException(_ context.Context, e *wave.PickingException) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.exceptions = append(r.s.d.exceptions, *e)
	return nil
}

type jobRepo struct{ s *Store }

func (r jobRepo) Add(_ context.Context, j *packing.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.d.jobs {
		if rec.state.WaveID.IsEqual(j.WaveID()) {
			return errs.NewConflictErrorWithCause("packingJob", fmt.Errorf("wave %s already has a packing job", j.WaveID()))
		}
	}
	r.s.putJob(j)
	return nil
}

func (r jobRepo) Update(_ context.Context, j *packing.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.jobs[j.ID()]; !ok {
		return errs.NewObjectNotFoundError("packingJob", j.ID().String())
	}
	r.s.putJob(j)
	return nil
}

func (r jobRepo) Get(_ context.Context, id kernel.UUID) (*packing.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.d.jobs[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("packingJob", id.String())
	}
	return restoreJob(rec)
}

type riderRepo struct{ s *Store }

func (r riderRepo) Get(_ context.Context, id kernel.UUID) (*rider.Rider, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.d.riders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("rider", id.String())
	}
	return rider.RestoreRider(p)
}

func (r riderRepo) Update(_ context.Context, rd *rider.Rider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.riders[rd.ID()] = rd.State()
	return nil
}

type handoverRepo struct{ s *Store }

func (r handoverRepo) Add(_ context.Context, h *handover.Handover) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.d.handovers {
		if st.JobID.IsEqual(h.JobID()) && st.Status != handover.StatusCancelled {
			return errs.NewConflictErrorWithCause("handover", fmt.Errorf("job %s already has a handover", h.JobID()))
		}
	}
	r.s.d.handovers[h.ID()] = h.State()
	return nil
}

func (r handoverRepo) Update(_ context.Context, h *handover.Handover) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.handovers[h.ID()]; !ok {
		return errs.NewObjectNotFoundError("handover", h.ID().String())
	}
	r.s.d.handovers[h.ID()] = h.State()
	return nil
}

func (r handoverRepo) Get(_ context.Context, id kernel.UUID) (*handover.Handover, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.d.handovers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("handover", id.String())
	}
	return handover.RestoreHandover(st)
}

type shipmentRepo struct{ s *Store }

func (r shipmentRepo) Add(_ context.Context, shipment handover.Shipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.shipments = append(r.s.d.shipments, shipment)
	return nil
}

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) Get(_ context.Context, handoverID kernel.UUID, op handover.SyncOperation) (handover.RetryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.d.ledger[ledgerKey{handoverID, op}]
	if !ok {
		return handover.RetryEntry{}, errs.NewObjectNotFoundError("lmsRetry", handoverID.String())
	}
	return e, nil
}

func (r ledgerRepo) Save(_ context.Context, entry handover.RetryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.ledger[ledgerKey{entry.HandoverID, entry.Operation}] = entry
	return nil
}

func (r ledgerRepo) Delete(_ context.Context, handoverID kernel.UUID, op handover.SyncOperation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.d.ledger, ledgerKey{handoverID, op})
	return nil
}

func (r ledgerRepo) Due(_ context.Context, now time.Time, maxAttempts, limit int) ([]handover.RetryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []handover.RetryEntry
	for _, e := range r.s.d.ledger {
		if !e.NextAttemptAt.After(now) && e.Attempts < maxAttempts {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b handover.RetryEntry) int { return a.NextAttemptAt.Compare(b.NextAttemptAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Append(_ context.Context, events ...audit.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.events = append(r.s.d.events, events...)
	return nil
}
