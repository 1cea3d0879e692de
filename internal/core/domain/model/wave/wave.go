package wave

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrWaveIsNotConstructed = errors.New("Wave must be created via NewWave or RestoreWave")

// Options are the picking disciplines requested at generation time.
type Options struct {
	RouteOptimization bool
	FEFORequired      bool
	TagsAndBags       bool
}

// Wave is a batch of orders picked together in one pass. It owns its
// picklist items; all item transitions go through the wave so that the
// auto-complete rule is enforced in one place.
type Wave struct {
	id                 kernel.UUID
	number             string
	status             Status
	priority           kernel.Priority
	pickerID           *kernel.UUID
	totalOrders        int
	totalItems         int
	slaDeadline        time.Time
	options            Options
	items              []*PicklistItem
	createdAt          time.Time
	assignedAt         *time.Time
	startedAt          *time.Time
	completedAt        *time.Time
	cancelledAt        *time.Time
	cancellationReason string
	guard              guard.ConstructorGuard
}

type NewWaveParams struct {
	ID          kernel.UUID
	Number      string
	Priority    kernel.Priority
	Options     Options
	TotalOrders int
	Items       []*PicklistItem
	SLADeadline time.Time
	CreatedAt   time.Time
}

// NewWave creates a GENERATED wave. totalItems is the sum of item quantities.
func NewWave(p NewWaveParams) (*Wave, error) {
	if err := errors.Join(p.ID.Validate(), p.Priority.Validate()); err != nil {
		return nil, err
	}
	if p.Number == "" {
		return nil, errs.NewValueIsRequiredError("waveNumber")
	}
	if p.TotalOrders <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("totalOrders", fmt.Errorf("%d is not greater than 0", p.TotalOrders))
	}

	w := &Wave{
		id:          p.ID,
		number:      p.Number,
		status:      StatusGenerated,
		priority:    p.Priority,
		totalOrders: p.TotalOrders,
		slaDeadline: p.SLADeadline,
		options:     p.Options,
		items:       make([]*PicklistItem, 0, len(p.Items)),
		createdAt:   p.CreatedAt,
		guard:       guard.NewConstructorGuard(),
	}
	for _, item := range p.Items {
		item.waveID = w.id
		w.items = append(w.items, item)
		w.totalItems += item.quantity
	}
	return w, nil
}

// State is the persisted form of a wave header.
type State struct {
	ID                 kernel.UUID
	Number             string
	Status             Status
	Priority           kernel.Priority
	PickerID           *kernel.UUID
	TotalOrders        int
	TotalItems         int
	SLADeadline        time.Time
	Options            Options
	CreatedAt          time.Time
	AssignedAt         *time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason string
}

func RestoreWave(s State, items []*PicklistItem) (*Wave, error) {
	if err := errors.Join(s.ID.Validate(), s.Status.Validate(), s.Priority.Validate()); err != nil {
		return nil, err
	}
	return &Wave{
		id:                 s.ID,
		number:             s.Number,
		status:             s.Status,
		priority:           s.Priority,
		pickerID:           s.PickerID,
		totalOrders:        s.TotalOrders,
		totalItems:         s.TotalItems,
		slaDeadline:        s.SLADeadline,
		options:            s.Options,
		items:              items,
		createdAt:          s.CreatedAt,
		assignedAt:         s.AssignedAt,
		startedAt:          s.StartedAt,
		completedAt:        s.CompletedAt,
		cancelledAt:        s.CancelledAt,
		cancellationReason: s.CancellationReason,
		guard:              guard.NewConstructorGuard(),
	}, nil
}

func (w *Wave) State() State {
	return State{
		ID:                 w.id,
		Number:             w.number,
		Status:             w.status,
		Priority:           w.priority,
		PickerID:           w.pickerID,
		TotalOrders:        w.totalOrders,
		TotalItems:         w.totalItems,
		SLADeadline:        w.slaDeadline,
		Options:            w.options,
		CreatedAt:          w.createdAt,
		AssignedAt:         w.assignedAt,
		StartedAt:          w.startedAt,
		CompletedAt:        w.completedAt,
		CancelledAt:        w.cancelledAt,
		CancellationReason: w.cancellationReason,
	}
}

func (w *Wave) Validate() error {
	if w == nil {
		return ErrWaveIsNotConstructed
	}
	return w.guard.Validate(ErrWaveIsNotConstructed)
}

func (w *Wave) ID() kernel.UUID           { return w.id }
func (w *Wave) Number() string            { return w.number }
func (w *Wave) Status() Status            { return w.status }
func (w *Wave) Priority() kernel.Priority { return w.priority }
func (w *Wave) PickerID() *kernel.UUID    { return w.pickerID }
func (w *Wave) TotalOrders() int          { return w.totalOrders }
func (w *Wave) TotalItems() int           { return w.totalItems }
func (w *Wave) SLADeadline() time.Time    { return w.slaDeadline }
func (w *Wave) Options() Options          { return w.options }
func (w *Wave) CompletedAt() *time.Time   { return w.completedAt }

// Items returns the picklist ordered by scan sequence.
func (w *Wave) Items() []*PicklistItem {
	out := slices.Clone(w.items)
	slices.SortFunc(out, func(a, b *PicklistItem) int { return a.scanSequence - b.scanSequence })
	return out
}

// OpenItems counts items still PENDING or PICKING.
func (w *Wave) OpenItems() int {
	n := 0
	for _, item := range w.items {
		if item.status.IsOpen() {
			n++
		}
	}
	return n
}

func (w *Wave) PickedQuantity() int {
	total := 0
	for _, item := range w.items {
		total += item.pickedQuantity
	}
	return total
}

// Accuracy is picked units over requested units in percent, rounded to two
// decimals. An empty wave reports zero.
func (w *Wave) Accuracy() decimal.Decimal {
	if w.totalItems == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(w.PickedQuantity())).
		Div(decimal.NewFromInt(int64(w.totalItems))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// AssignTo hands a GENERATED wave to a picker.
func (w *Wave) AssignTo(pickerID kernel.UUID, now time.Time) error {
	if err := pickerID.Validate(); err != nil {
		return err
	}
	next, err := w.status.transition(StatusAssigned, StatusGenerated)
	if err != nil {
		return err
	}
	w.status = next
	w.pickerID = &pickerID
	w.assignedAt = &now
	return nil
}

func (w *Wave) StartPicking(pickerID kernel.UUID, now time.Time) error {
	if err := w.ensurePicker(pickerID); err != nil {
		return err
	}
	next, err := w.status.transition(StatusPicking, StatusAssigned)
	if err != nil {
		return err
	}
	w.status = next
	w.startedAt = &now
	return nil
}

// ScanResult describes the effect of a scan.
type ScanResult struct {
	Item *PicklistItem
	// WaveCompleted is true when this scan closed the last open item.
	WaveCompleted bool
}

// Scan records a barcode scan against the open item at (sku, binLocation).
// The picked quantity is clamped to the requested quantity. When no open
// items remain the wave completes.
func (w *Wave) Scan(pickerID kernel.UUID, sku, binLocation string, quantity int, now time.Time) (ScanResult, error) {
	if quantity <= 0 {
		return ScanResult{}, errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	if err := w.ensurePicking(pickerID); err != nil {
		return ScanResult{}, err
	}

	idx := slices.IndexFunc(w.items, func(i *PicklistItem) bool {
		return i.matches(sku, binLocation) && i.status.IsOpen()
	})
	if idx < 0 {
		return ScanResult{}, errs.NewObjectNotFoundError("picklistItem", sku+"@"+binLocation)
	}

	item := w.items[idx]
	item.scan(quantity, now)

	result := ScanResult{Item: item}
	if w.OpenItems() == 0 {
		w.complete(now)
		result.WaveCompleted = true
	}
	return result, nil
}

// PartialPick is a short pick reported by the picker.
type PartialPick struct {
	SKU            string
	BinLocation    string
	Reason         PartialReason
	PickedQuantity int
	Notes          string
	PhotoURL       string
}

// ReportPartialPick marks the line PARTIAL and, for OOS, DAMAGED and EXPIRY,
// returns the exception to be recorded. It never completes the wave.
func (w *Wave) ReportPartialPick(pickerID kernel.UUID, p PartialPick, now time.Time) (*PicklistItem, *PickingException, error) {
	if err := w.ensurePicking(pickerID); err != nil {
		return nil, nil, err
	}
	if _, err := ParsePartialReason(string(p.Reason)); err != nil {
		return nil, nil, err
	}

	idx := slices.IndexFunc(w.items, func(i *PicklistItem) bool {
		return i.matches(p.SKU, p.BinLocation) && i.status.IsOpen()
	})
	if idx < 0 {
		idx = slices.IndexFunc(w.items, func(i *PicklistItem) bool { return i.matches(p.SKU, p.BinLocation) })
	}
	if idx < 0 {
		return nil, nil, errs.NewObjectNotFoundError("picklistItem", p.SKU+"@"+p.BinLocation)
	}

	item := w.items[idx]
	if p.PickedQuantity < 0 || p.PickedQuantity > item.quantity {
		return nil, nil, errs.NewValueIsOutOfRangeError("pickedQuantity", p.PickedQuantity, 0, item.quantity)
	}
	item.markPartial(p.PickedQuantity, p.Reason, p.Notes, p.PhotoURL, now)

	if !p.Reason.RaisesException() {
		return item, nil, nil
	}
	return item, newPickingException(w, item, p.Reason, pickerID, p.Notes, p.PhotoURL, now), nil
}

// CompletePicking closes the wave by hand. It is a no-op returning
// alreadyCompleted=true when a scan has already completed the wave.
func (w *Wave) CompletePicking(pickerID kernel.UUID, now time.Time) (alreadyCompleted bool, err error) {
	if err = w.ensurePicker(pickerID); err != nil {
		return false, err
	}
	if w.status == StatusCompleted {
		return true, nil
	}
	if w.status != StatusPicking {
		return false, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("wave is %s, expected PICKING", w.status))
	}
	if open := w.OpenItems(); open > 0 {
		return false, errs.NewValueIsInvalidErrorWithCause("wave", fmt.Errorf("%d items are still pending", open))
	}
	w.complete(now)
	return false, nil
}

// Cancel moves any non-terminal wave to CANCELLED.
func (w *Wave) Cancel(reason string, now time.Time) error {
	next, err := w.status.transition(StatusCancelled, StatusGenerated, StatusAssigned, StatusPicking)
	if err != nil {
		return err
	}
	w.status = next
	w.cancelledAt = &now
	w.cancellationReason = reason
	return nil
}

func (w *Wave) complete(now time.Time) {
	w.status = StatusCompleted
	w.completedAt = &now
}

func (w *Wave) ensurePicker(pickerID kernel.UUID) error {
	if w.pickerID == nil || !w.pickerID.IsEqual(pickerID) {
		return errs.NewForbiddenErrorWithCause("picker", fmt.Errorf("wave %s is not assigned to %s", w.number, pickerID))
	}
	return nil
}

func (w *Wave) ensurePicking(pickerID kernel.UUID) error {
	if err := w.ensurePicker(pickerID); err != nil {
		return err
	}
	if w.status != StatusPicking {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("wave is %s, expected PICKING", w.status))
	}
	return nil
}
