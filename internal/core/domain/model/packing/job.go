package packing

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	SLAWindow = 2 * time.Hour

	baseDurationMinutes    = 5
	perItemDurationMinutes = 2
)

var ErrJobIsNotConstructed = errors.New("Job must be created via NewJob or RestoreJob")

// Job packs every item of one completed wave. There is at most one job per wave.
type Job struct {
	id                kernel.UUID
	number            string
	waveID            kernel.UUID
	packerID          *kernel.UUID
	status            Status
	priority          kernel.Priority
	workflow          WorkflowType
	totalItems        int
	packedItems       int
	verifiedItems     int
	slaDeadline       time.Time
	estimatedDuration int
	items             []*Item
	photos            []PhotoEvidence
	seals             []Seal
	createdAt         time.Time
	startedAt         *time.Time
	completedAt       *time.Time
	guard             guard.ConstructorGuard
}

// SourceItem is a picked line carried over from the wave.
type SourceItem struct {
	OrderID        kernel.UUID
	SKU            string
	ProductName    string
	Quantity       int
	PickedQuantity int
}

type NewJobParams struct {
	ID       kernel.UUID
	Number   string
	WaveID   kernel.UUID
	PackerID *kernel.UUID
	Priority kernel.Priority
	Workflow WorkflowType
	Items    []SourceItem
	Now      time.Time
}

// NewJob opens a job due SLAWindow from now. It starts in PACKING when a
// packer is known, PENDING otherwise.
func NewJob(p NewJobParams) (*Job, error) {
	if err := errors.Join(p.ID.Validate(), p.WaveID.Validate(), p.Priority.Validate()); err != nil {
		return nil, err
	}
	if p.Number == "" {
		return nil, errs.NewValueIsRequiredError("jobNumber")
	}
	if _, err := ParseWorkflowType(string(p.Workflow)); err != nil {
		return nil, err
	}

	j := &Job{
		id:                p.ID,
		number:            p.Number,
		waveID:            p.WaveID,
		status:            StatusPending,
		priority:          p.Priority,
		workflow:          p.Workflow,
		slaDeadline:       p.Now.Add(SLAWindow),
		estimatedDuration: EstimateDurationMinutes(len(p.Items)),
		items:             make([]*Item, 0, len(p.Items)),
		createdAt:         p.Now,
		guard:             guard.NewConstructorGuard(),
	}
	if p.PackerID != nil {
		if err := p.PackerID.Validate(); err != nil {
			return nil, err
		}
		packer := *p.PackerID
		j.packerID = &packer
		j.status = StatusPacking
		j.startedAt = &p.Now
	}

	for _, src := range p.Items {
		j.items = append(j.items, &Item{
			ID:             kernel.NewUUID(),
			JobID:          j.id,
			OrderID:        src.OrderID,
			SKU:            src.SKU,
			ProductName:    src.ProductName,
			Quantity:       src.Quantity,
			PickedQuantity: src.PickedQuantity,
			Status:         ItemStatusPending,
		})
		j.totalItems += src.Quantity
	}
	return j, nil
}

// EstimateDurationMinutes is five minutes of setup plus two per item.
func EstimateDurationMinutes(itemCount int) int {
	return max(baseDurationMinutes, baseDurationMinutes+perItemDurationMinutes*itemCount)
}

// State is the persisted form of a job header.
type State struct {
	ID                kernel.UUID
	Number            string
	WaveID            kernel.UUID
	PackerID          *kernel.UUID
	Status            Status
	Priority          kernel.Priority
	Workflow          WorkflowType
	TotalItems        int
	PackedItems       int
	VerifiedItems     int
	SLADeadline       time.Time
	EstimatedDuration int
	CreatedAt         time.Time
	StartedAt         *time.Time
	CompletedAt       *time.Time
}

func RestoreJob(s State, items []*Item, photos []PhotoEvidence, seals []Seal) (*Job, error) {
	if err := errors.Join(s.ID.Validate(), s.WaveID.Validate(), s.Status.Validate(), s.Priority.Validate()); err != nil {
		return nil, err
	}
	return &Job{
		id:                s.ID,
		number:            s.Number,
		waveID:            s.WaveID,
		packerID:          s.PackerID,
		status:            s.Status,
		priority:          s.Priority,
		workflow:          s.Workflow,
		totalItems:        s.TotalItems,
		packedItems:       s.PackedItems,
		verifiedItems:     s.VerifiedItems,
		slaDeadline:       s.SLADeadline,
		estimatedDuration: s.EstimatedDuration,
		items:             items,
		photos:            photos,
		seals:             seals,
		createdAt:         s.CreatedAt,
		startedAt:         s.StartedAt,
		completedAt:       s.CompletedAt,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (j *Job) State() State {
	return State{
		ID:                j.id,
		Number:            j.number,
		WaveID:            j.waveID,
		PackerID:          j.packerID,
		Status:            j.status,
		Priority:          j.priority,
		Workflow:          j.workflow,
		TotalItems:        j.totalItems,
		PackedItems:       j.packedItems,
		VerifiedItems:     j.verifiedItems,
		SLADeadline:       j.slaDeadline,
		EstimatedDuration: j.estimatedDuration,
		CreatedAt:         j.createdAt,
		StartedAt:         j.startedAt,
		CompletedAt:       j.completedAt,
	}
}

func (j *Job) Validate() error {
	if j == nil {
		return ErrJobIsNotConstructed
	}
	return j.guard.Validate(ErrJobIsNotConstructed)
}

func (j *Job) ID() kernel.UUID           { return j.id }
func (j *Job) Number() string            { return j.number }
func (j *Job) WaveID() kernel.UUID       { return j.waveID }
func (j *Job) PackerID() *kernel.UUID    { return j.packerID }
func (j *Job) Status() Status            { return j.status }
func (j *Job) Priority() kernel.Priority { return j.priority }
func (j *Job) Workflow() WorkflowType    { return j.workflow }
func (j *Job) TotalItems() int           { return j.totalItems }
func (j *Job) PackedItems() int          { return j.packedItems }
func (j *Job) VerifiedItems() int        { return j.verifiedItems }
func (j *Job) SLADeadline() time.Time    { return j.slaDeadline }
func (j *Job) EstimatedDuration() int    { return j.estimatedDuration }
func (j *Job) CompletedAt() *time.Time   { return j.completedAt }
func (j *Job) Items() []*Item            { return slices.Clone(j.items) }
func (j *Job) Photos() []PhotoEvidence   { return slices.Clone(j.photos) }
func (j *Job) Seals() []Seal             { return slices.Clone(j.seals) }

// VerifyItem records the packed quantity of the (orderID, sku) line. A
// quantity above what was picked is rejected without touching the job.
func (j *Job) VerifyItem(orderID kernel.UUID, sku string, packedQuantity int, now time.Time) (*Item, error) {
	if !j.status.IsOpen() {
		return nil, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("job is %s, items can no longer be verified", j.status))
	}

	idx := slices.IndexFunc(j.items, func(i *Item) bool { return i.OrderID.IsEqual(orderID) && i.SKU == sku })
	if idx < 0 {
		return nil, errs.NewObjectNotFoundError("packingItem", orderID.String()+"/"+sku)
	}
	item := j.items[idx]

	if packedQuantity < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("packedQuantity", fmt.Errorf("%d is negative", packedQuantity))
	}
	if packedQuantity > item.PickedQuantity {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"packedQuantity",
			fmt.Errorf("%d exceeds picked quantity %d", packedQuantity, item.PickedQuantity),
		)
	}

	item.PackedQuantity = packedQuantity
	item.VerifiedQuantity = packedQuantity
	item.VerifiedAt = &now
	if packedQuantity == item.Quantity {
		item.Status = ItemStatusCompleted
	} else {
		item.Status = ItemStatusVerified
	}

	j.status = StatusVerifying
	if j.startedAt == nil {
		j.startedAt = &now
	}
	j.recount()
	return item, nil
}

// Complete seals the job: every item must be COMPLETED. Evidence and seals
// are attached and the job waits for a rider.
func (j *Job) Complete(photos []PhotoEvidence, seals []Seal, now time.Time) error {
	if j.status.IsPacked() {
		return errs.NewConflictErrorWithCause("packingJob", fmt.Errorf("job %s is already %s", j.number, j.status))
	}
	if !j.status.IsOpen() {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("job is %s", j.status))
	}
	for _, item := range j.items {
		if item.Status != ItemStatusCompleted {
			return errs.NewValueIsInvalidErrorWithCause(
				"packingItem",
				fmt.Errorf("item %s of order %s is %s, expected COMPLETED", item.SKU, item.OrderID, item.Status),
			)
		}
	}

	for _, p := range photos {
		p.ID = kernel.NewUUID()
		p.JobID = j.id
		if p.CapturedAt.IsZero() {
			p.CapturedAt = now
		}
		if p.VerificationStatus == "" {
			p.VerificationStatus = VerificationPending
		}
		j.photos = append(j.photos, p)
	}
	for _, s := range seals {
		s.ID = kernel.NewUUID()
		s.JobID = j.id
		if s.AppliedAt.IsZero() {
			s.AppliedAt = now
		}
		if s.VerificationStatus == "" {
			s.VerificationStatus = VerificationPending
		}
		j.seals = append(j.seals, s)
	}

	j.status = StatusAwaitingHandover
	j.completedAt = &now
	j.packedItems = j.totalItems
	j.verifiedItems = j.totalItems
	return nil
}

// Reassign swaps the packer of a job that is not packed yet and returns the
// previous packer.
func (j *Job) Reassign(newPackerID kernel.UUID, now time.Time) (*kernel.UUID, error) {
	if err := newPackerID.Validate(); err != nil {
		return nil, err
	}
	if !j.status.IsOpen() {
		return nil, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("job is %s and cannot be reassigned", j.status))
	}

	previous := j.packerID
	j.packerID = &newPackerID
	if j.status == StatusPending {
		j.status = StatusPacking
		j.startedAt = &now
	}
	return previous, nil
}

// AssignHandover moves an AWAITING_HANDOVER job to HANDOVER_ASSIGNED.
func (j *Job) AssignHandover() error {
	if j.status != StatusAwaitingHandover {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("job is %s, expected AWAITING_HANDOVER", j.status))
	}
	j.status = StatusHandoverAssigned
	return nil
}

// ReleaseHandover puts the job back in the handover queue after its handover
// was cancelled.
func (j *Job) ReleaseHandover() error {
	if j.status != StatusHandoverAssigned {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("job is %s, expected HANDOVER_ASSIGNED", j.status))
	}
	j.status = StatusAwaitingHandover
	return nil
}

// MarkDelivered closes the job once its handover is delivered.
func (j *Job) MarkDelivered() error {
	if j.status != StatusHandoverAssigned {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("job is %s, expected HANDOVER_ASSIGNED", j.status))
	}
	j.status = StatusCompleted
	return nil
}

func (j *Job) recount() {
	j.packedItems, j.verifiedItems = 0, 0
	for _, item := range j.items {
		j.packedItems += item.PackedQuantity
		j.verifiedItems += item.VerifiedQuantity
	}
}
