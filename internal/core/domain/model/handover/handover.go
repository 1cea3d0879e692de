package handover

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const DefaultSLAWindow = 60 * time.Minute

var ErrHandoverIsNotConstructed = errors.New("Handover must be created via NewHandover or RestoreHandover")

// Handover transfers a packed job to a rider. There is at most one live
// (non-cancelled) handover per job.
type Handover struct {
	id                  kernel.UUID
	number              string
	jobID               kernel.UUID
	riderID             kernel.UUID
	status              Status
	specialInstructions string
	confirmationCode    string
	assignedAt          time.Time
	confirmedAt         *time.Time
	pickedUpAt          *time.Time
	deliveredAt         *time.Time
	cancelledAt         *time.Time
	cancellationReason  string
	slaDeadline         time.Time
	syncStatus          SyncStatus
	syncAttempts        int
	lastSyncError       string
	syncedAt            *time.Time
	trackingNumber      string
	manifestNumber      string
	guard               guard.ConstructorGuard
}

type NewHandoverParams struct {
	ID                  kernel.UUID
	Number              string
	JobID               kernel.UUID
	RiderID             kernel.UUID
	SpecialInstructions string
	AssignedAt          time.Time
	SLAWindow           time.Duration
}

func NewHandover(p NewHandoverParams) (*Handover, error) {
	if err := errors.Join(p.ID.Validate(), p.JobID.Validate(), p.RiderID.Validate()); err != nil {
		return nil, err
	}
	if p.Number == "" {
		return nil, errs.NewValueIsRequiredError("handoverNumber")
	}
	window := p.SLAWindow
	if window <= 0 {
		window = DefaultSLAWindow
	}
	return &Handover{
		id:                  p.ID,
		number:              p.Number,
		jobID:               p.JobID,
		riderID:             p.RiderID,
		status:              StatusAssigned,
		specialInstructions: p.SpecialInstructions,
		assignedAt:          p.AssignedAt,
		slaDeadline:         p.AssignedAt.Add(window),
		syncStatus:          SyncPending,
		guard:               guard.NewConstructorGuard(),
	}, nil
}

// State is the persisted form of a handover.
type State struct {
	ID                  kernel.UUID
	Number              string
	JobID               kernel.UUID
	RiderID             kernel.UUID
	Status              Status
	SpecialInstructions string
	ConfirmationCode    string
	AssignedAt          time.Time
	ConfirmedAt         *time.Time
	PickedUpAt          *time.Time
	DeliveredAt         *time.Time
	CancelledAt         *time.Time
	CancellationReason  string
	SLADeadline         time.Time
	SyncStatus          SyncStatus
	SyncAttempts        int
	LastSyncError       string
	SyncedAt            *time.Time
	TrackingNumber      string
	ManifestNumber      string
}

func RestoreHandover(s State) (*Handover, error) {
	if err := errors.Join(s.ID.Validate(), s.JobID.Validate(), s.RiderID.Validate(), s.Status.Validate()); err != nil {
		return nil, err
	}
	return &Handover{
		id:                  s.ID,
		number:              s.Number,
		jobID:               s.JobID,
		riderID:             s.RiderID,
		status:              s.Status,
		specialInstructions: s.SpecialInstructions,
		confirmationCode:    s.ConfirmationCode,
		assignedAt:          s.AssignedAt,
		confirmedAt:         s.ConfirmedAt,
		pickedUpAt:          s.PickedUpAt,
		deliveredAt:         s.DeliveredAt,
		cancelledAt:         s.CancelledAt,
		cancellationReason:  s.CancellationReason,
		slaDeadline:         s.SLADeadline,
		syncStatus:          s.SyncStatus,
		syncAttempts:        s.SyncAttempts,
		lastSyncError:       s.LastSyncError,
		syncedAt:            s.SyncedAt,
		trackingNumber:      s.TrackingNumber,
		manifestNumber:      s.ManifestNumber,
		guard:               guard.NewConstructorGuard(),
	}, nil
}

func (h *Handover) State() State {
	return State{
		ID:                  h.id,
		Number:              h.number,
		JobID:               h.jobID,
		RiderID:             h.riderID,
		Status:              h.status,
		SpecialInstructions: h.specialInstructions,
		ConfirmationCode:    h.confirmationCode,
		AssignedAt:          h.assignedAt,
		ConfirmedAt:         h.confirmedAt,
		PickedUpAt:          h.pickedUpAt,
		DeliveredAt:         h.deliveredAt,
		CancelledAt:         h.cancelledAt,
		CancellationReason:  h.cancellationReason,
		SLADeadline:         h.slaDeadline,
		SyncStatus:          h.syncStatus,
		SyncAttempts:        h.syncAttempts,
		LastSyncError:       h.lastSyncError,
		SyncedAt:            h.syncedAt,
		TrackingNumber:      h.trackingNumber,
		ManifestNumber:      h.manifestNumber,
	}
}

func (h *Handover) Validate() error {
	if h == nil {
		return ErrHandoverIsNotConstructed
	}
	return h.guard.Validate(ErrHandoverIsNotConstructed)
}

func (h *Handover) ID() kernel.UUID             { return h.id }
func (h *Handover) Number() string              { return h.number }
func (h *Handover) JobID() kernel.UUID          { return h.jobID }
func (h *Handover) RiderID() kernel.UUID        { return h.riderID }
func (h *Handover) Status() Status              { return h.status }
func (h *Handover) SpecialInstructions() string { return h.specialInstructions }
func (h *Handover) AssignedAt() time.Time       { return h.assignedAt }
func (h *Handover) SLADeadline() time.Time      { return h.slaDeadline }
func (h *Handover) SyncStatus() SyncStatus      { return h.syncStatus }
func (h *Handover) SyncAttempts() int           { return h.syncAttempts }
func (h *Handover) LastSyncError() string       { return h.lastSyncError }
func (h *Handover) TrackingNumber() string      { return h.trackingNumber }
func (h *Handover) ManifestNumber() string      { return h.manifestNumber }

// Confirm is called by the rider collecting the package.
func (h *Handover) Confirm(riderID kernel.UUID, confirmationCode string, now time.Time) error {
	if !h.riderID.IsEqual(riderID) {
		return errs.NewForbiddenErrorWithCause("rider", fmt.Errorf("handover %s is assigned to another rider", h.number))
	}
	if h.status != StatusAssigned {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("handover is %s, expected ASSIGNED", h.status))
	}
	h.status = StatusConfirmed
	h.confirmedAt = &now
	h.confirmationCode = confirmationCode
	return nil
}

// StatusDetails carries optional data submitted with a status change.
type StatusDetails struct {
	CancellationReason string
}

// TransitionTo applies a status change allowed by the transition table.
// A rejected change leaves the handover untouched.
func (h *Handover) TransitionTo(to Status, details StatusDetails, now time.Time) error {
	if err := to.Validate(); err != nil {
		return err
	}
	if !h.status.CanTransitionTo(to) {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("cannot transition from %s to %s", h.status, to))
	}

	switch to {
	case StatusConfirmed:
		h.confirmedAt = &now
	case StatusInTransit:
		h.pickedUpAt = &now
	case StatusDelivered:
		h.deliveredAt = &now
	case StatusCancelled:
		h.cancelledAt = &now
		h.cancellationReason = details.CancellationReason
	}
	h.status = to
	return nil
}

// MarkSynced stores the tracking and manifest numbers of a created shipment.
func (h *Handover) MarkSynced(trackingNumber, manifestNumber string, now time.Time) {
	h.syncStatus = SyncSynced
	h.trackingNumber = trackingNumber
	h.manifestNumber = manifestNumber
	h.lastSyncError = ""
	h.syncedAt = &now
}

// MarkSyncFailed records a failed outer sync call. Attempts count calls,
// not the HTTP retries made inside one call.
func (h *Handover) MarkSyncFailed(reason string) {
	h.syncStatus = SyncFailed
	h.syncAttempts++
	h.lastSyncError = reason
}

// MarkSyncRetrying flags a queued retry as in flight.
func (h *Handover) MarkSyncRetrying() {
	if h.syncStatus != SyncSynced {
		h.syncStatus = SyncRetry
	}
}
