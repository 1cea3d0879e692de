package handover

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the handover lifecycle:
//
//	ASSIGNED   -> CONFIRMED | CANCELLED
//	CONFIRMED  -> IN_TRANSIT | CANCELLED
//	IN_TRANSIT -> DELIVERED | CANCELLED
//
// DELIVERED and CANCELLED are terminal.
type Status int

const (
	StatusUnknown Status = iota
	StatusAssigned
	StatusConfirmed
	StatusInTransit
	StatusDelivered
	StatusCancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusAssigned:  "ASSIGNED",
		StatusConfirmed: "CONFIRMED",
		StatusInTransit: "IN_TRANSIT",
		StatusDelivered: "DELIVERED",
		StatusCancelled: "CANCELLED",
	}
}

func getTransitions() map[Status][]Status {
	return map[Status][]Status{
		StatusAssigned:  {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusInTransit, StatusCancelled},
		StatusInTransit: {StatusDelivered, StatusCancelled},
	}
}

func ParseStatus(s string) (Status, error) {
	for st, name := range getStatusStrings() {
		if name == s {
			return st, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid handover status", s))
}

func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid handover status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the table allows s -> to.
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range getTransitions()[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SyncStatus tracks the shipment record in the external logistics system.
type SyncStatus int

const (
	SyncUnknown SyncStatus = iota
	SyncPending
	SyncSynced
	SyncFailed
	SyncRetry
)

func getSyncStatusStrings() map[SyncStatus]string {
	return map[SyncStatus]string{
		SyncPending: "PENDING",
		SyncSynced:  "SYNCED",
		SyncFailed:  "FAILED",
		SyncRetry:   "RETRY",
	}
}

func ParseSyncStatus(s string) (SyncStatus, error) {
	for st, name := range getSyncStatusStrings() {
		if name == s {
			return st, nil
		}
	}
	return SyncUnknown, errs.NewValueIsInvalidErrorWithCause("lmsSyncStatus", fmt.Errorf("%q is not a valid sync status", s))
}

func (s SyncStatus) String() string {
	if str, ok := getSyncStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}
