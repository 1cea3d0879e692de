package wave

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the wave lifecycle. Waves only move forward:
//
//	GENERATED -> ASSIGNED -> PICKING -> COMPLETED
//	    any non-terminal state -> CANCELLED
//
// PACKING exists for reporting compatibility with older data; no operation
// produces it.
type Status int

const (
	StatusUnknown Status = iota
	StatusGenerated
	StatusAssigned
	StatusPicking
	StatusPacking
	StatusCompleted
	StatusCancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusGenerated: "GENERATED",
		StatusAssigned:  "ASSIGNED",
		StatusPicking:   "PICKING",
		StatusPacking:   "PACKING",
		StatusCompleted: "COMPLETED",
		StatusCancelled: "CANCELLED",
	}
}

func ParseStatus(s string) (Status, error) {
	for st, name := range getStatusStrings() {
		if name == s {
			return st, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid wave status", s))
}

func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid wave status", s))
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
	return s == StatusCompleted || s == StatusCancelled
}

// IsActive reports whether the wave counts against a picker's concurrent load.
func (s Status) IsActive() bool {
	return s == StatusAssigned || s == StatusPicking
}

func (s Status) transition(to Status, allowedFrom ...Status) (Status, error) {
	for _, from := range allowedFrom {
		if s == from {
			return to, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause(
		"status",
		fmt.Errorf("wave cannot move from %s to %s", s, to),
	)
}

// ItemStatus is the state of a single picklist line.
type ItemStatus int

const (
	ItemStatusUnknown ItemStatus = iota
	ItemStatusPending
	ItemStatusPicking
	ItemStatusPicked
	ItemStatusPartial
	ItemStatusOutOfStock
	ItemStatusDamaged
)

func getItemStatusStrings() map[ItemStatus]string {
	return map[ItemStatus]string{
		ItemStatusPending:    "PENDING",
		ItemStatusPicking:    "PICKING",
		ItemStatusPicked:     "PICKED",
		ItemStatusPartial:    "PARTIAL",
		ItemStatusOutOfStock: "OOS",
		ItemStatusDamaged:    "DAMAGED",
	}
}

func ParseItemStatus(s string) (ItemStatus, error) {
	for st, name := range getItemStatusStrings() {
		if name == s {
			return st, nil
		}
	}
	return ItemStatusUnknown, errs.NewValueIsInvalidErrorWithCause("itemStatus", fmt.Errorf("%q is not a valid item status", s))
}

func (s ItemStatus) String() string {
	if str, ok := getItemStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsOpen reports whether the item still waits for a scan.
func (s ItemStatus) IsOpen() bool {
	return s == ItemStatusPending || s == ItemStatusPicking
}
