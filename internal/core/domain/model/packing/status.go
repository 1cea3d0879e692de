package packing

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the packing job lifecycle:
//
//	PENDING -> PACKING -> VERIFYING -> AWAITING_HANDOVER -> HANDOVER_ASSIGNED -> COMPLETED
//
// COMPLETED is reached only when the handover is delivered.
type Status int

const (
	StatusUnknown Status = iota
	StatusPending
	StatusPacking
	StatusVerifying
	StatusCompleted
	StatusCancelled
	StatusAwaitingHandover
	StatusHandoverAssigned
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusPending:          "PENDING",
		StatusPacking:          "PACKING",
		StatusVerifying:        "VERIFYING",
		StatusCompleted:        "COMPLETED",
		StatusCancelled:        "CANCELLED",
		StatusAwaitingHandover: "AWAITING_HANDOVER",
		StatusHandoverAssigned: "HANDOVER_ASSIGNED",
	}
}

func ParseStatus(s string) (Status, error) {
	for st, name := range getStatusStrings() {
		if name == s {
			return st, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid packing status", s))
}

func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid packing status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsPacked reports whether packing itself is finished.
func (s Status) IsPacked() bool {
	return s == StatusCompleted || s == StatusAwaitingHandover || s == StatusHandoverAssigned
}

// IsOpen reports whether items may still be packed and verified.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusPacking || s == StatusVerifying
}

type ItemStatus int

const (
	ItemStatusUnknown ItemStatus = iota
	ItemStatusPending
	ItemStatusPacking
	ItemStatusVerified
	ItemStatusCompleted
)

func getItemStatusStrings() map[ItemStatus]string {
	return map[ItemStatus]string{
		ItemStatusPending:   "PENDING",
		ItemStatusPacking:   "PACKING",
		ItemStatusVerified:  "VERIFIED",
		ItemStatusCompleted: "COMPLETED",
	}
}

func ParseItemStatus(s string) (ItemStatus, error) {
	for st, name := range getItemStatusStrings() {
		if name == s {
			return st, nil
		}
	}
	return ItemStatusUnknown, errs.NewValueIsInvalidErrorWithCause("itemStatus", fmt.Errorf("%q is not a valid packing item status", s))
}

func (s ItemStatus) String() string {
	if str, ok := getItemStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// WorkflowType decides who packs: the picker who walked the wave or a
// dedicated packer.
type WorkflowType string

const (
	WorkflowPickerPacks     WorkflowType = "PICKER_PACKS"
	WorkflowDedicatedPacker WorkflowType = "DEDICATED_PACKER"
)

func ParseWorkflowType(s string) (WorkflowType, error) {
	switch w := WorkflowType(s); w {
	case "":
		return WorkflowDedicatedPacker, nil
	case WorkflowPickerPacks, WorkflowDedicatedPacker:
		return w, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("workflowType", fmt.Errorf("%q is not a valid workflow type", s))
	}
}
