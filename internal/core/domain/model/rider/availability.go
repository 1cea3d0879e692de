package rider

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Availability is the rider's shift state. Only AVAILABLE riders can be
// assigned a handover.
type Availability int

const (
	AvailabilityUnknown Availability = iota
	Available
	Busy
	Offline
	OnBreak
)

func getAvailabilityStrings() map[Availability]string {
	return map[Availability]string{
		Available: "AVAILABLE",
		Busy:      "BUSY",
		Offline:   "OFFLINE",
		OnBreak:   "BREAK",
	}
}

func ParseAvailability(s string) (Availability, error) {
	for a, name := range getAvailabilityStrings() {
		if name == s {
			return a, nil
		}
	}
	return AvailabilityUnknown, errs.NewValueIsInvalidErrorWithCause(
		"availability",
		fmt.Errorf("%q is not a valid rider availability", s),
	)
}

func (a Availability) Validate() error {
	if _, ok := getAvailabilityStrings()[a]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("availability", fmt.Errorf("%d is not a valid rider availability", a))
	}
	return nil
}

func (a Availability) String() string {
	if s, ok := getAvailabilityStrings()[a]; ok {
		return s
	}
	return "UNKNOWN"
}
