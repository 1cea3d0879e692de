package kernel

import (
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
)

// Priority orders waves for assignment and is inherited by the packing job
// built from a wave. Higher values are more urgent.
type Priority int

const (
	PriorityUnknown Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityUrgent
)

func getPriorityStrings() map[Priority]string {
	return map[Priority]string{
		PriorityLow:    "LOW",
		PriorityMedium: "MEDIUM",
		PriorityHigh:   "HIGH",
		PriorityUrgent: "URGENT",
	}
}

// ParsePriority accepts the upper- or lower-case priority name.
// An empty string yields PriorityMedium.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	upper := strings.ToUpper(s)
	for p, name := range getPriorityStrings() {
		if name == upper {
			return p, nil
		}
	}
	return PriorityUnknown, errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%q is not a valid priority", s))
}

func (p Priority) Validate() error {
	if _, ok := getPriorityStrings()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%d is not a valid priority", p))
	}
	return nil
}

func (p Priority) String() string {
	if s, ok := getPriorityStrings()[p]; ok {
		return s
	}
	return "UNKNOWN"
}

// Rank is used for sorting: URGENT > HIGH > MEDIUM > LOW.
func (p Priority) Rank() int {
	return int(p)
}
