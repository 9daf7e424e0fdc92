package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Priority represents the dispatch priority of an order. Higher priority
// orders are offered to agents first within a dispatch tick.
type Priority int

const (
	// PriorityUnknown represents an invalid or undefined priority.
	PriorityUnknown Priority = iota
	// PriorityLow orders are dispatched after everything else.
	PriorityLow
	// PriorityNormal is the default priority.
	PriorityNormal
	// PriorityHigh orders are offered to agents first.
	PriorityHigh
)

func getPriorityStrings() map[Priority]string {
	return map[Priority]string{
		PriorityUnknown: "UNKNOWN",
		PriorityLow:     "LOW",
		PriorityNormal:  "NORMAL",
		PriorityHigh:    "HIGH",
	}
}

// ParsePriority converts a wire value such as "HIGH" to a Priority.
// An empty string maps to PriorityNormal.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNormal, nil
	}
	for priority, str := range getPriorityStrings() {
		if priority != PriorityUnknown && str == s {
			return priority, nil
		}
	}
	return PriorityUnknown, errs.NewValueIsInvalidErrorWithCause(
		"priority", fmt.Errorf("%q is not a valid priority", s))
}

// Validate checks if the Priority value is part of the closed enum.
func (p Priority) Validate() error {
	if p != PriorityLow && p != PriorityNormal && p != PriorityHigh {
		return errs.NewValueIsInvalidErrorWithCause(
			"priority", fmt.Errorf("%d is not a valid priority", p))
	}
	return nil
}

// String returns the wire name of the priority, e.g. "HIGH".
func (p Priority) String() string {
	if str, ok := getPriorityStrings()[p]; ok {
		return str
	}
	return "UNKNOWN"
}
