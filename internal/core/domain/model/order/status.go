package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a closed state machine with a fixed transition table so that
// orders always follow the dispatch workflow.
//
// State transitions:
//
//	SearchingAgent ──> Assigned ──> PickedUp ──> OutForDelivery ──> Delivered
//	       ^               │
//	       └───────────────┘ (admin reassign)
//
//	any non-terminal state ──> Cancelled
//
// Delivered and Cancelled are terminal. The delayed condition is an overlay
// flag on the order, not a distinct status.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// SearchingAgent is the initial status: the order is waiting for the
	// dispatch engine to find an agent.
	SearchingAgent

	// Assigned indicates an agent accepted the order's offer.
	Assigned

	// PickedUp indicates the assigned agent collected the package.
	PickedUp

	// OutForDelivery indicates the assigned agent is en route to the dropoff.
	OutForDelivery

	// Delivered indicates the order was completed. Terminal.
	Delivered

	// Cancelled indicates the order was cancelled by a partner or admin. Terminal.
	Cancelled
)

// getStatusStrings returns the wire representation for every Status value.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "UNKNOWN",
		SearchingAgent: "SEARCHING_AGENT",
		Assigned:       "ASSIGNED",
		PickedUp:       "PICKED_UP",
		OutForDelivery: "OUT_FOR_DELIVERY",
		Delivered:      "DELIVERED",
		Cancelled:      "CANCELLED",
	}
}

// getValidStatusStrings returns only valid Status values, for validation.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		SearchingAgent: "SEARCHING_AGENT",
		Assigned:       "ASSIGNED",
		PickedUp:       "PICKED_UP",
		OutForDelivery: "OUT_FOR_DELIVERY",
		Delivered:      "DELIVERED",
		Cancelled:      "CANCELLED",
	}
}

// transitionTable holds every legal transition. Anything absent here fails
// with an InvalidTransitionError and leaves the order unchanged.
func transitionTable() map[Status][]Status {
	return map[Status][]Status{
		SearchingAgent: {Assigned, Cancelled},
		Assigned:       {PickedUp, SearchingAgent, Cancelled},
		PickedUp:       {OutForDelivery, Cancelled},
		OutForDelivery: {Delivered, Cancelled},
	}
}

// ParseStatus converts a wire value such as "PICKED_UP" to a Status.
// Values outside the closed enum are rejected at the boundary.
func ParseStatus(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is part of the closed enum.
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status, e.g. "SEARCHING_AGENT".
// Implements the fmt.Stringer interface and is safe on any value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// IsActive reports whether the order is in flight with an agent. These are
// the statuses the delay monitor audits.
func (s Status) IsActive() bool {
	return s == Assigned || s == PickedUp || s == OutForDelivery
}

// CanTransitionTo reports whether the transition table allows moving to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitionTable()[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo returns the target status if the transition is legal.
//
// Returns:
//   - (target, nil) on a valid transition
//   - (0, *errs.InvalidTransitionError) otherwise
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return 0, err
	}
	if !s.CanTransitionTo(target) {
		return 0, errs.NewInvalidTransitionError(s.String(), target.String())
	}
	return target, nil
}
