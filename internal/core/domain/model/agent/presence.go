package agent

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Presence represents an agent's availability state.
//
// State transitions:
//
//	Offline ──> Online ──> OnTrip
//	   ^          │  ^        │
//	   └──────────┘  └────────┘
//
// Agents go Online by opting in, move to OnTrip on accepting an order, and
// return to Online on delivery or cancellation.
type Presence int

const (
	// PresenceUnknown represents an invalid or undefined presence.
	PresenceUnknown Presence = iota
	// Offline agents are excluded from candidate queries but keep their
	// last location so reconnection is cheap.
	Offline
	// Online agents are eligible for offers.
	Online
	// OnTrip agents hold an active order and receive no further offers.
	OnTrip
)

func getPresenceStrings() map[Presence]string {
	return map[Presence]string{
		PresenceUnknown: "UNKNOWN",
		Offline:         "OFFLINE",
		Online:          "ONLINE",
		OnTrip:          "ON_TRIP",
	}
}

// Validate checks if the Presence value is part of the closed enum.
func (p Presence) Validate() error {
	if p != Offline && p != Online && p != OnTrip {
		return errs.NewValueIsInvalidErrorWithCause(
			"presence", fmt.Errorf("%d is not a valid presence", p))
	}
	return nil
}

// String returns the wire name of the presence, e.g. "ON_TRIP".
func (p Presence) String() string {
	if str, ok := getPresenceStrings()[p]; ok {
		return str
	}
	return "UNKNOWN"
}
