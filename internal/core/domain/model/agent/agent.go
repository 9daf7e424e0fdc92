package agent

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrAgentIsNotConstructed is returned when using an improperly initialized Agent.
	ErrAgentIsNotConstructed = errors.New("Agent must be created via NewAgent constructor")

	// ErrAgentNotApproved is returned when an unapproved agent tries to go online.
	ErrAgentNotApproved = errs.NewForbiddenError("go online before approval")

	// ErrAgentBusy is returned when an agent holding an active order tries to
	// accept another one or to go offline mid-trip.
	ErrAgentBusy = errors.New("agent already holds an active order")
)

// Agent represents a delivery agent in the system. It is an aggregate root
// managing identity, presence, last known location, and acceptance statistics.
//
// Business rules:
//   - Only approved agents may go online
//   - An agent holds at most one active order: OnTrip blocks further accepts
//   - Location reports older than the stored one are ignored
type Agent struct {
	// id uniquely identifies the agent
	id kernel.UUID
	// userID links the agent to its user profile
	userID kernel.UUID
	// presence is the availability state
	presence Presence
	// approved reflects the KYC/approval flag
	approved bool
	// location is the last known position (nil until first report)
	location *kernel.GeoPoint
	// locationAt is when the position was observed
	locationAt *time.Time
	// offersReceived / offersAccepted back the acceptance-rate statistic
	offersReceived int
	offersAccepted int
	// guard ensures the agent was properly constructed
	guard guard.ConstructorGuard
}

// NewAgent creates a new Agent in Offline presence.
//
// Parameters:
//   - id: unique identifier (must be a valid UUID)
//   - userID: linked user profile (must be a valid UUID)
//   - approved: whether the agent passed KYC
func NewAgent(id kernel.UUID, userID kernel.UUID, approved bool) (*Agent, error) {
	if err := errors.Join(id.Validate(), userID.Validate()); err != nil {
		return nil, err
	}

	return &Agent{
		id:       id,
		userID:   userID,
		presence: Offline,
		approved: approved,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// RestoreAgent rehydrates an Agent from persistence.
func RestoreAgent(
	id kernel.UUID,
	userID kernel.UUID,
	presence Presence,
	approved bool,
	location *kernel.GeoPoint,
	locationAt *time.Time,
	offersReceived, offersAccepted int,
) (*Agent, error) {
	a, err := NewAgent(id, userID, approved)
	if err != nil {
		return nil, err
	}

	if err = presence.Validate(); err != nil {
		return nil, err
	}
	if location != nil {
		if err = location.Validate(); err != nil {
			return nil, err
		}
	}

	a.presence = presence
	a.location = location
	a.locationAt = locationAt
	a.offersReceived = offersReceived
	a.offersAccepted = offersAccepted
	return a, nil
}

// Validate ensures the Agent instance was properly constructed.
func (a *Agent) Validate() error {
	if a == nil {
		return ErrAgentIsNotConstructed
	}
	return a.guard.Validate(ErrAgentIsNotConstructed)
}

// IsEqual compares two agents by their unique identifiers.
func (a *Agent) IsEqual(other *Agent) bool {
	return other != nil && a.id.IsEqual(other.id)
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() kernel.UUID {
	return a.id
}

// UserID returns the linked user profile id.
func (a *Agent) UserID() kernel.UUID {
	return a.userID
}

// Presence returns the availability state.
func (a *Agent) Presence() Presence {
	return a.presence
}

// IsApproved reports whether the agent passed approval/KYC.
func (a *Agent) IsApproved() bool {
	return a.approved
}

// Location returns the last known position, nil until the first report.
func (a *Agent) Location() *kernel.GeoPoint {
	return a.location
}

// LocationAt returns when the last position was observed.
func (a *Agent) LocationAt() *time.Time {
	return a.locationAt
}

// OffersReceived returns how many offers the agent has been issued.
func (a *Agent) OffersReceived() int {
	return a.offersReceived
}

// OffersAccepted returns how many offers the agent accepted.
func (a *Agent) OffersAccepted() int {
	return a.offersAccepted
}

// AcceptanceRate returns accepted/received, 0 before the first offer.
func (a *Agent) AcceptanceRate() float64 {
	if a.offersReceived == 0 {
		return 0
	}
	return float64(a.offersAccepted) / float64(a.offersReceived)
}

// IsEligibleForOffers reports whether the dispatch engine may offer orders to
// the agent: approved, online, and with a known location.
func (a *Agent) IsEligibleForOffers() bool {
	return a.approved && a.presence == Online && a.location != nil
}

// GoOnline opts the agent into receiving offers. Requires approval.
// Calling it while already online is a no-op; an agent mid-trip cannot
// re-enter the offer pool.
func (a *Agent) GoOnline() error {
	if !a.approved {
		return ErrAgentNotApproved
	}
	if a.presence == OnTrip {
		return errs.NewInvalidTransitionErrorWithCause(
			a.presence.String(), Online.String(), ErrAgentBusy)
	}

	a.presence = Online
	return nil
}

// GoOffline opts the agent out of the offer pool. The location is kept so
// reconnection is cheap. An agent mid-trip must finish or lose the order first.
func (a *Agent) GoOffline() error {
	if a.presence == OnTrip {
		return errs.NewInvalidTransitionErrorWithCause(
			a.presence.String(), Offline.String(), ErrAgentBusy)
	}

	a.presence = Offline
	return nil
}

// StartTrip marks the agent as holding an active order. Only online agents
// can accept; this is what enforces the one-active-order invariant.
func (a *Agent) StartTrip() error {
	if a.presence == OnTrip {
		return errs.NewConflictErrorWithCause("agent", a.id.String(), ErrAgentBusy)
	}
	if a.presence != Online {
		return errs.NewInvalidTransitionError(a.presence.String(), OnTrip.String())
	}

	a.presence = OnTrip
	return nil
}

// FinishTrip returns the agent to the offer pool after delivery,
// cancellation, or reassignment. A no-op for agents not on a trip.
func (a *Agent) FinishTrip() {
	if a.presence == OnTrip {
		a.presence = Online
	}
}

// ReportLocation records a position observation. Reports older than the
// stored one are dropped to guard against out-of-order network delivery.
//
// Returns true when the location was updated.
func (a *Agent) ReportLocation(point kernel.GeoPoint, observedAt time.Time) (bool, error) {
	if err := point.Validate(); err != nil {
		return false, err
	}

	observedAt = observedAt.UTC()
	if a.locationAt != nil && observedAt.Before(*a.locationAt) {
		return false, nil
	}

	a.location = &point
	a.locationAt = &observedAt
	return true, nil
}

// RecordOffer counts an issued offer toward the acceptance statistics.
func (a *Agent) RecordOffer() {
	a.offersReceived++
}

// RecordAcceptance counts a won offer toward the acceptance statistics.
func (a *Agent) RecordAcceptance() {
	a.offersAccepted++
}
