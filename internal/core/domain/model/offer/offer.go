// Package offer provides the ephemeral Offer entity: a proposal of one order
// to one agent, resolved by accept, reject, supersession, or expiry. Offers
// exist to make the broadcast-and-race auditable; they are not persisted
// long-term and correctness of the race is owned by the order store's
// conditional update, not by offers.
package offer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrOfferIsNotConstructed is returned when using an improperly initialized Offer.
var ErrOfferIsNotConstructed = errors.New("Offer must be created via NewOffer constructor")

// Outcome represents the resolution state of an offer.
type Outcome int

const (
	// OutcomeUnknown represents an invalid or undefined outcome.
	OutcomeUnknown Outcome = iota
	// Pending offers await the agent's response or expiry.
	Pending
	// Accepted offers won the dispatch race.
	Accepted
	// Rejected covers explicit agent rejection and supersession by a winner.
	Rejected
	// Expired offers ran out the expiry deadline without a response.
	Expired
)

func getOutcomeStrings() map[Outcome]string {
	return map[Outcome]string{
		OutcomeUnknown: "UNKNOWN",
		Pending:        "PENDING",
		Accepted:       "ACCEPTED",
		Rejected:       "REJECTED",
		Expired:        "EXPIRED",
	}
}

// String returns the wire name of the outcome, e.g. "PENDING".
func (o Outcome) String() string {
	if str, ok := getOutcomeStrings()[o]; ok {
		return str
	}
	return "UNKNOWN"
}

// Offer is an ephemeral proposal of one order to one agent.
// An offer resolves exactly once; re-resolution attempts fail.
// Outcome access is serialized: handlers resolve offers on request
// goroutines while the dispatch tick expires them.
type Offer struct {
	orderID   kernel.UUID
	agentID   kernel.UUID
	issuedAt  time.Time
	expiresAt time.Time

	mu      sync.Mutex
	outcome Outcome

	guard guard.ConstructorGuard
}

// NewOffer creates a Pending offer of the order to the agent with the given
// time-to-live.
func NewOffer(orderID, agentID kernel.UUID, issuedAt time.Time, ttl time.Duration) (*Offer, error) {
	if err := errors.Join(orderID.Validate(), agentID.Validate()); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("ttl",
			fmt.Errorf("%s is not positive", ttl))
	}

	issuedAt = issuedAt.UTC()
	return &Offer{
		orderID:   orderID,
		agentID:   agentID,
		issuedAt:  issuedAt,
		expiresAt: issuedAt.Add(ttl),
		outcome:   Pending,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Offer instance was properly constructed.
func (o *Offer) Validate() error {
	if o == nil {
		return ErrOfferIsNotConstructed
	}
	return o.guard.Validate(ErrOfferIsNotConstructed)
}

// OrderID returns the offered order's id.
func (o *Offer) OrderID() kernel.UUID {
	return o.orderID
}

// AgentID returns the agent the offer was issued to.
func (o *Offer) AgentID() kernel.UUID {
	return o.agentID
}

// IssuedAt returns when the offer was issued.
func (o *Offer) IssuedAt() time.Time {
	return o.issuedAt
}

// ExpiresAt returns the hard expiry deadline.
func (o *Offer) ExpiresAt() time.Time {
	return o.expiresAt
}

// Outcome returns the resolution state.
func (o *Offer) Outcome() Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.outcome
}

// IsPending reports whether the offer has not resolved yet.
func (o *Offer) IsPending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.outcome == Pending
}

// IsExpiredAt reports whether the expiry deadline has passed at the given
// instant. The deadline is enforced by the engine, not by agent cooperation.
func (o *Offer) IsExpiredAt(now time.Time) bool {
	return !now.UTC().Before(o.expiresAt)
}

// Accept resolves the offer as Accepted. Fails with a ConflictError when the
// offer already resolved or its deadline has passed.
func (o *Offer) Accept(now time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.outcome != Pending {
		return errs.NewConflictErrorWithCause("offer", o.orderID.String(),
			fmt.Errorf("offer already %s", o.outcome))
	}
	if o.IsExpiredAt(now) {
		o.outcome = Expired
		return errs.NewConflictErrorWithCause("offer", o.orderID.String(),
			errors.New("offer expired"))
	}

	o.outcome = Accepted
	return nil
}

// Reject resolves the offer as Rejected. A no-op on already resolved offers:
// rejects are fire-and-forget from the agent's side.
func (o *Offer) Reject() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.outcome == Pending {
		o.outcome = Rejected
	}
}

// Supersede marks a pending offer Rejected because another agent won the
// order. A no-op on already resolved offers.
func (o *Offer) Supersede() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.outcome == Pending {
		o.outcome = Rejected
	}
}

// Expire resolves a pending offer whose deadline has passed.
// Returns true when the offer transitioned to Expired.
func (o *Offer) Expire(now time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.outcome == Pending && o.IsExpiredAt(now) {
		o.outcome = Expired
		return true
	}
	return false
}
