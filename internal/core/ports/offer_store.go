package ports

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
)

// OfferStore keeps the in-flight offers of the current dispatch rounds.
// Offers are short lived and lose all meaning once their order is assigned or
// cancelled, so they live outside the durable store. Implementations must be
// safe for concurrent use.
type OfferStore interface {
	// Put stores the offers of one dispatch round.
	Put(offers []*offer.Offer)

	// Get returns the offer extended to the agent for the order, or nil.
	Get(orderID, agentID kernel.UUID) *offer.Offer

	// ListByOrder returns every stored offer for the order.
	ListByOrder(orderID kernel.UUID) []*offer.Offer

	// ListByAgent returns the agent's pending offers. Backs the pull view
	// for agents without an open push connection.
	ListByAgent(agentID kernel.UUID) []*offer.Offer

	// RemoveByOrder drops all offers for the order, after assignment,
	// cancellation or search exhaustion.
	RemoveByOrder(orderID kernel.UUID)

	// ExpireDue marks every pending offer past its deadline as expired and
	// returns the expired offers.
	ExpireDue(now time.Time) []*offer.Offer
}
