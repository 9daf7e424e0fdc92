package ports

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// OfferNotification is the payload pushed to an agent when the dispatch
// engine extends an offer.
type OfferNotification struct {
	OrderID        kernel.UUID
	TrackingNumber string
	PickupLat      float64
	PickupLng      float64
	DropoffLat     float64
	DropoffLng     float64
	PayoutAmount   float64
	Priority       string
	ExpiresAt      time.Time
}

// Broadcaster pushes offer notifications to connected agents over the
// real-time channel. Delivery is best effort: agents without an open
// connection simply miss the push and discover offers through the
// available-orders poll instead.
type Broadcaster interface {
	// PublishOffer pushes an offer to one agent. Returns false when the agent
	// has no open connection.
	PublishOffer(agentID kernel.UUID, notification OfferNotification) bool

	// PublishOrderUnavailable tells an agent that an offered order was taken
	// by someone else. Returns false when the agent has no open connection.
	PublishOrderUnavailable(agentID kernel.UUID, orderID kernel.UUID) bool

	// Disconnect closes the agent's connection if one is open.
	Disconnect(agentID kernel.UUID)
}
