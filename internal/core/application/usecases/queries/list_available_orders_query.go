package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrListAvailableOrdersQueryIsNotConstructed = errors.New(
		"ListAvailableOrdersQuery must be created via NewListAvailableOrdersQuery constructor",
	)
)

// ListAvailableOrdersQuery retrieves the orders currently offered to an
// agent. This is the pull fallback for agents without an open push
// connection; it reads the same offer rounds the push channel announces.
type ListAvailableOrdersQuery struct {
	agentID kernel.UUID
	guard   guard.ConstructorGuard
}

// NewListAvailableOrdersQuery creates a query for the agent's open offers.
func NewListAvailableOrdersQuery(agentID kernel.UUID) (ListAvailableOrdersQuery, error) {
	if err := agentID.Validate(); err != nil {
		return ListAvailableOrdersQuery{}, err
	}

	return ListAvailableOrdersQuery{
		agentID: agentID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// AgentID returns the agent whose offers are listed.
func (q ListAvailableOrdersQuery) AgentID() kernel.UUID {
	return q.agentID
}

// Validate ensures the query was created through the constructor.
func (q ListAvailableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListAvailableOrdersQueryIsNotConstructed)
}

// ListAvailableOrdersQueryResponse is one offered order as the agent sees
// it: where to go, what it pays and how long the offer is still open.
type ListAvailableOrdersQueryResponse struct {
	OrderID        kernel.UUID
	TrackingNumber string
	PickupLat      float64
	PickupLng      float64
	DropoffLat     float64
	DropoffLng     float64
	PayoutCents    int64
	Priority       string
	OfferedAt      time.Time
	ExpiresAt      time.Time
}
