package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrListActiveOrdersQueryIsNotConstructed = errors.New(
		"ListActiveOrdersQuery must be created via NewListActiveOrdersQuery constructor",
	)
)

// ListActiveOrdersQuery retrieves every order still in flight, from agent
// search through delivery. Admin monitoring view; the delayed flag marks
// orders the delay monitor has already called out.
type ListActiveOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewListActiveOrdersQuery creates a query for the in-flight order list.
func NewListActiveOrdersQuery() ListActiveOrdersQuery {
	return ListActiveOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q ListActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListActiveOrdersQueryIsNotConstructed)
}

// ListActiveOrdersQueryResponse is one in-flight order of the admin view.
type ListActiveOrdersQueryResponse struct {
	ID               kernel.UUID
	TrackingNumber   string
	PartnerID        kernel.UUID
	AgentID          *kernel.UUID
	Status           string
	Delayed          bool
	DispatchAttempts int
	PayoutCents      int64
	CreatedAt        time.Time
	AssignedAt       *time.Time
}
