package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRejectOfferCommandIsNotConstructed = errors.New(
	"RejectOfferCommand must be created via NewRejectOfferCommand constructor",
)

// RejectOfferCommand represents an agent declining an offered order.
// Fire-and-forget: rejecting an unknown or already resolved offer is a no-op.
type RejectOfferCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	agentID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRejectOfferCommand creates a command for an agent to decline an order.
func NewRejectOfferCommand(orderID, agentID kernel.UUID) (RejectOfferCommand, error) {
	if err := errors.Join(orderID.Validate(), agentID.Validate()); err != nil {
		return RejectOfferCommand{}, err
	}

	return RejectOfferCommand{
		orderID: orderID,
		agentID: agentID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RejectOfferCommand) Validate() error {
	return c.guard.Validate(ErrRejectOfferCommandIsNotConstructed)
}

// OrderID returns the declined order's id.
func (c RejectOfferCommand) OrderID() kernel.UUID {
	return c.orderID
}

// AgentID returns the declining agent's id.
func (c RejectOfferCommand) AgentID() kernel.UUID {
	return c.agentID
}
