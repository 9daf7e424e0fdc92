package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAcceptOfferCommandIsNotConstructed = errors.New(
	"AcceptOfferCommand must be created via NewAcceptOfferCommand constructor",
)

// AcceptOfferCommand represents an agent accepting an offered order. Several
// agents may fire this for the same order; exactly one wins.
type AcceptOfferCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	agentID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptOfferCommand creates a command for an agent to claim an order.
func NewAcceptOfferCommand(orderID, agentID kernel.UUID) (AcceptOfferCommand, error) {
	if err := errors.Join(orderID.Validate(), agentID.Validate()); err != nil {
		return AcceptOfferCommand{}, err
	}

	return AcceptOfferCommand{
		orderID: orderID,
		agentID: agentID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptOfferCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOfferCommandIsNotConstructed)
}

// OrderID returns the claimed order's id.
func (c AcceptOfferCommand) OrderID() kernel.UUID {
	return c.orderID
}

// AgentID returns the accepting agent's id.
func (c AcceptOfferCommand) AgentID() kernel.UUID {
	return c.agentID
}
