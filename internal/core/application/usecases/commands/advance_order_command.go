package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var (
	ErrAdvanceOrderCommandIsNotConstructed = errors.New(
		"AdvanceOrderCommand must be created via NewAdvanceOrderCommand constructor",
	)
	ErrTargetStatusIsNotAdvanceable = errors.New(
		"target status must be PICKED_UP, OUT_FOR_DELIVERY or DELIVERED",
	)
)

// AdvanceOrderCommand represents the assigned agent moving an order forward
// through pickup, out-for-delivery and delivery.
type AdvanceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	agentID kernel.UUID
	target  order.Status

	guard guard.ConstructorGuard
}

// NewAdvanceOrderCommand creates a command for the assigned agent to move the
// order to the target status. Only the forward agent-driven statuses are
// accepted; assignment, cancellation and requeue have their own commands.
func NewAdvanceOrderCommand(
	orderID kernel.UUID,
	agentID kernel.UUID,
	target order.Status,
) (AdvanceOrderCommand, error) {
	advanceCommand := AdvanceOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		advanceCommand.setOrderID(orderID),
		advanceCommand.setAgentID(agentID),
		advanceCommand.setTarget(target),
	); err != nil {
		return AdvanceOrderCommand{}, err
	}

	return advanceCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c AdvanceOrderCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceOrderCommandIsNotConstructed)
}

// OrderID returns the order being advanced.
func (c AdvanceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// AgentID returns the acting agent's id.
func (c AdvanceOrderCommand) AgentID() kernel.UUID {
	return c.agentID
}

// Target returns the requested status.
func (c AdvanceOrderCommand) Target() order.Status {
	return c.target
}

func (c *AdvanceOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *AdvanceOrderCommand) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	c.agentID = agentID
	return nil
}

func (c *AdvanceOrderCommand) setTarget(target order.Status) error {
	switch target {
	case order.PickedUp, order.OutForDelivery, order.Delivered:
		c.target = target
		return nil
	default:
		return ErrTargetStatusIsNotAdvanceable
	}
}
