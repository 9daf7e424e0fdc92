package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrReassignOrderCommandIsNotConstructed = errors.New(
	"ReassignOrderCommand must be created via NewReassignOrderCommand constructor",
)

// ReassignOrderCommand represents an admin pulling an assigned order back
// into dispatch, typically when an agent goes dark after accepting.
type ReassignOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	actorRole Role

	guard guard.ConstructorGuard
}

// NewReassignOrderCommand creates a command to requeue an assigned order.
func NewReassignOrderCommand(orderID kernel.UUID, actorRole Role) (ReassignOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ReassignOrderCommand{}, err
	}
	if !actorRole.IsValid() {
		return ReassignOrderCommand{}, ErrActorRoleIsInvalid
	}

	return ReassignOrderCommand{
		orderID:   orderID,
		actorRole: actorRole,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ReassignOrderCommand) Validate() error {
	return c.guard.Validate(ErrReassignOrderCommandIsNotConstructed)
}

// OrderID returns the order being requeued.
func (c ReassignOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ActorRole returns the requesting actor's role.
func (c ReassignOrderCommand) ActorRole() Role {
	return c.actorRole
}
