package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrSweepDelayedOrdersCommandIsNotConstructed = errors.New(
	"SweepDelayedOrdersCommand must be created via NewSweepDelayedOrdersCommand constructor",
)

// SweepDelayedOrdersCommand triggers one delay monitor sweep over the
// in-flight orders.
type SweepDelayedOrdersCommand struct {
	guard guard.ConstructorGuard
}

// NewSweepDelayedOrdersCommand creates a new command to trigger a delay sweep.
func NewSweepDelayedOrdersCommand() SweepDelayedOrdersCommand {
	return SweepDelayedOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *SweepDelayedOrdersCommand) Validate() error {
	return c.guard.Validate(ErrSweepDelayedOrdersCommandIsNotConstructed)
}
