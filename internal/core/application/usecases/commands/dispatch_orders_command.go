package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrDispatchOrdersCommandIsNotConstructed = errors.New(
	"DispatchOrdersCommand must be created via NewDispatchOrdersCommand constructor",
)

// DispatchOrdersCommand triggers one dispatch tick: every order searching for
// an agent gets a round of offers to the nearest eligible agents, with the
// search radius widening on each failed attempt.
//
// Example:
//
//	cmd := NewDispatchOrdersCommand()
//	handler := NewDispatchOrdersCommandHandler(uowFactory, dispatcher, geoIndex, offerStore, broadcaster, webhooks, 30*time.Second, 10)
//	err := handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrNoOrdersSearching) {
//	    // quiet tick
//	}
type DispatchOrdersCommand struct {
	guard guard.ConstructorGuard
}

// NewDispatchOrdersCommand creates a new command to trigger a dispatch tick.
// This is a parameterless command; the dispatch plan parameters live on the
// handler.
func NewDispatchOrdersCommand() DispatchOrdersCommand {
	return DispatchOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *DispatchOrdersCommand) Validate() error {
	return c.guard.Validate(ErrDispatchOrdersCommandIsNotConstructed)
}
