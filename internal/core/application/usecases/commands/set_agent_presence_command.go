package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrSetAgentPresenceCommandIsNotConstructed = errors.New(
	"SetAgentPresenceCommand must be created via NewSetAgentPresenceCommand constructor",
)

// SetAgentPresenceCommand represents an agent opting in or out of the offer
// pool.
type SetAgentPresenceCommand struct { //nolint:recvcheck //using for validation
	agentID kernel.UUID
	online  bool

	guard guard.ConstructorGuard
}

// NewSetAgentPresenceCommand creates a command to change an agent's presence.
func NewSetAgentPresenceCommand(agentID kernel.UUID, online bool) (SetAgentPresenceCommand, error) {
	if err := agentID.Validate(); err != nil {
		return SetAgentPresenceCommand{}, err
	}

	return SetAgentPresenceCommand{
		agentID: agentID,
		online:  online,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SetAgentPresenceCommand) Validate() error {
	return c.guard.Validate(ErrSetAgentPresenceCommandIsNotConstructed)
}

// AgentID returns the agent changing presence.
func (c SetAgentPresenceCommand) AgentID() kernel.UUID {
	return c.agentID
}

// Online reports the requested presence: true for online, false for offline.
func (c SetAgentPresenceCommand) Online() bool {
	return c.online
}
