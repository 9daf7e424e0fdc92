package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrUpdateAgentLocationCommandIsNotConstructed = errors.New(
		"UpdateAgentLocationCommand must be created via NewUpdateAgentLocationCommand constructor",
	)
	ErrObservedAtIsRequired = errors.New("observedAt is required")
)

// UpdateAgentLocationCommand represents an agent's location ping. The
// observation time travels with the point so out-of-order pings can be
// detected and dropped.
type UpdateAgentLocationCommand struct { //nolint:recvcheck //using for validation
	agentID    kernel.UUID
	point      kernel.GeoPoint
	observedAt time.Time

	guard guard.ConstructorGuard
}

// NewUpdateAgentLocationCommand creates a command to record an agent position.
// The point must be a valid coordinate and observedAt must not be zero.
func NewUpdateAgentLocationCommand(
	agentID kernel.UUID,
	point kernel.GeoPoint,
	observedAt time.Time,
) (UpdateAgentLocationCommand, error) {
	locationCommand := UpdateAgentLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		locationCommand.setAgentID(agentID),
		locationCommand.setPoint(point),
		locationCommand.setObservedAt(observedAt),
	); err != nil {
		return UpdateAgentLocationCommand{}, err
	}

	return locationCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateAgentLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateAgentLocationCommandIsNotConstructed)
}

// AgentID returns the reporting agent's id.
func (c UpdateAgentLocationCommand) AgentID() kernel.UUID {
	return c.agentID
}

// Point returns the reported coordinate.
func (c UpdateAgentLocationCommand) Point() kernel.GeoPoint {
	return c.point
}

// ObservedAt returns when the position was observed.
func (c UpdateAgentLocationCommand) ObservedAt() time.Time {
	return c.observedAt
}

func (c *UpdateAgentLocationCommand) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	c.agentID = agentID
	return nil
}

func (c *UpdateAgentLocationCommand) setPoint(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}

	c.point = point
	return nil
}

func (c *UpdateAgentLocationCommand) setObservedAt(observedAt time.Time) error {
	if observedAt.IsZero() {
		return ErrObservedAtIsRequired
	}

	c.observedAt = observedAt.UTC()
	return nil
}
