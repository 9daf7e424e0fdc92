package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// SetAgentPresenceCommandHandler moves agents in and out of the offer pool.
// Going online registers the agent's last known position in the geo index;
// going offline removes it and closes the agent's offer channel.
//
// An agent mid-trip cannot change presence; the domain rejects it.
type SetAgentPresenceCommandHandler struct {
	uowFactory  AgentUoWFactory
	geoIndex    ports.GeoIndex
	broadcaster ports.Broadcaster
}

// NewSetAgentPresenceCommandHandler creates a handler for presence changes.
func NewSetAgentPresenceCommandHandler(
	uowFactory AgentUoWFactory,
	geoIndex ports.GeoIndex,
	broadcaster ports.Broadcaster,
) SetAgentPresenceCommandHandler {
	return SetAgentPresenceCommandHandler{
		uowFactory:  uowFactory,
		geoIndex:    geoIndex,
		broadcaster: broadcaster,
	}
}

// Handle processes the presence change.
// The geo index and the offer channel are only touched after the transaction
// commits, so a rejected change (unapproved agent, agent mid-trip) leaves
// them untouched.
func (h *SetAgentPresenceCommandHandler) Handle(ctx context.Context, cmd SetAgentPresenceCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	agentRepo := uow.AgentRepository()
	a, err := agentRepo.Get(ctx, cmd.AgentID())
	if err != nil {
		return err
	}

	if cmd.Online() {
		err = a.GoOnline()
	} else {
		err = a.GoOffline()
	}
	if err != nil {
		return err
	}

	if err = agentRepo.Update(ctx, a); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if cmd.Online() {
		if a.Location() != nil && a.LocationAt() != nil {
			h.geoIndex.Upsert(a.ID(), *a.Location(), *a.LocationAt())
		}
	} else {
		h.geoIndex.Remove(a.ID())
		h.broadcaster.Disconnect(a.ID())
	}

	return nil
}
