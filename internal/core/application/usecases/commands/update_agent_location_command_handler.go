package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// UpdateAgentLocationCommandHandler records agent location pings. Persists the
// position on the agent aggregate and feeds the live geo index that the
// dispatch engine queries.
//
// Stale pings (older than the stored observation) are dropped in both places,
// so network reordering cannot move an agent backwards.
type UpdateAgentLocationCommandHandler struct {
	uowFactory AgentUoWFactory
	geoIndex   ports.GeoIndex
}

// NewUpdateAgentLocationCommandHandler creates a handler for location pings.
func NewUpdateAgentLocationCommandHandler(
	uowFactory AgentUoWFactory,
	geoIndex ports.GeoIndex,
) UpdateAgentLocationCommandHandler {
	return UpdateAgentLocationCommandHandler{
		uowFactory: uowFactory,
		geoIndex:   geoIndex,
	}
}

// Handle processes the location ping.
// Updates the aggregate first; the geo index is only touched after the
// transaction commits and only while the agent is eligible for offers.
func (h *UpdateAgentLocationCommandHandler) Handle(ctx context.Context, cmd UpdateAgentLocationCommand) error {
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
	reportingAgent, err := agentRepo.Get(ctx, cmd.AgentID())
	if err != nil {
		return err
	}

	updated, err := reportingAgent.ReportLocation(cmd.Point(), cmd.ObservedAt())
	if err != nil {
		return err
	}
	if !updated {
		// Stale ping, nothing to persist.
		return nil
	}

	if err = agentRepo.Update(ctx, reportingAgent); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if reportingAgent.IsEligibleForOffers() {
		h.geoIndex.Upsert(cmd.AgentID(), cmd.Point(), cmd.ObservedAt())
	}

	return nil
}
