package commands

import (
	"context"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ReassignOrderCommandHandler requeues an assigned order for dispatch.
// Admin only. The order drops its agent, assignment time, delay flag and
// attempt counter and re-enters the searching pool; the previous agent goes
// back to Online.
//
// The conditional write on the Assigned status means a reassign racing
// against the agent's pickup resolves to exactly one outcome: either the
// pickup happened first and the reassign conflicts, or the order is already
// back in searching and the pickup fails.
type ReassignOrderCommandHandler struct {
	uowFactory OrderAgentUoWFactory
	offerStore ports.OfferStore
}

// NewReassignOrderCommandHandler creates a handler for admin reassignment.
func NewReassignOrderCommandHandler(
	uowFactory OrderAgentUoWFactory,
	offerStore ports.OfferStore,
) ReassignOrderCommandHandler {
	return ReassignOrderCommandHandler{
		uowFactory: uowFactory,
		offerStore: offerStore,
	}
}

// Handle processes the reassignment.
func (h *ReassignOrderCommandHandler) Handle(ctx context.Context, cmd ReassignOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if cmd.ActorRole() != RoleAdmin {
		return errs.NewForbiddenError("reassign order")
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	requeuing, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	previousAgent := requeuing.Agent()

	if err = requeuing.Requeue(); err != nil {
		return err
	}
	if err = orderRepo.UpdateInStatus(ctx, requeuing, order.Assigned); err != nil {
		return err
	}

	if previousAgent != nil {
		agentRepo := uow.AgentRepository()
		freed, agentErr := agentRepo.Get(ctx, *previousAgent)
		if agentErr != nil {
			return agentErr
		}
		freed.FinishTrip()
		if agentErr = agentRepo.Update(ctx, freed); agentErr != nil {
			return agentErr
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.offerStore.RemoveByOrder(requeuing.ID())
	return nil
}
