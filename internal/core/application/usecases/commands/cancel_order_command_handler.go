package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// CancelOrderCommandHandler cancels orders on behalf of the owning partner or
// an admin. A partner may only cancel its own orders; agents cannot cancel at
// all. The assigned agent, if any, returns to the offer pool and any
// in-flight offers for the order are withdrawn.
type CancelOrderCommandHandler struct {
	uowFactory OrderAgentUoWFactory
	offerStore ports.OfferStore
	webhooks   ports.WebhookDispatcher
}

// NewCancelOrderCommandHandler creates a handler for order cancellation.
func NewCancelOrderCommandHandler(
	uowFactory OrderAgentUoWFactory,
	offerStore ports.OfferStore,
	webhooks ports.WebhookDispatcher,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		offerStore: offerStore,
		webhooks:   webhooks,
	}
}

// Handle processes the cancellation.
// The status write is conditional on the status the order was loaded in, so
// racing against a delivery or an accept fails cleanly with a ConflictError.
func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	cancelling, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	switch cmd.ActorRole() {
	case RoleAdmin:
	case RolePartner:
		if !cancelling.Partner().IsEqual(cmd.ActorID()) {
			return errs.NewForbiddenErrorWithCause("cancel order",
				errors.New("order belongs to another partner"))
		}
	default:
		return errs.NewForbiddenError("cancel order")
	}

	loadedStatus := cancelling.Status()
	assignedAgent := cancelling.Agent()

	if err = cancelling.Cancel(cmd.Reason(), now); err != nil {
		return err
	}
	if err = orderRepo.UpdateInStatus(ctx, cancelling, loadedStatus); err != nil {
		return err
	}

	if assignedAgent != nil {
		agentRepo := uow.AgentRepository()
		freed, agentErr := agentRepo.Get(ctx, *assignedAgent)
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

	h.offerStore.RemoveByOrder(cancelling.ID())

	h.webhooks.Notify(ctx, ports.WebhookEvent{
		Type:           ports.EventOrderCancelled,
		OrderID:        cancelling.ID(),
		TrackingNumber: cancelling.TrackingNumber(),
		PartnerID:      cancelling.Partner(),
		Status:         cancelling.Status().String(),
		OccurredAt:     now,
	})

	return nil
}
