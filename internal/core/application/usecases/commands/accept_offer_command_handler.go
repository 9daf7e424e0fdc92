package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ErrNoOfferForAgent is returned when an agent tries to accept an order it was
// never offered.
var ErrNoOfferForAgent = errors.New("no offer extended to this agent")

// AcceptOfferCommandHandler resolves the dispatch race. Any number of offered
// agents may accept concurrently; the conditional update on the order row
// picks exactly one winner. Losers get a ConflictError and an
// "order unavailable" push.
//
// Idempotency: a duplicate accept by the winner is a no-op; a late accept
// after someone else won fails with a ConflictError.
type AcceptOfferCommandHandler struct {
	uowFactory  OrderAgentUoWFactory
	offerStore  ports.OfferStore
	broadcaster ports.Broadcaster
	webhooks    ports.WebhookDispatcher
}

// NewAcceptOfferCommandHandler creates a handler for offer acceptance.
func NewAcceptOfferCommandHandler(
	uowFactory OrderAgentUoWFactory,
	offerStore ports.OfferStore,
	broadcaster ports.Broadcaster,
	webhooks ports.WebhookDispatcher,
) AcceptOfferCommandHandler {
	return AcceptOfferCommandHandler{
		uowFactory:  uowFactory,
		offerStore:  offerStore,
		broadcaster: broadcaster,
		webhooks:    webhooks,
	}
}

// Handle processes the acceptance.
// The assignment commits through a compare-and-set on the order's searching
// status; whoever commits first wins, everyone else observes a conflict.
// Losing offers are superseded and their agents notified after the commit.
func (h *AcceptOfferCommandHandler) Handle(ctx context.Context, cmd AcceptOfferCommand) error {
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
	claimed, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	// Duplicate accept by the agent that already won.
	if claimed.Status() == order.Assigned &&
		claimed.Agent() != nil && claimed.Agent().IsEqual(cmd.AgentID()) {
		return nil
	}

	if claimed.Status() != order.SearchingAgent {
		return errs.NewConflictErrorWithCause("order", claimed.ID().String(),
			errors.New("order no longer available"))
	}

	extended := h.offerStore.Get(cmd.OrderID(), cmd.AgentID())
	if extended == nil {
		return ErrNoOfferForAgent
	}
	if extended.IsExpiredAt(now) {
		extended.Expire(now)
		return errs.NewConflictErrorWithCause("offer", claimed.ID().String(),
			errors.New("offer expired"))
	}

	if err = claimed.Assign(cmd.AgentID(), now); err != nil {
		return err
	}
	if err = orderRepo.UpdateInStatus(ctx, claimed, order.SearchingAgent); err != nil {
		return err
	}

	agentRepo := uow.AgentRepository()
	winner, err := agentRepo.Get(ctx, cmd.AgentID())
	if err != nil {
		return err
	}
	if err = winner.StartTrip(); err != nil {
		return err
	}
	winner.RecordAcceptance()
	if err = agentRepo.Update(ctx, winner); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	// The assignment already committed; the offer record is bookkeeping.
	_ = extended.Accept(now)

	losers := h.supersedeLosers(cmd.OrderID(), cmd.AgentID())
	h.offerStore.RemoveByOrder(cmd.OrderID())
	for _, loserID := range losers {
		h.broadcaster.PublishOrderUnavailable(loserID, cmd.OrderID())
	}

	h.webhooks.Notify(ctx, ports.WebhookEvent{
		Type:           ports.EventOrderAssigned,
		OrderID:        claimed.ID(),
		TrackingNumber: claimed.TrackingNumber(),
		PartnerID:      claimed.Partner(),
		Status:         claimed.Status().String(),
		OccurredAt:     now,
	})

	return nil
}

// supersedeLosers rejects every other pending offer for the order and returns
// the agents that lost.
func (h *AcceptOfferCommandHandler) supersedeLosers(orderID, winnerID kernel.UUID) []kernel.UUID {
	var losers []kernel.UUID
	for _, o := range h.offerStore.ListByOrder(orderID) {
		if o.AgentID().IsEqual(winnerID) {
			continue
		}
		if o.IsPending() {
			o.Supersede()
			losers = append(losers, o.AgentID())
		}
	}
	return losers
}
