package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// RejectOfferCommandHandler resolves an agent's explicit decline.
// Rejection only touches the offer record: the order stays in searching and
// the next dispatch tick widens the candidate set. A reject for an offer that
// was never extended, already resolved, or already expired is a no-op, so
// agents can decline without caring about races.
type RejectOfferCommandHandler struct {
	offerStore ports.OfferStore
}

// NewRejectOfferCommandHandler creates a handler for offer rejection.
func NewRejectOfferCommandHandler(offerStore ports.OfferStore) RejectOfferCommandHandler {
	return RejectOfferCommandHandler{
		offerStore: offerStore,
	}
}

// Handle processes the rejection.
func (h *RejectOfferCommandHandler) Handle(_ context.Context, cmd RejectOfferCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	if extended := h.offerStore.Get(cmd.OrderID(), cmd.AgentID()); extended != nil {
		extended.Reject()
	}

	return nil
}
