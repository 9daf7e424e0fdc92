package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// AdvanceOrderCommandHandler drives the agent-facing lifecycle transitions:
// pickup, out-for-delivery and delivery. Each transition commits through a
// compare-and-set on the status the aggregate was loaded in, so a concurrent
// cancel or reassign makes the advance fail with a ConflictError instead of
// silently resurrecting the order.
//
// Delivery is the money moment: the ledger split is posted to the agent's
// wallet and the agent returns to the offer pool in the same transaction that
// completes the order.
type AdvanceOrderCommandHandler struct {
	uowFactory UoWFactory
	ledger     services.Ledger
	webhooks   ports.WebhookDispatcher
}

// NewAdvanceOrderCommandHandler creates a handler for lifecycle advances.
func NewAdvanceOrderCommandHandler(
	uowFactory UoWFactory,
	ledger services.Ledger,
	webhooks ports.WebhookDispatcher,
) AdvanceOrderCommandHandler {
	return AdvanceOrderCommandHandler{
		uowFactory: uowFactory,
		ledger:     ledger,
		webhooks:   webhooks,
	}
}

// Handle processes the advance.
// The domain enforces that only the assigned agent may advance and that
// timestamps never run backwards; the handler adds the conditional write and
// the delivery settlement.
func (h *AdvanceOrderCommandHandler) Handle(ctx context.Context, cmd AdvanceOrderCommand) error {
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
	advancing, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	loadedStatus := advancing.Status()

	switch cmd.Target() {
	case order.PickedUp:
		err = advancing.MarkPickedUp(cmd.AgentID(), now)
	case order.OutForDelivery:
		err = advancing.StartDelivery(cmd.AgentID())
	case order.Delivered:
		err = advancing.MarkDelivered(cmd.AgentID(), now)
	default:
		err = ErrTargetStatusIsNotAdvanceable
	}
	if err != nil {
		return err
	}

	if err = orderRepo.UpdateInStatus(ctx, advancing, loadedStatus); err != nil {
		return err
	}

	if cmd.Target() == order.Delivered {
		if err = h.settleDelivery(ctx, uow, advancing, now); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.notify(ctx, advancing, cmd.Target(), now)
	return nil
}

// settleDelivery posts the agent's earning and frees the agent, inside the
// delivery transaction. The wallet is created on first earning.
func (h *AdvanceOrderCommandHandler) settleDelivery(
	ctx context.Context,
	uow UoW,
	delivered *order.Order,
	now time.Time,
) error {
	agentRepo := uow.AgentRepository()
	deliveringAgent, err := agentRepo.Get(ctx, *delivered.Agent())
	if err != nil {
		return err
	}

	deliveringAgent.FinishTrip()
	if err = agentRepo.Update(ctx, deliveringAgent); err != nil {
		return err
	}

	agentShare, _, err := h.ledger.SplitPayout(delivered.Payout())
	if err != nil {
		return err
	}

	walletRepo := uow.WalletRepository()
	agentWallet, err := walletRepo.GetByAgent(ctx, deliveringAgent.ID())
	created := false
	if errors.Is(err, errs.ErrObjectNotFound) {
		agentWallet, err = wallet.NewWallet(deliveringAgent.ID())
		created = true
	}
	if err != nil {
		return err
	}

	orderID := delivered.ID()
	if _, err = agentWallet.PostEarning(kernel.NewUUID(), orderID, agentShare, now); err != nil {
		return err
	}

	if created {
		return walletRepo.Add(ctx, agentWallet)
	}
	return walletRepo.Update(ctx, agentWallet)
}

func (h *AdvanceOrderCommandHandler) notify(ctx context.Context, o *order.Order, target order.Status, now time.Time) {
	var eventType ports.WebhookEventType
	switch target {
	case order.PickedUp:
		eventType = ports.EventOrderPickedUp
	case order.Delivered:
		eventType = ports.EventOrderDelivered
	default:
		// Out-for-delivery is not a partner-facing event.
		return
	}

	h.webhooks.Notify(ctx, ports.WebhookEvent{
		Type:           eventType,
		OrderID:        o.ID(),
		TrackingNumber: o.TrackingNumber(),
		PartnerID:      o.Partner(),
		Status:         o.Status().String(),
		OccurredAt:     now,
	})
}
