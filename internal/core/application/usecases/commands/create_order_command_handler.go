package commands

import (
	"context"
	"strings"
	"time"

	"github.com/lucsky/cuid"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// CreateOrderCommandHandler handles the business logic for order creation.
// Creates the order in "searching agent" status with a generated tracking
// number and notifies the partner once the order is persisted.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, webhooks)
//	cmd, _ := NewCreateOrderCommand(kernel.NewUUID(), partnerID, pickup, dropoff, payout, order.PriorityNormal, 30)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	// Order is now searching for an agent
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	webhooks   ports.WebhookDispatcher
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
// Requires an OrderUoWFactory for transactional persistence and a webhook
// dispatcher for the partner's ORDER_CREATED notification.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	webhooks ports.WebhookDispatcher,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		webhooks:   webhooks,
	}
}

// Handle processes the order creation command.
// Generates a tracking number, creates the order in "searching agent" status
// and persists it. The partner webhook fires only after the transaction
// commits.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	trackingNumber := newTrackingNumber()

	newOrder, err := order.NewOrder(
		cmd.OrderID(),
		trackingNumber,
		cmd.PartnerID(),
		cmd.Pickup(),
		cmd.Dropoff(),
		cmd.Payout(),
		cmd.Priority(),
		cmd.EstimatedDurationMins(),
		now,
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.webhooks.Notify(ctx, ports.WebhookEvent{
		Type:           ports.EventOrderCreated,
		OrderID:        newOrder.ID(),
		TrackingNumber: newOrder.TrackingNumber(),
		PartnerID:      newOrder.Partner(),
		Status:         newOrder.Status().String(),
		OccurredAt:     now,
	})

	return nil
}

// newTrackingNumber generates the public tracking reference for an order.
// Collision-resistant without coordination, which keeps order creation a
// single insert.
func newTrackingNumber() string {
	return "TRK-" + strings.ToUpper(cuid.New())
}
