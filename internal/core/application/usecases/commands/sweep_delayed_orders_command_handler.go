package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// SweepDelayedOrdersCommandHandler is the delay monitor. Each sweep flags
// assigned orders whose delivery has run past the estimate plus a grace
// period. The flag is an overlay, not a status: a delayed order keeps moving
// through its lifecycle.
//
// Per-order failures are collected, not fatal; one bad row never stops the
// sweep.
type SweepDelayedOrdersCommandHandler struct {
	uowFactory          OrderUoWFactory
	webhooks            ports.WebhookDispatcher
	defaultDurationMins int
	grace               time.Duration
}

// NewSweepDelayedOrdersCommandHandler creates a handler for delay sweeps.
// defaultDurationMins applies to orders the partner gave no estimate for.
func NewSweepDelayedOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	webhooks ports.WebhookDispatcher,
	defaultDurationMins int,
	grace time.Duration,
) (SweepDelayedOrdersCommandHandler, error) {
	if defaultDurationMins <= 0 {
		return SweepDelayedOrdersCommandHandler{}, errs.NewValueIsInvalidErrorWithCause(
			"defaultDurationMins", fmt.Errorf("%d is not positive", defaultDurationMins))
	}
	if grace < 0 {
		return SweepDelayedOrdersCommandHandler{}, errs.NewValueIsInvalidErrorWithCause(
			"grace", fmt.Errorf("%s is negative", grace))
	}

	return SweepDelayedOrdersCommandHandler{
		uowFactory:          uowFactory,
		webhooks:            webhooks,
		defaultDurationMins: defaultDurationMins,
		grace:               grace,
	}, nil
}

// Handle processes one sweep.
// The repository bounds the scan to orders assigned before now minus the
// grace period; the per-order estimate decides which of those are actually
// late. Flag writes are conditional on the status the order was loaded in,
// so a sweep racing a lifecycle transition backs off that order.
func (h *SweepDelayedOrdersCommandHandler) Handle(ctx context.Context, cmd SweepDelayedOrdersCommand) error {
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
	assigned, err := orderRepo.GetAssignedBefore(ctx, now.Add(-h.grace))
	if err != nil {
		return err
	}

	var (
		flagged   []*order.Order
		sweepErrs []error
	)

	for _, o := range assigned {
		if !h.isLate(o, now) {
			continue
		}

		newly, markErr := o.MarkDelayed()
		if markErr != nil {
			sweepErrs = append(sweepErrs, fmt.Errorf("order %s: %w", o.ID(), markErr))
			continue
		}
		if !newly {
			continue
		}

		if updateErr := orderRepo.UpdateInStatus(ctx, o, o.Status()); updateErr != nil {
			sweepErrs = append(sweepErrs, fmt.Errorf("order %s: %w", o.ID(), updateErr))
			continue
		}
		flagged = append(flagged, o)
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	for _, o := range flagged {
		h.webhooks.Notify(ctx, ports.WebhookEvent{
			Type:           ports.EventOrderDelayed,
			OrderID:        o.ID(),
			TrackingNumber: o.TrackingNumber(),
			PartnerID:      o.Partner(),
			Status:         o.Status().String(),
			OccurredAt:     now,
		})
	}

	return errors.Join(sweepErrs...)
}

// isLate reports whether the order has overrun its estimate plus grace.
func (h *SweepDelayedOrdersCommandHandler) isLate(o *order.Order, now time.Time) bool {
	if o.AssignedAt() == nil {
		return false
	}

	minutes := o.EstimatedDurationMins()
	if minutes == 0 {
		minutes = h.defaultDurationMins
	}

	deadline := o.AssignedAt().Add(time.Duration(minutes)*time.Minute + h.grace)
	return now.After(deadline)
}
