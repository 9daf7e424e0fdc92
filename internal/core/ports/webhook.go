package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// WebhookEventType identifies a partner-facing lifecycle event.
type WebhookEventType string

const (
	EventOrderCreated         WebhookEventType = "ORDER_CREATED"
	EventOrderAssigned        WebhookEventType = "ORDER_ASSIGNED"
	EventOrderPickedUp        WebhookEventType = "ORDER_PICKED_UP"
	EventOrderDelivered       WebhookEventType = "ORDER_DELIVERED"
	EventOrderCancelled       WebhookEventType = "ORDER_CANCELLED"
	EventOrderDelayed         WebhookEventType = "ORDER_DELAYED"
	EventOrderSearchExhausted WebhookEventType = "ORDER_SEARCH_EXHAUSTED"
)

// WebhookEvent is one lifecycle notification for a partner.
type WebhookEvent struct {
	Type           WebhookEventType
	OrderID        kernel.UUID
	TrackingNumber string
	PartnerID      kernel.UUID
	Status         string
	OccurredAt     time.Time
}

// WebhookDispatcher delivers lifecycle events to partners. The core emits
// events after its own transaction commits; retries, signing and endpoint
// management belong to the implementation.
type WebhookDispatcher interface {
	Notify(ctx context.Context, event WebhookEvent)
}
