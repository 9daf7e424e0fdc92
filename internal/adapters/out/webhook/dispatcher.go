// Package webhook delivers partner-facing lifecycle events as JSON over HTTP.
// The core emits events after its own transaction commits; this adapter posts
// them to the configured webhook endpoint and treats failures as log-and-drop,
// never as an error for the emitting operation.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"dispatch/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// eventPayload is the wire format of a lifecycle event.
type eventPayload struct {
	Type           string    `json:"type"`
	OrderID        string    `json:"orderId"`
	TrackingNumber string    `json:"trackingNumber"`
	PartnerID      string    `json:"partnerId"`
	Status         string    `json:"status,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// HTTPDispatcher implements ports.WebhookDispatcher by posting events to a
// single configured endpoint. Retries and per-partner routing belong to the
// downstream webhook service behind that endpoint.
type HTTPDispatcher struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewHTTPDispatcher creates a dispatcher posting to the given endpoint.
// An empty endpoint disables delivery; events are logged and dropped.
func NewHTTPDispatcher(endpoint string, logger *slog.Logger) *HTTPDispatcher {
	return &HTTPDispatcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
		logger:   logger.With("component", "webhook_dispatcher"),
	}
}

// Notify posts the event to the configured endpoint.
func (d *HTTPDispatcher) Notify(ctx context.Context, event ports.WebhookEvent) {
	if d.endpoint == "" {
		d.logger.DebugContext(ctx, "webhook endpoint not configured, dropping event",
			"type", string(event.Type), "order_id", event.OrderID.String())
		return
	}

	payload := eventPayload{
		Type:           string(event.Type),
		OrderID:        event.OrderID.String(),
		TrackingNumber: event.TrackingNumber,
		PartnerID:      event.PartnerID.String(),
		Status:         event.Status,
		OccurredAt:     event.OccurredAt.UTC(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.ErrorContext(ctx, "webhook payload encoding failed", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		d.logger.ErrorContext(ctx, "webhook request build failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.WarnContext(ctx, "webhook delivery failed",
			"type", string(event.Type), "order_id", event.OrderID.String(), "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		d.logger.WarnContext(ctx, "webhook endpoint rejected event",
			"type", string(event.Type), "order_id", event.OrderID.String(),
			"status", fmt.Sprintf("%d", resp.StatusCode))
	}
}
