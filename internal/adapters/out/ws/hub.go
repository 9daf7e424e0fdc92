// Package ws provides the websocket hub that pushes dispatch offers to
// connected agents. One connection per agent: a new attach replaces and
// closes the previous connection.
package ws

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

const writeTimeout = 5 * time.Second

// offerMessage is the wire format of an offer push.
type offerMessage struct {
	Type           string    `json:"type"`
	OrderID        string    `json:"orderId"`
	TrackingNumber string    `json:"trackingNumber"`
	PickupLat      float64   `json:"pickupLat"`
	PickupLng      float64   `json:"pickupLng"`
	DropoffLat     float64   `json:"dropoffLat"`
	DropoffLng     float64   `json:"dropoffLng"`
	PayoutAmount   float64   `json:"payoutAmount"`
	Priority       string    `json:"priority"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// unavailableMessage tells an agent a previously offered order is gone.
type unavailableMessage struct {
	Type    string `json:"type"`
	OrderID string `json:"orderId"`
}

type connection struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
}

func (c *connection) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Hub tracks agent connections and implements ports.Broadcaster.
// Delivery is best effort: a failed write drops the connection and the agent
// falls back to polling for available orders.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu    sync.RWMutex
	conns map[kernel.UUID]*connection
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Agent auth happens upstream; the handshake itself is open.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
		conns:  make(map[kernel.UUID]*connection),
	}
}

// Attach upgrades the request to a websocket and registers it as the agent's
// connection. The previous connection, if any, is closed. Blocks until the
// connection is closed by either side.
func (h *Hub) Attach(agentID kernel.UUID, w http.ResponseWriter, r *http.Request) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &connection{conn: conn}

	h.mu.Lock()
	if previous, ok := h.conns[agentID]; ok {
		_ = previous.conn.Close()
	}
	h.conns[agentID] = c
	h.mu.Unlock()

	h.logger.Debug("agent attached to offer channel", "agent_id", agentID.String())

	// Read loop: inbound payloads are ignored, offers are acknowledged over
	// HTTP. The loop exists to notice the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.detach(agentID, c)
	return nil
}

// PublishOffer pushes an offer to one agent. Returns false when the agent has
// no open connection or the write fails.
func (h *Hub) PublishOffer(agentID kernel.UUID, notification ports.OfferNotification) bool {
	h.mu.RLock()
	c, ok := h.conns[agentID]
	h.mu.RUnlock()

	if !ok {
		return false
	}

	msg := offerMessage{
		Type:           "order:offer",
		OrderID:        notification.OrderID.String(),
		TrackingNumber: notification.TrackingNumber,
		PickupLat:      notification.PickupLat,
		PickupLng:      notification.PickupLng,
		DropoffLat:     notification.DropoffLat,
		DropoffLng:     notification.DropoffLng,
		PayoutAmount:   notification.PayoutAmount,
		Priority:       notification.Priority,
		ExpiresAt:      notification.ExpiresAt,
	}

	if err := c.writeJSON(msg); err != nil {
		h.logger.Warn("offer push failed", "agent_id", agentID.String(), "error", err)
		_ = c.conn.Close()
		h.detach(agentID, c)
		return false
	}

	return true
}

// PublishOrderUnavailable tells an agent that an offered order went to
// someone else. Returns false when the agent has no open connection or the
// write fails.
func (h *Hub) PublishOrderUnavailable(agentID kernel.UUID, orderID kernel.UUID) bool {
	h.mu.RLock()
	c, ok := h.conns[agentID]
	h.mu.RUnlock()

	if !ok {
		return false
	}

	msg := unavailableMessage{
		Type:    "order:unavailable",
		OrderID: orderID.String(),
	}

	if err := c.writeJSON(msg); err != nil {
		h.logger.Warn("unavailable push failed", "agent_id", agentID.String(), "error", err)
		_ = c.conn.Close()
		h.detach(agentID, c)
		return false
	}

	return true
}

// Disconnect closes the agent's connection if one is open.
func (h *Hub) Disconnect(agentID kernel.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.conns[agentID]; ok {
		_ = c.conn.Close()
		delete(h.conns, agentID)
	}
}

// Connected reports whether the agent currently holds an open connection.
func (h *Hub) Connected(agentID kernel.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.conns[agentID]
	return ok
}

// detach removes the mapping only if it still points at this connection,
// so a reconnect that already replaced it is left alone.
func (h *Hub) detach(agentID kernel.UUID, c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.conns[agentID]; ok && current == c {
		delete(h.conns, agentID)
	}
}
