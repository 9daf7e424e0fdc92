package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

func newTestServer(t *testing.T, hub *Hub, agentID kernel.UUID) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Attach(agentID, w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForConnected(t *testing.T, hub *Hub, agentID kernel.UUID) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Connected(agentID) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("agent never connected")
}

func testNotification(orderID kernel.UUID) ports.OfferNotification {
	return ports.OfferNotification{
		OrderID:        orderID,
		TrackingNumber: "TRK-WS-0001",
		PickupLat:      12.9716,
		PickupLng:      77.5946,
		DropoffLat:     12.9352,
		DropoffLng:     77.6245,
		PayoutAmount:   15.00,
		Priority:       "NORMAL",
		ExpiresAt:      time.Now().Add(30 * time.Second),
	}
}

func Test_Hub_PublishOffer_DeliversToConnectedAgent(t *testing.T) {
	hub := NewHub(slog.Default())
	agentID := kernel.NewUUID()
	orderID := kernel.NewUUID()

	server := newTestServer(t, hub, agentID)
	conn := dial(t, server)
	waitForConnected(t, hub, agentID)

	delivered := hub.PublishOffer(agentID, testNotification(orderID))
	require.True(t, delivered)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "order:offer", msg["type"])
	assert.Equal(t, orderID.String(), msg["orderId"])
	assert.Equal(t, "TRK-WS-0001", msg["trackingNumber"])
	assert.InDelta(t, 15.00, msg["payoutAmount"], 0.001)
}

func Test_Hub_PublishOffer_NoConnection_ReturnsFalse(t *testing.T) {
	hub := NewHub(slog.Default())

	delivered := hub.PublishOffer(kernel.NewUUID(), testNotification(kernel.NewUUID()))

	assert.False(t, delivered)
}

func Test_Hub_Disconnect_ClosesConnection(t *testing.T) {
	hub := NewHub(slog.Default())
	agentID := kernel.NewUUID()

	server := newTestServer(t, hub, agentID)
	conn := dial(t, server)
	waitForConnected(t, hub, agentID)

	hub.Disconnect(agentID)

	assert.False(t, hub.Connected(agentID))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func Test_Hub_Reattach_ReplacesPreviousConnection(t *testing.T) {
	hub := NewHub(slog.Default())
	agentID := kernel.NewUUID()
	server := newTestServer(t, hub, agentID)

	first := dial(t, server)
	waitForConnected(t, hub, agentID)

	// Second attach for the same agent closes the first connection.
	second := dial(t, server)

	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	require.Error(t, err)

	// The replacement connection still receives offers.
	waitForConnected(t, hub, agentID)
	delivered := hub.PublishOffer(agentID, testNotification(kernel.NewUUID()))
	require.True(t, delivered)

	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := second.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "order:offer")
}
