package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

func testPoint(t *testing.T, lat, lng float64) kernel.GeoPoint {
	t.Helper()
	point, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return point
}

func testMoney(t *testing.T, amount float64) kernel.Money {
	t.Helper()
	money, err := kernel.NewMoneyFromFloat(amount)
	require.NoError(t, err)
	return money
}

func newSearchingOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(
		kernel.NewUUID(),
		"TRK-TEST",
		kernel.NewUUID(),
		testPoint(t, 52.52, 13.405),
		testPoint(t, 52.5, 13.39),
		testMoney(t, 15.00),
		order.PriorityNormal,
		30,
		time.Now().UTC(),
	)
	require.NoError(t, err)
	return o
}

func newAssignedOrder(t *testing.T, agentID kernel.UUID) *order.Order {
	t.Helper()
	o := newSearchingOrder(t)
	require.NoError(t, o.Assign(agentID, time.Now().UTC()))
	return o
}

func newOnlineAgent(t *testing.T) *agent.Agent {
	t.Helper()
	location := testPoint(t, 52.521, 13.406)
	observedAt := time.Now().UTC().Add(-time.Minute)
	a, err := agent.RestoreAgent(
		kernel.NewUUID(),
		kernel.NewUUID(),
		agent.Online,
		true,
		&location,
		&observedAt,
		10, 8,
	)
	require.NoError(t, err)
	return a
}

func newOnTripAgent(t *testing.T) *agent.Agent {
	t.Helper()
	a := newOnlineAgent(t)
	require.NoError(t, a.StartTrip())
	return a
}
