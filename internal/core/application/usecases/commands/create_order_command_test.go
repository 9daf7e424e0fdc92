package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateOrderCommand_ValidInput(t *testing.T) {
	id := kernel.NewUUID()
	partnerID := kernel.NewUUID()
	pickup := testPoint(t, 52.52, 13.405)
	dropoff := testPoint(t, 52.5, 13.39)
	payout := testMoney(t, 12.50)

	cmd, err := commands.NewCreateOrderCommand(id, partnerID, pickup, dropoff, payout, order.PriorityHigh, 45)
	require.NoError(t, err)
	assert.Equal(t, id, cmd.OrderID())
	assert.Equal(t, partnerID, cmd.PartnerID())
	assert.Equal(t, pickup, cmd.Pickup())
	assert.Equal(t, dropoff, cmd.Dropoff())
	assert.Equal(t, payout, cmd.Payout())
	assert.Equal(t, order.PriorityHigh, cmd.Priority())
	assert.Equal(t, 45, cmd.EstimatedDurationMins())
}

func TestNewCreateOrderCommand_InvalidOrderID(t *testing.T) {
	invalidID := kernel.UUID{} // zero value, should trigger validation error
	_, err := commands.NewCreateOrderCommand(invalidID, kernel.NewUUID(),
		testPoint(t, 52.52, 13.405), testPoint(t, 52.5, 13.39),
		testMoney(t, 12.50), order.PriorityNormal, 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestNewCreateOrderCommand_InvalidPayout(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(),
		testPoint(t, 52.52, 13.405), testPoint(t, 52.5, 13.39),
		kernel.Money(0), order.PriorityNormal, 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrPayoutIsInvalid)
}

func TestNewCreateOrderCommand_NegativeEstimatedDuration(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(),
		testPoint(t, 52.52, 13.405), testPoint(t, 52.5, 13.39),
		testMoney(t, 12.50), order.PriorityNormal, -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrEstimatedDurationIsInvalid)
}

func TestNewCreateOrderCommand_InvalidPriority(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(),
		testPoint(t, 52.52, 13.405), testPoint(t, 52.5, 13.39),
		testMoney(t, 12.50), order.Priority(0), 30)
	require.Error(t, err)
}
