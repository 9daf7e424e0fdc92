package order_test

import (
	"fmt"
	"testing"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Constants(t *testing.T) {
	t.Run("should have correct enum values", func(t *testing.T) {
		assert.Equal(t, 0, int(order.Unknown))
		assert.Equal(t, 1, int(order.SearchingAgent))
		assert.Equal(t, 2, int(order.Assigned))
		assert.Equal(t, 3, int(order.PickedUp))
		assert.Equal(t, 4, int(order.OutForDelivery))
		assert.Equal(t, 5, int(order.Delivered))
		assert.Equal(t, 6, int(order.Cancelled))
	})
}

func TestStatus_Validate(t *testing.T) {
	t.Run("should validate valid statuses", func(t *testing.T) {
		validStatuses := []order.Status{
			order.SearchingAgent,
			order.Assigned,
			order.PickedUp,
			order.OutForDelivery,
			order.Delivered,
			order.Cancelled,
		}

		for _, status := range validStatuses {
			t.Run(status.String(), func(t *testing.T) {
				require.NoError(t, status.Validate())
			})
		}
	})

	t.Run("should reject invalid status values", func(t *testing.T) {
		for _, status := range []order.Status{order.Unknown, order.Status(-1), order.Status(7), order.Status(100)} {
			t.Run(fmt.Sprintf("value %d", int(status)), func(t *testing.T) {
				err := status.Validate()

				require.Error(t, err)
				assert.IsType(t, &errs.ValueIsInvalidError{}, err)
			})
		}
	})
}

func TestStatus_String(t *testing.T) {
	t.Run("should return wire names", func(t *testing.T) {
		assert.Equal(t, "SEARCHING_AGENT", order.SearchingAgent.String())
		assert.Equal(t, "ASSIGNED", order.Assigned.String())
		assert.Equal(t, "PICKED_UP", order.PickedUp.String())
		assert.Equal(t, "OUT_FOR_DELIVERY", order.OutForDelivery.String())
		assert.Equal(t, "DELIVERED", order.Delivered.String())
		assert.Equal(t, "CANCELLED", order.Cancelled.String())
		assert.Equal(t, "UNKNOWN", order.Unknown.String())
		assert.Equal(t, "UNKNOWN", order.Status(42).String())
	})
}

func TestParseStatus(t *testing.T) {
	t.Run("should parse wire names", func(t *testing.T) {
		status, err := order.ParseStatus("PICKED_UP")

		require.NoError(t, err)
		assert.Equal(t, order.PickedUp, status)
	})

	t.Run("should reject unknown values", func(t *testing.T) {
		for _, value := range []string{"", "UNKNOWN", "picked_up", "DELAYED", "bogus"} {
			_, err := order.ParseStatus(value)

			require.Error(t, err)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		}
	})
}

func TestStatus_TransitionTable(t *testing.T) {
	allStatuses := []order.Status{
		order.SearchingAgent,
		order.Assigned,
		order.PickedUp,
		order.OutForDelivery,
		order.Delivered,
		order.Cancelled,
	}

	allowed := map[order.Status][]order.Status{
		order.SearchingAgent: {order.Assigned, order.Cancelled},
		order.Assigned:       {order.PickedUp, order.SearchingAgent, order.Cancelled},
		order.PickedUp:       {order.OutForDelivery, order.Cancelled},
		order.OutForDelivery: {order.Delivered, order.Cancelled},
		order.Delivered:      {},
		order.Cancelled:      {},
	}

	contains := func(list []order.Status, s order.Status) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	}

	t.Run("every pair matches the table exactly", func(t *testing.T) {
		for _, from := range allStatuses {
			for _, to := range allStatuses {
				t.Run(fmt.Sprintf("%s to %s", from, to), func(t *testing.T) {
					result, err := from.TransitionTo(to)

					if contains(allowed[from], to) {
						require.NoError(t, err)
						assert.Equal(t, to, result)
					} else {
						require.Error(t, err)
						require.ErrorIs(t, err, errs.ErrInvalidTransition)
						assert.Equal(t, order.Status(0), result)
					}
				})
			}
		}
	})

	t.Run("transition to an invalid status fails validation", func(t *testing.T) {
		_, err := order.SearchingAgent.TransitionTo(order.Unknown)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, order.Delivered.IsTerminal())
	assert.True(t, order.Cancelled.IsTerminal())
	assert.False(t, order.SearchingAgent.IsTerminal())
	assert.False(t, order.Assigned.IsTerminal())
	assert.False(t, order.PickedUp.IsTerminal())
	assert.False(t, order.OutForDelivery.IsTerminal())
}

func TestStatus_IsActive(t *testing.T) {
	assert.True(t, order.Assigned.IsActive())
	assert.True(t, order.PickedUp.IsActive())
	assert.True(t, order.OutForDelivery.IsActive())
	assert.False(t, order.SearchingAgent.IsActive())
	assert.False(t, order.Delivered.IsActive())
	assert.False(t, order.Cancelled.IsActive())
}
