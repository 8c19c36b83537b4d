package commands_test

import (
	"testing"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdvanceOrderCommand(t *testing.T) {
	t.Run("should create valid command for merchant transition", func(t *testing.T) {
		orderID := kernel.NewUUID()

		cmd, err := commands.NewAdvanceOrderCommand(orderID, order.AcceptedByMerchant, order.ActorMerchant, nil)

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.True(t, cmd.OrderID().IsEqual(orderID))
		assert.Equal(t, order.AcceptedByMerchant, cmd.Target())
		assert.Equal(t, order.ActorMerchant, cmd.Actor())
		assert.Nil(t, cmd.CourierID())
	})

	t.Run("should require courier for pickup", func(t *testing.T) {
		_, err := commands.NewAdvanceOrderCommand(kernel.NewUUID(), order.PickedUp, order.ActorCourier, nil)

		assert.ErrorIs(t, err, commands.ErrCourierIsRequiredForPickup)
	})

	t.Run("should accept pickup with courier", func(t *testing.T) {
		courierID := kernel.NewUUID()

		cmd, err := commands.NewAdvanceOrderCommand(kernel.NewUUID(), order.PickedUp, order.ActorCourier, &courierID)

		require.NoError(t, err)
		require.NotNil(t, cmd.CourierID())
		assert.True(t, cmd.CourierID().IsEqual(courierID))
	})

	t.Run("should reject non-advance targets", func(t *testing.T) {
		for _, target := range []order.Status{
			order.New, order.AssignedToCourier, order.Delivered, order.Cancelled, order.Failed,
		} {
			_, err := commands.NewAdvanceOrderCommand(kernel.NewUUID(), target, order.ActorAdmin, nil)
			assert.Error(t, err, "target %s should be rejected", target)
		}
	})

	t.Run("should reject unknown actor", func(t *testing.T) {
		_, err := commands.NewAdvanceOrderCommand(kernel.NewUUID(), order.Ready, order.ActorUnknown, nil)

		require.Error(t, err)
	})
}
