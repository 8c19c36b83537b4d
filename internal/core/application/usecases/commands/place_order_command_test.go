package commands_test

import (
	"testing"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/finance"
	"marketplace/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlaceOrderCommand(t *testing.T) {
	t.Run("should create valid command with all valid parameters", func(t *testing.T) {
		orderID := kernel.NewUUID()
		storeID := kernel.NewUUID()
		customerID := kernel.NewUUID()
		lines := testOrderLines(t)

		cmd, err := commands.NewPlaceOrderCommand(orderID, storeID, customerID, "10 Downing St", lines)

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.True(t, cmd.OrderID().IsEqual(orderID))
		assert.True(t, cmd.StoreID().IsEqual(storeID))
		assert.True(t, cmd.CustomerID().IsEqual(customerID))
		assert.Equal(t, "10 Downing St", cmd.DeliveryAddress())
		assert.Len(t, cmd.Lines(), 1)
	})

	t.Run("should fail with invalid order ID", func(t *testing.T) {
		var invalidID kernel.UUID

		_, err := commands.NewPlaceOrderCommand(invalidID, kernel.NewUUID(), kernel.NewUUID(), "addr", testOrderLines(t))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "UUID must be created")
	})

	t.Run("should fail with empty delivery address", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), "", testOrderLines(t))

		assert.ErrorIs(t, err, commands.ErrDeliveryAddressIsRequired)
	})

	t.Run("should fail without order lines", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), "addr", nil)

		assert.ErrorIs(t, err, commands.ErrOrderLinesAreRequired)
	})

	t.Run("should fail with an invalid line", func(t *testing.T) {
		var invalidLine finance.OrderLine

		_, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), "addr",
			[]finance.OrderLine{invalidLine})

		require.Error(t, err)
	})

	t.Run("zero value command should fail validation", func(t *testing.T) {
		var cmd commands.PlaceOrderCommand

		assert.ErrorIs(t, cmd.Validate(), commands.ErrPlaceOrderCommandIsNotConstructed)
	})
}
