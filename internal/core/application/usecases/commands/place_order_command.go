package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/finance"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var (
	ErrPlaceOrderCommandIsNotConstructed = errors.New(
		"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
	)
	ErrDeliveryAddressIsRequired = errors.New("delivery address is required")
	ErrOrderLinesAreRequired     = errors.New("at least one order line is required")
)

// PlaceOrderCommand represents a customer's request to place an order with a
// store. It carries the frozen unit prices and quantities; every financial
// figure downstream is derived from these at placement time and never
// re-quoted.
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID         kernel.UUID
	storeID         kernel.UUID
	customerID      kernel.UUID
	deliveryAddress string
	lines           []finance.OrderLine

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand creates a command to place a new order.
// Validates identifiers, the delivery address and every order line.
func NewPlaceOrderCommand(
	orderID kernel.UUID,
	storeID kernel.UUID,
	customerID kernel.UUID,
	deliveryAddress string,
	lines []finance.OrderLine,
) (PlaceOrderCommand, error) {
	cmd := PlaceOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setStoreID(storeID),
		cmd.setCustomerID(customerID),
		cmd.setDeliveryAddress(deliveryAddress),
		cmd.setLines(lines),
	); err != nil {
		return PlaceOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the new order.
func (c PlaceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// StoreID returns the store the order is placed with.
func (c PlaceOrderCommand) StoreID() kernel.UUID {
	return c.storeID
}

// CustomerID returns the buyer placing the order.
func (c PlaceOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// DeliveryAddress returns the destination address for the delivery.
func (c PlaceOrderCommand) DeliveryAddress() string {
	return c.deliveryAddress
}

// Lines returns the frozen order lines.
func (c PlaceOrderCommand) Lines() []finance.OrderLine {
	out := make([]finance.OrderLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *PlaceOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *PlaceOrderCommand) setStoreID(storeID kernel.UUID) error {
	if err := storeID.Validate(); err != nil {
		return err
	}

	c.storeID = storeID
	return nil
}

func (c *PlaceOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}

	c.customerID = customerID
	return nil
}

func (c *PlaceOrderCommand) setDeliveryAddress(deliveryAddress string) error {
	if deliveryAddress == "" {
		return ErrDeliveryAddressIsRequired
	}

	c.deliveryAddress = deliveryAddress
	return nil
}

func (c *PlaceOrderCommand) setLines(lines []finance.OrderLine) error {
	if len(lines) == 0 {
		return ErrOrderLinesAreRequired
	}

	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}

	c.lines = make([]finance.OrderLine, len(lines))
	copy(c.lines, lines)
	return nil
}
