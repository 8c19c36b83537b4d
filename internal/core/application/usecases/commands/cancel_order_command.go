package commands

import (
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand represents a request to move an order to one of the
// exception states, Cancelled or Failed. Both paths reverse the order's
// financial effect with a mirroring refund entry in the same transaction.
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	target  order.Status
	actor   order.Actor

	guard guard.ConstructorGuard
}

// NewCancelOrderCommand creates a command to cancel or fail an order.
func NewCancelOrderCommand(orderID kernel.UUID, target order.Status, actor order.Actor) (CancelOrderCommand, error) {
	cmd := CancelOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(target),
		cmd.setActor(actor),
	); err != nil {
		return CancelOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

// OrderID returns the order to cancel or fail.
func (c CancelOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target returns the requested exception status.
func (c CancelOrderCommand) Target() order.Status {
	return c.target
}

// Actor returns the role requesting the exception.
func (c CancelOrderCommand) Actor() order.Actor {
	return c.actor
}

func (c *CancelOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CancelOrderCommand) setTarget(target order.Status) error {
	if target != order.Cancelled && target != order.Failed {
		return errs.NewValueIsInvalidErrorWithCause("target status",
			fmt.Errorf("%s is not an exception status", target))
	}

	c.target = target
	return nil
}

func (c *CancelOrderCommand) setActor(actor order.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	c.actor = actor
	return nil
}
