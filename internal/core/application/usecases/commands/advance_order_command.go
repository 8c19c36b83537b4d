package commands

import (
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrAdvanceOrderCommandIsNotConstructed = errors.New(
		"AdvanceOrderCommand must be created via NewAdvanceOrderCommand constructor",
	)
	ErrCourierIsRequiredForPickup = errors.New("courier is required for pickup")
)

// AdvanceOrderCommand represents a request to move an order one step along
// its operational workflow: accept, start preparing, mark ready, pick up or
// go on the way. Claim, delivery completion and the exception paths have
// dedicated commands because they carry side effects of their own.
type AdvanceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	target    order.Status
	actor     order.Actor
	courierID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewAdvanceOrderCommand creates a command to advance an order.
// The courier ID is required only for the pickup transition.
func NewAdvanceOrderCommand(
	orderID kernel.UUID,
	target order.Status,
	actor order.Actor,
	courierID *kernel.UUID,
) (AdvanceOrderCommand, error) {
	cmd := AdvanceOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(target),
		cmd.setActor(actor),
		cmd.setCourierID(target, courierID),
	); err != nil {
		return AdvanceOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AdvanceOrderCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceOrderCommandIsNotConstructed)
}

// OrderID returns the order to advance.
func (c AdvanceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target returns the requested status.
func (c AdvanceOrderCommand) Target() order.Status {
	return c.target
}

// Actor returns the role requesting the transition.
func (c AdvanceOrderCommand) Actor() order.Actor {
	return c.actor
}

// CourierID returns the courier picking up the order, or nil.
func (c AdvanceOrderCommand) CourierID() *kernel.UUID {
	return c.courierID
}

func (c *AdvanceOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *AdvanceOrderCommand) setTarget(target order.Status) error {
	switch target {
	case order.AcceptedByMerchant, order.Preparing, order.Ready, order.PickedUp, order.OnTheWay:
		c.target = target
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("target status",
			fmt.Errorf("%s is not an advance transition", target))
	}
}

func (c *AdvanceOrderCommand) setActor(actor order.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	c.actor = actor
	return nil
}

func (c *AdvanceOrderCommand) setCourierID(target order.Status, courierID *kernel.UUID) error {
	if courierID == nil {
		if target == order.PickedUp {
			return ErrCourierIsRequiredForPickup
		}
		return nil
	}

	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}
