package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrRefundOrderCommandIsNotConstructed = errors.New(
		"RefundOrderCommand must be created via NewRefundOrderCommand constructor",
	)
	ErrRefundLinesAreRequired = errors.New("at least one refund line is required")
)

const maxRefundQuantity = 10000

// RefundLine names a refunded position of a delivered order by product and
// quantity. Prices are never supplied here: the refund reuses the unit
// prices frozen in the order's snapshot.
type RefundLine struct {
	ProductID kernel.UUID
	Quantity  int
}

// RefundOrderCommand represents a partial (or full) refund of a delivered
// order. The refunded portion is recomputed with the order's frozen rates
// and reversed in the ledger; the order's own snapshot stays untouched.
type RefundOrderCommand struct { //nolint:recvcheck //using for validation
	orderID           kernel.UUID
	lines             []RefundLine
	refundDeliveryFee bool

	guard guard.ConstructorGuard
}

// NewRefundOrderCommand creates a command to refund part of a delivered order.
func NewRefundOrderCommand(orderID kernel.UUID, lines []RefundLine, refundDeliveryFee bool) (RefundOrderCommand, error) {
	cmd := RefundOrderCommand{
		guard:             guard.NewConstructorGuard(),
		refundDeliveryFee: refundDeliveryFee,
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setLines(lines),
	); err != nil {
		return RefundOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RefundOrderCommand) Validate() error {
	return c.guard.Validate(ErrRefundOrderCommandIsNotConstructed)
}

// OrderID returns the order being refunded.
func (c RefundOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Lines returns the refunded positions.
func (c RefundOrderCommand) Lines() []RefundLine {
	out := make([]RefundLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// RefundDeliveryFee reports whether the delivery fee is refunded too.
func (c RefundOrderCommand) RefundDeliveryFee() bool {
	return c.refundDeliveryFee
}

func (c *RefundOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RefundOrderCommand) setLines(lines []RefundLine) error {
	if len(lines) == 0 {
		return ErrRefundLinesAreRequired
	}

	for _, line := range lines {
		if err := line.ProductID.Validate(); err != nil {
			return err
		}
		if line.Quantity <= 0 {
			return errs.NewValueIsOutOfRangeError("refund quantity", line.Quantity, 1, maxRefundQuantity)
		}
	}

	c.lines = make([]RefundLine, len(lines))
	copy(c.lines, lines)
	return nil
}
