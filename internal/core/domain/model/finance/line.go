package finance

import (
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// ErrOrderLineIsNotConstructed is returned when an OrderLine was not created
// through the NewOrderLine factory method.
var ErrOrderLineIsNotConstructed = errors.New("OrderLine must be created via NewOrderLine constructor")

// OrderLine is one priced product position of an order. The inclusive unit
// price is a frozen copy taken at order placement, not a live reference to a
// mutable catalog price, so later price changes never alter the order.
//
// OrderLine is immutable once constructed.
type OrderLine struct { //nolint:recvcheck //using for validation
	productID       kernel.UUID
	unitPriceIncVat kernel.Money
	quantity        int

	isConstructed bool
}

// NewOrderLine creates a validated order line.
// Quantity must be at least 1 and the unit price strictly positive:
// zero-quantity and free lines are malformed input, not lines to skip.
func NewOrderLine(productID kernel.UUID, unitPriceIncVat kernel.Money, quantity int) (OrderLine, error) {
	line := OrderLine{isConstructed: true}

	if err := errors.Join(
		line.setProductID(productID),
		line.setUnitPrice(unitPriceIncVat),
		line.setQuantity(quantity),
	); err != nil {
		return OrderLine{}, err
	}

	return line, nil
}

// Validate ensures the OrderLine was created via NewOrderLine.
func (l OrderLine) Validate() error {
	if !l.isConstructed {
		return ErrOrderLineIsNotConstructed
	}
	return nil
}

// ProductID returns the identifier of the purchased product.
func (l OrderLine) ProductID() kernel.UUID {
	return l.productID
}

// UnitPriceIncVat returns the frozen VAT-inclusive unit price.
func (l OrderLine) UnitPriceIncVat() kernel.Money {
	return l.unitPriceIncVat
}

// Quantity returns the number of units ordered.
func (l OrderLine) Quantity() int {
	return l.quantity
}

func (l *OrderLine) setProductID(productID kernel.UUID) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	l.productID = productID
	return nil
}

func (l *OrderLine) setUnitPrice(price kernel.Money) error {
	if !price.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("unit price",
			fmt.Errorf("%s is not greater than 0", price))
	}
	l.unitPriceIncVat = price
	return nil
}

func (l *OrderLine) setQuantity(quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, maxLineQuantity)
	}
	if quantity > maxLineQuantity {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, maxLineQuantity)
	}
	l.quantity = quantity
	return nil
}

// maxLineQuantity bounds a single line to keep computation bounded.
const maxLineQuantity = 10000
