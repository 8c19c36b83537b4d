package ports

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
)

// PaymentGateway confirms customer payment capture. Delivery completion
// requires confirmation before the status transition is persisted.
type PaymentGateway interface {
	ConfirmPayment(ctx context.Context, orderID kernel.UUID) error
}
