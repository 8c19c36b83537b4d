package ports

import (
	"context"

	"marketplace/internal/core/domain/model/order"
)

// Notifier publishes order status changes to interested parties (customer,
// merchant, courier). Delivery is best effort: implementations report
// failures through their own logging and the caller never rolls back a
// committed transition because a notification was lost.
type Notifier interface {
	Notify(ctx context.Context, change order.StatusChange) error
}
