package commands

import (
	"context"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
)

// publishStatusChanges drains the order's pending status changes to the
// notifier after a successful commit. Delivery is best effort: the notifier
// logs its own failures and a lost notification never affects the already
// committed transition.
func publishStatusChanges(ctx context.Context, notifier ports.Notifier, aggregate *order.Order) {
	if notifier == nil {
		return
	}

	for _, change := range aggregate.PendingEvents() {
		_ = notifier.Notify(ctx, change)
	}
	aggregate.ClearPendingEvents()
}
