// Package notify implements the notification boundary. The current adapter
// writes structured log records; swapping in a push or email provider only
// means implementing ports.Notifier against that provider's SDK.
package notify

import (
	"context"
	"log/slog"

	"marketplace/internal/core/domain/model/order"
)

// SlogNotifier publishes status changes as structured log records.
// Best effort by contract: it never fails, so committed transitions are
// never revisited because of it.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a notifier writing to the given logger.
// A nil logger falls back to slog's default.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogNotifier{logger: logger}
}

// Notify emits one record per status change.
func (n *SlogNotifier) Notify(ctx context.Context, change order.StatusChange) error {
	n.logger.InfoContext(ctx, "order status changed",
		"order_id", change.OrderID.String(),
		"from", change.From.String(),
		"to", change.To.String(),
		"actor", change.Actor.String(),
		"occurred_at", change.OccurredAt,
	)
	return nil
}
