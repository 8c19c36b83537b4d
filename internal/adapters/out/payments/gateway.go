// Package payments implements the payment confirmation boundary. The
// auto-confirming gateway stands in for a PSP integration; the delivery
// completion handler only cares that confirmation happens before the
// terminal transition is persisted.
package payments

import (
	"context"
	"log/slog"

	"marketplace/internal/core/domain/model/kernel"
)

// AutoConfirmGateway confirms every payment immediately.
type AutoConfirmGateway struct {
	logger *slog.Logger
}

// NewAutoConfirmGateway creates a gateway that always confirms.
// A nil logger falls back to slog's default.
func NewAutoConfirmGateway(logger *slog.Logger) *AutoConfirmGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoConfirmGateway{logger: logger}
}

// ConfirmPayment logs and confirms the capture.
func (g *AutoConfirmGateway) ConfirmPayment(ctx context.Context, orderID kernel.UUID) error {
	g.logger.InfoContext(ctx, "payment confirmed", "order_id", orderID.String())
	return nil
}
