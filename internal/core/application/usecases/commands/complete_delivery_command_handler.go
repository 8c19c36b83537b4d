package commands

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

// ErrWrongCourier is returned when a courier other than the assigned one
// tries to complete a delivery.
var ErrWrongCourier = errors.New("order is assigned to a different courier")

// CompleteDeliveryCommandHandler handles the terminal happy-path transition.
// Payment is confirmed before the conditional status write; if the write
// then conflicts, the confirmation is idempotent on the gateway side and a
// retry is safe.
type CompleteDeliveryCommandHandler struct {
	uowFactory OrderUoWFactory
	payments   ports.PaymentGateway
	notifier   ports.Notifier
}

// NewCompleteDeliveryCommandHandler creates a handler for delivery completion.
func NewCompleteDeliveryCommandHandler(
	uowFactory OrderUoWFactory,
	payments ports.PaymentGateway,
	notifier ports.Notifier,
) CompleteDeliveryCommandHandler {
	return CompleteDeliveryCommandHandler{
		uowFactory: uowFactory,
		payments:   payments,
		notifier:   notifier,
	}
}

// Handle processes the delivery completion command.
func (h *CompleteDeliveryCommandHandler) Handle(ctx context.Context, cmd CompleteDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if aggregate.Courier() == nil || !aggregate.Courier().IsEqual(cmd.CourierID()) {
		return errs.NewConflictErrorWithCause("delivery", ErrWrongCourier)
	}

	if err = h.payments.ConfirmPayment(ctx, aggregate.ID()); err != nil {
		return err
	}

	expected := aggregate.Status()
	if err = aggregate.MarkDelivered(time.Now().UTC()); err != nil {
		return err
	}

	if err = orderRepo.UpdateWithExpectedStatus(ctx, aggregate, expected); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publishStatusChanges(ctx, h.notifier, aggregate)
	return nil
}
