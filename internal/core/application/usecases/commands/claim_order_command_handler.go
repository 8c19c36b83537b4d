package commands

import (
	"context"
	"errors"

	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

// ErrCourierIsNotActive is returned when a deactivated courier tries to
// claim an order.
var ErrCourierIsNotActive = errors.New("courier is not active")

// ClaimOrderCommandHandler handles courier claims. The claim itself is a
// single conditional write keyed on the order having no courier yet; the
// database serializes concurrent claims so exactly one wins without any
// application-level locking.
type ClaimOrderCommandHandler struct {
	uowFactory OrderCourierUoWFactory
	notifier   ports.Notifier
}

// NewClaimOrderCommandHandler creates a handler for claim operations.
func NewClaimOrderCommandHandler(uowFactory OrderCourierUoWFactory, notifier ports.Notifier) ClaimOrderCommandHandler {
	return ClaimOrderCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
	}
}

// Handle processes the claim command. Losing a race is reported as
// errs.ConflictError: the caller treats it as definitive, not retryable.
func (h *ClaimOrderCommandHandler) Handle(ctx context.Context, cmd ClaimOrderCommand) error {
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

	claimant, err := uow.CourierRepository().Get(ctx, cmd.CourierID())
	if err != nil {
		return err
	}
	if !claimant.IsActive() {
		return errs.NewConflictErrorWithCause("claim", ErrCourierIsNotActive)
	}

	orderRepo := uow.OrderRepository()
	if err = orderRepo.ClaimForCourier(ctx, cmd.OrderID(), cmd.CourierID()); err != nil {
		return err
	}

	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	// The assignment is recorded on the timeline by the conditional write;
	// the freshest change is the one to announce.
	if h.notifier != nil {
		timeline := aggregate.Timeline()
		if len(timeline) > 0 {
			_ = h.notifier.Notify(ctx, timeline[len(timeline)-1])
		}
	}
	return nil
}
