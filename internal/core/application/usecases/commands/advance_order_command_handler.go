package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
)

// AdvanceOrderCommandHandler handles progress transitions along the order
// workflow. The write is conditional on the status the order was read in,
// so two concurrent advances can never both apply: the loser gets a
// conflict and must re-read.
type AdvanceOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	notifier   ports.Notifier
}

// NewAdvanceOrderCommandHandler creates a handler for advance operations.
func NewAdvanceOrderCommandHandler(uowFactory OrderUoWFactory, notifier ports.Notifier) AdvanceOrderCommandHandler {
	return AdvanceOrderCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
	}
}

// Handle processes the advance command.
func (h *AdvanceOrderCommandHandler) Handle(ctx context.Context, cmd AdvanceOrderCommand) error {
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

	expected := aggregate.Status()
	if err = h.applyTransition(aggregate, cmd); err != nil {
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

func (h *AdvanceOrderCommandHandler) applyTransition(aggregate *order.Order, cmd AdvanceOrderCommand) error {
	// Role enforcement happens against the caller's actual role, not the one
	// the aggregate method implies.
	if err := aggregate.Status().ValidateTransition(cmd.Target(), cmd.Actor()); err != nil {
		return err
	}

	now := time.Now().UTC()

	switch cmd.Target() {
	case order.AcceptedByMerchant:
		return aggregate.Accept(now)
	case order.Preparing:
		return aggregate.StartPreparing(now)
	case order.Ready:
		return aggregate.MarkReady(now)
	case order.PickedUp:
		return aggregate.MarkPickedUp(*cmd.CourierID(), now)
	case order.OnTheWay:
		return aggregate.MarkOnTheWay(now)
	default:
		// Unreachable: the command constructor rejects other targets.
		return ErrAdvanceOrderCommandIsNotConstructed
	}
}
