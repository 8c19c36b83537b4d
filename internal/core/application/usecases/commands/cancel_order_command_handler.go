package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
)

// CancelOrderCommandHandler handles the exception paths. The status change
// and the reversing journal entry commit atomically, so a cancelled order's
// accounts always sum back to zero.
type CancelOrderCommandHandler struct {
	uowFactory OrderLedgerUoWFactory
	notifier   ports.Notifier
}

// NewCancelOrderCommandHandler creates a handler for cancel/fail operations.
func NewCancelOrderCommandHandler(uowFactory OrderLedgerUoWFactory, notifier ports.Notifier) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
	}
}

// Handle processes the cancel/fail command.
func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
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
	now := time.Now().UTC()

	if cmd.Target() == order.Cancelled {
		err = aggregate.Cancel(cmd.Actor(), now)
	} else {
		err = aggregate.Fail(cmd.Actor(), now)
	}
	if err != nil {
		return err
	}

	refund, err := ledger.NewRefundEntry(kernel.NewUUID(), aggregate.ID(), aggregate.StoreID(), aggregate.Snapshot())
	if err != nil {
		return err
	}

	if err = orderRepo.UpdateWithExpectedStatus(ctx, aggregate, expected); err != nil {
		return err
	}

	if err = uow.LedgerRepository().Append(ctx, refund); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publishStatusChanges(ctx, h.notifier, aggregate)
	return nil
}
