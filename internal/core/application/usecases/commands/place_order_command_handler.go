package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/finance"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
)

// PlaceOrderCommandHandler handles the business logic for order placement.
//
// Placement freezes everything financial in one transaction: the store's
// current rates, the quoted delivery fee, the computed snapshot, the order
// in New status and its balanced journal entry. Status notifications go out
// only after the transaction commits.
type PlaceOrderCommandHandler struct {
	uowFactory    OrderLedgerUoWFactory
	storeConfig   ports.StoreConfigProvider
	feeCalculator services.DeliveryFeeCalculator
	notifier      ports.Notifier
}

// NewPlaceOrderCommandHandler creates a handler for order placement operations.
func NewPlaceOrderCommandHandler(
	uowFactory OrderLedgerUoWFactory,
	storeConfig ports.StoreConfigProvider,
	feeCalculator services.DeliveryFeeCalculator,
	notifier ports.Notifier,
) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		uowFactory:    uowFactory,
		storeConfig:   storeConfig,
		feeCalculator: feeCalculator,
		notifier:      notifier,
	}
}

// Handle processes the order placement command.
func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	cfg, err := h.storeConfig.CurrentConfig(ctx, cmd.StoreID())
	if err != nil {
		return err
	}

	deliveryFee := h.feeCalculator.Calculate(ctx, cfg, cmd.StoreID().String(), cmd.DeliveryAddress())

	snapshot, err := finance.ComputeSnapshot(cmd.Lines(), deliveryFee, cfg.VatRate, cfg.CommissionRate)
	if err != nil {
		return err
	}

	newOrder, err := order.NewOrder(cmd.OrderID(), cmd.StoreID(), cmd.CustomerID(), snapshot, time.Now().UTC())
	if err != nil {
		return err
	}

	entry, err := ledger.NewOrderEntry(kernel.NewUUID(), newOrder.ID(), newOrder.StoreID(), snapshot)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return err
	}

	if err = uow.LedgerRepository().Append(ctx, entry); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publishStatusChanges(ctx, h.notifier, newOrder)
	return nil
}
