package commands

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/finance"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"
	"marketplace/internal/core/domain/model/order"
)

var (
	// ErrOrderIsNotDelivered is returned when refunding an order that has not
	// reached the Delivered status.
	ErrOrderIsNotDelivered = errors.New("only delivered orders can be refunded")

	// ErrRefundExceedsOrder is returned when a refund line names a product
	// the order never contained or a quantity above the ordered one.
	ErrRefundExceedsOrder = errors.New("refund exceeds the ordered lines")

	// ErrRefundExceedsCollected is returned when a refund, together with
	// the refunds already posted for the order, would credit back more
	// cash than the order ever collected.
	ErrRefundExceedsCollected = errors.New("refund exceeds the amount collected")

	// ErrDeliveryFeeAlreadyRefunded is returned when a refund asks for the
	// delivery fee a second time.
	ErrDeliveryFeeAlreadyRefunded = errors.New("delivery fee already refunded")
)

// RefundOrderCommandHandler handles partial refunds of delivered orders.
//
// The refunded portion is rebuilt as a snapshot from the order's frozen unit
// prices and rates, then mirrored into the ledger. Recomputing instead of
// prorating keeps every refunded figure cent-exact under the same rounding
// rules as the original.
//
// The journal is the source of truth for what has already been refunded:
// before posting, the refunds previously recorded against the order are
// folded and the new refund must fit inside what remains of the collected
// amount. The store's payable account is locked first, so concurrent
// refunds (and settlements) against the same store serialize instead of
// jointly over-crediting.
type RefundOrderCommandHandler struct {
	uowFactory OrderLedgerUoWFactory
}

// NewRefundOrderCommandHandler creates a handler for refund operations.
func NewRefundOrderCommandHandler(uowFactory OrderLedgerUoWFactory) RefundOrderCommandHandler {
	return RefundOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the refund command.
func (h *RefundOrderCommandHandler) Handle(ctx context.Context, cmd RefundOrderCommand) error {
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

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if aggregate.Status() != order.Delivered {
		return ErrOrderIsNotDelivered
	}

	ledgerRepo := uow.LedgerRepository()
	if err = ledgerRepo.LockAccount(ctx, ledger.MerchantPayable(aggregate.StoreID())); err != nil {
		return err
	}

	prior, err := ledgerRepo.GetByReference(ctx, ledger.ReferenceRefund, cmd.OrderID())
	if err != nil {
		return err
	}

	refundSnapshot, err := buildRefundSnapshot(aggregate.Snapshot(), cmd)
	if err != nil {
		return err
	}

	if err = validateAgainstPriorRefunds(aggregate.Snapshot(), refundSnapshot, prior, cmd.RefundDeliveryFee()); err != nil {
		return err
	}

	entry, err := ledger.NewRefundEntry(kernel.NewUUID(), aggregate.ID(), aggregate.StoreID(), refundSnapshot)
	if err != nil {
		return err
	}

	if err = ledgerRepo.Append(ctx, entry); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// validateAgainstPriorRefunds enforces the cumulative ceiling: across every
// refund posted for the order, cash credited back never exceeds cash
// collected, and the delivery fee is refunded at most once.
//
// Prior refund entries carry amounts, not quantities, so the ceiling is
// monetary: each posted refund credits cash for its product portion plus,
// when it refunded the fee, the full frozen fee (fee refunds are
// all-or-nothing). Subtracting the fee where present recovers the product
// portion per entry exactly.
func validateAgainstPriorRefunds(
	snap finance.FinancialSnapshot,
	refund finance.FinancialSnapshot,
	prior []*ledger.Entry,
	refundingFee bool,
) error {
	refundedProducts := kernel.ZeroMoney()
	feeRefunded := false

	for _, entry := range prior {
		cashCredited := kernel.ZeroMoney()
		entryRefundedFee := false
		for _, line := range entry.Lines() {
			switch line.Account {
			case ledger.AccountCash:
				cashCredited = cashCredited.Add(line.Credit)
			case ledger.AccountDeliveryRevenue:
				if line.Debit.IsPositive() {
					entryRefundedFee = true
				}
			}
		}

		if entryRefundedFee {
			cashCredited = cashCredited.Sub(snap.DeliveryFeeIncVat())
			feeRefunded = true
		}
		refundedProducts = refundedProducts.Add(cashCredited)
	}

	if refundingFee && feeRefunded {
		return fmt.Errorf("%w: order fee %s", ErrDeliveryFeeAlreadyRefunded, snap.DeliveryFeeIncVat())
	}

	if refundedProducts.Add(refund.SubtotalIncVat()).GreaterThan(snap.SubtotalIncVat()) {
		return fmt.Errorf("%w: %s already refunded of %s collected, %s more requested",
			ErrRefundExceedsCollected, refundedProducts, snap.SubtotalIncVat(), refund.SubtotalIncVat())
	}

	return nil
}

// buildRefundSnapshot recomputes the refunded portion from the frozen
// snapshot. Each refund line must match an ordered product with at most the
// ordered quantity; unit prices and rates come from the snapshot, never
// from the caller.
func buildRefundSnapshot(snap finance.FinancialSnapshot, cmd RefundOrderCommand) (finance.FinancialSnapshot, error) {
	ordered := make(map[string]finance.LineSnapshot)
	for _, line := range snap.Lines() {
		ordered[line.ProductID().String()] = line
	}

	refundLines := make([]finance.OrderLine, 0, len(cmd.Lines()))
	for _, r := range cmd.Lines() {
		original, ok := ordered[r.ProductID.String()]
		if !ok {
			return finance.FinancialSnapshot{}, fmt.Errorf("%w: product %s", ErrRefundExceedsOrder, r.ProductID)
		}
		if r.Quantity > original.Quantity() {
			return finance.FinancialSnapshot{}, fmt.Errorf("%w: product %s quantity %d of %d",
				ErrRefundExceedsOrder, r.ProductID, r.Quantity, original.Quantity())
		}

		line, err := finance.NewOrderLine(original.ProductID(), original.UnitPriceIncVat(), r.Quantity)
		if err != nil {
			return finance.FinancialSnapshot{}, err
		}
		refundLines = append(refundLines, line)
	}

	deliveryFee := kernel.ZeroMoney()
	if cmd.RefundDeliveryFee() {
		deliveryFee = snap.DeliveryFeeIncVat()
	}

	return finance.ComputeSnapshot(refundLines, deliveryFee, snap.VatRate(), snap.CommissionRate())
}
