package commands

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"
	"marketplace/internal/pkg/errs"
)

// ErrSettlementExceedsPayable is returned when a payout would overdraw the
// store's accrued merchant payable balance.
var ErrSettlementExceedsPayable = errors.New("settlement exceeds accrued payable")

// SettleMerchantCommandHandler handles merchant payouts. The payable
// account is locked for the duration of the transaction before its balance
// is read, so concurrent settlements against the same store serialize and
// cannot jointly overdraw the account.
type SettleMerchantCommandHandler struct {
	uowFactory LedgerUoWFactory
}

// NewSettleMerchantCommandHandler creates a handler for settlement operations.
func NewSettleMerchantCommandHandler(uowFactory LedgerUoWFactory) SettleMerchantCommandHandler {
	return SettleMerchantCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the settlement command.
//
// The merchant payable is a credit-normal account: its folded balance is
// negative while the marketplace owes money. The payout may draw at most
// that owed amount.
func (h *SettleMerchantCommandHandler) Handle(ctx context.Context, cmd SettleMerchantCommand) error {
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

	ledgerRepo := uow.LedgerRepository()
	payable := ledger.MerchantPayable(cmd.StoreID())

	if err := ledgerRepo.LockAccount(ctx, payable); err != nil {
		return err
	}

	balance, err := ledgerRepo.BalanceOf(ctx, payable)
	if err != nil {
		return err
	}

	owed := balance.Neg()
	if cmd.Amount().GreaterThan(owed) {
		return errs.NewConflictErrorWithCause("settlement",
			fmt.Errorf("%w: requested %s, accrued %s", ErrSettlementExceedsPayable, cmd.Amount(), owed))
	}

	entry, err := ledger.NewSettlementEntry(kernel.NewUUID(), cmd.SettlementID(), cmd.StoreID(), cmd.Amount())
	if err != nil {
		return err
	}

	if err = ledgerRepo.Append(ctx, entry); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
