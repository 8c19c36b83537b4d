package ports

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"
)

// LedgerRepository defines the persistence contract for the append-only
// journal. Entries are immutable once appended: corrections are posted as
// new reversing entries, never as updates or deletes.
type LedgerRepository interface {
	// Append persists a balanced journal entry. The entry must be valid;
	// repositories never re-balance or mutate it.
	Append(ctx context.Context, entry *ledger.Entry) error

	// LockAccount serializes writers that gate on the account's balance.
	// The lock is held until the surrounding transaction ends, so a
	// balance read after LockAccount cannot be invalidated by a
	// concurrent writer that also locked the account.
	LockAccount(ctx context.Context, account ledger.AccountCode) error

	// GetByReference retrieves all entries recorded against a reference,
	// oldest first. Used to reconstruct an order's financial history.
	GetByReference(ctx context.Context, refType ledger.ReferenceType, refID kernel.UUID) ([]*ledger.Entry, error)

	// BalanceOf folds debits minus credits over every line posted to the
	// account. A never-touched account has a zero balance.
	BalanceOf(ctx context.Context, account ledger.AccountCode) (kernel.Money, error)

	// TrialBalance folds debits minus credits over all lines of all
	// accounts. A consistent ledger always returns zero.
	TrialBalance(ctx context.Context) (kernel.Money, error)
}
