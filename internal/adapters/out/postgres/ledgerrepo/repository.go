package ledgerrepo

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerRepository implements LedgerRepository using GORM.
// Balances are never cached in a column; BalanceOf and TrialBalance fold
// over the journal lines in SQL on every call.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GORM ledger repository.
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append persists a balanced journal entry with its lines.
func (r *GormLedgerRepository) Append(ctx context.Context, entry *ledger.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	dto := fromDomain(entry)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// LockAccount takes a transaction-scoped advisory lock keyed on the account
// code. Concurrent transactions locking the same account queue behind each
// other, so a balance folded after the lock reflects every committed writer.
// Outside a transaction the lock would be held until the session ends, so
// callers must invoke this on a transactional handle.
func (r *GormLedgerRepository) LockAccount(ctx context.Context, account ledger.AccountCode) error {
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", account.String()).Error
}

// GetByReference retrieves all entries recorded against a reference,
// oldest first.
func (r *GormLedgerRepository) GetByReference(
	ctx context.Context,
	refType ledger.ReferenceType,
	refID kernel.UUID,
) ([]*ledger.Entry, error) {
	if err := refID.Validate(); err != nil {
		return nil, err
	}

	var dtos []EntryDTO
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("ledger_entry_lines.id") }).
		Where("reference_type = ? AND reference_id = ?", string(refType), refID.Bytes()).
		Order("recorded_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	entries := make([]*ledger.Entry, 0, len(dtos))
	for _, dto := range dtos {
		entry, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// BalanceOf folds debits minus credits over every line posted to the
// account. A never-touched account has a zero balance.
func (r *GormLedgerRepository) BalanceOf(
	ctx context.Context,
	account ledger.AccountCode,
) (kernel.Money, error) {
	var balance decimal.Decimal
	row := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(debit - credit), 0)
		FROM ledger_entry_lines
		WHERE account = ?
	`, account.String()).Row()

	if err := row.Scan(&balance); err != nil {
		return kernel.Money{}, err
	}

	return kernel.NewMoneyFromDecimal(balance), nil
}

// TrialBalance folds debits minus credits over all lines of all accounts.
// A consistent ledger always returns zero.
func (r *GormLedgerRepository) TrialBalance(ctx context.Context) (kernel.Money, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(debit - credit), 0)
		FROM ledger_entry_lines
	`).Row()

	if err := row.Scan(&total); err != nil {
		return kernel.Money{}, err
	}

	return kernel.NewMoneyFromDecimal(total), nil
}
