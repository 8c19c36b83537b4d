package queries

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetAccountBalanceQueryHandler folds one account's balance in SQL.
// Balances are never cached in a column; the journal lines are the only
// source of truth, so the fold runs on every request.
type GetAccountBalanceQueryHandler struct {
	db *gorm.DB
}

// NewGetAccountBalanceQueryHandler creates a handler for balance queries.
// Requires a GORM database connection for query execution.
func NewGetAccountBalanceQueryHandler(db *gorm.DB) GetAccountBalanceQueryHandler {
	return GetAccountBalanceQueryHandler{db: db}
}

// Handle executes the balance fold for the requested account.
// An account with no posted lines yields a zero balance.
func (h GetAccountBalanceQueryHandler) Handle(
	ctx context.Context,
	query GetAccountBalanceQuery,
) (GetAccountBalanceQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetAccountBalanceQueryResponse{}, err
	}

	var balance decimal.Decimal
	row := h.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(debit - credit), 0)
		FROM ledger_entry_lines
		WHERE account = ?
	`, query.Account().String()).Row()

	if err := row.Scan(&balance); err != nil {
		return GetAccountBalanceQueryResponse{}, err
	}

	return GetAccountBalanceQueryResponse{
		Account: query.Account(),
		Balance: kernel.NewMoneyFromDecimal(balance),
	}, nil
}
