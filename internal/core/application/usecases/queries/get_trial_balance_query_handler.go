package queries

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetTrialBalanceQueryHandler computes the trial balance in SQL.
// Groups the journal lines by account and folds debits minus credits,
// accumulating the grand total in the same pass.
type GetTrialBalanceQueryHandler struct {
	db *gorm.DB
}

// NewGetTrialBalanceQueryHandler creates a handler for trial balance queries.
// Requires a GORM database connection for query execution.
func NewGetTrialBalanceQueryHandler(db *gorm.DB) GetTrialBalanceQueryHandler {
	return GetTrialBalanceQueryHandler{db: db}
}

// Handle executes the trial balance fold over the whole journal.
// Returns per-account balances sorted by account code and the grand total.
// An empty journal yields no account lines and a zero total.
func (h GetTrialBalanceQueryHandler) Handle(
	ctx context.Context,
	query GetTrialBalanceQuery,
) (GetTrialBalanceQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetTrialBalanceQueryResponse{}, err
	}

	resp := GetTrialBalanceQueryResponse{
		Accounts: make([]TrialBalanceLineResponse, 0),
		Total:    kernel.ZeroMoney(),
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			account,
			SUM(debit - credit) AS balance
		FROM ledger_entry_lines
		GROUP BY account
		ORDER BY account
	`).Rows()
	if err != nil {
		return GetTrialBalanceQueryResponse{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var account string
		var balance decimal.Decimal

		if err = rows.Scan(&account, &balance); err != nil {
			return GetTrialBalanceQueryResponse{}, err
		}

		money := kernel.NewMoneyFromDecimal(balance)
		resp.Accounts = append(resp.Accounts, TrialBalanceLineResponse{
			Account: ledger.AccountCode(account),
			Balance: money,
		})
		resp.Total = resp.Total.Add(money)
	}

	if err = rows.Err(); err != nil {
		return GetTrialBalanceQueryResponse{}, err
	}

	return resp, nil
}
