package queries

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"
	"marketplace/internal/pkg/guard"
)

var (
	ErrGetTrialBalanceQueryIsNotConstructed = errors.New(
		"GetTrialBalanceQuery must be created via NewGetTrialBalanceQuery constructor",
	)
)

// GetTrialBalanceQuery retrieves the per-account balances and the grand
// total of debits minus credits over the whole journal. A consistent
// ledger always totals zero; anything else is an operational alert.
//
// Example:
//
//	query := NewGetTrialBalanceQuery()
//	handler := NewGetTrialBalanceQueryHandler(db)
//
//	trial, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to compute trial balance: %w", err)
//	}
//
//	if !trial.Total.IsZero() {
//	    alertFinanceTeam(trial)
//	}
type GetTrialBalanceQuery struct {
	guard guard.ConstructorGuard
}

// NewGetTrialBalanceQuery creates a query for the full trial balance.
// This is a parameterless query that folds over every journal line.
func NewGetTrialBalanceQuery() GetTrialBalanceQuery {
	return GetTrialBalanceQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetTrialBalanceQueryIsNotConstructed if validation fails.
func (q GetTrialBalanceQuery) Validate() error {
	return q.guard.Validate(ErrGetTrialBalanceQueryIsNotConstructed)
}

// TrialBalanceLineResponse is one account's folded balance within the
// trial balance report.
type TrialBalanceLineResponse struct {
	Account ledger.AccountCode
	Balance kernel.Money
}

// GetTrialBalanceQueryResponse is the trial balance report: one line per
// touched account plus the grand total, which must be zero.
type GetTrialBalanceQueryResponse struct {
	Accounts []TrialBalanceLineResponse
	Total    kernel.Money
}
