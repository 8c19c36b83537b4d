package queries

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrGetAccountBalanceQueryIsNotConstructed = errors.New(
		"GetAccountBalanceQuery must be created via NewGetAccountBalanceQuery constructor",
	)
)

// GetAccountBalanceQuery retrieves the balance of one ledger account,
// folded as debits minus credits over every posted line. Merchant payable
// subledger accounts are addressed via ledger.MerchantPayable.
//
// Example:
//
//	query, err := NewGetAccountBalanceQuery(ledger.MerchantPayable(storeID))
//	if err != nil {
//	    return err
//	}
//
//	balance, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get balance: %w", err)
//	}
//
//	fmt.Printf("Account %s balance: %s\n", query.Account(), balance.Balance)
type GetAccountBalanceQuery struct { //nolint:recvcheck //using for validation
	account ledger.AccountCode

	guard guard.ConstructorGuard
}

// NewGetAccountBalanceQuery creates a query for one account's balance.
func NewGetAccountBalanceQuery(account ledger.AccountCode) (GetAccountBalanceQuery, error) {
	query := GetAccountBalanceQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setAccount(account); err != nil {
		return GetAccountBalanceQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetAccountBalanceQueryIsNotConstructed if validation fails.
func (q GetAccountBalanceQuery) Validate() error {
	return q.guard.Validate(ErrGetAccountBalanceQueryIsNotConstructed)
}

// Account returns the account code whose balance is requested.
func (q GetAccountBalanceQuery) Account() ledger.AccountCode {
	return q.account
}

func (q *GetAccountBalanceQuery) setAccount(account ledger.AccountCode) error {
	if account == "" {
		return errs.NewValueIsRequiredError("account code")
	}

	q.account = account
	return nil
}

// GetAccountBalanceQueryResponse carries one account's folded balance.
// A never-touched account reports a zero balance, not an error.
type GetAccountBalanceQueryResponse struct {
	Account ledger.AccountCode
	Balance kernel.Money
}
