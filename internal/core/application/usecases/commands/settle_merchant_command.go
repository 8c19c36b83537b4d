package commands

import (
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var ErrSettleMerchantCommandIsNotConstructed = errors.New(
	"SettleMerchantCommand must be created via NewSettleMerchantCommand constructor",
)

// SettleMerchantCommand represents a payout of accrued funds to a merchant.
// Partial settlements are legal; the amount may never exceed the store's
// accrued payable balance.
type SettleMerchantCommand struct { //nolint:recvcheck //using for validation
	settlementID kernel.UUID
	storeID      kernel.UUID
	amount       kernel.Money

	guard guard.ConstructorGuard
}

// NewSettleMerchantCommand creates a command to pay out a merchant.
func NewSettleMerchantCommand(settlementID, storeID kernel.UUID, amount kernel.Money) (SettleMerchantCommand, error) {
	cmd := SettleMerchantCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSettlementID(settlementID),
		cmd.setStoreID(storeID),
		cmd.setAmount(amount),
	); err != nil {
		return SettleMerchantCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c SettleMerchantCommand) Validate() error {
	return c.guard.Validate(ErrSettleMerchantCommandIsNotConstructed)
}

// SettlementID returns the unique identifier of this settlement.
func (c SettleMerchantCommand) SettlementID() kernel.UUID {
	return c.settlementID
}

// StoreID returns the merchant store being paid out.
func (c SettleMerchantCommand) StoreID() kernel.UUID {
	return c.storeID
}

// Amount returns the payout amount.
func (c SettleMerchantCommand) Amount() kernel.Money {
	return c.amount
}

func (c *SettleMerchantCommand) setSettlementID(settlementID kernel.UUID) error {
	if err := settlementID.Validate(); err != nil {
		return err
	}

	c.settlementID = settlementID
	return nil
}

func (c *SettleMerchantCommand) setStoreID(storeID kernel.UUID) error {
	if err := storeID.Validate(); err != nil {
		return err
	}

	c.storeID = storeID
	return nil
}

func (c *SettleMerchantCommand) setAmount(amount kernel.Money) error {
	if !amount.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("settlement amount",
			fmt.Errorf("%s is not greater than 0", amount))
	}

	c.amount = amount
	return nil
}
