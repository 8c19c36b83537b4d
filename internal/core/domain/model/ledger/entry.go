package ledger

import (
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/finance"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

var (
	// ErrEntryIsNotConstructed is returned when an Entry was not created
	// through one of the entry constructors.
	ErrEntryIsNotConstructed = errors.New("Entry must be created via NewEntry or a derived constructor")

	// ErrImbalancedEntry indicates an entry whose debits do not equal its
	// credits. This is a programming defect in the calculator or the caller,
	// not a retryable condition: the enclosing operation must abort with
	// nothing committed.
	ErrImbalancedEntry = errors.New("journal entry debits do not equal credits")

	// ErrNoEntryLines is returned for an entry without any posting lines.
	ErrNoEntryLines = errors.New("journal entry requires at least one line")
)

// ReferenceType names the financial event a journal entry records.
type ReferenceType string

const (
	ReferenceOrder      ReferenceType = "order"
	ReferenceSettlement ReferenceType = "settlement"
	ReferenceRefund     ReferenceType = "refund"
)

// Validate checks the reference type against the known set.
func (r ReferenceType) Validate() error {
	switch r {
	case ReferenceOrder, ReferenceSettlement, ReferenceRefund:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("reference type",
			fmt.Errorf("%q is not a valid reference type", string(r)))
	}
}

// EntryLine is a single debit or credit posting against one account.
// Exactly one side of a line is positive; the other is zero.
type EntryLine struct {
	Account AccountCode
	Debit   kernel.Money
	Credit  kernel.Money
}

func (l EntryLine) validate() error {
	if l.Account == "" {
		return errs.NewValueIsRequiredError("account code")
	}
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("entry line",
			fmt.Errorf("account %s has a negative amount", l.Account))
	}
	if l.Debit.IsPositive() && l.Credit.IsPositive() {
		return errs.NewValueIsInvalidErrorWithCause("entry line",
			fmt.Errorf("account %s is both debited and credited in one line", l.Account))
	}
	if l.Debit.IsZero() && l.Credit.IsZero() {
		return errs.NewValueIsInvalidErrorWithCause("entry line",
			fmt.Errorf("account %s carries no amount", l.Account))
	}
	return nil
}

// Entry is one balanced, immutable journal entry. Once constructed it is
// append-only in every sense: no setter exists and repositories expose no
// update or delete path.
type Entry struct {
	id            kernel.UUID
	description   string
	referenceType ReferenceType
	referenceID   kernel.UUID
	lines         []EntryLine

	isConstructed bool
}

// NewEntry creates a balanced journal entry. The double-entry invariant
// sum(debit) == sum(credit) is enforced here, before any persistence
// attempt; an imbalanced set of lines yields ErrImbalancedEntry.
func NewEntry(
	id kernel.UUID,
	description string,
	referenceType ReferenceType,
	referenceID kernel.UUID,
	lines []EntryLine,
) (*Entry, error) {
	if err := errors.Join(id.Validate(), referenceID.Validate(), referenceType.Validate()); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrNoEntryLines
	}

	debits := kernel.ZeroMoney()
	credits := kernel.ZeroMoney()
	for _, line := range lines {
		if err := line.validate(); err != nil {
			return nil, err
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}

	if !debits.IsEqual(credits) {
		return nil, fmt.Errorf("%w: debits %s, credits %s", ErrImbalancedEntry, debits, credits)
	}

	entry := &Entry{
		id:            id,
		description:   description,
		referenceType: referenceType,
		referenceID:   referenceID,
		lines:         make([]EntryLine, len(lines)),
		isConstructed: true,
	}
	copy(entry.lines, lines)

	return entry, nil
}

// NewOrderEntry derives the placement entry from an order's financial
// snapshot: cash is debited for the full order total; the merchant payable,
// platform commission, VAT payable and delivery revenue are credited.
// Zero-amount positions (for example a free delivery) are omitted.
func NewOrderEntry(entryID, orderID, storeID kernel.UUID, snap finance.FinancialSnapshot) (*Entry, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if err := storeID.Validate(); err != nil {
		return nil, err
	}

	platformVat := snap.CommissionVat().Add(snap.VatOnDelivery())

	lines := appendLine(nil, debit(AccountCash, snap.OrderTotal()))
	lines = appendLine(lines, credit(MerchantPayable(storeID), snap.MerchantPayout()))
	lines = appendLine(lines, credit(AccountCommissionRevenue, snap.CommissionExVat()))
	lines = appendLine(lines, credit(AccountVatPayable, platformVat))
	lines = appendLine(lines, credit(AccountDeliveryRevenue, snap.DeliveryFeeExVat()))

	return NewEntry(entryID, fmt.Sprintf("order %s placed", orderID), ReferenceOrder, orderID, lines)
}

// NewRefundEntry derives the reversing entry for the refunded portion of an
// order: the exact mirror image of the order entry computed over the refund
// snapshot, with every debit and credit swapped. A full-order snapshot nets
// all account balances back to their pre-order values.
func NewRefundEntry(entryID, orderID, storeID kernel.UUID, snap finance.FinancialSnapshot) (*Entry, error) {
	original, err := NewOrderEntry(entryID, orderID, storeID, snap)
	if err != nil {
		return nil, err
	}

	mirrored := make([]EntryLine, len(original.lines))
	for i, line := range original.lines {
		mirrored[i] = EntryLine{Account: line.Account, Debit: line.Credit, Credit: line.Debit}
	}

	return NewEntry(entryID, fmt.Sprintf("order %s refunded", orderID), ReferenceRefund, orderID, mirrored)
}

// NewSettlementEntry records a payout to a merchant: the payable subledger
// is debited and cash credited for the settled amount. Settling less than
// the accrued payout is legal and leaves a residual payable balance.
func NewSettlementEntry(entryID, settlementID, storeID kernel.UUID, amount kernel.Money) (*Entry, error) {
	if err := storeID.Validate(); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, errs.NewValueIsInvalidErrorWithCause("settlement amount",
			fmt.Errorf("%s is not greater than 0", amount))
	}

	lines := []EntryLine{
		debit(MerchantPayable(storeID), amount),
		credit(AccountCash, amount),
	}

	return NewEntry(entryID, fmt.Sprintf("settlement for store %s", storeID),
		ReferenceSettlement, settlementID, lines)
}

// Validate ensures the Entry was created via a constructor.
func (e *Entry) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEntryIsNotConstructed
	}
	return nil
}

// ID returns the entry's unique identifier.
func (e *Entry) ID() kernel.UUID {
	return e.id
}

// Description returns the human-readable description of the entry.
func (e *Entry) Description() string {
	return e.description
}

// Reference returns the financial event type and identifier this entry records.
func (e *Entry) Reference() (ReferenceType, kernel.UUID) {
	return e.referenceType, e.referenceID
}

// Lines returns a copy of the posting lines.
func (e *Entry) Lines() []EntryLine {
	out := make([]EntryLine, len(e.lines))
	copy(out, e.lines)
	return out
}

// TotalDebits returns the sum of all debit amounts.
func (e *Entry) TotalDebits() kernel.Money {
	sum := kernel.ZeroMoney()
	for _, l := range e.lines {
		sum = sum.Add(l.Debit)
	}
	return sum
}

// TotalCredits returns the sum of all credit amounts.
func (e *Entry) TotalCredits() kernel.Money {
	sum := kernel.ZeroMoney()
	for _, l := range e.lines {
		sum = sum.Add(l.Credit)
	}
	return sum
}

// BalanceOf folds an account's balance (debits minus credits) over a set of
// entries. Balances are never cached; this fold is the only source of truth.
func BalanceOf(entries []*Entry, account AccountCode) kernel.Money {
	balance := kernel.ZeroMoney()
	for _, e := range entries {
		for _, l := range e.lines {
			if l.Account == account {
				balance = balance.Add(l.Debit).Sub(l.Credit)
			}
		}
	}
	return balance
}

// TrialBalance folds debits minus credits across every line of every entry.
// A nonzero result means an imbalanced entry slipped through and is treated
// as an operational alert by the reconciliation job.
func TrialBalance(entries []*Entry) kernel.Money {
	total := kernel.ZeroMoney()
	for _, e := range entries {
		total = total.Add(e.TotalDebits()).Sub(e.TotalCredits())
	}
	return total
}

func debit(account AccountCode, amount kernel.Money) EntryLine {
	return EntryLine{Account: account, Debit: amount, Credit: kernel.ZeroMoney()}
}

func credit(account AccountCode, amount kernel.Money) EntryLine {
	return EntryLine{Account: account, Debit: kernel.ZeroMoney(), Credit: amount}
}

// appendLine drops zero-amount positions so derived entries stay minimal.
func appendLine(lines []EntryLine, line EntryLine) []EntryLine {
	if line.Debit.IsZero() && line.Credit.IsZero() {
		return lines
	}
	return append(lines, line)
}
