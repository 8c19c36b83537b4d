package ledger_test

import (
	"testing"

	"marketplace/internal/core/domain/model/finance"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceSnapshot(t *testing.T) finance.FinancialSnapshot {
	t.Helper()
	line, err := finance.NewOrderLine(kernel.NewUUID(), kernel.MustMoney("115.00"), 2)
	require.NoError(t, err)

	snap, err := finance.ComputeSnapshot([]finance.OrderLine{line},
		kernel.MustMoney("11.50"), kernel.MustRate("0.15"), kernel.MustRate("0.10"))
	require.NoError(t, err)
	return snap
}

func TestNewEntry(t *testing.T) {
	cash := kernel.MustMoney("100.00")

	t.Run("should create balanced entry", func(t *testing.T) {
		entry, err := ledger.NewEntry(kernel.NewUUID(), "test", ledger.ReferenceOrder, kernel.NewUUID(),
			[]ledger.EntryLine{
				{Account: ledger.AccountCash, Debit: cash},
				{Account: ledger.AccountCommissionRevenue, Credit: cash},
			})

		require.NoError(t, err)
		require.NoError(t, entry.Validate())
		assert.True(t, entry.TotalDebits().IsEqual(entry.TotalCredits()))
	})

	t.Run("should reject imbalanced entry", func(t *testing.T) {
		_, err := ledger.NewEntry(kernel.NewUUID(), "test", ledger.ReferenceOrder, kernel.NewUUID(),
			[]ledger.EntryLine{
				{Account: ledger.AccountCash, Debit: cash},
				{Account: ledger.AccountCommissionRevenue, Credit: kernel.MustMoney("99.99")},
			})

		assert.ErrorIs(t, err, ledger.ErrImbalancedEntry)
	})

	t.Run("should reject empty entry", func(t *testing.T) {
		_, err := ledger.NewEntry(kernel.NewUUID(), "test", ledger.ReferenceOrder, kernel.NewUUID(), nil)

		assert.ErrorIs(t, err, ledger.ErrNoEntryLines)
	})

	t.Run("should reject line debited and credited at once", func(t *testing.T) {
		_, err := ledger.NewEntry(kernel.NewUUID(), "test", ledger.ReferenceOrder, kernel.NewUUID(),
			[]ledger.EntryLine{
				{Account: ledger.AccountCash, Debit: cash, Credit: cash},
			})

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject negative amounts", func(t *testing.T) {
		negative := kernel.MustMoney("-1.00")
		_, err := ledger.NewEntry(kernel.NewUUID(), "test", ledger.ReferenceOrder, kernel.NewUUID(),
			[]ledger.EntryLine{
				{Account: ledger.AccountCash, Debit: negative},
				{Account: ledger.AccountCommissionRevenue, Credit: negative},
			})

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject unknown reference type", func(t *testing.T) {
		_, err := ledger.NewEntry(kernel.NewUUID(), "test", ledger.ReferenceType("payout"), kernel.NewUUID(),
			[]ledger.EntryLine{
				{Account: ledger.AccountCash, Debit: cash},
				{Account: ledger.AccountCommissionRevenue, Credit: cash},
			})

		require.Error(t, err)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var entry *ledger.Entry

		assert.Equal(t, ledger.ErrEntryIsNotConstructed, entry.Validate())
	})
}

func TestNewOrderEntry(t *testing.T) {
	snap := referenceSnapshot(t)
	orderID := kernel.NewUUID()
	storeID := kernel.NewUUID()

	entry, err := ledger.NewOrderEntry(kernel.NewUUID(), orderID, storeID, snap)
	require.NoError(t, err)

	t.Run("debits cash for the order total", func(t *testing.T) {
		assert.True(t, ledger.BalanceOf([]*ledger.Entry{entry}, ledger.AccountCash).
			IsEqual(kernel.MustMoney("241.50")))
	})

	t.Run("credits the merchant payable subledger", func(t *testing.T) {
		payable := ledger.BalanceOf([]*ledger.Entry{entry}, ledger.MerchantPayable(storeID))

		assert.True(t, payable.IsEqual(kernel.MustMoney("-207.00")))
	})

	t.Run("credits commission, VAT and delivery revenue", func(t *testing.T) {
		entries := []*ledger.Entry{entry}

		assert.Equal(t, "-20.00", ledger.BalanceOf(entries, ledger.AccountCommissionRevenue).String())
		// commission VAT 3.00 plus delivery VAT 1.50
		assert.Equal(t, "-4.50", ledger.BalanceOf(entries, ledger.AccountVatPayable).String())
		assert.Equal(t, "-10.00", ledger.BalanceOf(entries, ledger.AccountDeliveryRevenue).String())
	})

	t.Run("entry references the order", func(t *testing.T) {
		refType, refID := entry.Reference()

		assert.Equal(t, ledger.ReferenceOrder, refType)
		assert.True(t, refID.IsEqual(orderID))
	})

	t.Run("trial balance is zero", func(t *testing.T) {
		assert.True(t, ledger.TrialBalance([]*ledger.Entry{entry}).IsZero())
	})
}

func TestNewRefundEntry_RoundTrip(t *testing.T) {
	snap := referenceSnapshot(t)
	orderID := kernel.NewUUID()
	storeID := kernel.NewUUID()

	orderEntry, err := ledger.NewOrderEntry(kernel.NewUUID(), orderID, storeID, snap)
	require.NoError(t, err)
	refundEntry, err := ledger.NewRefundEntry(kernel.NewUUID(), orderID, storeID, snap)
	require.NoError(t, err)

	entries := []*ledger.Entry{orderEntry, refundEntry}

	t.Run("every account nets to its pre-order value", func(t *testing.T) {
		accounts := []ledger.AccountCode{
			ledger.AccountCash,
			ledger.MerchantPayable(storeID),
			ledger.AccountCommissionRevenue,
			ledger.AccountVatPayable,
			ledger.AccountDeliveryRevenue,
		}
		for _, account := range accounts {
			assert.True(t, ledger.BalanceOf(entries, account).IsZero(),
				"account %s did not net to zero", account)
		}
	})

	t.Run("refund is reference-typed", func(t *testing.T) {
		refType, refID := refundEntry.Reference()

		assert.Equal(t, ledger.ReferenceRefund, refType)
		assert.True(t, refID.IsEqual(orderID))
	})
}

func TestNewRefundEntry_Partial(t *testing.T) {
	// Refund only one of the two units.
	line, err := finance.NewOrderLine(kernel.NewUUID(), kernel.MustMoney("115.00"), 1)
	require.NoError(t, err)
	partial, err := finance.ComputeSnapshot([]finance.OrderLine{line},
		kernel.ZeroMoney(), kernel.MustRate("0.15"), kernel.MustRate("0.10"))
	require.NoError(t, err)

	orderID := kernel.NewUUID()
	storeID := kernel.NewUUID()
	full := referenceSnapshot(t)

	orderEntry, err := ledger.NewOrderEntry(kernel.NewUUID(), orderID, storeID, full)
	require.NoError(t, err)
	refundEntry, err := ledger.NewRefundEntry(kernel.NewUUID(), orderID, storeID, partial)
	require.NoError(t, err)

	entries := []*ledger.Entry{orderEntry, refundEntry}

	// 241.50 collected minus 115.00 refunded.
	assert.Equal(t, "126.50", ledger.BalanceOf(entries, ledger.AccountCash).String())
	// 207.00 owed minus 103.50 reversed.
	assert.Equal(t, "-103.50", ledger.BalanceOf(entries, ledger.MerchantPayable(storeID)).String())
	assert.True(t, ledger.TrialBalance(entries).IsZero())
}

func TestNewSettlementEntry(t *testing.T) {
	storeID := kernel.NewUUID()

	t.Run("partial settlement leaves a residual payable", func(t *testing.T) {
		snap := referenceSnapshot(t)
		orderEntry, err := ledger.NewOrderEntry(kernel.NewUUID(), kernel.NewUUID(), storeID, snap)
		require.NoError(t, err)

		settlement, err := ledger.NewSettlementEntry(kernel.NewUUID(), kernel.NewUUID(), storeID,
			kernel.MustMoney("100.00"))
		require.NoError(t, err)

		entries := []*ledger.Entry{orderEntry, settlement}

		// 207.00 accrued, 100.00 paid out.
		assert.Equal(t, "-107.00", ledger.BalanceOf(entries, ledger.MerchantPayable(storeID)).String())
		assert.Equal(t, "141.50", ledger.BalanceOf(entries, ledger.AccountCash).String())
	})

	t.Run("should reject non-positive amount", func(t *testing.T) {
		_, err := ledger.NewSettlementEntry(kernel.NewUUID(), kernel.NewUUID(), storeID, kernel.ZeroMoney())

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestAccountCode(t *testing.T) {
	t.Run("merchant payable codes are store scoped", func(t *testing.T) {
		a := ledger.MerchantPayable(kernel.NewUUID())
		b := ledger.MerchantPayable(kernel.NewUUID())

		assert.NotEqual(t, a, b)
		assert.True(t, a.IsMerchantPayable())
		assert.False(t, ledger.AccountCash.IsMerchantPayable())
	})
}
