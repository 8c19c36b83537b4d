package ledger

import (
	"strings"

	"marketplace/internal/core/domain/model/kernel"
)

// AccountCode identifies one ledger account.
type AccountCode string

const (
	// AccountCash records money collected from customers.
	AccountCash AccountCode = "cash"

	// AccountCommissionRevenue records the platform's ex-VAT commission.
	AccountCommissionRevenue AccountCode = "commission_revenue"

	// AccountVatPayable records VAT the platform owes the tax authority:
	// VAT on its commission and VAT on the delivery fee.
	AccountVatPayable AccountCode = "vat_payable"

	// AccountDeliveryRevenue records the ex-VAT delivery fee.
	AccountDeliveryRevenue AccountCode = "delivery_revenue"

	// merchantPayablePrefix scopes the payable subledger per store.
	merchantPayablePrefix = "merchant_payable."
)

// MerchantPayable returns the payable subledger account for one store.
// Keeping payables per store lets settlements fold a single account instead
// of filtering journal references.
func MerchantPayable(storeID kernel.UUID) AccountCode {
	return AccountCode(merchantPayablePrefix + storeID.String())
}

// IsMerchantPayable reports whether the code belongs to the payable subledger.
func (c AccountCode) IsMerchantPayable() bool {
	return strings.HasPrefix(string(c), merchantPayablePrefix)
}

// String returns the raw account code.
func (c AccountCode) String() string {
	return string(c)
}
