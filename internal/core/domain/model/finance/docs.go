// Package finance implements the tax and commission calculator of the
// marketplace. It decomposes VAT-inclusive order lines and the delivery fee
// into ex-VAT prices, VAT, platform commission, and the merchant payout.
//
// The central type is FinancialSnapshot, an immutable breakdown computed
// exactly once at order placement with the store configuration frozen into
// it. Corrections never edit a snapshot; refunds compute a new snapshot for
// the refunded portion and post a reversing journal entry.
//
// Rounding discipline: every per-line field is rounded half-up to 2 decimal
// places the moment it is produced, and every aggregate is the sum of
// already-rounded per-line fields. This makes the conservation invariants
// hold to the cent for any number of lines:
//
//	sum(lineTotal) + deliveryFeeIncVat == orderTotal
//	merchantPayout + commissionTotal   == lineTotal   (per line)
package finance
