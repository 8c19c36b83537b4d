// Package ledger implements the append-only double-entry journal of the
// marketplace. Every financial event (order placement, merchant settlement,
// refund) is recorded as a balanced Entry whose debits equal its credits,
// enforced at construction time rather than optionally checked later.
//
// Entries are immutable: a correction is a new entry with debits and credits
// swapped relative to the original, never an edit or a delete. An account's
// balance is always a fold over its journal lines, never a separately
// maintained counter, which removes the entire class of "balance drifted
// from ledger" bugs at the cost of O(n) reads.
//
// Merchant payables are kept in per-store subledger accounts so settlement
// and payout balances can be folded per merchant without a separate index.
package ledger
