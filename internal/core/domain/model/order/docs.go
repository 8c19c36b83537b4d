// Package order provides domain entities and business logic for order
// management in the marketplace. It implements the Order aggregate root with
// lifecycle management, role-gated state transitions, and the frozen
// financial snapshot computed at placement.
//
// The package includes:
//   - Order: The aggregate root that manages order identity, the financial
//     snapshot, courier assignment, and the status timeline
//   - Status: A state machine that enforces valid order status transitions
//   - Actor: The role requesting a transition; legality depends on who asks
//   - StatusChange: A single timeline record, also used as the notification event
//
// Key business rules:
//   - The financial snapshot is computed once at placement and never mutated
//   - Status follows the workflow New -> AcceptedByMerchant -> Preparing ->
//     Ready -> AssignedToCourier -> PickedUp -> OnTheWay -> Delivered, with
//     Cancelled and Failed reachable from any non-terminal state
//   - Delivered, Cancelled and Failed are terminal
//   - A courier is assigned exactly once; competing claims have one winner
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
