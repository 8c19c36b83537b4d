// Package courier provides the Courier aggregate root for the marketplace.
// A courier is the delivery-side counterparty of an order: couriers browse
// the pool of claimable orders and compete to claim them, with the claim
// itself enforced on the order side.
//
// Key business rules:
//   - Couriers must have a valid unique identifier, name, and phone number
//   - Only active couriers may claim or carry orders
//   - Deactivation does not touch orders already in flight
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package courier
