// Package services provides domain services that orchestrate business
// operations across multiple domain entities in the marketplace. It
// implements business logic that doesn't naturally belong to a single
// aggregate root.
//
// The package includes:
//   - DeliveryFeeCalculator: computes the VAT-inclusive delivery fee quoted
//     to the customer at order placement
package services
