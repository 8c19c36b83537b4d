package ports

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Provides methods for storing, retrieving, and querying order entities
// based on their status and assignment state.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// UpdateWithExpectedStatus persists the aggregate only if the stored row
	// still carries the expected prior status. A stale expectation returns
	// errs.ConflictError and leaves the row untouched; callers must re-read
	// and retry rather than overwrite.
	UpdateWithExpectedStatus(ctx context.Context, aggregate *order.Order, expected order.Status) error

	// Get retrieves an order aggregate by its unique identifier, including
	// its frozen financial snapshot and full status timeline.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllAvailable retrieves orders claimable by couriers: accepted or
	// ready, with no courier assigned yet.
	GetAllAvailable(ctx context.Context) ([]*order.Order, error)

	// ClaimForCourier atomically assigns the order to the courier. The write
	// succeeds only while the stored row has no courier and is still in a
	// claimable status; among concurrent claims exactly one wins. Losers
	// receive errs.ConflictError, a missing order errs.ObjectNotFoundError.
	ClaimForCourier(ctx context.Context, orderID kernel.UUID, courierID kernel.UUID) error
}
