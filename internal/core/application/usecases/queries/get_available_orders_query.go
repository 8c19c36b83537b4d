package queries

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/guard"
)

var (
	ErrGetAvailableOrdersQueryIsNotConstructed = errors.New(
		"GetAvailableOrdersQuery must be created via NewGetAvailableOrdersQuery constructor",
	)
)

// GetAvailableOrdersQuery retrieves orders a courier may still claim:
// accepted or ready, with no courier assigned yet. This feeds the courier
// app's "available work" screen.
//
// Example:
//
//	query := NewGetAvailableOrdersQuery()
//	handler := NewGetAvailableOrdersQueryHandler(db)
//
//	orders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get available orders: %w", err)
//	}
//
//	fmt.Printf("%d orders available for claim\n", len(orders))
type GetAvailableOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAvailableOrdersQuery creates a query to retrieve claimable orders.
// This is a parameterless query that fetches all unassigned, claimable orders.
func NewGetAvailableOrdersQuery() GetAvailableOrdersQuery {
	return GetAvailableOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetAvailableOrdersQueryIsNotConstructed if validation fails.
func (q GetAvailableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableOrdersQueryIsNotConstructed)
}

// GetAvailableOrdersQueryResponse represents one claimable order in the
// read model. OrderTotal comes from the frozen financial snapshot so the
// courier sees the amount the customer pays.
type GetAvailableOrdersQueryResponse struct {
	ID         kernel.UUID
	StoreID    kernel.UUID
	Status     order.Status
	OrderTotal kernel.Money
	PlacedAt   time.Time
}
