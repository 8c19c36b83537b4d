package queries

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/finance"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/guard"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
)

// GetOrderQuery retrieves a single order with its frozen financial snapshot
// and the full status timeline. This is the order detail view shared by the
// customer, merchant and back-office surfaces.
//
// Example:
//
//	query, err := NewGetOrderQuery(orderID)
//	if err != nil {
//	    return err
//	}
//
//	detail, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get order: %w", err)
//	}
//
//	fmt.Printf("Order %s is %s, total %s\n", detail.ID, detail.Status, detail.Snapshot.OrderTotal)
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for a single order's detail view.
func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	query := GetOrderQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setOrderID(orderID); err != nil {
		return GetOrderQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOrderQueryIsNotConstructed if validation fails.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the identifier of the order to retrieve.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q *GetOrderQuery) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	q.orderID = orderID
	return nil
}

// GetOrderQueryResponse is the order detail read model. The snapshot is the
// frozen placement-time financial record; the timeline lists every status
// change in chronological order.
type GetOrderQueryResponse struct {
	ID         kernel.UUID
	StoreID    kernel.UUID
	CustomerID kernel.UUID
	CourierID  *kernel.UUID
	Status     order.Status
	Snapshot   finance.SnapshotRecord
	PlacedAt   time.Time
	UpdatedAt  time.Time
	Timeline   []OrderTimelineEventResponse
}

// OrderTimelineEventResponse is one status change in the order's history.
type OrderTimelineEventResponse struct {
	From       order.Status
	To         order.Status
	Actor      order.Actor
	OccurredAt time.Time
}
