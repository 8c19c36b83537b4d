package queries

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAvailableOrdersQueryHandler retrieves claimable orders from the database.
// Filters on status and courier assignment so the courier app only sees
// orders a claim could actually win.
type GetAvailableOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetAvailableOrdersQueryHandler creates a handler for available order queries.
// Requires a GORM database connection for query execution.
func NewGetAvailableOrdersQueryHandler(db *gorm.DB) GetAvailableOrdersQueryHandler {
	return GetAvailableOrdersQueryHandler{db: db}
}

// Handle executes the query to retrieve all claimable orders.
// Returns accepted and ready orders without a courier, oldest first,
// so long-waiting orders surface at the top of the list.
func (h GetAvailableOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableOrdersQuery,
) ([]GetAvailableOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetAvailableOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			store_id,
			status,
			snapshot->>'order_total' AS order_total,
			placed_at
		FROM orders
		WHERE status IN (?, ?)
		  AND courier_id IS NULL
		ORDER BY placed_at
	`, order.AcceptedByMerchant, order.Ready).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetAvailableOrdersQueryResponse
		var id, storeID uuid.UUID
		var status int
		var orderTotal string
		var placedAt time.Time

		err = rows.Scan(
			&id,
			&storeID,
			&status,
			&orderTotal,
			&placedAt,
		)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.ID = orderID

		store, idErr := kernel.UUIDFromBytes(storeID[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.StoreID = store

		total, totalErr := kernel.NewMoneyFromString(orderTotal)
		if totalErr != nil {
			return nil, totalErr
		}
		resp.OrderTotal = total

		resp.Status = order.Status(status)
		resp.PlacedAt = placedAt
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
