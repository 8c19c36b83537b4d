package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"marketplace/internal/core/domain/model/finance"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderQueryHandler retrieves a single order's detail view from the database.
// Reads the order row and its timeline in two queries; the financial snapshot
// is deserialized from the jsonb column without reconstructing the aggregate.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for order detail queries.
// Requires a GORM database connection for query execution.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query to retrieve one order with snapshot and timeline.
// Returns errs.ObjectNotFoundError when no order carries the requested ID.
func (h GetOrderQueryHandler) Handle(
	ctx context.Context,
	query GetOrderQuery,
) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	var resp GetOrderQueryResponse
	var id, storeID, customerID uuid.UUID
	var courierID *uuid.UUID
	var status int
	var snapshotRaw []byte

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			store_id,
			customer_id,
			courier_id,
			status,
			snapshot,
			placed_at,
			updated_at
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	err := row.Scan(
		&id,
		&storeID,
		&customerID,
		&courierID,
		&status,
		&snapshotRaw,
		&resp.PlacedAt,
		&resp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
		}
		return GetOrderQueryResponse{}, err
	}

	resp.ID, err = kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	resp.StoreID, err = kernel.UUIDFromBytes(storeID[:])
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	resp.CustomerID, err = kernel.UUIDFromBytes(customerID[:])
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	if courierID != nil {
		cID, idErr := kernel.UUIDFromBytes((*courierID)[:])
		if idErr != nil {
			return GetOrderQueryResponse{}, idErr
		}
		resp.CourierID = &cID
	}
	resp.Status = order.Status(status)

	var record finance.SnapshotRecord
	if err = json.Unmarshal(snapshotRaw, &record); err != nil {
		return GetOrderQueryResponse{}, errs.NewValueIsInvalidErrorWithCause("financial snapshot", err)
	}
	resp.Snapshot = record

	resp.Timeline, err = h.loadTimeline(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	return resp, nil
}

func (h GetOrderQueryHandler) loadTimeline(
	ctx context.Context,
	orderID kernel.UUID,
) ([]OrderTimelineEventResponse, error) {
	timeline := make([]OrderTimelineEventResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			from_status,
			to_status,
			actor,
			occurred_at
		FROM order_events
		WHERE order_id = ?
		ORDER BY id
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var fromStatus, toStatus, actor int
		var occurredAt time.Time

		if err = rows.Scan(&fromStatus, &toStatus, &actor, &occurredAt); err != nil {
			return nil, err
		}

		timeline = append(timeline, OrderTimelineEventResponse{
			From:       order.Status(fromStatus),
			To:         order.Status(toStatus),
			Actor:      order.Actor(actor),
			OccurredAt: occurredAt,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return timeline, nil
}
