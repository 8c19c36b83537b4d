// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
//
// The frozen financial snapshot is stored as a jsonb document on the order
// row: it is written once at placement and never updated, so a relational
// breakdown would add joins without adding any write path. The status
// timeline lives in a separate append-only order_events table.
package orderrepo

import (
	"encoding/json"
	"time"

	"marketplace/internal/core/domain/model/finance"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Indexed on status and courier assignment because the claim path and the
// availability listing filter on both.
type OrderDTO struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	StoreID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID      `gorm:"type:uuid;not null;index"`
	CourierID  *uuid.UUID     `gorm:"type:uuid;index"`
	Status     int            `gorm:"not null;index"`
	Snapshot   datatypes.JSON `gorm:"type:jsonb;not null"`
	PlacedAt   time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`

	Events []OrderEventDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderEventDTO represents one status change in the order's append-only
// timeline. The serial primary key preserves insertion order, which matches
// chronological order because events are written in the same transaction
// that applies the transition.
type OrderEventDTO struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus int       `gorm:"not null"`
	ToStatus   int       `gorm:"not null"`
	Actor      int       `gorm:"not null"`
	OccurredAt time.Time `gorm:"not null"`
}

// TableName specifies the database table name for order timeline events.
func (OrderEventDTO) TableName() string {
	return "order_events"
}

// fromDomain converts an order domain aggregate to its database
// representation, serializing the frozen snapshot and the full timeline.
func fromDomain(aggregate *order.Order) (OrderDTO, error) {
	var courierID *uuid.UUID
	if id := aggregate.Courier(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	snapshot, err := json.Marshal(aggregate.Snapshot().Record())
	if err != nil {
		return OrderDTO{}, errs.NewValueIsInvalidErrorWithCause("financial snapshot", err)
	}

	orderID := aggregate.ID().Bytes()
	events := make([]OrderEventDTO, 0, len(aggregate.Timeline()))
	for _, change := range aggregate.Timeline() {
		events = append(events, OrderEventDTO{
			OrderID:    orderID,
			FromStatus: int(change.From),
			ToStatus:   int(change.To),
			Actor:      int(change.Actor),
			OccurredAt: change.OccurredAt,
		})
	}

	return OrderDTO{
		ID:         orderID,
		StoreID:    aggregate.StoreID().Bytes(),
		CustomerID: aggregate.CustomerID().Bytes(),
		CourierID:  courierID,
		Status:     int(aggregate.Status()),
		Snapshot:   datatypes.JSON(snapshot),
		PlacedAt:   aggregate.PlacedAt(),
		UpdatedAt:  aggregate.UpdatedAt(),
		Events:     events,
	}, nil
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the aggregate including the revalidated snapshot and the
// timeline using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	storeID, err := kernel.UUIDFromBytes(dto.StoreID[:])
	if err != nil {
		return nil, err
	}

	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}

		courierID = &cID
	}

	var record finance.SnapshotRecord
	if err = json.Unmarshal(dto.Snapshot, &record); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("financial snapshot", err)
	}

	snapshot, err := finance.RestoreSnapshot(record)
	if err != nil {
		return nil, err
	}

	timeline := make([]order.StatusChange, 0, len(dto.Events))
	for _, event := range dto.Events {
		timeline = append(timeline, order.StatusChange{
			OrderID:    id,
			From:       order.Status(event.FromStatus),
			To:         order.Status(event.ToStatus),
			Actor:      order.Actor(event.Actor),
			OccurredAt: event.OccurredAt,
		})
	}

	return order.RestoreOrder(
		id,
		storeID,
		customerID,
		courierID,
		order.Status(dto.Status),
		snapshot,
		dto.PlacedAt,
		dto.UpdatedAt,
		timeline,
	)
}
