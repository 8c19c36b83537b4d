package orderrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
//
// Two write paths are deliberately conditional at the SQL level:
// UpdateWithExpectedStatus guards against lost updates between a handler's
// read and write, and ClaimForCourier resolves concurrent claims so that
// exactly one courier wins. Both rely on single-statement atomicity, not
// on serializable isolation.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database, including its placement event.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order to the database unconditionally.
// New timeline events are appended; existing events are never touched.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select("courier_id", "status", "updated_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := r.appendNewEvents(ctx, aggregate); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// UpdateWithExpectedStatus saves the order only if the stored row still
// carries the expected prior status. A stale expectation means another
// writer got there first; the caller receives errs.ConflictError and must
// re-read rather than overwrite.
func (r *GormOrderRepository) UpdateWithExpectedStatus(
	ctx context.Context,
	aggregate *order.Order,
	expected order.Status,
) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND status = ?", dto.ID, int(expected)).
		Select("courier_id", "status", "updated_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderDTO{}).
			Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("order", aggregate.ID().String())
		}
		return errs.NewConflictErrorWithCause("order update",
			fmt.Errorf("order %s is no longer %s", aggregate.ID(), expected))
	}

	if err := r.appendNewEvents(ctx, aggregate); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID with its snapshot and full timeline.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("order_events.id") }).
		First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllAvailable retrieves orders claimable by couriers: accepted or
// ready, with no courier assigned yet, oldest first.
func (r *GormOrderRepository) GetAllAvailable(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("order_events.id") }).
		Where("status IN (?, ?) AND courier_id IS NULL", int(order.AcceptedByMerchant), int(order.Ready)).
		Order("placed_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

// ClaimForCourier atomically assigns the order to the courier. The single
// conditional UPDATE is the whole race: among concurrent claims for the
// same order the database applies exactly one, and every other claimant
// sees zero rows affected.
func (r *GormOrderRepository) ClaimForCourier(
	ctx context.Context,
	orderID kernel.UUID,
	courierID kernel.UUID,
) error {
	if err := errors.Join(orderID.Validate(), courierID.Validate()); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Exec(`
		UPDATE orders
		SET courier_id = ?, status = ?, updated_at = NOW()
		WHERE id = ?
		  AND courier_id IS NULL
		  AND status IN (?, ?)
	`, courierID.Bytes(), int(order.AssignedToCourier), orderID.Bytes(),
		int(order.AcceptedByMerchant), int(order.Ready))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var dto OrderDTO
		err := r.db.WithContext(ctx).First(&dto, "id = ?", orderID.Bytes()).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewObjectNotFoundError("order", orderID.String())
		}
		if err != nil {
			return err
		}
		return errs.NewConflictErrorWithCause("order claim",
			fmt.Errorf("order %s is not claimable: status %s, courier %v",
				orderID, order.Status(dto.Status), dto.CourierID))
	}

	return r.recordClaimEvent(ctx, orderID, courierID)
}

// recordClaimEvent appends the assignment transition to the timeline.
// The prior status is read back from the row's last event so the timeline
// stays gapless whether the claim started from accepted or ready.
func (r *GormOrderRepository) recordClaimEvent(
	ctx context.Context,
	orderID kernel.UUID,
	_ kernel.UUID,
) error {
	var lastStatus int
	row := r.db.WithContext(ctx).Raw(`
		SELECT to_status
		FROM order_events
		WHERE order_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, orderID.Bytes()).Row()
	if err := row.Scan(&lastStatus); err != nil {
		return err
	}

	event := OrderEventDTO{
		OrderID:    orderID.Bytes(),
		FromStatus: lastStatus,
		ToStatus:   int(order.AssignedToCourier),
		Actor:      int(order.ActorCoordinator),
		OccurredAt: time.Now().UTC(),
	}

	return r.db.WithContext(ctx).Create(&event).Error
}

// appendNewEvents persists timeline entries not yet stored for the order.
// Events are append-only; the count of stored rows tells how many of the
// aggregate's timeline entries are already persisted.
func (r *GormOrderRepository) appendNewEvents(ctx context.Context, aggregate *order.Order) error {
	var stored int64
	if err := r.db.WithContext(ctx).Model(&OrderEventDTO{}).
		Where("order_id = ?", aggregate.ID().Bytes()).
		Count(&stored).Error; err != nil {
		return err
	}

	timeline := aggregate.Timeline()
	if int(stored) >= len(timeline) {
		return nil
	}

	orderID := aggregate.ID().Bytes()
	events := make([]OrderEventDTO, 0, len(timeline)-int(stored))
	for _, change := range timeline[stored:] {
		events = append(events, OrderEventDTO{
			OrderID:    orderID,
			FromStatus: int(change.From),
			ToStatus:   int(change.To),
			Actor:      int(change.Actor),
			OccurredAt: change.OccurredAt,
		})
	}

	return r.db.WithContext(ctx).Create(&events).Error
}
