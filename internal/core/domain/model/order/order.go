package order

import (
	"errors"
	"time"

	"marketplace/internal/core/domain/model/finance"
	"marketplace/internal/core/domain/model/kernel"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrOrderAlreadyAssigned indicates a claim lost the race: the order
	// already references a courier. Losers must treat this as definitive and
	// drop the order from their available list instead of retrying.
	ErrOrderAlreadyAssigned = errors.New("order is already assigned to a courier")
)

// Order is the aggregate root for a marketplace order. It carries the frozen
// financial snapshot computed at placement, the current operational status,
// the optional courier assignment, and the append-only status timeline.
//
// Invariants:
//   - The snapshot is computed once and never mutated; corrections are
//     reversing snapshots posted to the ledger, never edits.
//   - Status only changes through validated transitions (see Status).
//   - courier_id is acquired exactly once via the claim path; two writers
//     never both succeed.
type Order struct {
	id         kernel.UUID
	storeID    kernel.UUID
	customerID kernel.UUID
	courierID  *kernel.UUID

	status   Status
	snapshot finance.FinancialSnapshot

	placedAt  time.Time
	updatedAt time.Time

	// timeline is the full status history, oldest first.
	timeline []StatusChange

	// pending holds changes applied in this session, not yet published.
	pending []StatusChange

	isConstructed bool
}

// NewOrder creates a new order in New status with its financial snapshot
// frozen in. The placement itself is recorded on the timeline as the first
// status change.
func NewOrder(
	id kernel.UUID,
	storeID kernel.UUID,
	customerID kernel.UUID,
	snapshot finance.FinancialSnapshot,
	placedAt time.Time,
) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		storeID.Validate(),
		customerID.Validate(),
		snapshot.Validate(),
	); err != nil {
		return nil, err
	}

	o := &Order{
		id:            id,
		storeID:       storeID,
		customerID:    customerID,
		status:        New,
		snapshot:      snapshot,
		placedAt:      placedAt,
		updatedAt:     placedAt,
		isConstructed: true,
	}
	o.record(Unknown, New, ActorCustomer, placedAt)

	return o, nil
}

// RestoreOrder reconstructs an order from persistence, revalidating the
// status, the courier consistency rule, and the snapshot. The supplied
// timeline is adopted as-is; no pending events are raised.
func RestoreOrder(
	id kernel.UUID,
	storeID kernel.UUID,
	customerID kernel.UUID,
	courierID *kernel.UUID,
	status Status,
	snapshot finance.FinancialSnapshot,
	placedAt time.Time,
	updatedAt time.Time,
	timeline []StatusChange,
) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		storeID.Validate(),
		customerID.Validate(),
		status.Validate(),
		snapshot.Validate(),
	); err != nil {
		return nil, err
	}
	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return nil, err
		}
	}
	if err := status.ValidateCanHaveCourier(courierID != nil); err != nil {
		return nil, err
	}

	o := &Order{
		id:            id,
		storeID:       storeID,
		customerID:    customerID,
		courierID:     courierID,
		status:        status,
		snapshot:      snapshot,
		placedAt:      placedAt,
		updatedAt:     updatedAt,
		timeline:      make([]StatusChange, len(timeline)),
		isConstructed: true,
	}
	copy(o.timeline, timeline)

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// StoreID returns the merchant store that fulfills the order.
func (o *Order) StoreID() kernel.UUID {
	return o.storeID
}

// CustomerID returns the buyer who placed the order.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// Courier returns the assigned courier's ID, or nil before assignment.
func (o *Order) Courier() *kernel.UUID {
	return o.courierID
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Snapshot returns the frozen financial snapshot.
func (o *Order) Snapshot() finance.FinancialSnapshot {
	return o.snapshot
}

// PlacedAt returns when the order was placed.
func (o *Order) PlacedAt() time.Time {
	return o.placedAt
}

// UpdatedAt returns when the order last changed.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// Timeline returns a copy of the append-only status history, oldest first.
func (o *Order) Timeline() []StatusChange {
	out := make([]StatusChange, len(o.timeline))
	copy(out, o.timeline)
	return out
}

// PendingEvents returns the status changes applied in this session that have
// not yet been published to the notifier.
func (o *Order) PendingEvents() []StatusChange {
	out := make([]StatusChange, len(o.pending))
	copy(out, o.pending)
	return out
}

// ClearPendingEvents drops the pending changes after publication.
func (o *Order) ClearPendingEvents() {
	o.pending = nil
}

// Accept moves a New order to AcceptedByMerchant.
func (o *Order) Accept(now time.Time) error {
	return o.transition(AcceptedByMerchant, ActorMerchant, now)
}

// StartPreparing moves an accepted order to Preparing.
func (o *Order) StartPreparing(now time.Time) error {
	return o.transition(Preparing, ActorMerchant, now)
}

// MarkReady moves a Preparing order to Ready for courier pickup.
func (o *Order) MarkReady(now time.Time) error {
	return o.transition(Ready, ActorMerchant, now)
}

// AssignCourier records a winning claim: the courier reference and the
// AssignedToCourier status are set together. An order that already
// references a courier rejects the claim with ErrOrderAlreadyAssigned.
//
// In-memory assignment is necessary but not sufficient for claim safety:
// the repository must persist it through a conditional write whose
// precondition is a null courier reference (see OrderRepository.ClaimForCourier).
func (o *Order) AssignCourier(courierID kernel.UUID, now time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if o.courierID != nil {
		return ErrOrderAlreadyAssigned
	}
	if err := o.transition(AssignedToCourier, ActorCoordinator, now); err != nil {
		return err
	}

	o.courierID = &courierID
	return nil
}

// MarkPickedUp records the courier collecting the order. From Ready the
// courier takes the order directly and the reference is set here; from
// AssignedToCourier only the assigned courier may pick up.
func (o *Order) MarkPickedUp(courierID kernel.UUID, now time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if o.courierID != nil && !o.courierID.IsEqual(courierID) {
		return ErrOrderAlreadyAssigned
	}
	if err := o.transition(PickedUp, ActorCourier, now); err != nil {
		return err
	}

	o.courierID = &courierID
	return nil
}

// MarkOnTheWay records the courier leaving for the customer.
func (o *Order) MarkOnTheWay(now time.Time) error {
	return o.transition(OnTheWay, ActorCourier, now)
}

// MarkDelivered completes the delivery. Payment confirmation is a side
// effect of the enclosing use case, performed before this transition is
// persisted.
func (o *Order) MarkDelivered(now time.Time) error {
	return o.transition(Delivered, ActorCourier, now)
}

// Cancel withdraws a non-terminal order. The actor must be authorized for
// cancellation; the financial reversal is posted by the enclosing use case.
func (o *Order) Cancel(actor Actor, now time.Time) error {
	return o.transition(Cancelled, actor, now)
}

// Fail marks a non-terminal order as failed, the exception path for orders
// that cannot be completed.
func (o *Order) Fail(actor Actor, now time.Time) error {
	return o.transition(Failed, actor, now)
}

// transition applies a validated status change and appends it to the
// timeline and the pending event set.
func (o *Order) transition(target Status, actor Actor, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := o.status.ValidateTransition(target, actor); err != nil {
		return err
	}

	from := o.status
	o.status = target
	o.updatedAt = now
	o.record(from, target, actor, now)

	return nil
}

func (o *Order) record(from, to Status, actor Actor, at time.Time) {
	change := StatusChange{
		OrderID:    o.id,
		From:       from,
		To:         to,
		Actor:      actor,
		OccurredAt: at,
	}
	o.timeline = append(o.timeline, change)
	o.pending = append(o.pending, change)
}
