package order

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
)

// StatusChange is one step of an order's append-only timeline and, for
// freshly applied transitions, the domain event handed to the notifier.
// The timeline is the system of record for "what happened when",
// independent of the mutable current-status field.
type StatusChange struct {
	OrderID    kernel.UUID
	From       Status
	To         Status
	Actor      Actor
	OccurredAt time.Time
}
