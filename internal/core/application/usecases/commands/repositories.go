// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"marketplace/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Each handler depends only on the repositories it actually touches, so
// tests mock a narrow surface.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// LedgerRepoFactory provides access to ledger repository within a transaction.
	LedgerRepoFactory interface {
		LedgerRepository() ports.LedgerRepository
	}

	// CourierRepoFactory provides access to courier repository within a transaction.
	CourierRepoFactory interface {
		CourierRepository() ports.CourierRepository
	}

	// OrderUoW manages transactions for order-only operations.
	// Used when commands only modify order aggregates.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// OrderLedgerUoW manages transactions spanning an order state change and
	// its journal entry, so the two commit or roll back together.
	OrderLedgerUoW interface {
		TxManager
		OrderRepoFactory
		LedgerRepoFactory
	}

	// OrderLedgerUoWFactory creates unit of work instances for financially
	// effective order operations.
	OrderLedgerUoWFactory interface {
		Create() OrderLedgerUoW
	}

	// OrderCourierUoW manages transactions for claim operations, which read
	// the courier registry and conditionally write the order.
	OrderCourierUoW interface {
		TxManager
		OrderRepoFactory
		CourierRepoFactory
	}

	// OrderCourierUoWFactory creates unit of work instances for claims.
	OrderCourierUoWFactory interface {
		Create() OrderCourierUoW
	}

	// LedgerUoW manages transactions for ledger-only operations such as
	// merchant settlements.
	LedgerUoW interface {
		TxManager
		LedgerRepoFactory
	}

	// LedgerUoWFactory creates ledger unit of work instances.
	LedgerUoWFactory interface {
		Create() LedgerUoW
	}

	// CourierUoW manages transactions for courier-only operations.
	CourierUoW interface {
		TxManager
		CourierRepoFactory
	}

	// CourierUoWFactory creates new courier unit of work instances.
	CourierUoWFactory interface {
		Create() CourierUoW
	}
)
