package ports

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
)

// StoreConfig carries the per-store financial parameters in force at a given
// moment. It is read once at order placement and frozen into the order's
// snapshot; later configuration changes never affect placed orders.
type StoreConfig struct {
	VatRate         kernel.Rate
	CommissionRate  kernel.Rate
	BaseDeliveryFee kernel.Money
	PerKmRate       kernel.Money
}

// StoreConfigProvider resolves the current financial configuration of a store.
type StoreConfigProvider interface {
	CurrentConfig(ctx context.Context, storeID kernel.UUID) (StoreConfig, error)
}
