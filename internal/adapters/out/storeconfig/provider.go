// Package storeconfig resolves per-store financial parameters. The static
// provider serves one marketplace-wide configuration loaded from the
// environment; a per-store table can replace it behind the same port once
// stores negotiate individual commission rates.
package storeconfig

import (
	"context"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
)

// StaticProvider serves the same configuration for every store.
type StaticProvider struct {
	config ports.StoreConfig
}

// NewStaticProvider creates a provider around a fixed configuration.
func NewStaticProvider(config ports.StoreConfig) *StaticProvider {
	return &StaticProvider{config: config}
}

// CurrentConfig returns the marketplace-wide configuration. The storeID is
// validated so a malformed request fails loudly rather than pricing an
// order for a store that cannot exist.
func (p *StaticProvider) CurrentConfig(_ context.Context, storeID kernel.UUID) (ports.StoreConfig, error) {
	if err := storeID.Validate(); err != nil {
		return ports.StoreConfig{}, err
	}
	return p.config, nil
}
