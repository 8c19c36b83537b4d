package services

import (
	"context"
	"log/slog"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
)

// DeliveryFeeCalculator is a domain service that quotes the VAT-inclusive
// delivery fee for an order at placement time.
//
// The fee is base + per-km rate x estimated distance, rounded to cents.
// Routing is an external concern that may fail or time out; placement never
// blocks on it, so on any geo error the calculator falls back to the static
// base fee and logs the degradation.
type DeliveryFeeCalculator struct {
	geo ports.GeoClient
}

// NewDeliveryFeeCalculator creates a calculator backed by the given geo client.
func NewDeliveryFeeCalculator(geo ports.GeoClient) DeliveryFeeCalculator {
	return DeliveryFeeCalculator{geo: geo}
}

// Calculate quotes the delivery fee for a route using the store's frozen
// configuration. The returned amount is VAT-inclusive and final: it is
// frozen into the order's snapshot and never re-quoted.
func (c DeliveryFeeCalculator) Calculate(
	ctx context.Context,
	cfg ports.StoreConfig,
	origin string,
	destination string,
) kernel.Money {
	distance, err := c.geo.Distance(ctx, origin, destination)
	if err != nil {
		slog.Warn("distance estimate unavailable, quoting base delivery fee",
			slog.String("origin", origin),
			slog.String("destination", destination),
			slog.Any("error", err))
		return cfg.BaseDeliveryFee
	}

	variable := cfg.PerKmRate.MulFloat(distance.Km)
	return cfg.BaseDeliveryFee.Add(variable)
}
