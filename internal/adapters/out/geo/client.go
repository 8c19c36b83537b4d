// Package geo provides the routing estimate used for delivery fee
// calculation. The static client stands in for a real routing service;
// placement degrades to the base fee whenever routing is unavailable, so
// the marketplace runs fine with this stub in place.
package geo

import (
	"context"

	"marketplace/internal/core/ports"
)

// averageCourierSpeedKmh converts distance to a rough delivery estimate.
const averageCourierSpeedKmh = 20.0

// StaticClient returns a fixed distance for every route.
type StaticClient struct {
	distanceKm float64
}

// NewStaticClient creates a client reporting the given distance for all
// routes. A non-positive distance is treated as zero, which prices every
// delivery at the base fee.
func NewStaticClient(distanceKm float64) *StaticClient {
	if distanceKm < 0 {
		distanceKm = 0
	}
	return &StaticClient{distanceKm: distanceKm}
}

// Distance returns the configured estimate regardless of route.
func (c *StaticClient) Distance(_ context.Context, _ string, _ string) (ports.Distance, error) {
	return ports.Distance{
		Km:         c.distanceKm,
		EtaMinutes: int(c.distanceKm / averageCourierSpeedKmh * 60),
	}, nil
}
