package ports

import (
	"context"
)

// Distance is the routing estimate between a store and a delivery address.
type Distance struct {
	Km         float64
	EtaMinutes int
}

// GeoClient estimates the delivery distance for fee calculation. The client
// may fail or time out; callers fall back to the static base fee and never
// block order placement on routing.
type GeoClient interface {
	Distance(ctx context.Context, origin string, destination string) (Distance, error)
}
