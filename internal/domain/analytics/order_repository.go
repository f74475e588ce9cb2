package analytics

import (
	"context"
	"time"
)

// OrderFilter narrows the order snapshot fetched for a report run.
// All fields are optional; nil/empty means no constraint.
type OrderFilter struct {
	StartDate *time.Time // orders placed on or after this date
	EndDate   *time.Time // orders placed on or before this date
	Platform  string     // exact platform match
	Status    string     // exact status match, case-insensitive
}

// OrderRepository supplies the order snapshots the engine computes
// over. Implementations fetch a stable, already-materialized slice;
// the engine never goes back to storage mid-computation.
type OrderRepository interface {
	// ListOrders returns the orders matching the filter, including
	// their line items.
	ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error)
}
