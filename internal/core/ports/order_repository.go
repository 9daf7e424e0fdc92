package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Provides methods for storing, retrieving, and querying order entities
// based on their status and assignment state.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// UpdateInStatus persists changes to an order only if its stored status
	// still equals expected. This is the compare-and-set primitive that
	// serializes concurrent lifecycle transitions: when another writer got
	// there first, a ConflictError is returned and nothing is written.
	UpdateInStatus(ctx context.Context, aggregate *order.Order, expected order.Status) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns the complete order with its current status and assignment.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByTrackingNumber retrieves an order by its public tracking number.
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*order.Order, error)

	// GetAllSearching retrieves orders waiting for an agent, high priority
	// first and oldest first within a priority. Used by the dispatch engine.
	GetAllSearching(ctx context.Context) ([]*order.Order, error)

	// GetAllActive retrieves orders in any non-terminal status.
	GetAllActive(ctx context.Context) ([]*order.Order, error)

	// GetAssignedBefore retrieves orders with an agent (Assigned, PickedUp or
	// OutForDelivery) whose assignment happened before the cutoff. Used by the
	// delay monitor to bound its sweep.
	GetAssignedBefore(ctx context.Context, cutoff time.Time) ([]*order.Order, error)
}
