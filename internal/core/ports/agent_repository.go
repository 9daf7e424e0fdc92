// Package ports defines the interfaces between the dispatch core and its
// infrastructure: repositories, the geo index, the offer store, the real-time
// broadcaster and the partner webhook dispatcher. These interfaces establish
// contracts between the domain layer and infrastructure, enabling dependency
// inversion and testability.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
)

// AgentRepository defines the persistence contract for agent aggregates.
// Provides methods for storing, retrieving, and querying agent entities
// with their presence, approval and last known location.
type AgentRepository interface {
	// Add persists a new agent aggregate to storage.
	// The agent must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *agent.Agent) error

	// Update persists changes to an existing agent aggregate.
	// The agent must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *agent.Agent) error

	// Get retrieves an agent aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*agent.Agent, error)

	// GetByIDs retrieves the agents for the given identifiers. Missing ids
	// are skipped, not an error; the dispatch engine tolerates agents that
	// disappeared between the geo query and the load.
	GetByIDs(ctx context.Context, ids []kernel.UUID) ([]*agent.Agent, error)
}
