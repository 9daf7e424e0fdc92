package ports

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// NearbyAgent is one geo index hit: an agent id, its distance from the query
// point and when the position was last reported.
type NearbyAgent struct {
	AgentID        kernel.UUID
	DistanceMeters float64
	ObservedAt     time.Time
}

// GeoIndex maintains the live positions of agents and answers radius queries
// for the dispatch engine. Implementations must be safe for concurrent use:
// location updates and candidate queries run on different goroutines.
type GeoIndex interface {
	// Upsert records the agent's position. Updates carrying an observation
	// time older than the stored one are dropped, so out-of-order location
	// pings cannot move an agent backwards.
	Upsert(agentID kernel.UUID, point kernel.GeoPoint, observedAt time.Time) bool

	// Remove drops the agent from the index, typically on going offline.
	Remove(agentID kernel.UUID)

	// Nearby returns up to limit agents within radiusMeters of center,
	// closest first, distance ties broken by most recent position report.
	Nearby(center kernel.GeoPoint, radiusMeters float64, limit int) []NearbyAgent
}
