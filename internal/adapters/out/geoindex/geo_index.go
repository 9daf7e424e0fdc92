// Package geoindex provides an in-memory implementation of the agent geo index.
// Positions live only in memory: the index is rebuilt from incoming location
// reports after a restart, and the durable agent rows keep the last known
// location for everything that is not a radius query.
package geoindex

import (
	"sort"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

type entry struct {
	point      kernel.GeoPoint
	observedAt time.Time
}

// InMemoryGeoIndex keeps agent positions under a read-write mutex. Radius
// queries do a linear scan with the haversine distance; the fleet sizes this
// serves make that cheaper than maintaining a spatial structure.
type InMemoryGeoIndex struct {
	mu      sync.RWMutex
	entries map[kernel.UUID]entry
}

// NewInMemoryGeoIndex creates an empty index.
func NewInMemoryGeoIndex() *InMemoryGeoIndex {
	return &InMemoryGeoIndex{
		entries: make(map[kernel.UUID]entry),
	}
}

// Upsert records the agent's position. Reports older than the stored
// observation are dropped so delayed pings cannot move an agent backwards.
// Returns whether the position was stored.
func (idx *InMemoryGeoIndex) Upsert(agentID kernel.UUID, point kernel.GeoPoint, observedAt time.Time) bool {
	if err := agentID.Validate(); err != nil {
		return false
	}
	if err := point.Validate(); err != nil {
		return false
	}

	observedAt = observedAt.UTC()

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if current, ok := idx.entries[agentID]; ok && current.observedAt.After(observedAt) {
		return false
	}

	idx.entries[agentID] = entry{point: point, observedAt: observedAt}
	return true
}

// Remove drops the agent from the index.
func (idx *InMemoryGeoIndex) Remove(agentID kernel.UUID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.entries, agentID)
}

// Nearby returns up to limit agents within radiusMeters of center, closest
// first, distance ties broken by most recent position report.
func (idx *InMemoryGeoIndex) Nearby(center kernel.GeoPoint, radiusMeters float64, limit int) []ports.NearbyAgent {
	if limit <= 0 || radiusMeters <= 0 {
		return nil
	}

	idx.mu.RLock()
	hits := make([]ports.NearbyAgent, 0, len(idx.entries))
	for agentID, e := range idx.entries {
		distance, err := center.DistanceMeters(e.point)
		if err != nil {
			continue
		}
		if distance <= radiusMeters {
			hits = append(hits, ports.NearbyAgent{
				AgentID:        agentID,
				DistanceMeters: distance,
				ObservedAt:     e.observedAt,
			})
		}
	}
	idx.mu.RUnlock()

	// Equal distances break toward the freshest position report.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DistanceMeters != hits[j].DistanceMeters {
			return hits[i].DistanceMeters < hits[j].DistanceMeters
		}
		return hits[i].ObservedAt.After(hits[j].ObservedAt)
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Len returns the number of indexed agents.
func (idx *InMemoryGeoIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.entries)
}
