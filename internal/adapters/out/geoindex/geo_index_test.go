package geoindex

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/domain/model/kernel"
)

func mustPoint(t *testing.T, lat, lng float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return p
}

func Test_InMemoryGeoIndex_UpsertAndNearby(t *testing.T) {
	idx := NewInMemoryGeoIndex()
	center := mustPoint(t, 12.9716, 77.5946)
	now := time.Now()

	near := kernel.NewUUID()
	mid := kernel.NewUUID()
	far := kernel.NewUUID()

	// ~150m, ~1.2km and ~5.2km from the center.
	assert.True(t, idx.Upsert(near, mustPoint(t, 12.9726, 77.5952), now))
	assert.True(t, idx.Upsert(mid, mustPoint(t, 12.9820, 77.5950), now))
	assert.True(t, idx.Upsert(far, mustPoint(t, 12.9352, 77.6245), now))

	hits := idx.Nearby(center, 2000, 10)

	require.Len(t, hits, 2)
	assert.Equal(t, near, hits[0].AgentID)
	assert.Equal(t, mid, hits[1].AgentID)
	assert.Less(t, hits[0].DistanceMeters, hits[1].DistanceMeters)
}

func Test_InMemoryGeoIndex_Nearby_BreaksDistanceTiesByFreshness(t *testing.T) {
	idx := NewInMemoryGeoIndex()
	center := mustPoint(t, 12.9716, 77.5946)
	spot := mustPoint(t, 12.9726, 77.5952)
	now := time.Now()

	stale := kernel.NewUUID()
	fresh := kernel.NewUUID()
	closer := kernel.NewUUID()

	// Two agents share a position; the one that reported last wins the tie.
	require.True(t, idx.Upsert(stale, spot, now.Add(-time.Minute)))
	require.True(t, idx.Upsert(fresh, spot, now))
	require.True(t, idx.Upsert(closer, mustPoint(t, 12.9718, 77.5947), now.Add(-time.Hour)))

	hits := idx.Nearby(center, 2000, 10)

	require.Len(t, hits, 3)
	assert.Equal(t, closer, hits[0].AgentID)
	assert.Equal(t, fresh, hits[1].AgentID)
	assert.Equal(t, stale, hits[2].AgentID)
	assert.Equal(t, hits[1].DistanceMeters, hits[2].DistanceMeters)
}

func Test_InMemoryGeoIndex_Nearby_RespectsLimit(t *testing.T) {
	idx := NewInMemoryGeoIndex()
	center := mustPoint(t, 12.9716, 77.5946)
	now := time.Now()

	for i := 0; i < 5; i++ {
		idx.Upsert(kernel.NewUUID(), mustPoint(t, 12.9716+float64(i)*0.0005, 77.5946), now)
	}

	hits := idx.Nearby(center, 10000, 3)
	assert.Len(t, hits, 3)

	assert.Nil(t, idx.Nearby(center, 10000, 0))
	assert.Nil(t, idx.Nearby(center, 0, 3))
}

func Test_InMemoryGeoIndex_Upsert_DropsStaleReports(t *testing.T) {
	idx := NewInMemoryGeoIndex()
	agentID := kernel.NewUUID()
	now := time.Now()

	newPos := mustPoint(t, 12.9800, 77.6000)
	require.True(t, idx.Upsert(agentID, newPos, now))

	// A delayed report with an older observation time must not win.
	stalePos := mustPoint(t, 12.9000, 77.5000)
	assert.False(t, idx.Upsert(agentID, stalePos, now.Add(-time.Minute)))

	hits := idx.Nearby(newPos, 100, 1)
	require.Len(t, hits, 1)
	assert.Equal(t, agentID, hits[0].AgentID)
}

func Test_InMemoryGeoIndex_Remove(t *testing.T) {
	idx := NewInMemoryGeoIndex()
	agentID := kernel.NewUUID()
	pos := mustPoint(t, 12.9716, 77.5946)

	idx.Upsert(agentID, pos, time.Now())
	require.Equal(t, 1, idx.Len())

	idx.Remove(agentID)

	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Nearby(pos, 1000, 10))
}

func Test_InMemoryGeoIndex_ConcurrentAccess(t *testing.T) {
	idx := NewInMemoryGeoIndex()
	center := mustPoint(t, 12.9716, 77.5946)
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			idx.Upsert(kernel.NewUUID(), mustPoint(t, 12.97+float64(i)*0.0001, 77.59), now)
		}(i)
		go func() {
			defer wg.Done()
			idx.Nearby(center, 5000, 10)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, idx.Len())
}
