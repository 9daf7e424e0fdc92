// Package offerstore provides an in-memory store for in-flight dispatch offers.
// Offers live for seconds and lose all meaning once their order is assigned or
// cancelled, so they are deliberately not persisted: a restart simply lets the
// dispatch engine re-offer on the next tick.
package offerstore

import (
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
)

type offerKey struct {
	orderID kernel.UUID
	agentID kernel.UUID
}

// InMemoryOfferStore keeps the current offer rounds under a read-write mutex.
// The same *offer.Offer instances are shared with callers; resolving an offer
// through Accept/Reject is visible to every reader.
type InMemoryOfferStore struct {
	mu      sync.RWMutex
	offers  map[offerKey]*offer.Offer
	byOrder map[kernel.UUID][]*offer.Offer
}

// NewInMemoryOfferStore creates an empty store.
func NewInMemoryOfferStore() *InMemoryOfferStore {
	return &InMemoryOfferStore{
		offers:  make(map[offerKey]*offer.Offer),
		byOrder: make(map[kernel.UUID][]*offer.Offer),
	}
}

// Put stores the offers of one dispatch round. A resolved offer for the same
// (order, agent) pair is replaced so a later round can re-offer the order to
// an agent whose earlier offer expired; a still-pending offer is kept.
func (s *InMemoryOfferStore) Put(offers []*offer.Offer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range offers {
		if o == nil || o.Validate() != nil {
			continue
		}

		key := offerKey{orderID: o.OrderID(), agentID: o.AgentID()}
		if existing, exists := s.offers[key]; exists {
			if existing.IsPending() {
				continue
			}
			s.dropFromOrder(existing)
		}

		s.offers[key] = o
		s.byOrder[o.OrderID()] = append(s.byOrder[o.OrderID()], o)
	}
}

// dropFromOrder removes one offer from the per-order list. Callers hold the
// write lock.
func (s *InMemoryOfferStore) dropFromOrder(o *offer.Offer) {
	stored := s.byOrder[o.OrderID()]
	for i, candidate := range stored {
		if candidate == o {
			s.byOrder[o.OrderID()] = append(stored[:i], stored[i+1:]...)
			break
		}
	}
	if len(s.byOrder[o.OrderID()]) == 0 {
		delete(s.byOrder, o.OrderID())
	}
}

// Get returns the offer extended to the agent for the order, or nil.
func (s *InMemoryOfferStore) Get(orderID, agentID kernel.UUID) *offer.Offer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.offers[offerKey{orderID: orderID, agentID: agentID}]
}

// ListByOrder returns every stored offer for the order.
func (s *InMemoryOfferStore) ListByOrder(orderID kernel.UUID) []*offer.Offer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byOrder[orderID]
	result := make([]*offer.Offer, len(stored))
	copy(result, stored)
	return result
}

// ListByAgent returns the agent's pending offers, the same view the push
// channel would have delivered.
func (s *InMemoryOfferStore) ListByAgent(agentID kernel.UUID) []*offer.Offer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*offer.Offer
	for key, o := range s.offers {
		if key.agentID == agentID && o.IsPending() {
			result = append(result, o)
		}
	}
	return result
}

// RemoveByOrder drops all offers for the order.
func (s *InMemoryOfferStore) RemoveByOrder(orderID kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.byOrder[orderID] {
		delete(s.offers, offerKey{orderID: o.OrderID(), agentID: o.AgentID()})
	}
	delete(s.byOrder, orderID)
}

// ExpireDue marks every pending offer past its deadline as expired and
// returns the expired offers.
func (s *InMemoryOfferStore) ExpireDue(now time.Time) []*offer.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*offer.Offer
	for _, o := range s.offers {
		if o.Expire(now) {
			expired = append(expired, o)
		}
	}
	return expired
}

// Len returns the number of stored offers.
func (s *InMemoryOfferStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.offers)
}
