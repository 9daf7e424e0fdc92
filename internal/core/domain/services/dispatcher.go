package services

import (
	"errors"
	"fmt"
	"sort"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// ErrNoEligibleAgents is returned when none of the provided agents can receive
// an offer for the order. This occurs when no agents are provided or every one
// of them is offline, busy, unapproved, or has no known location.
var ErrNoEligibleAgents = errors.New("no eligible agents")

// Candidate pairs an agent with its distance to an order's pickup point,
// as reported by the geo index.
type Candidate struct {
	Agent          *agent.Agent
	DistanceMeters float64
}

// Dispatcher is a domain service responsible for planning offer rounds for
// orders that are searching for an agent.
//
// Key responsibilities:
//   - Computing the search radius for each dispatch attempt
//   - Filtering agents down to those eligible to receive offers
//   - Ranking candidates so the closest agents are tried first
//
// Business rules:
//   - The search radius doubles on every failed attempt, up to a cap
//   - Only approved, online agents with a known location receive offers
//   - High priority orders get a larger candidate fanout
//   - Ties on distance are broken by historical acceptance rate
type Dispatcher struct {
	baseRadiusMeters float64
	maxRadiusMeters  float64
	maxCandidates    int
}

// NewDispatcher creates a Dispatcher with the given radius plan and fanout.
func NewDispatcher(baseRadiusMeters, maxRadiusMeters float64, maxCandidates int) (Dispatcher, error) {
	if baseRadiusMeters <= 0 {
		return Dispatcher{}, errs.NewValueIsInvalidErrorWithCause("baseRadiusMeters",
			fmt.Errorf("%f is not greater than 0", baseRadiusMeters))
	}
	if maxRadiusMeters < baseRadiusMeters {
		return Dispatcher{}, errs.NewValueIsInvalidErrorWithCause("maxRadiusMeters",
			fmt.Errorf("%f is less than the base radius %f", maxRadiusMeters, baseRadiusMeters))
	}
	if maxCandidates <= 0 {
		return Dispatcher{}, errs.NewValueIsInvalidErrorWithCause("maxCandidates",
			fmt.Errorf("%d is not greater than 0", maxCandidates))
	}

	return Dispatcher{
		baseRadiusMeters: baseRadiusMeters,
		maxRadiusMeters:  maxRadiusMeters,
		maxCandidates:    maxCandidates,
	}, nil
}

// RadiusForAttempt returns the search radius in meters for the given dispatch
// attempt. Attempt 0 uses the base radius; each subsequent attempt doubles it
// until the cap is reached.
func (d Dispatcher) RadiusForAttempt(attempt int) float64 {
	radius := d.baseRadiusMeters
	for i := 0; i < attempt && radius < d.maxRadiusMeters; i++ {
		radius *= 2
	}
	if radius > d.maxRadiusMeters {
		return d.maxRadiusMeters
	}
	return radius
}

// Fanout returns how many agents receive an offer in one round for the order.
// High priority orders reach twice as many agents.
func (d Dispatcher) Fanout(o *order.Order) int {
	if o.Priority() == order.PriorityHigh {
		return d.maxCandidates * 2
	}
	return d.maxCandidates
}

// SelectCandidates filters and ranks candidates for one offer round.
//
// Parameters:
//   - o: the order searching for an agent (must be in searching status)
//   - candidates: agents near the pickup point, with distances
//
// Returns:
//   - the ranked candidates, capped at the order's fanout
//   - ErrNoEligibleAgents if no candidate survives filtering
func (d Dispatcher) SelectCandidates(o *order.Order, candidates []Candidate) ([]Candidate, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if o.Status() != order.SearchingAgent {
		return nil, errs.NewInvalidTransitionError(o.Status().String(), order.SearchingAgent.String())
	}

	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Agent.Validate(); err != nil {
			return nil, err
		}
		if !c.Agent.IsEligibleForOffers() {
			continue
		}
		eligible = append(eligible, c)
	}

	if len(eligible) == 0 {
		return nil, ErrNoEligibleAgents
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].DistanceMeters != eligible[j].DistanceMeters {
			return eligible[i].DistanceMeters < eligible[j].DistanceMeters
		}
		return eligible[i].Agent.AcceptanceRate() > eligible[j].Agent.AcceptanceRate()
	})

	fanout := d.Fanout(o)
	if len(eligible) > fanout {
		eligible = eligible[:fanout]
	}
	return eligible, nil
}
