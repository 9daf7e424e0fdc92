package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ErrNoOrdersSearching is returned when a dispatch tick finds no orders
// waiting for an agent. Callers treat it as a quiet tick, not a failure.
var ErrNoOrdersSearching = errors.New("no orders searching for an agent")

// DispatchOrdersCommandHandler runs one dispatch tick over every searching
// order.
//
// Per order and tick:
//   - The search radius follows the attempt counter: base radius on the
//     first attempt, doubling up to the cap.
//   - The geo index supplies nearby agents; the domain dispatcher filters
//     and ranks them and caps the round at the order's fanout.
//   - Each selected agent gets an offer with an expiry deadline, counted
//     toward its acceptance statistics, and a best-effort push.
//
// An order with a round still pending is skipped until its offers resolve or
// expire. An order that exhausts the attempt budget stops being retried and
// the partner is told the search came up empty, whether the final rounds
// found no candidates at all or their offers all lapsed unaccepted.
type DispatchOrdersCommandHandler struct {
	uowFactory  OrderAgentUoWFactory
	dispatcher  services.Dispatcher
	geoIndex    ports.GeoIndex
	offerStore  ports.OfferStore
	broadcaster ports.Broadcaster
	webhooks    ports.WebhookDispatcher
	offerTTL    time.Duration
	maxAttempts int
	exhaustion  *exhaustionLog
}

// exhaustionLog remembers which searching orders were already reported
// exhausted, keeping the partner webhook to one signal per search. Kept in
// memory like the offers themselves: a restart re-reports at most once.
type exhaustionLog struct {
	mu       sync.Mutex
	reported map[kernel.UUID]struct{}
}

func newExhaustionLog() *exhaustionLog {
	return &exhaustionLog{reported: make(map[kernel.UUID]struct{})}
}

// markReported records the order as reported. Returns false when it already was.
func (l *exhaustionLog) markReported(orderID kernel.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.reported[orderID]; ok {
		return false
	}
	l.reported[orderID] = struct{}{}
	return true
}

func (l *exhaustionLog) clear(orderID kernel.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.reported, orderID)
}

// retain drops entries for orders that left the searching queue.
func (l *exhaustionLog) retain(searching map[kernel.UUID]struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for orderID := range l.reported {
		if _, ok := searching[orderID]; !ok {
			delete(l.reported, orderID)
		}
	}
}

// NewDispatchOrdersCommandHandler creates a handler for dispatch ticks.
func NewDispatchOrdersCommandHandler(
	uowFactory OrderAgentUoWFactory,
	dispatcher services.Dispatcher,
	geoIndex ports.GeoIndex,
	offerStore ports.OfferStore,
	broadcaster ports.Broadcaster,
	webhooks ports.WebhookDispatcher,
	offerTTL time.Duration,
	maxAttempts int,
) (DispatchOrdersCommandHandler, error) {
	if offerTTL <= 0 {
		return DispatchOrdersCommandHandler{}, errs.NewValueIsInvalidErrorWithCause("offerTTL",
			fmt.Errorf("%s is not positive", offerTTL))
	}
	if maxAttempts <= 0 {
		return DispatchOrdersCommandHandler{}, errs.NewValueIsInvalidErrorWithCause("maxAttempts",
			fmt.Errorf("%d is not positive", maxAttempts))
	}

	return DispatchOrdersCommandHandler{
		uowFactory:  uowFactory,
		dispatcher:  dispatcher,
		geoIndex:    geoIndex,
		offerStore:  offerStore,
		broadcaster: broadcaster,
		webhooks:    webhooks,
		offerTTL:    offerTTL,
		maxAttempts: maxAttempts,
		exhaustion:  newExhaustionLog(),
	}, nil
}

// offerRound is the staged outcome of planning one order's round. Pushes and
// offer storage happen only after the transaction commits.
type offerRound struct {
	order  *order.Order
	offers []*offer.Offer
}

// Handle processes one dispatch tick.
// Aggregate updates (attempt counters, offer statistics) commit in a single
// transaction; offers enter the store and agents get their pushes only after
// that commit, so a failed tick extends no offers.
func (h *DispatchOrdersCommandHandler) Handle(ctx context.Context, cmd DispatchOrdersCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	h.offerStore.ExpireDue(now)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	searching, err := orderRepo.GetAllSearching(ctx)
	if err != nil {
		return err
	}
	if len(searching) == 0 {
		return ErrNoOrdersSearching
	}

	searchingIDs := make(map[kernel.UUID]struct{}, len(searching))
	for _, o := range searching {
		searchingIDs[o.ID()] = struct{}{}
	}
	h.exhaustion.retain(searchingIDs)

	var (
		rounds    []offerRound
		exhausted []*order.Order
		roundErrs []error
	)

	for _, o := range searching {
		if h.hasOpenRound(o.ID()) {
			continue
		}
		if o.DispatchAttempts() >= h.maxAttempts {
			// Budget spent and the last round resolved without a winner. The
			// order waits for cancel, reassign or more agents; the partner
			// hears about it exactly once.
			if h.exhaustion.markReported(o.ID()) {
				exhausted = append(exhausted, o)
			}
			continue
		}

		// Reassign resets the counter; the search may exhaust again.
		h.exhaustion.clear(o.ID())

		round, roundErr := h.planRound(ctx, uow, orderRepo, o, now)
		switch {
		case errors.Is(roundErr, services.ErrNoEligibleAgents):
			if o.DispatchAttempts() >= h.maxAttempts && h.exhaustion.markReported(o.ID()) {
				exhausted = append(exhausted, o)
			}
		case roundErr != nil:
			roundErrs = append(roundErrs, fmt.Errorf("order %s: %w", o.ID(), roundErr))
		default:
			rounds = append(rounds, round)
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	for _, round := range rounds {
		h.offerStore.Put(round.offers)
		for _, extended := range round.offers {
			h.broadcaster.PublishOffer(extended.AgentID(), newOfferNotification(round.order, extended))
		}
	}

	for _, o := range exhausted {
		h.webhooks.Notify(ctx, ports.WebhookEvent{
			Type:           ports.EventOrderSearchExhausted,
			OrderID:        o.ID(),
			TrackingNumber: o.TrackingNumber(),
			PartnerID:      o.Partner(),
			Status:         o.Status().String(),
			OccurredAt:     now,
		})
	}

	return errors.Join(roundErrs...)
}

// planRound selects candidates for one order, issues their offers and records
// the attempt. Returns services.ErrNoEligibleAgents when the radius holds no
// one who can take the order.
func (h *DispatchOrdersCommandHandler) planRound(
	ctx context.Context,
	uow OrderAgentUoW,
	orderRepo ports.OrderRepository,
	o *order.Order,
	now time.Time,
) (offerRound, error) {
	radius := h.dispatcher.RadiusForAttempt(o.DispatchAttempts())
	fanout := h.dispatcher.Fanout(o)

	// Over-fetch: the index can hold agents that fail eligibility filtering.
	hits := h.geoIndex.Nearby(o.Pickup(), radius, fanout*2)

	o.RecordDispatchAttempt()
	if err := orderRepo.Update(ctx, o); err != nil {
		return offerRound{}, err
	}

	candidates, err := h.loadCandidates(ctx, uow, hits)
	if err != nil {
		return offerRound{}, err
	}

	selected, err := h.dispatcher.SelectCandidates(o, candidates)
	if err != nil {
		return offerRound{}, err
	}

	agentRepo := uow.AgentRepository()
	offers := make([]*offer.Offer, 0, len(selected))
	for _, candidate := range selected {
		extended, offerErr := offer.NewOffer(o.ID(), candidate.Agent.ID(), now, h.offerTTL)
		if offerErr != nil {
			return offerRound{}, offerErr
		}

		candidate.Agent.RecordOffer()
		if offerErr = agentRepo.Update(ctx, candidate.Agent); offerErr != nil {
			return offerRound{}, offerErr
		}

		offers = append(offers, extended)
	}

	return offerRound{order: o, offers: offers}, nil
}

// loadCandidates resolves geo index hits into agent aggregates with
// distances. Agents that vanished between the query and the load are skipped.
func (h *DispatchOrdersCommandHandler) loadCandidates(
	ctx context.Context,
	uow OrderAgentUoW,
	hits []ports.NearbyAgent,
) ([]services.Candidate, error) {
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]kernel.UUID, 0, len(hits))
	for _, hit := range hits {
		ids = append(ids, hit.AgentID)
	}

	agents, err := uow.AgentRepository().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[kernel.UUID]int, len(agents))
	for i, a := range agents {
		byID[a.ID()] = i
	}

	candidates := make([]services.Candidate, 0, len(hits))
	for _, hit := range hits {
		i, ok := byID[hit.AgentID]
		if !ok {
			continue
		}
		candidates = append(candidates, services.Candidate{
			Agent:          agents[i],
			DistanceMeters: hit.DistanceMeters,
		})
	}
	return candidates, nil
}

// hasOpenRound reports whether the order still has pending offers from a
// previous tick.
func (h *DispatchOrdersCommandHandler) hasOpenRound(orderID kernel.UUID) bool {
	for _, extended := range h.offerStore.ListByOrder(orderID) {
		if extended.IsPending() {
			return true
		}
	}
	return false
}

func newOfferNotification(o *order.Order, extended *offer.Offer) ports.OfferNotification {
	return ports.OfferNotification{
		OrderID:        o.ID(),
		TrackingNumber: o.TrackingNumber(),
		PickupLat:      o.Pickup().Lat(),
		PickupLng:      o.Pickup().Lng(),
		DropoffLat:     o.Dropoff().Lat(),
		DropoffLng:     o.Dropoff().Lng(),
		PayoutAmount:   o.Payout().Float(),
		Priority:       o.Priority().String(),
		ExpiresAt:      extended.ExpiresAt(),
	}
}
