package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListAvailableOrdersQueryHandler joins the agent's pending offers with the
// order rows they point at. The offer store decides what is offered; the
// database supplies the order details.
type ListAvailableOrdersQueryHandler struct {
	db         *gorm.DB
	offerStore ports.OfferStore
}

// NewListAvailableOrdersQueryHandler creates a handler for the pull view of
// an agent's open offers.
func NewListAvailableOrdersQueryHandler(db *gorm.DB, offerStore ports.OfferStore) ListAvailableOrdersQueryHandler {
	return ListAvailableOrdersQueryHandler{db: db, offerStore: offerStore}
}

// Handle executes the query.
// Offers that expired between the store read and now are filtered out, as
// are offers whose order already left SearchingAgent. Either race resolves
// on the next dispatch tick; the agent just never sees the stale entry.
func (h ListAvailableOrdersQueryHandler) Handle(
	ctx context.Context,
	query ListAvailableOrdersQuery,
) ([]ListAvailableOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pending := make([]*offer.Offer, 0)
	for _, o := range h.offerStore.ListByAgent(query.AgentID()) {
		if !o.IsExpiredAt(now) {
			pending = append(pending, o)
		}
	}

	available := make([]ListAvailableOrdersQueryResponse, 0, len(pending))
	if len(pending) == 0 {
		return available, nil
	}

	byOrder := make(map[kernel.UUID]*offer.Offer, len(pending))
	ids := make([]uuid.UUID, 0, len(pending))
	for _, o := range pending {
		byOrder[o.OrderID()] = o
		ids = append(ids, o.OrderID().Bytes())
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			tracking_number,
			pickup_lat,
			pickup_lng,
			dropoff_lat,
			dropoff_lng,
			payout_cents,
			priority
		FROM orders
		WHERE id IN ? AND status = ?
		ORDER BY created_at
	`, ids, int(order.SearchingAgent)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resp     ListAvailableOrdersQueryResponse
			id       uuid.UUID
			priority int
		)

		err = rows.Scan(&id, &resp.TrackingNumber, &resp.PickupLat, &resp.PickupLng,
			&resp.DropoffLat, &resp.DropoffLng, &resp.PayoutCents, &priority)
		if err != nil {
			return nil, err
		}

		if resp.OrderID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		resp.Priority = order.Priority(priority).String()

		extended := byOrder[resp.OrderID]
		if extended == nil {
			continue
		}
		resp.OfferedAt = extended.IssuedAt()
		resp.ExpiresAt = extended.ExpiresAt()

		available = append(available, resp)
	}

	return available, rows.Err()
}
