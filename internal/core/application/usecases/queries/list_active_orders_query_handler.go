package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListActiveOrdersQueryHandler reads the order table directly for the admin
// monitoring view, skipping aggregate rehydration.
type ListActiveOrdersQueryHandler struct {
	db *gorm.DB
}

// NewListActiveOrdersQueryHandler creates a handler for the in-flight order
// list.
func NewListActiveOrdersQueryHandler(db *gorm.DB) ListActiveOrdersQueryHandler {
	return ListActiveOrdersQueryHandler{db: db}
}

// Handle executes the query.
// Returns orders outside the terminal statuses, oldest first, so stuck
// orders surface at the top of the view.
func (h ListActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query ListActiveOrdersQuery,
) ([]ListActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	active := make([]ListActiveOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			tracking_number,
			partner_id,
			agent_id,
			status,
			delayed,
			dispatch_attempts,
			payout_cents,
			created_at,
			assigned_at
		FROM orders
		WHERE status NOT IN (?, ?)
		ORDER BY created_at
	`, int(order.Delivered), int(order.Cancelled)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resp      ListActiveOrdersQueryResponse
			id        uuid.UUID
			partnerID uuid.UUID
			agentID   *uuid.UUID
			status    int
		)

		err = rows.Scan(&id, &resp.TrackingNumber, &partnerID, &agentID, &status,
			&resp.Delayed, &resp.DispatchAttempts, &resp.PayoutCents,
			&resp.CreatedAt, &resp.AssignedAt)
		if err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.PartnerID, err = kernel.UUIDFromBytes(partnerID[:]); err != nil {
			return nil, err
		}
		if agentID != nil {
			aID, idErr := kernel.UUIDFromBytes((*agentID)[:])
			if idErr != nil {
				return nil, idErr
			}
			resp.AgentID = &aID
		}
		resp.Status = order.Status(status).String()

		active = append(active, resp)
	}

	return active, rows.Err()
}
