package queries

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/wallet"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetWalletQueryHandler reads the wallet tables directly. The read model is
// assembled from the balance row, the ledger entries and the payout batches
// without rehydrating the aggregate.
type GetWalletQueryHandler struct {
	db *gorm.DB
}

// NewGetWalletQueryHandler creates a handler for wallet read queries.
func NewGetWalletQueryHandler(db *gorm.DB) GetWalletQueryHandler {
	return GetWalletQueryHandler{db: db}
}

// Handle executes the query.
// A missing balance row is not an error: agents earn their wallet lazily with
// the first delivery, so the response is simply empty until then.
func (h GetWalletQueryHandler) Handle(
	ctx context.Context,
	query GetWalletQuery,
) (GetWalletQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetWalletQueryResponse{}, err
	}

	response := GetWalletQueryResponse{
		AgentID:      query.AgentID(),
		Transactions: make([]WalletTransactionView, 0),
		Payouts:      make([]WalletPayoutView, 0),
	}

	agentID := query.AgentID().Bytes()

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			balance_cents,
			total_earned_cents,
			total_paid_out_cents
		FROM wallets
		WHERE agent_id = ?
	`, agentID).Row()

	err := row.Scan(&response.BalanceCents, &response.TotalEarnedCents, &response.TotalPaidOutCents)
	if errors.Is(err, sql.ErrNoRows) {
		return response, nil
	}
	if err != nil {
		return GetWalletQueryResponse{}, err
	}

	if response.Transactions, err = h.loadTransactions(ctx, agentID); err != nil {
		return GetWalletQueryResponse{}, err
	}
	if response.Payouts, err = h.loadPayouts(ctx, agentID); err != nil {
		return GetWalletQueryResponse{}, err
	}

	return response, nil
}

func (h GetWalletQueryHandler) loadTransactions(
	ctx context.Context,
	agentID uuid.UUID,
) ([]WalletTransactionView, error) {
	transactions := make([]WalletTransactionView, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			amount_cents,
			balance_after_cents,
			type,
			settled,
			created_at
		FROM wallet_transactions
		WHERE agent_id = ?
		ORDER BY created_at
	`, agentID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			view    WalletTransactionView
			id      uuid.UUID
			orderID *uuid.UUID
			txType  int
		)

		err = rows.Scan(&id, &orderID, &view.AmountCents, &view.BalanceAfterCents,
			&txType, &view.Settled, &view.CreatedAt)
		if err != nil {
			return nil, err
		}

		if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if orderID != nil {
			oID, idErr := kernel.UUIDFromBytes((*orderID)[:])
			if idErr != nil {
				return nil, idErr
			}
			view.OrderID = &oID
		}
		view.Type = wallet.TransactionType(txType).String()

		transactions = append(transactions, view)
	}

	return transactions, rows.Err()
}

func (h GetWalletQueryHandler) loadPayouts(
	ctx context.Context,
	agentID uuid.UUID,
) ([]WalletPayoutView, error) {
	payouts := make([]WalletPayoutView, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			period_start,
			period_end,
			total_cents,
			status,
			processed_at,
			created_at
		FROM payouts
		WHERE agent_id = ?
		ORDER BY period_start
	`, agentID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			view   WalletPayoutView
			id     uuid.UUID
			status int
		)

		err = rows.Scan(&id, &view.PeriodStart, &view.PeriodEnd, &view.TotalCents,
			&status, &view.ProcessedAt, &view.CreatedAt)
		if err != nil {
			return nil, err
		}

		if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		view.Status = wallet.PayoutStatus(status).String()

		payouts = append(payouts, view)
	}

	return payouts, rows.Err()
}
