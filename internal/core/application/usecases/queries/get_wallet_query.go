package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetWalletQueryIsNotConstructed = errors.New(
		"GetWalletQuery must be created via NewGetWalletQuery constructor",
	)
)

// GetWalletQuery retrieves an agent's wallet: the cached balance, the
// ledger entries and the payout batch history.
type GetWalletQuery struct {
	agentID kernel.UUID
	guard   guard.ConstructorGuard
}

// NewGetWalletQuery creates a query for the agent's wallet view.
func NewGetWalletQuery(agentID kernel.UUID) (GetWalletQuery, error) {
	if err := agentID.Validate(); err != nil {
		return GetWalletQuery{}, err
	}

	return GetWalletQuery{
		agentID: agentID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// AgentID returns the wallet owner.
func (q GetWalletQuery) AgentID() kernel.UUID {
	return q.agentID
}

// Validate ensures the query was created through the constructor.
func (q GetWalletQuery) Validate() error {
	return q.guard.Validate(ErrGetWalletQueryIsNotConstructed)
}

// WalletTransactionView is one ledger entry of the wallet read model.
type WalletTransactionView struct {
	ID                kernel.UUID
	OrderID           *kernel.UUID
	AmountCents       int64
	BalanceAfterCents int64
	Type              string
	Settled           bool
	CreatedAt         time.Time
}

// WalletPayoutView is one settlement batch of the wallet read model.
type WalletPayoutView struct {
	ID          kernel.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
	TotalCents  int64
	Status      string
	ProcessedAt *time.Time
	CreatedAt   time.Time
}

// GetWalletQueryResponse is the agent-facing wallet read model. An agent who
// never earned anything gets a zero balance with empty histories.
type GetWalletQueryResponse struct {
	AgentID           kernel.UUID
	BalanceCents      int64
	TotalEarnedCents  int64
	TotalPaidOutCents int64
	Transactions      []WalletTransactionView
	Payouts           []WalletPayoutView
}
