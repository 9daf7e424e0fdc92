package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/wallet"
)

// WalletRepository defines the persistence contract for wallet aggregates and
// their payout batches. A wallet is stored as a balance row plus the
// append-only transaction log; both are written together.
type WalletRepository interface {
	// Add persists a new, empty wallet for an agent.
	Add(ctx context.Context, aggregate *wallet.Wallet) error

	// Update persists the wallet balance together with any transactions
	// appended since the wallet was loaded.
	Update(ctx context.Context, aggregate *wallet.Wallet) error

	// GetByAgent retrieves an agent's wallet with its full transaction log.
	GetByAgent(ctx context.Context, agentID kernel.UUID) (*wallet.Wallet, error)

	// GetAgentIDsWithUnsettledEarnings lists agents that have at least one
	// unsettled earning written before the cutoff. Drives the payout job.
	GetAgentIDsWithUnsettledEarnings(ctx context.Context, before time.Time) ([]kernel.UUID, error)

	// AddPayout persists a settlement batch.
	AddPayout(ctx context.Context, payout *wallet.Payout) error

	// PayoutExists reports whether a batch already covers the agent's
	// settlement window starting at periodStart. Makes the payout job
	// safe to re-run.
	PayoutExists(ctx context.Context, agentID kernel.UUID, periodStart time.Time) (bool, error)
}
