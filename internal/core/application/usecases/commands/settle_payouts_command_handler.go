package commands

import (
	"context"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/core/ports"
)

// SettlePayoutsCommandHandler rolls unsettled earnings into payout batches.
//
// For each agent with unsettled earnings inside the period the handler marks
// those earnings settled, appends the balancing payout transaction and
// records a Payout batch keyed by agent and period start. An agent whose
// period is already covered by a batch is skipped, which makes re-running a
// period a no-op.
type SettlePayoutsCommandHandler struct {
	uowFactory WalletUoWFactory
}

// NewSettlePayoutsCommandHandler creates a handler for payout settlement.
func NewSettlePayoutsCommandHandler(uowFactory WalletUoWFactory) SettlePayoutsCommandHandler {
	return SettlePayoutsCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the settlement.
// All agents settle inside a single transaction; per-agent failures abort it
// rather than leaving a half-settled period.
func (h *SettlePayoutsCommandHandler) Handle(ctx context.Context, cmd SettlePayoutsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	walletRepo := uow.WalletRepository()
	agentIDs, err := walletRepo.GetAgentIDsWithUnsettledEarnings(ctx, cmd.PeriodEnd())
	if err != nil {
		return err
	}
	if len(agentIDs) == 0 {
		return nil
	}

	for _, agentID := range agentIDs {
		if err = h.settleAgent(ctx, walletRepo, agentID, cmd, now); err != nil {
			return fmt.Errorf("agent %s: %w", agentID, err)
		}
	}

	return uow.Commit(ctx)
}

func (h *SettlePayoutsCommandHandler) settleAgent(
	ctx context.Context,
	walletRepo ports.WalletRepository,
	agentID kernel.UUID,
	cmd SettlePayoutsCommand,
	now time.Time,
) error {
	exists, err := walletRepo.PayoutExists(ctx, agentID, cmd.PeriodStart())
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	agentWallet, err := walletRepo.GetByAgent(ctx, agentID)
	if err != nil {
		return err
	}

	total, _, err := agentWallet.SettleEarnings(kernel.NewUUID(), cmd.PeriodEnd(), now)
	if err != nil {
		return err
	}
	if total == 0 {
		// Raced with another settlement run; nothing left in the window.
		return nil
	}

	batch, err := wallet.NewPayout(kernel.NewUUID(), agentID, cmd.PeriodStart(), cmd.PeriodEnd(), total, now)
	if err != nil {
		return err
	}

	// The unique period index turns concurrent runs into a clean abort.
	if err = walletRepo.AddPayout(ctx, batch); err != nil {
		return err
	}

	return walletRepo.Update(ctx, agentWallet)
}
