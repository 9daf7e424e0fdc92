package services

import (
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// Ledger is a domain service that applies the revenue split between the agent
// and the platform when an order is delivered.
type Ledger struct {
	agentSharePercent int
}

// NewLedger creates a Ledger with the given agent share percentage.
func NewLedger(agentSharePercent int) (Ledger, error) {
	if agentSharePercent <= 0 || agentSharePercent > 100 {
		return Ledger{}, errs.NewValueIsOutOfRangeError("agentSharePercent", agentSharePercent, 1, 100)
	}

	return Ledger{agentSharePercent: agentSharePercent}, nil
}

// AgentSharePercent returns the configured agent share.
func (l Ledger) AgentSharePercent() int {
	return l.agentSharePercent
}

// SplitPayout divides an order payout between the agent and the platform.
// The two shares always sum to the total: the agent share is rounded to the
// nearest cent and the platform keeps the remainder.
func (l Ledger) SplitPayout(total kernel.Money) (agentShare, platformShare kernel.Money, err error) {
	if total <= 0 {
		return 0, 0, errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("%s is not greater than 0", total))
	}

	agentShare = total.Share(l.agentSharePercent)
	return agentShare, total - agentShare, nil
}
