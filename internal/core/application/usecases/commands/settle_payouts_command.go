package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/guard"
)

var (
	ErrSettlePayoutsCommandIsNotConstructed = errors.New(
		"SettlePayoutsCommand must be created via NewSettlePayoutsCommand constructor",
	)
	ErrSettlementPeriodIsInvalid = errors.New("settlement period end must be after its start")
)

// SettlePayoutsCommand triggers settlement of one payout period: every
// agent's unsettled earnings inside the window are rolled into a payout
// batch.
type SettlePayoutsCommand struct { //nolint:recvcheck //using for validation
	periodStart time.Time
	periodEnd   time.Time

	guard guard.ConstructorGuard
}

// NewSettlePayoutsCommand creates a command to settle the given period.
// The period end is exclusive: earnings written before it are settled.
func NewSettlePayoutsCommand(periodStart, periodEnd time.Time) (SettlePayoutsCommand, error) {
	periodStart = periodStart.UTC()
	periodEnd = periodEnd.UTC()

	if !periodEnd.After(periodStart) {
		return SettlePayoutsCommand{}, ErrSettlementPeriodIsInvalid
	}

	return SettlePayoutsCommand{
		periodStart: periodStart,
		periodEnd:   periodEnd,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SettlePayoutsCommand) Validate() error {
	return c.guard.Validate(ErrSettlePayoutsCommandIsNotConstructed)
}

// PeriodStart returns the inclusive start of the settlement window.
func (c SettlePayoutsCommand) PeriodStart() time.Time {
	return c.periodStart
}

// PeriodEnd returns the exclusive end of the settlement window.
func (c SettlePayoutsCommand) PeriodEnd() time.Time {
	return c.periodEnd
}
