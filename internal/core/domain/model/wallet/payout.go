package wallet

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrPayoutIsNotConstructed is returned when using an improperly initialized Payout.
var ErrPayoutIsNotConstructed = errors.New("Payout must be created via NewPayout constructor")

// PayoutStatus tracks the settlement lifecycle of a payout batch.
type PayoutStatus int

const (
	PayoutStatusUnknown PayoutStatus = iota
	// PayoutPending means the batch was recorded but not yet handed to the payment provider.
	PayoutPending
	// PayoutProcessed means the payment provider confirmed the transfer.
	PayoutProcessed
	// PayoutFailed means the transfer was rejected and needs operator attention.
	PayoutFailed
)

// Validate checks that the payout status has a defined value.
func (s PayoutStatus) Validate() error {
	switch s {
	case PayoutPending, PayoutProcessed, PayoutFailed:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("payoutStatus",
		fmt.Errorf("unknown payout status: %d", int(s)))
}

// String implements fmt.Stringer.
func (s PayoutStatus) String() string {
	switch s {
	case PayoutPending:
		return "PENDING"
	case PayoutProcessed:
		return "PROCESSED"
	case PayoutFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Payout is one settlement batch for an agent, covering a half-open
// [periodStart, periodEnd) window. At most one batch exists per agent per
// window, which is what makes the weekly settlement job safe to re-run.
type Payout struct {
	id          kernel.UUID
	agentID     kernel.UUID
	periodStart time.Time
	periodEnd   time.Time
	total       kernel.Money
	status      PayoutStatus
	processedAt *time.Time
	createdAt   time.Time
	guard       guard.ConstructorGuard
}

// NewPayout records a pending settlement batch.
func NewPayout(
	id kernel.UUID,
	agentID kernel.UUID,
	periodStart, periodEnd time.Time,
	total kernel.Money,
	createdAt time.Time,
) (*Payout, error) {
	if err := errors.Join(id.Validate(), agentID.Validate()); err != nil {
		return nil, err
	}
	if !periodEnd.After(periodStart) {
		return nil, errs.NewValueIsInvalidErrorWithCause("periodEnd",
			fmt.Errorf("period end %s is not after period start %s", periodEnd, periodStart))
	}
	if total <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("total",
			fmt.Errorf("%s is not greater than 0", total))
	}

	return &Payout{
		id:          id,
		agentID:     agentID,
		periodStart: periodStart.UTC(),
		periodEnd:   periodEnd.UTC(),
		total:       total,
		status:      PayoutPending,
		createdAt:   createdAt.UTC(),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// RestorePayout rehydrates a Payout from persistence.
func RestorePayout(
	id kernel.UUID,
	agentID kernel.UUID,
	periodStart, periodEnd time.Time,
	total kernel.Money,
	status PayoutStatus,
	processedAt *time.Time,
	createdAt time.Time,
) (*Payout, error) {
	p, err := NewPayout(id, agentID, periodStart, periodEnd, total, createdAt)
	if err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	p.status = status
	p.processedAt = processedAt
	return p, nil
}

// Validate ensures the Payout instance was properly constructed.
func (p *Payout) Validate() error {
	if p == nil {
		return ErrPayoutIsNotConstructed
	}
	return p.guard.Validate(ErrPayoutIsNotConstructed)
}

// ID returns the payout batch id.
func (p *Payout) ID() kernel.UUID {
	return p.id
}

// AgentID returns the agent being paid.
func (p *Payout) AgentID() kernel.UUID {
	return p.agentID
}

// PeriodStart returns the inclusive start of the settlement window.
func (p *Payout) PeriodStart() time.Time {
	return p.periodStart
}

// PeriodEnd returns the exclusive end of the settlement window.
func (p *Payout) PeriodEnd() time.Time {
	return p.periodEnd
}

// Total returns the amount settled by this batch.
func (p *Payout) Total() kernel.Money {
	return p.total
}

// Status returns the current settlement status.
func (p *Payout) Status() PayoutStatus {
	return p.status
}

// ProcessedAt returns when the provider confirmed the transfer, if it has.
func (p *Payout) ProcessedAt() *time.Time {
	return p.processedAt
}

// CreatedAt returns when the batch was recorded.
func (p *Payout) CreatedAt() time.Time {
	return p.createdAt
}

// PeriodKey identifies the settlement window. The settlement job uses it to
// skip agents that already have a batch for the window.
func (p *Payout) PeriodKey() string {
	return PeriodKey(p.agentID, p.periodStart)
}

// PeriodKey builds the idempotency key for an agent and settlement window start.
func PeriodKey(agentID kernel.UUID, periodStart time.Time) string {
	return fmt.Sprintf("%s:%s", agentID, periodStart.UTC().Format("2006-01-02"))
}

// MarkProcessed records provider confirmation.
func (p *Payout) MarkProcessed(at time.Time) error {
	if p.status != PayoutPending {
		return errs.NewInvalidTransitionError(p.status.String(), PayoutProcessed.String())
	}
	at = at.UTC()
	p.status = PayoutProcessed
	p.processedAt = &at
	return nil
}

// MarkFailed records provider rejection.
func (p *Payout) MarkFailed() error {
	if p.status != PayoutPending {
		return errs.NewInvalidTransitionError(p.status.String(), PayoutFailed.String())
	}
	p.status = PayoutFailed
	return nil
}
