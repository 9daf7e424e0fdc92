package wallet

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrWalletIsNotConstructed is returned when using an improperly initialized Wallet.
var ErrWalletIsNotConstructed = errors.New("Wallet must be created via NewWallet constructor")

// Wallet is the aggregate root for an agent's earnings ledger. It owns the
// append-only transaction log and the cached running balance; the two are
// always mutated together so the balance never drifts from the log.
type Wallet struct {
	agentID      kernel.UUID
	balance      kernel.Money
	totalEarned  kernel.Money
	totalPaidOut kernel.Money
	transactions []*Transaction
	guard        guard.ConstructorGuard
}

// NewWallet creates an empty wallet for the agent.
func NewWallet(agentID kernel.UUID) (*Wallet, error) {
	if err := agentID.Validate(); err != nil {
		return nil, err
	}

	return &Wallet{
		agentID: agentID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// RestoreWallet rehydrates a Wallet from persistence. The cached balance must
// match the transaction log.
func RestoreWallet(
	agentID kernel.UUID,
	balance, totalEarned, totalPaidOut kernel.Money,
	transactions []*Transaction,
) (*Wallet, error) {
	w, err := NewWallet(agentID)
	if err != nil {
		return nil, err
	}

	var sum kernel.Money
	for _, tx := range transactions {
		sum += tx.Amount()
	}
	if sum != balance {
		return nil, errs.NewValueIsInvalidErrorWithCause("balance",
			fmt.Errorf("cached balance %s does not match transaction sum %s", balance, sum))
	}

	w.balance = balance
	w.totalEarned = totalEarned
	w.totalPaidOut = totalPaidOut
	w.transactions = transactions
	return w, nil
}

// Validate ensures the Wallet instance was properly constructed.
func (w *Wallet) Validate() error {
	if w == nil {
		return ErrWalletIsNotConstructed
	}
	return w.guard.Validate(ErrWalletIsNotConstructed)
}

// AgentID returns the owning agent's id.
func (w *Wallet) AgentID() kernel.UUID {
	return w.agentID
}

// Balance returns the cached running balance.
func (w *Wallet) Balance() kernel.Money {
	return w.balance
}

// TotalEarned returns the lifetime sum of earnings.
func (w *Wallet) TotalEarned() kernel.Money {
	return w.totalEarned
}

// TotalPaidOut returns the lifetime sum of settled payouts.
func (w *Wallet) TotalPaidOut() kernel.Money {
	return w.totalPaidOut
}

// Transactions returns the append-only ledger entries, oldest first.
func (w *Wallet) Transactions() []*Transaction {
	return w.transactions
}

// PostEarning appends an Earning transaction for a delivered order and
// advances the cached balance. Amount must be positive.
func (w *Wallet) PostEarning(txID kernel.UUID, orderID kernel.UUID, amount kernel.Money, at time.Time) (*Transaction, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%s is not greater than 0", amount))
	}

	tx, err := newTransaction(txID, &orderID, amount, w.balance+amount, Earning, at)
	if err != nil {
		return nil, err
	}

	w.balance += amount
	w.totalEarned += amount
	w.transactions = append(w.transactions, tx)
	return tx, nil
}

// PostAdjustment appends a signed manual correction and advances the balance.
func (w *Wallet) PostAdjustment(txID kernel.UUID, amount kernel.Money, at time.Time) (*Transaction, error) {
	if amount == 0 {
		return nil, errs.NewValueIsInvalidError("amount")
	}

	tx, err := newTransaction(txID, nil, amount, w.balance+amount, Adjustment, at)
	if err != nil {
		return nil, err
	}

	w.balance += amount
	w.transactions = append(w.transactions, tx)
	return tx, nil
}

// UnsettledEarnings returns earnings not yet consumed by a payout batch that
// were written before the cutoff.
func (w *Wallet) UnsettledEarnings(before time.Time) []*Transaction {
	before = before.UTC()
	var result []*Transaction
	for _, tx := range w.transactions {
		if tx.Type() == Earning && !tx.IsSettled() && tx.CreatedAt().Before(before) {
			result = append(result, tx)
		}
	}
	return result
}

// SettleEarnings consumes every unsettled earning written before the cutoff:
// the earnings are marked settled and a single negative Payout transaction
// for their total is appended, reducing the balance.
//
// Returns:
//   - (total, tx, nil) when earnings were settled
//   - (0, nil, nil) when there was nothing to settle (idempotent no-op)
func (w *Wallet) SettleEarnings(txID kernel.UUID, before time.Time, at time.Time) (kernel.Money, *Transaction, error) {
	unsettled := w.UnsettledEarnings(before)
	if len(unsettled) == 0 {
		return 0, nil, nil
	}

	var total kernel.Money
	for _, tx := range unsettled {
		total += tx.Amount()
	}

	tx, err := newTransaction(txID, nil, -total, w.balance-total, PayoutDebit, at)
	if err != nil {
		return 0, nil, err
	}

	for _, earning := range unsettled {
		earning.markSettled()
	}
	w.balance -= total
	w.totalPaidOut += total
	w.transactions = append(w.transactions, tx)
	return total, tx, nil
}
