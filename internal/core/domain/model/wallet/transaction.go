package wallet

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// TransactionType classifies ledger entries.
type TransactionType int

const (
	// TypeUnknown represents an invalid or undefined type.
	TypeUnknown TransactionType = iota
	// Earning credits the agent's share of a delivered order.
	Earning
	// PayoutDebit debits the wallet when a settlement batch pays out.
	PayoutDebit
	// Adjustment covers manual corrections by administrators.
	Adjustment
)

func getTransactionTypeStrings() map[TransactionType]string {
	return map[TransactionType]string{
		TypeUnknown: "UNKNOWN",
		Earning:     "EARNING",
		PayoutDebit: "PAYOUT",
		Adjustment:  "ADJUSTMENT",
	}
}

// Validate checks if the TransactionType is part of the closed enum.
func (t TransactionType) Validate() error {
	if t != Earning && t != PayoutDebit && t != Adjustment {
		return errs.NewValueIsInvalidErrorWithCause(
			"transaction type", fmt.Errorf("%d is not a valid transaction type", t))
	}
	return nil
}

// String returns the wire name of the type, e.g. "EARNING".
func (t TransactionType) String() string {
	if str, ok := getTransactionTypeStrings()[t]; ok {
		return str
	}
	return "UNKNOWN"
}

// Transaction is an append-only ledger entry in an agent's wallet.
// The amount is signed: earnings are positive, payouts negative.
// BalanceAfter snapshots the wallet balance resulting from the entry.
type Transaction struct {
	id           kernel.UUID
	orderID      *kernel.UUID
	amount       kernel.Money
	balanceAfter kernel.Money
	txType       TransactionType
	settled      bool
	createdAt    time.Time
}

func newTransaction(
	id kernel.UUID,
	orderID *kernel.UUID,
	amount kernel.Money,
	balanceAfter kernel.Money,
	txType TransactionType,
	createdAt time.Time,
) (*Transaction, error) {
	if err := errors.Join(id.Validate(), txType.Validate()); err != nil {
		return nil, err
	}
	if orderID != nil {
		if err := orderID.Validate(); err != nil {
			return nil, err
		}
	}

	return &Transaction{
		id:           id,
		orderID:      orderID,
		amount:       amount,
		balanceAfter: balanceAfter,
		txType:       txType,
		createdAt:    createdAt.UTC(),
	}, nil
}

// RestoreTransaction rehydrates a Transaction from persistence.
func RestoreTransaction(
	id kernel.UUID,
	orderID *kernel.UUID,
	amount kernel.Money,
	balanceAfter kernel.Money,
	txType TransactionType,
	settled bool,
	createdAt time.Time,
) (*Transaction, error) {
	tx, err := newTransaction(id, orderID, amount, balanceAfter, txType, createdAt)
	if err != nil {
		return nil, err
	}
	tx.settled = settled
	return tx, nil
}

// ID returns the transaction's unique identifier.
func (t *Transaction) ID() kernel.UUID {
	return t.id
}

// OrderID returns the originating order for earnings, nil otherwise.
func (t *Transaction) OrderID() *kernel.UUID {
	return t.orderID
}

// Amount returns the signed amount of the entry.
func (t *Transaction) Amount() kernel.Money {
	return t.amount
}

// BalanceAfter returns the wallet balance resulting from the entry.
func (t *Transaction) BalanceAfter() kernel.Money {
	return t.balanceAfter
}

// Type returns the transaction classification.
func (t *Transaction) Type() TransactionType {
	return t.txType
}

// IsSettled reports whether a payout batch consumed this earning.
func (t *Transaction) IsSettled() bool {
	return t.settled
}

// CreatedAt returns when the entry was written.
func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Transaction) markSettled() {
	t.settled = true
}
