// Package walletrepo provides data transfer objects and mapping functions for wallet persistence.
// A wallet is stored as a balance row plus an append-only transaction log; payout batches
// get their own table keyed by agent and settlement window.
package walletrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/wallet"

	"github.com/google/uuid"
)

// WalletDTO represents the balance row of an agent's wallet.
type WalletDTO struct {
	AgentID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	BalanceCents      int64     `gorm:"not null"`
	TotalEarnedCents  int64     `gorm:"not null"`
	TotalPaidOutCents int64     `gorm:"not null"`
}

// TableName specifies the database table name for wallet balance rows.
func (WalletDTO) TableName() string {
	return "wallets"
}

// TransactionDTO represents one ledger entry. Rows are append-only except for
// the settled marker flipped by the payout job.
type TransactionDTO struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AgentID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderID           *uuid.UUID `gorm:"type:uuid;index"`
	AmountCents       int64      `gorm:"not null"`
	BalanceAfterCents int64      `gorm:"not null"`
	Type              int        `gorm:"not null"`
	Settled           bool       `gorm:"not null;index"`
	CreatedAt         time.Time  `gorm:"not null;index"`
}

// TableName specifies the database table name for ledger entries.
func (TransactionDTO) TableName() string {
	return "wallet_transactions"
}

// PayoutDTO represents a settlement batch. The unique index on agent and
// window start is what enforces at most one batch per settlement window.
type PayoutDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	AgentID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_payouts_agent_period"`
	PeriodStart time.Time `gorm:"not null;uniqueIndex:idx_payouts_agent_period"`
	PeriodEnd   time.Time `gorm:"not null"`
	TotalCents  int64     `gorm:"not null"`
	Status      int       `gorm:"not null"`
	ProcessedAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName specifies the database table name for payout batches.
func (PayoutDTO) TableName() string {
	return "payouts"
}

// fromDomain converts a wallet aggregate to its balance row.
func fromDomain(wallet *wallet.Wallet) WalletDTO {
	return WalletDTO{
		AgentID:           wallet.AgentID().Bytes(),
		BalanceCents:      wallet.Balance().Cents(),
		TotalEarnedCents:  wallet.TotalEarned().Cents(),
		TotalPaidOutCents: wallet.TotalPaidOut().Cents(),
	}
}

// transactionFromDomain converts a ledger entry to its database representation.
func transactionFromDomain(agentID kernel.UUID, tx *wallet.Transaction) TransactionDTO {
	var orderID *uuid.UUID
	if id := tx.OrderID(); id != nil {
		raw := id.Bytes()
		orderID = &raw
	}

	return TransactionDTO{
		ID:                tx.ID().Bytes(),
		AgentID:           agentID.Bytes(),
		OrderID:           orderID,
		AmountCents:       tx.Amount().Cents(),
		BalanceAfterCents: tx.BalanceAfter().Cents(),
		Type:              int(tx.Type()),
		Settled:           tx.IsSettled(),
		CreatedAt:         tx.CreatedAt(),
	}
}

// transactionToDomain converts a database row to a ledger entry using RestoreTransaction.
func transactionToDomain(dto TransactionDTO) (*wallet.Transaction, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var orderID *kernel.UUID
	if dto.OrderID != nil {
		oID, orderErr := kernel.UUIDFromBytes((*dto.OrderID)[:])
		if orderErr != nil {
			return nil, orderErr
		}
		orderID = &oID
	}

	return wallet.RestoreTransaction(
		id,
		orderID,
		kernel.Money(dto.AmountCents),
		kernel.Money(dto.BalanceAfterCents),
		wallet.TransactionType(dto.Type),
		dto.Settled,
		dto.CreatedAt,
	)
}

// toDomain converts a balance row and its ledger entries to a wallet aggregate.
func toDomain(dto WalletDTO, txDtos []TransactionDTO) (*wallet.Wallet, error) {
	agentID, err := kernel.UUIDFromBytes(dto.AgentID[:])
	if err != nil {
		return nil, err
	}

	transactions := make([]*wallet.Transaction, 0, len(txDtos))
	for _, txDto := range txDtos {
		tx, txErr := transactionToDomain(txDto)
		if txErr != nil {
			return nil, txErr
		}
		transactions = append(transactions, tx)
	}

	return wallet.RestoreWallet(
		agentID,
		kernel.Money(dto.BalanceCents),
		kernel.Money(dto.TotalEarnedCents),
		kernel.Money(dto.TotalPaidOutCents),
		transactions,
	)
}

// payoutFromDomain converts a payout batch to its database representation.
func payoutFromDomain(payout *wallet.Payout) PayoutDTO {
	return PayoutDTO{
		ID:          payout.ID().Bytes(),
		AgentID:     payout.AgentID().Bytes(),
		PeriodStart: payout.PeriodStart(),
		PeriodEnd:   payout.PeriodEnd(),
		TotalCents:  payout.Total().Cents(),
		Status:      int(payout.Status()),
		ProcessedAt: payout.ProcessedAt(),
		CreatedAt:   payout.CreatedAt(),
	}
}
