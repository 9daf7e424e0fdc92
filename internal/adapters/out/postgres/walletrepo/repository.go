package walletrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/wallet"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWalletRepository implements WalletRepository using GORM.
type GormWalletRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormWalletRepository creates a new GORM wallet repository.
func NewGormWalletRepository(db *gorm.DB, tracker aggregateTracker) *GormWalletRepository {
	return &GormWalletRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new wallet balance row to the database.
func (r *GormWalletRepository) Add(ctx context.Context, aggregate *wallet.Wallet) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.AgentID(), aggregate)
	return nil
}

// Update writes the balance row and upserts every ledger entry of the
// aggregate. New transactions are inserted; existing ones only flip their
// settled marker.
func (r *GormWalletRepository) Update(ctx context.Context, aggregate *wallet.Wallet) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&WalletDTO{}).
		Where("agent_id = ?", dto.AgentID).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	for _, tx := range aggregate.Transactions() {
		txDto := transactionFromDomain(aggregate.AgentID(), tx)
		err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"settled"}),
		}).Create(&txDto).Error
		if err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.AgentID(), aggregate)
	return nil
}

// GetByAgent retrieves an agent's wallet with its full ledger, oldest entry first.
func (r *GormWalletRepository) GetByAgent(ctx context.Context, agentID kernel.UUID) (*wallet.Wallet, error) {
	if err := agentID.Validate(); err != nil {
		return nil, err
	}

	var dto WalletDTO
	if err := r.db.WithContext(ctx).First(&dto, "agent_id = ?", agentID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("wallet", agentID.String())
		}
		return nil, err
	}

	var txDtos []TransactionDTO
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID.Bytes()).
		Order("created_at ASC").
		Find(&txDtos).Error
	if err != nil {
		return nil, err
	}

	return toDomain(dto, txDtos)
}

// GetAgentIDsWithUnsettledEarnings lists agents holding at least one
// unsettled earning written before the cutoff.
func (r *GormWalletRepository) GetAgentIDsWithUnsettledEarnings(ctx context.Context, before time.Time) ([]kernel.UUID, error) {
	var raw []uuid.UUID
	err := r.db.WithContext(ctx).Model(&TransactionDTO{}).
		Distinct("agent_id").
		Where("type = ? AND settled = ? AND created_at < ?", int(wallet.Earning), false, before.UTC()).
		Pluck("agent_id", &raw).Error
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, b := range raw {
		id, idErr := kernel.UUIDFromBytes(b[:])
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// AddPayout persists a settlement batch.
func (r *GormWalletRepository) AddPayout(ctx context.Context, payout *wallet.Payout) error {
	if err := payout.Validate(); err != nil {
		return err
	}

	dto := payoutFromDomain(payout)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	return nil
}

// PayoutExists reports whether a batch already covers the agent's settlement
// window starting at periodStart.
func (r *GormWalletRepository) PayoutExists(ctx context.Context, agentID kernel.UUID, periodStart time.Time) (bool, error) {
	if err := agentID.Validate(); err != nil {
		return false, err
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&PayoutDTO{}).
		Where("agent_id = ? AND period_start = ?", agentID.Bytes(), periodStart.UTC()).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
