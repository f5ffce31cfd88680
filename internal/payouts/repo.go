package payouts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wassel-ops/wassel-backend/pkg/db/models"
	"github.com/wassel-ops/wassel-backend/pkg/enums"
)

// Repository reads orders through the payout lens. Eligibility is evaluated
// by the query on every call; there is no persisted eligible flag.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListEligible(ctx context.Context) ([]models.Order, error)
	ListEligibleByClient(ctx context.Context, clientID uuid.UUID) ([]models.Order, error)
	ListClaimedUnsettled(ctx context.Context) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payouts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) eligibleQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("status = ?", enums.OrderStatusSuccessful).
		Where("payment_status <> ?", enums.PaymentStatusPaid).
		Where("invoice_id IS NULL")
}

func (r *repository) ListEligible(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.eligibleQuery(ctx).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListEligibleByClient(ctx context.Context, clientID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.eligibleQuery(ctx).
		Where("client_id = ?", clientID).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListClaimedUnsettled returns orders already claimed onto an invoice whose
// payout has not been disbursed yet. Shown for audit next to pending rows.
func (r *repository) ListClaimedUnsettled(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.OrderStatusSuccessful).
		Where("payout_status = ?", enums.PayoutStatusInProgress).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
