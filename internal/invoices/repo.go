package invoices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wassel-ops/wassel-backend/pkg/db/models"
	"github.com/wassel-ops/wassel-backend/pkg/enums"
	"github.com/wassel-ops/wassel-backend/pkg/pagination"
)

// Repository persists invoices and performs the guarded order claim.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// ClaimOrders conditionally stamps the invoice id onto every order in
	// ids and returns how many rows actually matched the precondition.
	ClaimOrders(ctx context.Context, invoiceID, clientID uuid.UUID, ids []uuid.UUID) (int64, error)
	// ListConflictingIDs returns the subset of ids that fail the claim
	// precondition for this client. Rows already stamped with invoiceID by
	// the running attempt are not conflicts.
	ListConflictingIDs(ctx context.Context, invoiceID, clientID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	FindOrdersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Order, error)

	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	FindInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListInvoices(ctx context.Context, clientID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Invoice, error)

	MarkInvoiceSettled(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkOrdersPaid(ctx context.Context, invoiceID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an invoices repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ClaimOrders is the single conditional bulk update that closes the
// double-invoice race. Either every row in ids matches the precondition and
// is stamped, or the caller sees a short row count and rolls back.
func (r *repository) ClaimOrders(ctx context.Context, invoiceID, clientID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Exec(`
UPDATE orders
SET invoice_id = ?, payout_status = ?, updated_at = ?
WHERE id IN ?
  AND client_id = ?
  AND invoice_id IS NULL
  AND payment_status <> ?
  AND status = ?`,
		invoiceID,
		enums.PayoutStatusInProgress,
		time.Now().UTC(),
		ids,
		clientID,
		enums.PaymentStatusPaid,
		enums.OrderStatusSuccessful,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ListConflictingIDs runs inside the claim transaction, after the partial
// UPDATE. Rows the attempt just stamped carry invoiceID until the rollback,
// so they must be excluded from the conflict set.
func (r *repository) ListConflictingIDs(ctx context.Context, invoiceID, clientID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var conflicting []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id IN ?", ids).
		Where(
			"(invoice_id IS NOT NULL AND invoice_id <> ?) OR payment_status = ? OR status <> ? OR client_id <> ?",
			invoiceID, enums.PaymentStatusPaid, enums.OrderStatusSuccessful, clientID,
		).
		Pluck("id", &conflicting).Error
	if err != nil {
		return nil, err
	}
	return conflicting, nil
}

func (r *repository) FindOrdersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) FindInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) ListInvoices(ctx context.Context, clientID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Invoice, error) {
	q := r.db.WithContext(ctx).Model(&models.Invoice{})
	if clientID != nil {
		q = q.Where("client_id = ?", *clientID)
	}
	if cursor != nil {
		q = q.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var invoices []models.Invoice
	err := q.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repository) MarkInvoiceSettled(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ? AND settled_at IS NULL", id).
		Update("settled_at", at).Error
}

func (r *repository) MarkOrdersPaid(ctx context.Context, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("invoice_id = ?", invoiceID).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusPaid,
			"payout_status":  enums.PayoutStatusPaid,
		}).Error
}
