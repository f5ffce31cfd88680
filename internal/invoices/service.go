package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wassel-ops/wassel-backend/internal/clients"
	"github.com/wassel-ops/wassel-backend/pkg/config"
	"github.com/wassel-ops/wassel-backend/pkg/db/models"
	dbtypes "github.com/wassel-ops/wassel-backend/pkg/db/types"
	pkgerrors "github.com/wassel-ops/wassel-backend/pkg/errors"
	"github.com/wassel-ops/wassel-backend/pkg/metrics"
	"github.com/wassel-ops/wassel-backend/pkg/pagination"
	"github.com/wassel-ops/wassel-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the invoice ledger: it claims orders atomically, freezes the
// aggregates, and advances payout state on settlement.
type Service interface {
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*models.Invoice, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	GetInvoiceOrders(ctx context.Context, id uuid.UUID) ([]models.Order, error)
	ListInvoices(ctx context.Context, input ListInvoicesInput) ([]models.Invoice, string, error)
	SettleInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
}

type service struct {
	repo    Repository
	clients clients.Repository
	tx      txRunner
	cfg     config.InvoicingConfig
	metrics *metrics.LedgerMetrics
}

// NewService builds an invoice ledger service with the required dependencies.
func NewService(repo Repository, clientsRepo clients.Repository, tx txRunner, cfg config.InvoicingConfig, m *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoices repository required")
	}
	if clientsRepo == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		clients: clientsRepo,
		tx:      tx,
		cfg:     cfg,
		metrics: m,
	}, nil
}

// CreateInvoice claims the order set all-or-nothing. A short claim count
// means some order lost a race or never qualified; the transaction rolls
// back untouched and the conflicting ids are reported.
func (s *service) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*models.Invoice, error) {
	if input.ClientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	ids := dedupe(input.OrderIDs)
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id set must not be empty")
	}
	if max := s.cfg.MaxOrdersPerInvoice; max > 0 && len(ids) > max {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d orders per invoice", max))
	}

	if _, err := s.clients.FindByID(ctx, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, err
	}

	invoiceID := uuid.New()
	var invoice *models.Invoice

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		claimed, err := repo.ClaimOrders(ctx, invoiceID, input.ClientID, ids)
		if err != nil {
			return err
		}
		if claimed != int64(len(ids)) {
			rows, err := repo.FindOrdersByIDs(ctx, ids)
			if err != nil {
				return err
			}
			if unknown := missingIDs(ids, rows); len(unknown) > 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown order ids").
					WithDetails(map[string]any{"unknown_order_ids": unknown})
			}

			conflicting, err := repo.ListConflictingIDs(ctx, invoiceID, input.ClientID, ids)
			if err != nil {
				return err
			}
			return newAlreadyInvoiced(conflicting)
		}

		orders, err := repo.FindOrdersByIDs(ctx, ids)
		if err != nil {
			return err
		}

		invoice = buildInvoice(invoiceID, input.ClientID, ids, orders)
		return repo.CreateInvoice(ctx, invoice)
	})
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeAlreadyInvoiced) {
			s.metrics.IncConflict()
		}
		return nil, err
	}

	s.metrics.AddClaimed(len(ids))
	return invoice, nil
}

// buildInvoice freezes the aggregates from the claimed orders. Sums are exact
// per currency; nothing is rounded or clamped.
func buildInvoice(id, clientID uuid.UUID, ids []uuid.UUID, orders []models.Order) *models.Invoice {
	collected := types.Zero()
	fees := types.Zero()
	for _, o := range orders {
		collected = collected.Add(types.Money{USD: o.CollectedUSD, LBP: o.CollectedLBP})
		fees = fees.Add(types.Money{USD: o.DeliveryFeeUSD, LBP: o.DeliveryFeeLBP})
	}
	net := collected.Sub(fees)

	return &models.Invoice{
		ID:             id,
		ClientID:       clientID,
		OrderIDs:       dbtypes.UUIDArray(ids),
		OrderCount:     len(ids),
		CollectedUSD:   collected.USD,
		CollectedLBP:   collected.LBP,
		DeliveryFeeUSD: fees.USD,
		DeliveryFeeLBP: fees.LBP,
		NetUSD:         net.USD,
		NetLBP:         net.LBP,
	}
}

func (s *service) GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}
	invoice, err := s.repo.FindInvoice(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, err
	}
	return invoice, nil
}

// GetInvoiceOrders returns the orders frozen into the invoice's order id
// snapshot.
func (s *service) GetInvoiceOrders(ctx context.Context, id uuid.UUID) ([]models.Order, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindOrdersByIDs(ctx, []uuid.UUID(invoice.OrderIDs))
}

func (s *service) ListInvoices(ctx context.Context, input ListInvoicesInput) ([]models.Invoice, string, error) {
	cursor, err := pagination.ParseCursor(input.Page.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Page.Limit)
	invoices, err := s.repo.ListInvoices(ctx, input.ClientID, cursor, limit+1)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(invoices) > limit {
		invoices = invoices[:limit]
		last := invoices[len(invoices)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return invoices, next, nil
}

// SettleInvoice marks the invoice disbursed and advances its orders to paid.
// Settling twice is a no-op returning the already-settled invoice.
func (s *service) SettleInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice id required")
	}

	var settled *models.Invoice
	alreadySettled := false

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		invoice, err := repo.FindInvoice(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return err
		}
		if invoice.Settled() {
			settled = invoice
			alreadySettled = true
			return nil
		}

		now := time.Now().UTC()
		if err := repo.MarkInvoiceSettled(ctx, id, now); err != nil {
			return err
		}
		if err := repo.MarkOrdersPaid(ctx, id); err != nil {
			return err
		}

		invoice.SettledAt = &now
		settled = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadySettled {
		s.metrics.IncSettled()
	}
	return settled, nil
}

// missingIDs reports the requested ids that matched no order row at all.
func missingIDs(requested []uuid.UUID, rows []models.Order) []uuid.UUID {
	found := make(map[uuid.UUID]struct{}, len(rows))
	for _, o := range rows {
		found[o.ID] = struct{}{}
	}
	var unknown []uuid.UUID
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
