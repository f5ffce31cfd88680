package invoices

import (
	"github.com/google/uuid"

	"github.com/wassel-ops/wassel-backend/pkg/pagination"
)

// CreateInvoiceInput names the client and the exact order set to claim.
type CreateInvoiceInput struct {
	ClientID uuid.UUID
	OrderIDs []uuid.UUID
}

// ListInvoicesInput filters the invoice listing. A nil ClientID lists all
// clients' invoices.
type ListInvoicesInput struct {
	ClientID *uuid.UUID
	Page     pagination.Params
}
