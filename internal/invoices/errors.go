package invoices

import (
	"github.com/google/uuid"

	pkgerrors "github.com/wassel-ops/wassel-backend/pkg/errors"
)

// newAlreadyInvoiced reports a failed claim. The conflicting ids travel in
// the error details so the operator can refresh exactly those rows.
func newAlreadyInvoiced(conflicting []uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeAlreadyInvoiced, "one or more orders are already claimed by another invoice").
		WithDetails(map[string]any{"conflicting_order_ids": conflicting})
}
