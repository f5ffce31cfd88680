package invoices

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wassel-ops/wassel-backend/api/middleware"
	"github.com/wassel-ops/wassel-backend/api/responses"
	"github.com/wassel-ops/wassel-backend/api/validators"
	invoicesvc "github.com/wassel-ops/wassel-backend/internal/invoices"
	"github.com/wassel-ops/wassel-backend/pkg/db/models"
	pkgerrors "github.com/wassel-ops/wassel-backend/pkg/errors"
	"github.com/wassel-ops/wassel-backend/pkg/logger"
	"github.com/wassel-ops/wassel-backend/pkg/pagination"
	"github.com/wassel-ops/wassel-backend/pkg/types"
)

// Create claims the order set and issues the invoice. Client-scoped tokens
// always invoice their own orders regardless of the body.
func Create(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "invoices service unavailable"))
			return
		}

		var payload createInvoiceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := invoicesvc.CreateInvoiceInput{OrderIDs: payload.OrderIDs}
		if payload.ClientID != nil {
			input.ClientID = *payload.ClientID
		}
		if scoped := middleware.ClientIDFromContext(r.Context()); scoped != "" {
			clientID, err := uuid.Parse(scoped)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid client scope"))
				return
			}
			input.ClientID = clientID
		}

		invoice, err := svc.CreateInvoice(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newInvoiceResponse(invoice))
	}
}

func Get(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := validators.ParsePathUUID(chi.URLParam(r, "invoiceID"), "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.GetInvoice(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if scoped := middleware.ClientIDFromContext(r.Context()); scoped != "" && scoped != invoice.ClientID.String() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found"))
			return
		}

		out := newInvoiceResponse(invoice)
		if r.URL.Query().Get("include") == "orders" {
			orders, err := svc.GetInvoiceOrders(r.Context(), invoiceID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			out.Orders = make([]orderResponse, len(orders))
			for i := range orders {
				out.Orders[i] = newOrderResponse(&orders[i])
			}
		}
		responses.WriteSuccess(w, out)
	}
}

// List pages invoices newest first. Client-scoped tokens are pinned to their
// own client; operators may filter with ?client_id=.
func List(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := invoicesvc.ListInvoicesInput{
			Page: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		}

		if scoped := middleware.ClientIDFromContext(r.Context()); scoped != "" {
			clientID, err := uuid.Parse(scoped)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid client scope"))
				return
			}
			input.ClientID = &clientID
		} else if filter, err := validators.ParseQueryUUID(r, "client_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else {
			input.ClientID = filter
		}

		invoices, next, err := svc.ListInvoices(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := listInvoicesResponse{
			Invoices:   make([]invoiceResponse, len(invoices)),
			NextCursor: next,
		}
		for i := range invoices {
			out.Invoices[i] = newInvoiceResponse(&invoices[i])
		}
		responses.WriteSuccess(w, out)
	}
}

// Settle marks the invoice disbursed. Settling an already settled invoice is
// a no-op that returns the invoice as is.
func Settle(svc invoicesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := validators.ParsePathUUID(chi.URLParam(r, "invoiceID"), "invoiceID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.SettleInvoice(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newInvoiceResponse(invoice))
	}
}

type createInvoiceRequest struct {
	ClientID *uuid.UUID  `json:"client_id"`
	OrderIDs []uuid.UUID `json:"order_ids" validate:"required,min=1"`
}

type invoiceResponse struct {
	ID          uuid.UUID       `json:"id"`
	ClientID    uuid.UUID       `json:"client_id"`
	OrderIDs    []uuid.UUID     `json:"order_ids"`
	OrderCount  int             `json:"order_count"`
	Collected   types.Money     `json:"collected"`
	DeliveryFee types.Money     `json:"delivery_fee"`
	Net         types.Money     `json:"net"`
	SettledAt   *time.Time      `json:"settled_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Orders      []orderResponse `json:"orders,omitempty"`
}

type orderResponse struct {
	ID            uuid.UUID   `json:"id"`
	Reference     string      `json:"reference"`
	PackageType   string      `json:"package_type"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status"`
	PayoutStatus  string      `json:"payout_status"`
	Collected     types.Money `json:"collected"`
	DeliveryFee   types.Money `json:"delivery_fee"`
	Net           types.Money `json:"net"`
	DeliveredAt   *time.Time  `json:"delivered_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	return orderResponse{
		ID:            order.ID,
		Reference:     order.Reference,
		PackageType:   order.PackageType.String(),
		Status:        order.Status.String(),
		PaymentStatus: order.PaymentStatus.String(),
		PayoutStatus:  order.PayoutStatus.String(),
		Collected:     types.Money{USD: order.CollectedUSD, LBP: order.CollectedLBP},
		DeliveryFee:   types.Money{USD: order.DeliveryFeeUSD, LBP: order.DeliveryFeeLBP},
		Net:           types.Money{USD: order.NetUSD(), LBP: order.NetLBP()},
		DeliveredAt:   order.DeliveredAt,
		CreatedAt:     order.CreatedAt,
	}
}

type listInvoicesResponse struct {
	Invoices   []invoiceResponse `json:"invoices"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func newInvoiceResponse(invoice *models.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:          invoice.ID,
		ClientID:    invoice.ClientID,
		OrderIDs:    []uuid.UUID(invoice.OrderIDs),
		OrderCount:  invoice.OrderCount,
		Collected:   types.Money{USD: invoice.CollectedUSD, LBP: invoice.CollectedLBP},
		DeliveryFee: types.Money{USD: invoice.DeliveryFeeUSD, LBP: invoice.DeliveryFeeLBP},
		Net:         types.Money{USD: invoice.NetUSD, LBP: invoice.NetLBP},
		SettledAt:   invoice.SettledAt,
		CreatedAt:   invoice.CreatedAt,
	}
}
