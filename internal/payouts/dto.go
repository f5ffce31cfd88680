package payouts

import (
	"time"

	"github.com/google/uuid"

	"github.com/wassel-ops/wassel-backend/pkg/db/models"
	"github.com/wassel-ops/wassel-backend/pkg/enums"
	"github.com/wassel-ops/wassel-backend/pkg/types"
)

// ClientPayout is the per-order payout view. It is derived from the order on
// every read, never persisted on its own.
type ClientPayout struct {
	OrderID      uuid.UUID          `json:"order_id"`
	ClientID     uuid.UUID          `json:"client_id"`
	Reference    string             `json:"reference"`
	Collected    types.Money        `json:"collected"`
	DeliveryFee  types.Money        `json:"delivery_fee"`
	NetPayout    types.Money        `json:"net_payout"`
	PayoutStatus enums.PayoutStatus `json:"payout_status"`
	InvoiceID    *uuid.UUID         `json:"invoice_id,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// ClientLabel is the read-only client identity shown on grouped output.
type ClientLabel struct {
	ID           uuid.UUID `json:"id"`
	DisplayName  string    `json:"display_name"`
	BusinessName string    `json:"business_name"`
}

// ClientPayoutGroup aggregates one client's payouts. Totals accumulate only
// payouts still Pending; claimed and paid rows appear in the list for audit
// but never inflate the amount owed.
type ClientPayoutGroup struct {
	Client       ClientLabel    `json:"client"`
	Payouts      []ClientPayout `json:"payouts"`
	TotalPending types.Money    `json:"total_pending"`
	OrderCount   int            `json:"order_count"`
}

func payoutFromOrder(order models.Order) ClientPayout {
	collected := types.Money{USD: order.CollectedUSD, LBP: order.CollectedLBP}
	fee := types.Money{USD: order.DeliveryFeeUSD, LBP: order.DeliveryFeeLBP}
	return ClientPayout{
		OrderID:      order.ID,
		ClientID:     order.ClientID,
		Reference:    order.Reference,
		Collected:    collected,
		DeliveryFee:  fee,
		NetPayout:    collected.Sub(fee),
		PayoutStatus: order.PayoutStatus,
		InvoiceID:    order.InvoiceID,
		CreatedAt:    order.CreatedAt,
	}
}
