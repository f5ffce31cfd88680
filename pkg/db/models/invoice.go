package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/wassel-ops/wassel-backend/pkg/db/types"
)

// Invoice is a settlement batch for one client. OrderIDs snapshots the
// claimed orders at creation time; totals are frozen aggregates, not live
// views over the orders table.
type Invoice struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID       uuid.UUID         `gorm:"column:client_id;type:uuid;not null;index"`
	OrderIDs       dbtypes.UUIDArray `gorm:"column:order_ids;type:uuid[]"`
	OrderCount     int               `gorm:"column:order_count;not null"`
	CollectedUSD   decimal.Decimal   `gorm:"column:collected_usd;type:numeric(14,2);not null"`
	CollectedLBP   int64             `gorm:"column:collected_lbp;not null"`
	DeliveryFeeUSD decimal.Decimal   `gorm:"column:delivery_fee_usd;type:numeric(14,2);not null"`
	DeliveryFeeLBP int64             `gorm:"column:delivery_fee_lbp;not null"`
	NetUSD         decimal.Decimal   `gorm:"column:net_usd;type:numeric(14,2);not null"`
	NetLBP         int64             `gorm:"column:net_lbp;not null"`
	SettledAt      *time.Time        `gorm:"column:settled_at"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// Settled reports whether the invoice has been paid out to the client.
func (i *Invoice) Settled() bool {
	return i.SettledAt != nil
}
