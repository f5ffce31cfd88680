package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientPricingDefault replaces the global default fee for one client.
// At most one row per client; upserts are keyed by client id.
type ClientPricingDefault struct {
	ClientID  uuid.UUID       `gorm:"column:client_id;type:uuid;primaryKey"`
	FeeUSD    decimal.Decimal `gorm:"column:fee_usd;type:numeric(12,2);not null"`
	FeeLBP    int64           `gorm:"column:fee_lbp;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
