package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GlobalPricing is the singleton fallback fee applied when no other tier
// matches. Seeded by migration; the row with id 1 always exists.
type GlobalPricing struct {
	ID            int16           `gorm:"column:id;primaryKey"`
	DefaultFeeUSD decimal.Decimal `gorm:"column:default_fee_usd;type:numeric(12,2);not null"`
	DefaultFeeLBP int64           `gorm:"column:default_fee_lbp;not null"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
