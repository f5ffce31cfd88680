package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/wassel-ops/wassel-backend/pkg/db/types"
)

// ClientZoneRule is a per-client final fee for a set of governorates. The fee
// is used as-is, never combined with package extras. A rule with an empty
// governorate set matches nothing.
type ClientZoneRule struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID     uuid.UUID         `gorm:"column:client_id;type:uuid;not null;index"`
	Name         *string           `gorm:"column:name"`
	Governorates dbtypes.UUIDArray `gorm:"column:governorates;type:uuid[]"`
	FeeUSD       decimal.Decimal   `gorm:"column:fee_usd;type:numeric(12,2);not null"`
	FeeLBP       int64             `gorm:"column:fee_lbp;not null"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
