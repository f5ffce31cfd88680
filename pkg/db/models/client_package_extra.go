package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wassel-ops/wassel-backend/pkg/enums"
)

// ClientPackageExtra adds to a client's default fee for one package type.
// At most one row per (client, package type) pair.
type ClientPackageExtra struct {
	ClientID    uuid.UUID         `gorm:"column:client_id;type:uuid;primaryKey"`
	PackageType enums.PackageType `gorm:"column:package_type;type:text;primaryKey"`
	ExtraUSD    decimal.Decimal   `gorm:"column:extra_usd;type:numeric(12,2);not null"`
	ExtraLBP    int64             `gorm:"column:extra_lbp;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
