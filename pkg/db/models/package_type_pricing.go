package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wassel-ops/wassel-backend/pkg/enums"
)

// PackageTypePricing is an additive extra charged on top of a base fee for a
// given package type. It never replaces the base.
type PackageTypePricing struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PackageType enums.PackageType `gorm:"column:package_type;type:text;not null;uniqueIndex"`
	ExtraUSD    decimal.Decimal   `gorm:"column:extra_usd;type:numeric(12,2);not null"`
	ExtraLBP    int64             `gorm:"column:extra_lbp;not null"`
	Active      bool              `gorm:"column:active;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
