package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wassel-ops/wassel-backend/pkg/enums"
)

// ZonePricingRule overrides the global base fee for a governorate or city.
// An optional package type narrows the rule further. Inactive rules are
// invisible to resolution.
type ZonePricingRule struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Scope       enums.ZoneScope    `gorm:"column:scope;type:text;not null"`
	RegionID    uuid.UUID          `gorm:"column:region_id;type:uuid;not null"`
	PackageType *enums.PackageType `gorm:"column:package_type;type:text"`
	FeeUSD      decimal.Decimal    `gorm:"column:fee_usd;type:numeric(12,2);not null"`
	FeeLBP      int64              `gorm:"column:fee_lbp;not null"`
	Active      bool               `gorm:"column:active;not null"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
