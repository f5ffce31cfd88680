package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wassel-ops/wassel-backend/pkg/enums"
)

// Order is a single delivery. Collected amounts are what the courier took
// from the consignee; the delivery fee is what the platform keeps. Both are
// carried in two independent currencies and never converted.
//
// InvoiceID doubles as the payout claim marker: a non-nil value means the
// order belongs to exactly one invoice and can never be picked up again.
type Order struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID       uuid.UUID           `gorm:"column:client_id;type:uuid;not null;index"`
	Reference      string              `gorm:"column:reference;not null"`
	Status         enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus  enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PayoutStatus   enums.PayoutStatus  `gorm:"column:payout_status;type:text;not null;default:'pending'"`
	PackageType    enums.PackageType   `gorm:"column:package_type;type:text;not null"`
	GovernorateID  *uuid.UUID          `gorm:"column:governorate_id;type:uuid"`
	CityID         *uuid.UUID          `gorm:"column:city_id;type:uuid"`
	CollectedUSD   decimal.Decimal     `gorm:"column:collected_usd;type:numeric(12,2);not null"`
	CollectedLBP   int64               `gorm:"column:collected_lbp;not null"`
	DeliveryFeeUSD decimal.Decimal     `gorm:"column:delivery_fee_usd;type:numeric(12,2);not null"`
	DeliveryFeeLBP int64               `gorm:"column:delivery_fee_lbp;not null"`
	InvoiceID      *uuid.UUID          `gorm:"column:invoice_id;type:uuid;index"`
	DeliveredAt    *time.Time          `gorm:"column:delivered_at"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// NetUSD is the client's take in dollars: collected minus delivery fee.
// Negative values are legitimate and must survive untouched.
func (o *Order) NetUSD() decimal.Decimal {
	return o.CollectedUSD.Sub(o.DeliveryFeeUSD)
}

// NetLBP is the client's take in pounds.
func (o *Order) NetLBP() int64 {
	return o.CollectedLBP - o.DeliveryFeeLBP
}
