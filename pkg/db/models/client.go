package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a merchant account whose shipments the platform delivers.
// The core reads it only to label payout output; it never influences
// fee resolution.
type Client struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DisplayName  string    `gorm:"column:display_name;not null"`
	BusinessName string    `gorm:"column:business_name;not null"`
	Phone        *string   `gorm:"column:phone"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
