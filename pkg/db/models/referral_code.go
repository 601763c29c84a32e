package models

import (
	"time"

	"github.com/google/uuid"
)

// ReferralCode grants a fixed discount, in minor currency units, at payment
// creation time.
type ReferralCode struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code          string     `gorm:"column:code;not null;uniqueIndex"`
	DiscountCents int64      `gorm:"column:discount_cents;not null"`
	Active        bool       `gorm:"column:active;not null;default:true"`
	ExpiresAt     *time.Time `gorm:"column:expires_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
