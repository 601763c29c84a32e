package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/martinezjavi/ridepay-backend/pkg/enums"
)

// PaymentIntent tracks the lifecycle of a single payment attempt for a ride.
// Rows are never hard-deleted; cancellations and refunds are terminal statuses.
type PaymentIntent struct {
	ID                  uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StripeIntentID      string                    `gorm:"column:stripe_intent_id;not null;uniqueIndex"`
	RideID              uuid.UUID                 `gorm:"column:ride_id;type:uuid;not null;index"`
	BookingID           *uuid.UUID                `gorm:"column:booking_id;type:uuid"`
	RiderID             uuid.UUID                 `gorm:"column:rider_id;type:uuid;not null;index"`
	DriverID            uuid.UUID                 `gorm:"column:driver_id;type:uuid;not null"`
	AmountSubtotalCents int64                     `gorm:"column:amount_subtotal_cents;not null"`
	DiscountCents       int64                     `gorm:"column:discount_cents;not null;default:0"`
	AmountTotalCents    int64                     `gorm:"column:amount_total_cents;not null"`
	Currency            string                    `gorm:"column:currency;not null;default:'usd'"`
	CaptureMethod       string                    `gorm:"column:capture_method;not null;default:'manual'"`
	Status              enums.PaymentIntentStatus `gorm:"column:status;not null;default:'requires_capture';index"`
	ClientSecret        string                    `gorm:"column:client_secret;not null"`
	ReferralCode        *string                   `gorm:"column:referral_code"`
	RefundReason        *string                   `gorm:"column:refund_reason"`
	CreatedAt           time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
