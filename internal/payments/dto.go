package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/martinezjavi/ridepay-backend/pkg/db/models"
)

// CreatePaymentInput captures the data required to open a payment for a ride.
type CreatePaymentInput struct {
	RiderID             uuid.UUID
	RideID              uuid.UUID
	DriverID            uuid.UUID
	BookingID           *uuid.UUID
	AmountSubtotalCents int64
	ReferralCode        string
}

// PaymentIntentResponse is the API-facing projection of a payment intent record.
type PaymentIntentResponse struct {
	ID                  uuid.UUID  `json:"id"`
	StripeIntentID      string     `json:"stripe_intent_id"`
	RideID              uuid.UUID  `json:"ride_id"`
	BookingID           *uuid.UUID `json:"booking_id,omitempty"`
	RiderID             uuid.UUID  `json:"rider_id"`
	DriverID            uuid.UUID  `json:"driver_id"`
	AmountSubtotalCents int64      `json:"amount_subtotal_cents"`
	DiscountCents       int64      `json:"discount_cents"`
	AmountTotalCents    int64      `json:"amount_total_cents"`
	Currency            string     `json:"currency"`
	Status              string     `json:"status"`
	ClientSecret        string     `json:"client_secret,omitempty"`
	ReferralCode        *string    `json:"referral_code,omitempty"`
	RefundReason        *string    `json:"refund_reason,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ToPaymentIntentResponse maps the persisted record to its API projection.
func ToPaymentIntentResponse(record *models.PaymentIntent) PaymentIntentResponse {
	if record == nil {
		return PaymentIntentResponse{}
	}
	return PaymentIntentResponse{
		ID:                  record.ID,
		StripeIntentID:      record.StripeIntentID,
		RideID:              record.RideID,
		BookingID:           record.BookingID,
		RiderID:             record.RiderID,
		DriverID:            record.DriverID,
		AmountSubtotalCents: record.AmountSubtotalCents,
		DiscountCents:       record.DiscountCents,
		AmountTotalCents:    record.AmountTotalCents,
		Currency:            record.Currency,
		Status:              string(record.Status),
		ClientSecret:        record.ClientSecret,
		ReferralCode:        record.ReferralCode,
		RefundReason:        record.RefundReason,
		CreatedAt:           record.CreatedAt,
		UpdatedAt:           record.UpdatedAt,
	}
}
