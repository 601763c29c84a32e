package outbox

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/martinezjavi/ridepay-backend/pkg/enums"
)

// PaymentIntentEventV1 is the versioned data block for payment intent lifecycle events.
type PaymentIntentEventV1 struct {
	IntentID         uuid.UUID `json:"intentId"`
	StripeIntentID   string    `json:"stripeIntentId"`
	RideID           uuid.UUID `json:"rideId"`
	RiderID          uuid.UUID `json:"riderId"`
	DriverID         uuid.UUID `json:"driverId"`
	AmountTotalCents int64     `json:"amountTotalCents"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	Reason           string    `json:"reason,omitempty"`
}

// RegisterPaymentIntentDecoders wires v1 decoders for all payment intent event types.
func RegisterPaymentIntentDecoders(registry *DecoderRegistry) {
	decode := func(payload json.RawMessage) (interface{}, error) {
		var data PaymentIntentEventV1
		if err := json.Unmarshal(payload, &data); err != nil {
			return nil, fmt.Errorf("decoding payment intent event: %w", err)
		}
		return data, nil
	}
	for _, eventType := range []enums.OutboxEventType{
		enums.OutboxEventPaymentIntentCreated,
		enums.OutboxEventPaymentIntentCaptured,
		enums.OutboxEventPaymentIntentCanceled,
		enums.OutboxEventPaymentIntentRefunded,
		enums.OutboxEventPaymentIntentOrphaned,
	} {
		registry.Register(eventType, 1, decode)
	}
}
