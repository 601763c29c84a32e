package enums

import "fmt"

// OutboxEventType is the canonical event_type for the payments outbox.
type OutboxEventType string

const (
	OutboxEventPaymentIntentCreated  OutboxEventType = "payment_intent.created"
	OutboxEventPaymentIntentCaptured OutboxEventType = "payment_intent.captured"
	OutboxEventPaymentIntentCanceled OutboxEventType = "payment_intent.canceled"
	OutboxEventPaymentIntentRefunded OutboxEventType = "payment_intent.refunded"
	OutboxEventPaymentIntentOrphaned OutboxEventType = "payment_intent.orphaned"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventPaymentIntentCreated,
	OutboxEventPaymentIntentCaptured,
	OutboxEventPaymentIntentCanceled,
	OutboxEventPaymentIntentRefunded,
	OutboxEventPaymentIntentOrphaned,
}

// IsValid reports whether the value matches the canonical outbox event type enum.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts the raw string to OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregatePaymentIntent OutboxAggregateType = "payment_intent"
)

// IsValid reports whether the value matches the canonical aggregate type enum.
func (o OutboxAggregateType) IsValid() bool {
	return o == OutboxAggregatePaymentIntent
}
