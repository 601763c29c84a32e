package enums

import "fmt"

// PaymentIntentStatus mirrors the processor-reported lifecycle state of a
// payment intent.
type PaymentIntentStatus string

const (
	PaymentIntentStatusRequiresCapture PaymentIntentStatus = "requires_capture"
	PaymentIntentStatusSucceeded       PaymentIntentStatus = "succeeded"
	PaymentIntentStatusCanceled        PaymentIntentStatus = "canceled"
	PaymentIntentStatusRefunded        PaymentIntentStatus = "refunded"
)

var validPaymentIntentStatuses = []PaymentIntentStatus{
	PaymentIntentStatusRequiresCapture,
	PaymentIntentStatusSucceeded,
	PaymentIntentStatusCanceled,
	PaymentIntentStatusRefunded,
}

// IsValid reports whether the value matches the canonical payment intent status enum.
func (s PaymentIntentStatus) IsValid() bool {
	for _, candidate := range validPaymentIntentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from this status.
func (s PaymentIntentStatus) IsTerminal() bool {
	return s == PaymentIntentStatusCanceled || s == PaymentIntentStatusRefunded
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
// The only legal edges are requires_capture -> {succeeded, canceled} and
// succeeded -> refunded.
func (s PaymentIntentStatus) CanTransitionTo(next PaymentIntentStatus) bool {
	switch s {
	case PaymentIntentStatusRequiresCapture:
		return next == PaymentIntentStatusSucceeded || next == PaymentIntentStatusCanceled
	case PaymentIntentStatusSucceeded:
		return next == PaymentIntentStatusRefunded
	default:
		return false
	}
}

// ParsePaymentIntentStatus converts the raw string to PaymentIntentStatus.
func ParsePaymentIntentStatus(value string) (PaymentIntentStatus, error) {
	for _, candidate := range validPaymentIntentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment intent status %q", value)
}
