package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/refund"

	pkgstripe "github.com/martinezjavi/ridepay-backend/pkg/stripe"
)

// CreateIntentParams captures the fields forwarded to the processor on create.
type CreateIntentParams struct {
	AmountCents int64
	Currency    string
	RideID      uuid.UUID
	RiderID     uuid.UUID
	DriverID    uuid.UUID
}

// ProcessorClient exposes the subset of Stripe operations required by the payment service.
type ProcessorClient interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*stripe.PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	CaptureIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	CancelIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	CreateRefund(ctx context.Context, intentID, reason string) (*stripe.Refund, error)
}

type stripeClientWrapper struct{}

// NewStripeClient wraps the provided Stripe client so the payment service can be tested.
func NewStripeClient(api *pkgstripe.Client) ProcessorClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) CreateIntent(ctx context.Context, p CreateIntentParams) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(p.AmountCents),
		Currency:      stripe.String(p.Currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
	}
	params.Context = ctx
	params.AddMetadata("ride_id", p.RideID.String())
	params.AddMetadata("rider_id", p.RiderID.String())
	params.AddMetadata("driver_id", p.DriverID.String())
	return paymentintent.New(params)
}

func (w *stripeClientWrapper) GetIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	return paymentintent.Get(id, params)
}

func (w *stripeClientWrapper) CaptureIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	return paymentintent.Capture(id, params)
}

func (w *stripeClientWrapper) CancelIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	return paymentintent.Cancel(id, params)
}

func (w *stripeClientWrapper) CreateRefund(ctx context.Context, intentID, reason string) (*stripe.Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	params.Context = ctx
	if reason != "" {
		// Stripe only accepts its own reason enum; arbitrary audit text rides in metadata.
		switch stripe.RefundReason(reason) {
		case stripe.RefundReasonDuplicate, stripe.RefundReasonFraudulent, stripe.RefundReasonRequestedByCustomer:
			params.Reason = stripe.String(reason)
		default:
			params.AddMetadata("reason", reason)
		}
	}
	return refund.New(params)
}
