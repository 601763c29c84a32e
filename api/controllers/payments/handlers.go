package payments

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/martinezjavi/ridepay-backend/api/middleware"
	"github.com/martinezjavi/ridepay-backend/api/responses"
	"github.com/martinezjavi/ridepay-backend/api/validators"
	internalpayments "github.com/martinezjavi/ridepay-backend/internal/payments"
	"github.com/martinezjavi/ridepay-backend/pkg/db/models"
	pkgerrors "github.com/martinezjavi/ridepay-backend/pkg/errors"
	"github.com/martinezjavi/ridepay-backend/pkg/logger"
)

// PaymentService is the orchestrator surface the handlers depend on.
type PaymentService interface {
	Create(ctx context.Context, input internalpayments.CreatePaymentInput) (*models.PaymentIntent, error)
	Capture(ctx context.Context, stripeIntentID string) (*models.PaymentIntent, error)
	Cancel(ctx context.Context, stripeIntentID string) (*models.PaymentIntent, error)
	Refund(ctx context.Context, stripeIntentID, reason string) (*models.PaymentIntent, error)
}

type createPaymentRequest struct {
	RideID         string `json:"ride_id" validate:"required,uuid"`
	BookingID      string `json:"booking_id,omitempty" validate:"omitempty,uuid"`
	DriverID       string `json:"driver_id" validate:"required,uuid"`
	AmountSubtotal int64  `json:"amount_subtotal" validate:"required,gt=0"`
	ReferralCode   string `json:"referral_code,omitempty"`
}

type intentActionRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type refundRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
	Reason          string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// CreatePayment opens a manual-capture payment for the authenticated rider.
func CreatePayment(svc PaymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		riderID, err := uuid.Parse(middleware.RiderIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "rider identity required"))
			return
		}

		var req createPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rideID, err := uuid.Parse(req.RideID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ride_id must be a valid uuid"))
			return
		}
		driverID, err := uuid.Parse(req.DriverID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "driver_id must be a valid uuid"))
			return
		}

		input := internalpayments.CreatePaymentInput{
			RiderID:             riderID,
			RideID:              rideID,
			DriverID:            driverID,
			AmountSubtotalCents: req.AmountSubtotal,
			ReferralCode:        req.ReferralCode,
		}
		if req.BookingID != "" {
			bookingID, err := uuid.Parse(req.BookingID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "booking_id must be a valid uuid"))
				return
			}
			input.BookingID = &bookingID
		}

		record, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, internalpayments.ToPaymentIntentResponse(record))
	}
}

// CapturePayment commits the held funds for a completed ride.
func CapturePayment(svc PaymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req intentActionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.Capture(ctx, req.PaymentIntentID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, internalpayments.ToPaymentIntentResponse(record))
	}
}

// CancelPayment releases the hold for an abandoned ride.
func CancelPayment(svc PaymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req intentActionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.Cancel(ctx, req.PaymentIntentID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, internalpayments.ToPaymentIntentResponse(record))
	}
}

// RefundPayment returns captured funds to the rider.
func RefundPayment(svc PaymentService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req refundRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.Refund(ctx, req.PaymentIntentID, req.Reason)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, internalpayments.ToPaymentIntentResponse(record))
	}
}
