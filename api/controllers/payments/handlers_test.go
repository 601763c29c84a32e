package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinezjavi/ridepay-backend/api/middleware"
	internalpayments "github.com/martinezjavi/ridepay-backend/internal/payments"
	"github.com/martinezjavi/ridepay-backend/pkg/db/models"
	"github.com/martinezjavi/ridepay-backend/pkg/enums"
	pkgerrors "github.com/martinezjavi/ridepay-backend/pkg/errors"
)

type paymentServiceStub struct {
	record *models.PaymentIntent
	err    error

	lastInput    internalpayments.CreatePaymentInput
	lastIntentID string
	lastReason   string
}

func (s *paymentServiceStub) Create(ctx context.Context, input internalpayments.CreatePaymentInput) (*models.PaymentIntent, error) {
	s.lastInput = input
	return s.record, s.err
}

func (s *paymentServiceStub) Capture(ctx context.Context, stripeIntentID string) (*models.PaymentIntent, error) {
	s.lastIntentID = stripeIntentID
	return s.record, s.err
}

func (s *paymentServiceStub) Cancel(ctx context.Context, stripeIntentID string) (*models.PaymentIntent, error) {
	s.lastIntentID = stripeIntentID
	return s.record, s.err
}

func (s *paymentServiceStub) Refund(ctx context.Context, stripeIntentID, reason string) (*models.PaymentIntent, error) {
	s.lastIntentID = stripeIntentID
	s.lastReason = reason
	return s.record, s.err
}

func intentRecord() *models.PaymentIntent {
	return &models.PaymentIntent{
		ID:                  uuid.New(),
		StripeIntentID:      "pi_test_123",
		RideID:              uuid.New(),
		RiderID:             uuid.New(),
		DriverID:            uuid.New(),
		AmountSubtotalCents: 1000,
		AmountTotalCents:    1000,
		Currency:            "usd",
		Status:              enums.PaymentIntentStatusRequiresCapture,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func withRider(riderID string) func(*http.Request) {
	return func(req *http.Request) {
		ctx := middleware.WithRiderID(req.Context(), riderID)
		*req = *req.WithContext(ctx)
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestCreatePaymentSuccess(t *testing.T) {
	stub := &paymentServiceStub{record: intentRecord()}
	riderID := uuid.New()

	rec := postJSON(t, CreatePayment(stub, nil), map[string]any{
		"ride_id":         uuid.NewString(),
		"driver_id":       uuid.NewString(),
		"amount_subtotal": 1000,
		"referral_code":   "RIDE300",
	}, withRider(riderID.String()))

	require.Equal(t, http.StatusCreated, rec.Code)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, riderID, stub.lastInput.RiderID)
	assert.Equal(t, "RIDE300", stub.lastInput.ReferralCode)
	assert.Equal(t, int64(1000), stub.lastInput.AmountSubtotalCents)
	assert.Nil(t, stub.lastInput.BookingID)
}

func TestCreatePaymentWithBookingID(t *testing.T) {
	stub := &paymentServiceStub{record: intentRecord()}
	bookingID := uuid.New()

	rec := postJSON(t, CreatePayment(stub, nil), map[string]any{
		"ride_id":         uuid.NewString(),
		"driver_id":       uuid.NewString(),
		"booking_id":      bookingID.String(),
		"amount_subtotal": 1000,
	}, withRider(uuid.NewString()))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, stub.lastInput.BookingID)
	assert.Equal(t, bookingID, *stub.lastInput.BookingID)
}

func TestCreatePaymentRequiresRiderIdentity(t *testing.T) {
	stub := &paymentServiceStub{record: intentRecord()}

	rec := postJSON(t, CreatePayment(stub, nil), map[string]any{
		"ride_id":         uuid.NewString(),
		"driver_id":       uuid.NewString(),
		"amount_subtotal": 1000,
	}, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, false, payload["success"])
}

func TestCreatePaymentRejectsInvalidBody(t *testing.T) {
	stub := &paymentServiceStub{record: intentRecord()}

	cases := map[string]map[string]any{
		"missing ride_id": {
			"driver_id":       uuid.NewString(),
			"amount_subtotal": 1000,
		},
		"bad ride_id": {
			"ride_id":         "not-a-uuid",
			"driver_id":       uuid.NewString(),
			"amount_subtotal": 1000,
		},
		"zero amount": {
			"ride_id":         uuid.NewString(),
			"driver_id":       uuid.NewString(),
			"amount_subtotal": 0,
		},
		"negative amount": {
			"ride_id":         uuid.NewString(),
			"driver_id":       uuid.NewString(),
			"amount_subtotal": -50,
		},
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := postJSON(t, CreatePayment(stub, nil), body, withRider(uuid.NewString()))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCapturePayment(t *testing.T) {
	record := intentRecord()
	record.Status = enums.PaymentIntentStatusSucceeded
	stub := &paymentServiceStub{record: record}

	rec := postJSON(t, CapturePayment(stub, nil), map[string]any{
		"payment_intent_id": "pi_test_123",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pi_test_123", stub.lastIntentID)

	payload := decodeEnvelope(t, rec)
	data, ok := payload["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "succeeded", data["status"])
}

func TestCapturePaymentStateConflict(t *testing.T) {
	stub := &paymentServiceStub{err: pkgerrors.New(pkgerrors.CodeStateConflict, "cannot transition canceled intent to succeeded")}

	rec := postJSON(t, CapturePayment(stub, nil), map[string]any{
		"payment_intent_id": "pi_test_123",
	}, nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	payload := decodeEnvelope(t, rec)
	errBody, ok := payload["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), errBody["code"])
}

func TestCancelPayment(t *testing.T) {
	record := intentRecord()
	record.Status = enums.PaymentIntentStatusCanceled
	stub := &paymentServiceStub{record: record}

	rec := postJSON(t, CancelPayment(stub, nil), map[string]any{
		"payment_intent_id": "pi_test_123",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pi_test_123", stub.lastIntentID)
}

func TestRefundPaymentForwardsReason(t *testing.T) {
	record := intentRecord()
	record.Status = enums.PaymentIntentStatusRefunded
	stub := &paymentServiceStub{record: record}

	rec := postJSON(t, RefundPayment(stub, nil), map[string]any{
		"payment_intent_id": "pi_test_123",
		"reason":            "rider dispute",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pi_test_123", stub.lastIntentID)
	assert.Equal(t, "rider dispute", stub.lastReason)
}

func TestIntentActionRequiresIntentID(t *testing.T) {
	stub := &paymentServiceStub{record: intentRecord()}

	for name, handler := range map[string]http.HandlerFunc{
		"capture": CapturePayment(stub, nil),
		"cancel":  CancelPayment(stub, nil),
		"refund":  RefundPayment(stub, nil),
	} {
		t.Run(name, func(t *testing.T) {
			rec := postJSON(t, handler, map[string]any{}, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandlersRejectUnknownFields(t *testing.T) {
	stub := &paymentServiceStub{record: intentRecord()}

	rec := postJSON(t, CapturePayment(stub, nil), map[string]any{
		"payment_intent_id": "pi_test_123",
		"surprise":          true,
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
