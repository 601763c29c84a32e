package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/martinezjavi/ridepay-backend/pkg/db"
	"github.com/martinezjavi/ridepay-backend/pkg/db/models"
	"github.com/martinezjavi/ridepay-backend/pkg/enums"
	pkgerrors "github.com/martinezjavi/ridepay-backend/pkg/errors"
	"github.com/martinezjavi/ridepay-backend/pkg/logger"
	"github.com/martinezjavi/ridepay-backend/pkg/metrics"
	"github.com/martinezjavi/ridepay-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type discountResolver interface {
	Resolve(ctx context.Context, code string) (int64, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the payment lifecycle surface.
type Service interface {
	Create(ctx context.Context, input CreatePaymentInput) (*models.PaymentIntent, error)
	Capture(ctx context.Context, stripeIntentID string) (*models.PaymentIntent, error)
	Cancel(ctx context.Context, stripeIntentID string) (*models.PaymentIntent, error)
	Refund(ctx context.Context, stripeIntentID, reason string) (*models.PaymentIntent, error)
}

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Repo              Repository
	Processor         ProcessorClient
	Referrals         discountResolver
	Outbox            outboxEmitter
	TransactionRunner txRunner
	Metrics           *metrics.PaymentMetrics
	Logger            *logger.Logger
	Currency          string
}

type service struct {
	repo      Repository
	processor ProcessorClient
	referrals discountResolver
	outbox    outboxEmitter
	txRunner  txRunner
	metrics   *metrics.PaymentMetrics
	logg      *logger.Logger
	currency  string
}

// NewService builds a payment service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repo required")
	}
	if params.Processor == nil {
		return nil, fmt.Errorf("processor client required")
	}
	if params.Referrals == nil {
		return nil, fmt.Errorf("referral resolver required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	currency := strings.TrimSpace(strings.ToLower(params.Currency))
	if currency == "" {
		currency = "usd"
	}
	return &service{
		repo:      params.Repo,
		processor: params.Processor,
		referrals: params.Referrals,
		outbox:    params.Outbox,
		txRunner:  params.TransactionRunner,
		metrics:   params.Metrics,
		logg:      params.Logger,
		currency:  currency,
	}, nil
}

// Create validates the ride payment, opens a manual-capture intent with the
// processor, then persists the local record. Validation always runs before the
// processor is touched.
func (s *service) Create(ctx context.Context, input CreatePaymentInput) (*models.PaymentIntent, error) {
	const op = "create"
	start := time.Now()
	defer s.observe(op, start)

	if input.RiderID == uuid.Nil {
		return nil, s.fail(op, pkgerrors.New(pkgerrors.CodeValidation, "rider_id is required"))
	}
	if input.RideID == uuid.Nil {
		return nil, s.fail(op, pkgerrors.New(pkgerrors.CodeValidation, "ride_id is required"))
	}
	if input.DriverID == uuid.Nil {
		return nil, s.fail(op, pkgerrors.New(pkgerrors.CodeValidation, "driver_id is required"))
	}
	if input.AmountSubtotalCents <= 0 {
		return nil, s.fail(op, pkgerrors.New(pkgerrors.CodeValidation, "amount_subtotal must be positive"))
	}

	discount := int64(0)
	referralCode := strings.TrimSpace(input.ReferralCode)
	if referralCode != "" {
		resolved, err := s.referrals.Resolve(ctx, referralCode)
		if err != nil {
			return nil, s.fail(op, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving referral code"))
		}
		discount = resolved
	}
	if discount > input.AmountSubtotalCents {
		discount = input.AmountSubtotalCents
	}
	total := input.AmountSubtotalCents - discount

	intent, err := s.processor.CreateIntent(ctx, CreateIntentParams{
		AmountCents: total,
		Currency:    s.currency,
		RideID:      input.RideID,
		RiderID:     input.RiderID,
		DriverID:    input.DriverID,
	})
	if err != nil {
		return nil, s.fail(op, pkgerrors.Wrap(pkgerrors.CodeProcessorRejected, err, "creating payment intent"))
	}

	record := &models.PaymentIntent{
		ID:                  uuid.New(),
		StripeIntentID:      intent.ID,
		RideID:              input.RideID,
		BookingID:           input.BookingID,
		RiderID:             input.RiderID,
		DriverID:            input.DriverID,
		AmountSubtotalCents: input.AmountSubtotalCents,
		DiscountCents:       discount,
		AmountTotalCents:    total,
		Currency:            s.currency,
		CaptureMethod:       "manual",
		Status:              enums.PaymentIntentStatusRequiresCapture,
		ClientSecret:        intent.ClientSecret,
	}
	if referralCode != "" {
		record.ReferralCode = &referralCode
	}

	if err := s.persistCreated(ctx, record); err != nil {
		return nil, s.fail(op, err)
	}

	if s.metrics != nil {
		s.metrics.IncSuccess(op)
	}
	if s.logg != nil {
		logCtx := s.logg.WithIntentID(ctx, record.StripeIntentID)
		s.logg.Info(logCtx, "payment intent created")
	}
	return record, nil
}

// persistCreated inserts the record transactionally with its outbox event,
// retrying once. If both attempts fail the intent is orphaned at the
// processor: record a reconciliation event so it is never dropped silently.
func (s *service) persistCreated(ctx context.Context, record *models.PaymentIntent) error {
	insert := func() error {
		return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
			if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
				return err
			}
			return s.outbox.Emit(ctx, tx, s.lifecycleEvent(enums.OutboxEventPaymentIntentCreated, record, ""))
		})
	}

	err := insert()
	if err == nil {
		return nil
	}
	if dbpkg.IsUniqueViolation(err, "payment_intents_stripe_intent_id_key") {
		// The row already landed, e.g. a concurrent retry of the same create.
		return nil
	}
	if s.logg != nil {
		s.logg.Warn(ctx, "payment intent insert failed, retrying once")
	}
	if err = insert(); err == nil {
		return nil
	}
	if dbpkg.IsUniqueViolation(err, "payment_intents_stripe_intent_id_key") {
		return nil
	}

	orphanErr := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		// Conditional emit so a retried create never records the same orphan twice.
		return s.outbox.EmitIfNotExists(ctx, tx, s.lifecycleEvent(enums.OutboxEventPaymentIntentOrphaned, record, err.Error()))
	})
	if s.logg != nil {
		logCtx := s.logg.WithIntentID(ctx, record.StripeIntentID)
		s.logg.Error(logCtx, "payment intent orphaned at processor", err)
		if orphanErr != nil {
			s.logg.Error(logCtx, "recording orphaned intent failed", orphanErr)
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting payment intent").
		WithDetails(map[string]string{"stripe_intent_id": record.StripeIntentID})
}

// Capture commits requires_capture -> succeeded. A record already succeeded
// returns idempotently without a processor call.
func (s *service) Capture(ctx context.Context, stripeIntentID string) (*models.PaymentIntent, error) {
	const op = "capture"
	start := time.Now()
	defer s.observe(op, start)

	record, err := s.findRequired(ctx, op, stripeIntentID)
	if err != nil {
		return nil, err
	}

	switch record.Status {
	case enums.PaymentIntentStatusSucceeded:
		return record, nil
	case enums.PaymentIntentStatusCanceled, enums.PaymentIntentStatusRefunded:
		return nil, s.stateConflict(op, record.Status, enums.PaymentIntentStatusSucceeded)
	}

	remote, err := s.processor.GetIntent(ctx, stripeIntentID)
	if err != nil {
		return nil, s.fail(op, pkgerrors.Wrap(pkgerrors.CodeProcessorRejected, err, "fetching payment intent"))
	}
	if remote.Status != "succeeded" {
		if _, err := s.processor.CaptureIntent(ctx, stripeIntentID); err != nil {
			return nil, s.fail(op, pkgerrors.Wrap(pkgerrors.CodeProcessorRejected, err, "capturing payment intent"))
		}
	}

	return s.commitTransition(ctx, op, stripeIntentID,
		enums.PaymentIntentStatusRequiresCapture,
		enums.PaymentIntentStatusSucceeded,
		enums.OutboxEventPaymentIntentCaptured,
		nil, "")
}

// Cancel commits requires_capture -> canceled. Canceling a canceled record is
// a no-op success; canceling a succeeded or refunded record is a conflict.
func (s *service) Cancel(ctx context.Context, stripeIntentID string) (*models.PaymentIntent, error) {
	const op = "cancel"
	start := time.Now()
	defer s.observe(op, start)

	record, err := s.findRequired(ctx, op, stripeIntentID)
	if err != nil {
		return nil, err
	}

	switch record.Status {
	case enums.PaymentIntentStatusCanceled:
		return record, nil
	case enums.PaymentIntentStatusSucceeded, enums.PaymentIntentStatusRefunded:
		return nil, s.stateConflict(op, record.Status, enums.PaymentIntentStatusCanceled)
	}

	if _, err := s.processor.CancelIntent(ctx, stripeIntentID); err != nil {
		return nil, s.fail(op, pkgerrors.Wrap(pkgerrors.CodeProcessorRejected, err, "canceling payment intent"))
	}

	return s.commitTransition(ctx, op, stripeIntentID,
		enums.PaymentIntentStatusRequiresCapture,
		enums.PaymentIntentStatusCanceled,
		enums.OutboxEventPaymentIntentCanceled,
		nil, "")
}

// Refund moves succeeded -> refunded. Any other source state is a conflict.
func (s *service) Refund(ctx context.Context, stripeIntentID, reason string) (*models.PaymentIntent, error) {
	const op = "refund"
	start := time.Now()
	defer s.observe(op, start)

	record, err := s.findRequired(ctx, op, stripeIntentID)
	if err != nil {
		return nil, err
	}

	if record.Status != enums.PaymentIntentStatusSucceeded {
		return nil, s.stateConflict(op, record.Status, enums.PaymentIntentStatusRefunded)
	}

	reason = strings.TrimSpace(reason)
	if _, err := s.processor.CreateRefund(ctx, stripeIntentID, reason); err != nil {
		return nil, s.fail(op, pkgerrors.Wrap(pkgerrors.CodeProcessorRejected, err, "refunding payment intent"))
	}

	extra := map[string]any{}
	if reason != "" {
		extra["refund_reason"] = reason
	}
	return s.commitTransition(ctx, op, stripeIntentID,
		enums.PaymentIntentStatusSucceeded,
		enums.PaymentIntentStatusRefunded,
		enums.OutboxEventPaymentIntentRefunded,
		extra, reason)
}

func (s *service) findRequired(ctx context.Context, op, stripeIntentID string) (*models.PaymentIntent, error) {
	stripeIntentID = strings.TrimSpace(stripeIntentID)
	if stripeIntentID == "" {
		return nil, s.fail(op, pkgerrors.New(pkgerrors.CodeValidation, "payment_intent_id is required"))
	}
	record, err := s.repo.FindByStripeIntentID(ctx, stripeIntentID)
	if err != nil {
		return nil, s.fail(op, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payment intent"))
	}
	if record == nil {
		return nil, s.fail(op, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found"))
	}
	return record, nil
}

// commitTransition performs the conditional status update plus outbox emit in
// one transaction. Losing the conditional update triggers a reload: a
// concurrent caller reaching the same target is idempotent success, anything
// else is a conflict.
func (s *service) commitTransition(ctx context.Context, op, stripeIntentID string, from, to enums.PaymentIntentStatus, eventType enums.OutboxEventType, extra map[string]any, reason string) (*models.PaymentIntent, error) {
	var updated bool
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		changed, err := txRepo.UpdateStatusIf(ctx, stripeIntentID, from, to, extra)
		if err != nil {
			return err
		}
		updated = changed
		if !changed {
			return nil
		}
		record, err := txRepo.FindByStripeIntentID(ctx, stripeIntentID)
		if err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, s.lifecycleEvent(eventType, record, reason))
	})
	if err != nil {
		return nil, s.fail(op, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "committing payment transition"))
	}

	record, err := s.repo.FindByStripeIntentID(ctx, stripeIntentID)
	if err != nil {
		return nil, s.fail(op, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading payment intent"))
	}
	if record == nil {
		return nil, s.fail(op, pkgerrors.New(pkgerrors.CodeNotFound, "payment intent not found"))
	}

	if !updated && record.Status != to {
		return nil, s.stateConflict(op, record.Status, to)
	}

	if s.metrics != nil {
		s.metrics.IncSuccess(op)
	}
	if s.logg != nil {
		logCtx := s.logg.WithIntentID(ctx, stripeIntentID)
		s.logg.Info(logCtx, fmt.Sprintf("payment intent %s", to))
	}
	return record, nil
}

func (s *service) lifecycleEvent(eventType enums.OutboxEventType, record *models.PaymentIntent, reason string) outbox.DomainEvent {
	data := outbox.PaymentIntentEventV1{
		IntentID:         record.ID,
		StripeIntentID:   record.StripeIntentID,
		RideID:           record.RideID,
		RiderID:          record.RiderID,
		DriverID:         record.DriverID,
		AmountTotalCents: record.AmountTotalCents,
		Currency:         record.Currency,
		Status:           string(record.Status),
		Reason:           reason,
	}
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.OutboxAggregatePaymentIntent,
		AggregateID:   record.ID,
		Data:          data,
		Version:       1,
	}
}

func (s *service) stateConflict(op string, current, target enums.PaymentIntentStatus) error {
	if s.metrics != nil {
		s.metrics.IncStateConflict(op)
		s.metrics.IncFailure(op, string(pkgerrors.CodeStateConflict))
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot transition %s intent to %s", current, target))
}

func (s *service) fail(op string, err error) error {
	if s.metrics != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.IncFailure(op, string(code))
	}
	return err
}

func (s *service) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDuration(op, time.Since(start))
	}
}
