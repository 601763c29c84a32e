package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/martinezjavi/ridepay-backend/internal/payments"
	"github.com/martinezjavi/ridepay-backend/pkg/enums"
	pkgerrors "github.com/martinezjavi/ridepay-backend/pkg/errors"
	"github.com/martinezjavi/ridepay-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	PaymentRepo       payments.Repository
	TransactionRunner txRunner
	Logger            *logger.Logger
}

// Service syncs processor-side lifecycle events into the local intent table.
// Commits go through the same conditional-update rules as the orchestrator, so
// a webhook racing an API call never regresses a terminal status.
type Service struct {
	paymentRepo payments.Repository
	txRunner    txRunner
	logg        *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.PaymentRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		paymentRepo: params.PaymentRepo,
		txRunner:    params.TransactionRunner,
		logg:        params.Logger,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		intentID, err := intentIDFromEvent(event)
		if err != nil {
			return err
		}
		return s.syncStatus(ctx, intentID,
			enums.PaymentIntentStatusRequiresCapture,
			enums.PaymentIntentStatusSucceeded)

	case stripe.EventTypePaymentIntentCanceled:
		intentID, err := intentIDFromEvent(event)
		if err != nil {
			return err
		}
		return s.syncStatus(ctx, intentID,
			enums.PaymentIntentStatusRequiresCapture,
			enums.PaymentIntentStatusCanceled)

	case stripe.EventTypeChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode charge event")
		}
		if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing on charge")
		}
		return s.syncStatus(ctx, charge.PaymentIntent.ID,
			enums.PaymentIntentStatusSucceeded,
			enums.PaymentIntentStatusRefunded)

	default:
		return nil
	}
}

func intentIDFromEvent(event *stripe.Event) (string, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	if intent.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing")
	}
	return intent.ID, nil
}

func (s *Service) syncStatus(ctx context.Context, stripeIntentID string, from, to enums.PaymentIntentStatus) error {
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.paymentRepo.WithTx(tx)
		record, err := repo.FindByStripeIntentID(ctx, stripeIntentID)
		if err != nil {
			return err
		}
		if record == nil {
			// Intent created outside this service (or an orphan under
			// reconciliation); nothing local to sync.
			if s.logg != nil {
				logCtx := s.logg.WithIntentID(ctx, stripeIntentID)
				s.logg.Warn(logCtx, "webhook for unknown payment intent")
			}
			return nil
		}
		if record.Status == to {
			return nil
		}

		changed, err := repo.UpdateStatusIf(ctx, stripeIntentID, from, to, nil)
		if err != nil {
			return err
		}
		if changed && s.logg != nil {
			logCtx := s.logg.WithIntentID(ctx, stripeIntentID)
			s.logg.Info(logCtx, "payment intent synced from webhook")
		}
		return nil
	})
}
