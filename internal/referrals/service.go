package referrals

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/martinezjavi/ridepay-backend/pkg/logger"
)

// ServiceParams groups dependencies for the referral service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// Service resolves referral codes to fixed discounts.
type Service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a referral service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{repo: params.Repo, logg: params.Logger}, nil
}

// Resolve returns the discount in cents for the given code. Unknown, inactive
// or expired codes resolve to zero discount, never an error.
func (s *Service) Resolve(ctx context.Context, code string) (int64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, nil
	}

	record, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return 0, err
	}
	if record == nil || !record.Active {
		return 0, nil
	}
	if record.ExpiresAt != nil && record.ExpiresAt.Before(time.Now()) {
		return 0, nil
	}
	if record.DiscountCents < 0 {
		return 0, nil
	}

	if s.logg != nil {
		logCtx := s.logg.WithField(ctx, "referral_code", code)
		s.logg.Info(logCtx, "referral discount applied")
	}
	return record.DiscountCents, nil
}
