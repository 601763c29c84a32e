package referrals

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/martinezjavi/ridepay-backend/pkg/db/models"
)

// Repository handles referral code persistence.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*models.ReferralCode, error)
	Create(ctx context.Context, record *models.ReferralCode) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a referral repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.ReferralCode, error) {
	var record models.ReferralCode
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) Create(ctx context.Context, record *models.ReferralCode) error {
	return r.db.WithContext(ctx).Create(record).Error
}
