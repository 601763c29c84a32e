package payments

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/martinezjavi/ridepay-backend/pkg/db/models"
	"github.com/martinezjavi/ridepay-backend/pkg/enums"
)

// Repository handles payment intent persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.PaymentIntent) error
	FindByStripeIntentID(ctx context.Context, stripeIntentID string) (*models.PaymentIntent, error)
	UpdateStatusIf(ctx context.Context, stripeIntentID string, from, to enums.PaymentIntentStatus, extra map[string]any) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.PaymentIntent) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) FindByStripeIntentID(ctx context.Context, stripeIntentID string) (*models.PaymentIntent, error) {
	var record models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("stripe_intent_id = ?", stripeIntentID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// UpdateStatusIf commits the transition only when the row still holds the
// expected prior status. Zero rows affected means a concurrent transition won.
func (r *repository) UpdateStatusIf(ctx context.Context, stripeIntentID string, from, to enums.PaymentIntentStatus, extra map[string]any) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now(),
	}
	for key, value := range extra {
		updates[key] = value
	}
	result := r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("stripe_intent_id = ? AND status = ?", stripeIntentID, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
