package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/martinezjavi/ridepay-backend/pkg/db/models"
	"github.com/martinezjavi/ridepay-backend/pkg/enums"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM outbox_events").Error)
	return db
}

func domainEventFixture() DomainEvent {
	return DomainEvent{
		EventType:     enums.OutboxEventPaymentIntentCaptured,
		AggregateType: enums.OutboxAggregatePaymentIntent,
		AggregateID:   uuid.New(),
		Data: PaymentIntentEventV1{
			IntentID:         uuid.New(),
			StripeIntentID:   "pi_outbox_123",
			RideID:           uuid.New(),
			RiderID:          uuid.New(),
			DriverID:         uuid.New(),
			AmountTotalCents: 700,
			Currency:         "usd",
			Status:           "succeeded",
		},
		Version: 1,
	}
}

func TestEmitPersistsEnvelope(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)
	event := domainEventFixture()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, event)
	})
	require.NoError(t, err)

	var rows []models.OutboxEvent
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, enums.OutboxEventPaymentIntentCaptured, row.EventType)
	assert.Equal(t, enums.OutboxAggregatePaymentIntent, row.AggregateType)
	assert.Equal(t, event.AggregateID, row.AggregateID)
	assert.Nil(t, row.PublishedAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(row.Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)
	assert.False(t, envelope.OccurredAt.IsZero())

	registry := NewDecoderRegistry()
	RegisterPaymentIntentDecoders(registry)
	decoded, err := registry.Decode(row.EventType, envelope.Version, envelope.Data)
	require.NoError(t, err)
	data, ok := decoded.(PaymentIntentEventV1)
	require.True(t, ok)
	assert.Equal(t, "pi_outbox_123", data.StripeIntentID)
	assert.Equal(t, int64(700), data.AmountTotalCents)
	assert.Equal(t, "succeeded", data.Status)
}

func TestEmitRequiresTransaction(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)

	err := svc.Emit(context.Background(), nil, domainEventFixture())
	require.Error(t, err)
}

func TestEmitIfNotExistsDeduplicates(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)
	event := domainEventFixture()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.EmitIfNotExists(context.Background(), tx, event); err != nil {
			return err
		}
		return svc.EmitIfNotExists(context.Background(), tx, event)
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFetchUnpublishedForPublishSkipsExhausted(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)

	fresh := domainEventFixture()
	exhausted := domainEventFixture()

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, fresh); err != nil {
			return err
		}
		return svc.Emit(context.Background(), tx, exhausted)
	}))

	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ?", exhausted.AggregateID).
		Update("attempt_count", 10).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		rows, err := repo.FetchUnpublishedForPublish(tx, 50, 10)
		if err != nil {
			return err
		}
		require.Len(t, rows, 1)
		assert.Equal(t, fresh.AggregateID, rows[0].AggregateID)
		return nil
	})
	require.NoError(t, err)
}

func TestMarkPublishedAndFailed(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, domainEventFixture())
	}))

	var row models.OutboxEvent
	require.NoError(t, db.First(&row).Error)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.MarkFailedTx(tx, row.ID, errors.New("topic unavailable"))
	}))
	require.NoError(t, db.First(&row, "id = ?", row.ID).Error)
	assert.Equal(t, 1, row.AttemptCount)
	require.NotNil(t, row.LastError)
	assert.Equal(t, "topic unavailable", *row.LastError)
	assert.Nil(t, row.PublishedAt)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.MarkPublishedTx(tx, row.ID)
	}))
	require.NoError(t, db.First(&row, "id = ?", row.ID).Error)
	assert.NotNil(t, row.PublishedAt)

	rows, err := repo.FetchUnpublished(50)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
