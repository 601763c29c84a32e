package main

import (
	"context"
	"errors"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/martinezjavi/ridepay-backend/pkg/config"
	"github.com/martinezjavi/ridepay-backend/pkg/db/models"
	"github.com/martinezjavi/ridepay-backend/pkg/enums"
	"github.com/martinezjavi/ridepay-backend/pkg/logger"
)

type dbFake struct{}

func (dbFake) Ping(context.Context) error { return nil }

func (dbFake) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type pubSubFake struct{}

func (pubSubFake) Ping(context.Context) error { return nil }

func (pubSubFake) Publisher(name string) *gcppubsub.Publisher { return nil }

type repoFake struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	fetchErr  error
}

func (r *repoFake) FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	if limit > len(r.events) {
		limit = len(r.events)
	}
	batch := r.events[:limit]
	r.events = r.events[limit:]
	return batch, nil
}

func (r *repoFake) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	r.published = append(r.published, id)
	return nil
}

func (r *repoFake) MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error {
	r.failed = append(r.failed, id)
	return nil
}

type resultFake struct {
	err error
}

func (r resultFake) Get(context.Context) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "server-id", nil
}

type publisherFake struct {
	messages   []*gcppubsub.Message
	publishErr error
}

func (p *publisherFake) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	p.messages = append(p.messages, msg)
	return resultFake{err: p.publishErr}
}

func publisherTestConfig() *config.Config {
	return &config.Config{
		PubSub: config.PubSubConfig{PaymentsTopic: "ridepay-payment-events"},
		Outbox: config.OutboxConfig{
			BatchSize:      10,
			PollIntervalMS: 10,
			MaxAttempts:    3,
		},
	}
}

func outboxEventFixture() models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.OutboxEventPaymentIntentCaptured,
		AggregateType: enums.OutboxAggregatePaymentIntent,
		AggregateID:   uuid.New(),
		Payload:       []byte(`{"version":1}`),
	}
}

func publisherFixture(t *testing.T, repo *repoFake, pub *publisherFake) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:     publisherTestConfig(),
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         dbFake{},
		PubSub:     pubSubFake{},
		Repository: repo,
		PublisherFactory: func(topic string) publisher {
			return pub
		},
	})
	require.NoError(t, err)
	return svc
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	first := outboxEventFixture()
	second := outboxEventFixture()
	repo := &repoFake{events: []models.OutboxEvent{first, second}}
	pub := &publisherFake{}
	svc := publisherFixture(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, repo.published)
	assert.Empty(t, repo.failed)

	require.Len(t, pub.messages, 2)
	msg := pub.messages[0]
	assert.Equal(t, []byte(`{"version":1}`), msg.Data)
	assert.Equal(t, string(enums.OutboxEventPaymentIntentCaptured), msg.Attributes["event_type"])
	assert.Equal(t, string(enums.OutboxAggregatePaymentIntent), msg.Attributes["aggregate_type"])
	assert.Equal(t, first.AggregateID.String(), msg.Attributes["aggregate_id"])
}

func TestProcessBatchMarksFailedOnPublishError(t *testing.T) {
	event := outboxEventFixture()
	repo := &repoFake{events: []models.OutboxEvent{event}}
	pub := &publisherFake{publishErr: errors.New("topic unavailable")}
	svc := publisherFixture(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Empty(t, repo.published)
	assert.Equal(t, []uuid.UUID{event.ID}, repo.failed)
}

func TestProcessBatchEmptyQueue(t *testing.T) {
	repo := &repoFake{}
	svc := publisherFixture(t, repo, &publisherFake{})

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessBatchPropagatesFetchError(t *testing.T) {
	repo := &repoFake{fetchErr: errors.New("relation missing")}
	svc := publisherFixture(t, repo, &publisherFake{})

	_, err := svc.processBatch(context.Background())
	require.Error(t, err)
}

func TestNewServiceAppliesDefaults(t *testing.T) {
	svc, err := NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         dbFake{},
		PubSub:     pubSubFake{},
		Repository: &repoFake{},
	})
	require.NoError(t, err)
	assert.Equal(t, defaultBatchSize, svc.batchSize)
	assert.Equal(t, defaultMaxAttempts, svc.maxAttempts)
	assert.Equal(t, time.Duration(defaultPollMs)*time.Millisecond, svc.pollInterval)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestNextBackoffCapsAtMax(t *testing.T) {
	base := 500 * time.Millisecond
	backoff := nextBackoff(base, base, maxBackoff)
	assert.Equal(t, time.Second, backoff)

	for i := 0; i < 10; i++ {
		backoff = nextBackoff(backoff, base, maxBackoff)
	}
	assert.Equal(t, maxBackoff, backoff)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &repoFake{}
	svc := publisherFixture(t, repo, &publisherFake{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := svc.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
