package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewpromax/reviewpromax-backend/pkg/config"
	"github.com/reviewpromax/reviewpromax-backend/pkg/db/models"
	"github.com/reviewpromax/reviewpromax-backend/pkg/enums"
	"github.com/reviewpromax/reviewpromax-backend/pkg/logger"
	"github.com/reviewpromax/reviewpromax-backend/pkg/outbox"
)

type fakeRepo struct {
	events    []models.OutboxEvent
	fetchErr  error
	published []uuid.UUID
	failed    []uuid.UUID
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if limit < len(f.events) {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakePublisher struct {
	err      error
	messages []*gcppubsub.Message
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	return fakeResult{err: f.err}
}

type fakeResult struct {
	err error
}

func (f fakeResult) Get(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "server-id", nil
}

type fakePingable struct{ err error }

func (f fakePingable) Ping(context.Context) error { return f.err }

type fakePubSub struct{ fakePingable }

func (fakePubSub) DomainPublisher() *gcppubsub.Publisher { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func newTestService(t *testing.T, repo *fakeRepo, pub *fakePublisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     testLogger(),
		DB:         fakePingable{},
		PubSub:     fakePubSub{},
		Repository: repo,
		Publisher:  pub,
	})
	require.NoError(t, err)
	return svc
}

func outboxEvent(t *testing.T) models.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{}`),
	})
	require.NoError(t, err)
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventBookStatusChanged,
		AggregateType: enums.AggregateBook,
		AggregateID:   uuid.New(),
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestProcessBatch_PublishesAndMarks(t *testing.T) {
	event := outboxEvent(t)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	require.Len(t, pub.messages, 1)
	msg := pub.messages[0]
	assert.Equal(t, string(enums.EventBookStatusChanged), msg.Attributes["event_type"])
	assert.Equal(t, event.AggregateID.String(), msg.Attributes["aggregate_id"])
	assert.NotEmpty(t, msg.Attributes["event_id"])

	require.Len(t, repo.published, 1)
	assert.Equal(t, event.ID, repo.published[0])
	assert.Empty(t, repo.failed)
}

func TestProcessBatch_MarksFailureAndContinues(t *testing.T) {
	first := outboxEvent(t)
	second := outboxEvent(t)
	repo := &fakeRepo{events: []models.OutboxEvent{first, second}}
	pub := &fakePublisher{err: errors.New("publish blew up")}
	svc := newTestService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	assert.Len(t, repo.failed, 2)
	assert.Empty(t, repo.published)
}

func TestProcessBatch_EmptyBatch(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, &fakePublisher{})

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessBatch_FetchError(t *testing.T) {
	repo := &fakeRepo{fetchErr: errors.New("db down")}
	svc := newTestService(t, repo, &fakePublisher{})

	_, err := svc.processBatch(context.Background())
	require.Error(t, err)
}
