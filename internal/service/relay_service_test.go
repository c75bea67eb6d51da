package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/svc-order-outbox/internal/config"
	"github.com/architeacher/svc-order-outbox/internal/domain"
	"github.com/architeacher/svc-order-outbox/internal/eventcodec"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/ports"
	"github.com/architeacher/svc-order-outbox/internal/service"
)

type (
	markFailedCall struct {
		recordID  uuid.UUID
		lastError string
		attempts  int
	}

	fakeOutboxRepo struct {
		records []*domain.OutboxRecord

		fetchLimit       int
		fetchMaxAttempts int

		processed        []uuid.UUID
		failed           []markFailedCall
		markProcessedErr error
	}

	fakePublisher struct {
		published []ports.OutboxMessage
		err       error
		onPublish func(msg ports.OutboxMessage)
	}
)

func (r *fakeOutboxRepo) FetchUnpublished(_ context.Context, limit, maxAttempts int) ([]*domain.OutboxRecord, error) {
	r.fetchLimit = limit
	r.fetchMaxAttempts = maxAttempts

	return r.records, nil
}

func (r *fakeOutboxRepo) FetchQuarantined(_ context.Context, limit, maxAttempts int) ([]*domain.OutboxRecord, error) {
	r.fetchLimit = limit
	r.fetchMaxAttempts = maxAttempts

	return r.records, nil
}

func (r *fakeOutboxRepo) MarkProcessed(_ context.Context, recordID uuid.UUID, _ time.Time) error {
	if r.markProcessedErr != nil {
		return r.markProcessedErr
	}

	r.processed = append(r.processed, recordID)

	return nil
}

func (r *fakeOutboxRepo) MarkFailed(_ context.Context, recordID uuid.UUID, lastError string, attempts int) error {
	r.failed = append(r.failed, markFailedCall{
		recordID:  recordID,
		lastError: lastError,
		attempts:  attempts,
	})

	return nil
}

func (p *fakePublisher) Publish(_ context.Context, msg ports.OutboxMessage) error {
	if p.onPublish != nil {
		p.onPublish(msg)
	}

	if p.err != nil {
		return p.err
	}

	p.published = append(p.published, msg)

	return nil
}

func outboxConfig() config.OutboxConfig {
	return config.OutboxConfig{
		PollInterval: 10 * time.Second,
		BatchSize:    20,
		MaxAttempts:  5,
	}
}

func newRelayService(repo *fakeOutboxRepo, publisher *fakePublisher) service.RelayService {
	return service.NewRelayService(
		repo,
		publisher,
		eventcodec.DefaultRegistry(),
		outboxConfig(),
		nil,
		infrastructure.NewNop(),
		&infrastructure.NoOpMetrics{},
	)
}

func placedRecord(t *testing.T, occurredOn time.Time) *domain.OutboxRecord {
	t.Helper()

	payload := []byte(`{"order_id":"` + uuid.NewString() + `","customer_id":"` + uuid.NewString() +
		`","amount_cents":1999,"currency":"EUR","placed_at":"2026-08-24T10:00:00Z"}`)

	record, err := domain.NewOutboxRecord("order.placed", payload, occurredOn)
	require.NoError(t, err)

	return record
}

func TestProcessCyclePublishesBatchInOrder(t *testing.T) {
	t.Parallel()

	now := time.Now()
	first := placedRecord(t, now)
	second := placedRecord(t, now.Add(time.Second))

	repo := &fakeOutboxRepo{records: []*domain.OutboxRecord{first, second}}
	publisher := &fakePublisher{}
	svc := newRelayService(repo, publisher)

	result, err := svc.ProcessCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.RelayCycleResult{Fetched: 2, Published: 2}, result)
	assert.Equal(t, 20, repo.fetchLimit)
	assert.Equal(t, 5, repo.fetchMaxAttempts)

	require.Len(t, publisher.published, 2)
	assert.Equal(t, first.ID, publisher.published[0].ID)
	assert.Equal(t, domain.EventTypeOrderPlaced, publisher.published[0].TypeTag)
	assert.Equal(t, first.Payload, publisher.published[0].Payload)

	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, repo.processed)
	assert.Empty(t, repo.failed)
}

func TestProcessCycleBooksFailedAttempt(t *testing.T) {
	t.Parallel()

	record := placedRecord(t, time.Now())

	repo := &fakeOutboxRepo{records: []*domain.OutboxRecord{record}}
	publisher := &fakePublisher{err: errors.New("broker unavailable")}
	svc := newRelayService(repo, publisher)

	result, err := svc.ProcessCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.RelayCycleResult{Fetched: 1, Failed: 1}, result)
	assert.Empty(t, repo.processed)

	require.Len(t, repo.failed, 1)
	assert.Equal(t, record.ID, repo.failed[0].recordID)
	assert.Equal(t, "broker unavailable", repo.failed[0].lastError)
	assert.Equal(t, 1, repo.failed[0].attempts)
}

func TestProcessCycleRetriesNextCycleUnderSameMessageID(t *testing.T) {
	t.Parallel()

	record := placedRecord(t, time.Now())

	repo := &fakeOutboxRepo{records: []*domain.OutboxRecord{record}}
	publisher := &fakePublisher{err: errors.New("broker unavailable")}
	svc := newRelayService(repo, publisher)

	attempts := make([]uuid.UUID, 0, 2)
	publisher.onPublish = func(msg ports.OutboxMessage) {
		attempts = append(attempts, msg.ID)
	}

	_, err := svc.ProcessCycle(context.Background())
	require.NoError(t, err)

	publisher.err = nil

	result, err := svc.ProcessCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.RelayCycleResult{Fetched: 1, Published: 1}, result)
	assert.Equal(t, 1, record.Attempts, "only the failed attempt is booked")
	assert.Equal(t, []uuid.UUID{record.ID, record.ID}, attempts, "retries reuse the record id as message id")
	assert.Equal(t, []uuid.UUID{record.ID}, repo.processed)
}

func TestProcessCycleFailingRecordDoesNotBlockTheRest(t *testing.T) {
	t.Parallel()

	now := time.Now()
	failing := placedRecord(t, now)
	healthy := placedRecord(t, now.Add(time.Second))

	repo := &fakeOutboxRepo{records: []*domain.OutboxRecord{failing, healthy}}
	publisher := &fakePublisher{}
	publisher.onPublish = func(msg ports.OutboxMessage) {
		if msg.ID == failing.ID {
			publisher.err = errors.New("broker unavailable")

			return
		}

		publisher.err = nil
	}

	svc := newRelayService(repo, publisher)

	result, err := svc.ProcessCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.RelayCycleResult{Fetched: 2, Published: 1, Failed: 1}, result)
	assert.Equal(t, []uuid.UUID{healthy.ID}, repo.processed)
}

func TestProcessCycleQuarantinesUnknownType(t *testing.T) {
	t.Parallel()

	record, err := domain.NewOutboxRecord("order.cancelled", []byte(`{}`), time.Now())
	require.NoError(t, err)

	repo := &fakeOutboxRepo{records: []*domain.OutboxRecord{record}}
	publisher := &fakePublisher{}
	svc := newRelayService(repo, publisher)

	result, err := svc.ProcessCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.RelayCycleResult{Fetched: 1, Quarantined: 1}, result)
	assert.Empty(t, publisher.published, "an undecodable record must never reach the broker")

	require.Len(t, repo.failed, 1)
	assert.Equal(t, 5, repo.failed[0].attempts)
	assert.Contains(t, repo.failed[0].lastError, "unknown event type")
}

func TestProcessCycleQuarantinesMalformedPayload(t *testing.T) {
	t.Parallel()

	record, err := domain.NewOutboxRecord("order.placed", []byte(`{"order_id": 12}`), time.Now())
	require.NoError(t, err)

	repo := &fakeOutboxRepo{records: []*domain.OutboxRecord{record}}
	publisher := &fakePublisher{}
	svc := newRelayService(repo, publisher)

	result, err := svc.ProcessCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.RelayCycleResult{Fetched: 1, Quarantined: 1}, result)
	assert.Empty(t, publisher.published)

	require.Len(t, repo.failed, 1)
	assert.Equal(t, 5, repo.failed[0].attempts)
}

func TestProcessCycleExhaustedRecordCountsAsQuarantined(t *testing.T) {
	t.Parallel()

	record := placedRecord(t, time.Now())

	for i := 0; i < 4; i++ {
		record.RecordFailure("broker unavailable")
	}

	repo := &fakeOutboxRepo{records: []*domain.OutboxRecord{record}}
	publisher := &fakePublisher{err: errors.New("broker unavailable")}
	svc := newRelayService(repo, publisher)

	result, err := svc.ProcessCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.RelayCycleResult{Fetched: 1, Quarantined: 1}, result)

	require.Len(t, repo.failed, 1)
	assert.Equal(t, 5, repo.failed[0].attempts)
}

func TestProcessCycleStopsBetweenRecordsOnCancellation(t *testing.T) {
	t.Parallel()

	now := time.Now()
	first := placedRecord(t, now)
	second := placedRecord(t, now.Add(time.Second))

	ctx, cancel := context.WithCancel(context.Background())

	repo := &fakeOutboxRepo{records: []*domain.OutboxRecord{first, second}}
	publisher := &fakePublisher{}
	publisher.onPublish = func(ports.OutboxMessage) { cancel() }

	svc := newRelayService(repo, publisher)

	result, err := svc.ProcessCycle(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.RelayCycleResult{Fetched: 2, Published: 1}, result)
	assert.Equal(t, []uuid.UUID{first.ID}, repo.processed)
}

func TestProcessCycleFailedMarkLeavesRecordForRedelivery(t *testing.T) {
	t.Parallel()

	record := placedRecord(t, time.Now())

	repo := &fakeOutboxRepo{
		records:          []*domain.OutboxRecord{record},
		markProcessedErr: errors.New("pool exhausted"),
	}
	publisher := &fakePublisher{}
	svc := newRelayService(repo, publisher)

	result, err := svc.ProcessCycle(context.Background())
	require.NoError(t, err)

	// The message went out but the confirmation did not land. The record
	// stays unpublished and will be republished under the same message id.
	assert.Equal(t, domain.RelayCycleResult{Fetched: 1, Failed: 1}, result)
	require.Len(t, publisher.published, 1)
	assert.Empty(t, repo.processed)
	assert.Empty(t, repo.failed)
}

func TestFetchQuarantined(t *testing.T) {
	t.Parallel()

	record := placedRecord(t, time.Now())
	record.Quarantine(5, "unknown event type")

	repo := &fakeOutboxRepo{records: []*domain.OutboxRecord{record}}
	svc := newRelayService(repo, &fakePublisher{})

	records, err := svc.FetchQuarantined(context.Background(), 50)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, 50, repo.fetchLimit)
	assert.Equal(t, 5, repo.fetchMaxAttempts)
}
