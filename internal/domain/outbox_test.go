package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/svc-order-outbox/internal/domain"
)

func TestNewOutboxRecord(t *testing.T) {
	t.Parallel()

	occurredOn := time.Date(2026, 8, 24, 12, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	record, err := domain.NewOutboxRecord("order.placed", []byte(`{}`), occurredOn)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, "order.placed", record.TypeTag)
	assert.Equal(t, occurredOn.UTC(), record.OccurredOnUTC)
	assert.Equal(t, time.UTC, record.OccurredOnUTC.Location())
	assert.Zero(t, record.Attempts)
	assert.Nil(t, record.ProcessedOnUTC)
	assert.False(t, record.IsProcessed())
}

func TestOutboxRecordIDsAreTimeOrdered(t *testing.T) {
	t.Parallel()

	first, err := domain.NewOutboxRecord("order.placed", []byte(`{}`), time.Now())
	require.NoError(t, err)

	second, err := domain.NewOutboxRecord("order.placed", []byte(`{}`), time.Now())
	require.NoError(t, err)

	assert.Less(t, first.ID.String(), second.ID.String())
}

func TestMarkProcessedFirstCallWins(t *testing.T) {
	t.Parallel()

	record, err := domain.NewOutboxRecord("order.paid", []byte(`{}`), time.Now())
	require.NoError(t, err)

	record.RecordFailure("broker unavailable")

	firstProcessed := time.Date(2026, 8, 24, 13, 0, 0, 0, time.UTC)
	record.MarkProcessed(firstProcessed)

	assert.True(t, record.IsProcessed())
	assert.Equal(t, firstProcessed, *record.ProcessedOnUTC)
	assert.Nil(t, record.LastError)

	record.MarkProcessed(firstProcessed.Add(time.Hour))

	assert.Equal(t, firstProcessed, *record.ProcessedOnUTC)
}

func TestRecordFailure(t *testing.T) {
	t.Parallel()

	record, err := domain.NewOutboxRecord("order.placed", []byte(`{}`), time.Now())
	require.NoError(t, err)

	record.RecordFailure("connection refused")
	record.RecordFailure("timeout")

	assert.Equal(t, 2, record.Attempts)
	require.NotNil(t, record.LastError)
	assert.Equal(t, "timeout", *record.LastError)
}

func TestQuarantine(t *testing.T) {
	t.Parallel()

	const maxAttempts = 5

	record, err := domain.NewOutboxRecord("order.cancelled", []byte(`{}`), time.Now())
	require.NoError(t, err)

	record.RecordFailure("unknown event type")
	record.Quarantine(maxAttempts, "unknown event type")

	assert.Equal(t, maxAttempts, record.Attempts)
	assert.True(t, record.IsQuarantined(maxAttempts))
	assert.False(t, record.IsProcessed())
}
