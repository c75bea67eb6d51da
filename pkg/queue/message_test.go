package queue

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishing(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	msg := Message{
		ID:      "0190-record-id",
		Subject: "placed",
		TypeTag: "order.placed",
		Body:    []byte(`{"a":1}`),
	}

	publishing, err := msg.publishing(now)
	require.NoError(t, err)

	assert.Equal(t, "0190-record-id", publishing.MessageId)
	assert.Equal(t, "0190-record-id", publishing.CorrelationId, "correlation id defaults to the message id")
	assert.Equal(t, "placed", publishing.Type)
	assert.Equal(t, "application/json", publishing.ContentType)
	assert.Equal(t, "order.placed", publishing.Headers[TypeTagHeader])
	assert.Equal(t, []byte(`{"a":1}`), publishing.Body)
	assert.Equal(t, uint8(amqp.Persistent), publishing.DeliveryMode)
	assert.Equal(t, now, publishing.Timestamp)
}

func TestPublishingOverrides(t *testing.T) {
	t.Parallel()

	msg := Message{
		ID:            "msg-1",
		CorrelationID: "corr-7",
		ContentType:   "application/msgpack",
		Headers:       map[string]any{"tenant": "acme"},
		Body:          []byte(`x`),
	}

	publishing, err := msg.publishing(time.Now())
	require.NoError(t, err)

	assert.Equal(t, "corr-7", publishing.CorrelationId)
	assert.Equal(t, "application/msgpack", publishing.ContentType)
	assert.Equal(t, "acme", publishing.Headers["tenant"])

	_, hasTag := publishing.Headers[TypeTagHeader]
	assert.False(t, hasTag, "no type tag header without a type tag")
}

func TestPublishingValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		msg     Message
		wantErr error
	}{
		{
			name:    "missing id",
			msg:     Message{Body: []byte(`x`)},
			wantErr: ErrMissingID,
		},
		{
			name:    "empty body",
			msg:     Message{ID: "msg-1"},
			wantErr: ErrEmptyBody,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.msg.publishing(time.Now())

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
