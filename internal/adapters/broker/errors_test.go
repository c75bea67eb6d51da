package broker

import (
	"errors"
	"fmt"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/svc-order-outbox/pkg/queue"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           error
		wantPermanent bool
	}{
		{
			name:          "access refused is permanent",
			err:           &amqp.Error{Code: amqp.AccessRefused, Reason: "ACCESS_REFUSED"},
			wantPermanent: true,
		},
		{
			name:          "not found is permanent",
			err:           &amqp.Error{Code: amqp.NotFound, Reason: "NOT_FOUND"},
			wantPermanent: true,
		},
		{
			name:          "not allowed is permanent",
			err:           &amqp.Error{Code: amqp.NotAllowed, Reason: "NOT_ALLOWED"},
			wantPermanent: true,
		},
		{
			name:          "precondition failed is permanent",
			err:           &amqp.Error{Code: amqp.PreconditionFailed, Reason: "PRECONDITION_FAILED"},
			wantPermanent: true,
		},
		{
			name: "connection forced is transient",
			err:  &amqp.Error{Code: amqp.ConnectionForced, Reason: "CONNECTION_FORCED"},
		},
		{
			name: "frame error is transient",
			err:  &amqp.Error{Code: amqp.FrameError, Reason: "FRAME_ERROR"},
		},
		{
			name: "wrapped amqp error keeps its classification",
			err:  fmt.Errorf("publish: %w", &amqp.Error{Code: amqp.NotFound}),

			wantPermanent: true,
		},
		{
			name:          "missing message id is permanent",
			err:           queue.ErrMissingID,
			wantPermanent: true,
		},
		{
			name:          "empty body is permanent",
			err:           queue.ErrEmptyBody,
			wantPermanent: true,
		},
		{
			name: "plain error is transient",
			err:  errors.New("dial tcp: connection refused"),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			publishErr := classify(tt.err)

			assert.Equal(t, tt.wantPermanent, publishErr.Permanent)
			assert.ErrorIs(t, publishErr, tt.err)
			assert.Equal(t, tt.wantPermanent, IsPermanent(publishErr))
		})
	}
}

func TestIsPermanentOnUnclassifiedError(t *testing.T) {
	t.Parallel()

	assert.False(t, IsPermanent(errors.New("unclassified")))
	assert.False(t, IsPermanent(nil))
}

func TestPublishErrorMessage(t *testing.T) {
	t.Parallel()

	cause := errors.New("exchange missing")

	permanent := &PublishError{Permanent: true, Err: cause}
	transient := &PublishError{Permanent: false, Err: cause}

	assert.Contains(t, permanent.Error(), "permanent broker failure")
	assert.Contains(t, transient.Error(), "transient broker failure")

	require.ErrorIs(t, permanent, cause)
}
