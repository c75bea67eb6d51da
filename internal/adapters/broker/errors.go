package broker

import (
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/architeacher/svc-order-outbox/pkg/queue"
)

type (
	// PublishError wraps a failed publish with its classification. Permanent
	// failures are those a retry cannot fix, such as a missing exchange or
	// refused access; the relay quarantines records only when the attempt
	// ceiling is reached, so the classification drives logging and metrics,
	// not the retry decision.
	PublishError struct {
		Permanent bool
		Err       error
	}
)

func (e *PublishError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}

	return fmt.Sprintf("%s broker failure: %v", kind, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// IsPermanent reports whether err is a publish failure no retry can fix.
func IsPermanent(err error) bool {
	var publishErr *PublishError
	if errors.As(err, &publishErr) {
		return publishErr.Permanent
	}

	return false
}

// permanentAMQPCodes are reply codes the broker uses for structural problems
// rather than load or connectivity.
var permanentAMQPCodes = map[int]struct{}{
	amqp.AccessRefused:      {},
	amqp.NotFound:           {},
	amqp.NotAllowed:         {},
	amqp.PreconditionFailed: {},
}

func classify(err error) *PublishError {
	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		if _, ok := permanentAMQPCodes[amqpErr.Code]; ok {
			return &PublishError{Permanent: true, Err: err}
		}
	}

	// Malformed messages cannot become publishable by waiting.
	if errors.Is(err, queue.ErrMissingID) || errors.Is(err, queue.ErrEmptyBody) {
		return &PublishError{Permanent: true, Err: err}
	}

	return &PublishError{Permanent: false, Err: err}
}
