package queue

import (
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// TypeTagHeader carries the full schema name of the event so consumers can
// dispatch without parsing the body.
const TypeTagHeader = "event_type_full_name"

const defaultContentType = "application/json"

var (
	// ErrMissingID describes a message published without a message id.
	ErrMissingID = errors.New("message id is required")

	// ErrEmptyBody describes a message published without a body.
	ErrEmptyBody = errors.New("message body is required")
)

// Message represents a single identified message to be published. ID becomes
// the broker-level message id (and, unless overridden, the correlation id),
// which is what makes consumer-side deduplication possible.
type Message struct {
	ID            string
	CorrelationID string
	Subject       string
	TypeTag       string
	ContentType   string
	Headers       map[string]any
	Body          []byte
}

func (m Message) publishing(now time.Time) (amqp.Publishing, error) {
	if m.ID == "" {
		return amqp.Publishing{}, ErrMissingID
	}

	if len(m.Body) == 0 {
		return amqp.Publishing{}, ErrEmptyBody
	}

	correlationID := m.CorrelationID
	if correlationID == "" {
		correlationID = m.ID
	}

	contentType := m.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	headers := amqp.Table{}
	for key, value := range m.Headers {
		headers[key] = value
	}

	if m.TypeTag != "" {
		headers[TypeTagHeader] = m.TypeTag
	}

	return amqp.Publishing{
		MessageId:     m.ID,
		CorrelationId: correlationID,
		Type:          m.Subject,
		ContentType:   contentType,
		Headers:       headers,
		Body:          m.Body,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     now,
	}, nil
}
