// Package eventcodec maps typed domain events to their on-wire
// representation. Every schema is registered explicitly under its type tag
// at startup; unknown tags are a first-class, permanent error.
package eventcodec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/architeacher/svc-order-outbox/internal/domain"
)

var (
	// ErrUnknownType means the tag has no registered schema. Records
	// carrying such tags are quarantined, never retried.
	ErrUnknownType = errors.New("unknown event type")

	// ErrMalformed means the payload does not parse as the registered
	// schema. Treated the same as ErrUnknownType.
	ErrMalformed = errors.New("malformed event payload")

	// ErrUnregisteredEvent means an aggregate emitted an event value the
	// registry has never seen. This is a programming error on the enqueue
	// path and surfaces immediately.
	ErrUnregisteredEvent = errors.New("event value has no registered schema")
)

type (
	decodeFunc func(payload []byte) (domain.DomainEvent, error)

	// Registry holds the known event schemas. Safe for concurrent reads
	// after registration is done; register everything during startup.
	Registry struct {
		decoders map[domain.EventTypeTag]decodeFunc
	}
)

func NewRegistry() *Registry {
	return &Registry{
		decoders: make(map[domain.EventTypeTag]decodeFunc),
	}
}

// Register binds a decoder to a type tag, replacing any previous binding.
func Register[T domain.DomainEvent](r *Registry) {
	var zero T

	r.decoders[zero.TypeTag()] = func(payload []byte) (domain.DomainEvent, error) {
		var event T
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("%w: decoding %q: %v", ErrMalformed, zero.TypeTag(), err)
		}

		return event, nil
	}
}

// Encode converts an event value into its (type tag, payload) pair. The tag
// is deterministic per schema and the payload round-trips through Decode.
func (r *Registry) Encode(event domain.DomainEvent) (domain.EventTypeTag, []byte, error) {
	tag := event.TypeTag()
	if _, ok := r.decoders[tag]; !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnregisteredEvent, tag)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode event %q: %w", tag, err)
	}

	return tag, payload, nil
}

// Decode parses a payload according to the schema registered for the tag.
func (r *Registry) Decode(tag domain.EventTypeTag, payload []byte) (domain.DomainEvent, error) {
	decode, ok := r.decoders[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}

	return decode(payload)
}

// Known reports whether the tag has a registered schema.
func (r *Registry) Known(tag domain.EventTypeTag) bool {
	_, ok := r.decoders[tag]

	return ok
}

// DefaultRegistry returns a registry with every event schema of the order
// domain registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	Register[domain.CustomerRegistered](r)
	Register[domain.OrderPlaced](r)
	Register[domain.OrderPaid](r)

	return r
}
