package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/architeacher/svc-order-outbox/internal/domain"
)

type (
	// OutboxMessage is the wire-level view of a record handed to the broker
	// adapter: a stable id, the schema tag, and the already-encoded body.
	OutboxMessage struct {
		ID      uuid.UUID
		TypeTag domain.EventTypeTag
		Payload []byte
	}

	// Publisher sends a single, identified message to the broker. Safe for
	// concurrent use. Transient and permanent broker faults are
	// distinguishable via broker.IsPermanent.
	Publisher interface {
		Publish(ctx context.Context, msg OutboxMessage) error
	}
)
