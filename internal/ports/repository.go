package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/architeacher/svc-order-outbox/internal/domain"
)

type (
	// OutboxRepository is the relay-side view of the outbox table. Insert
	// happens only through a unit of work; everything here runs against the
	// shared pool so one record's update cannot be lost because of
	// another's.
	OutboxRepository interface {
		// FetchUnpublished returns up to limit unpublished records with
		// attempts below the ceiling, ordered by occurred_on_utc, ties
		// broken by id. Ordering is a preference, not a guarantee across
		// concurrent relays.
		FetchUnpublished(ctx context.Context, limit, maxAttempts int) ([]*domain.OutboxRecord, error)

		// FetchQuarantined lists terminally failed records kept for
		// inspection and later archival.
		FetchQuarantined(ctx context.Context, limit, maxAttempts int) ([]*domain.OutboxRecord, error)

		// MarkProcessed confirms publication. Idempotent: only the first
		// call sets processed_on_utc.
		MarkProcessed(ctx context.Context, recordID uuid.UUID, processedOn time.Time) error

		// MarkFailed stores the outcome of a failed publish attempt.
		MarkFailed(ctx context.Context, recordID uuid.UUID, lastError string, attempts int) error
	}

	// OrderRepository is the read-side view of orders, outside any
	// transaction.
	OrderRepository interface {
		Find(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	}

	CustomerRepository interface {
		Find(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error)
	}
)
