package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/architeacher/svc-order-outbox/internal/domain"
)

type (
	// UnitOfWork scopes one database transaction and the in-transaction
	// stores that participate in it. Writes issued through the stores are
	// buffered until Save flushes them; nothing is durable before Commit.
	UnitOfWork interface {
		// Begin starts the transaction. Fails if one is already active on
		// this handle.
		Begin(ctx context.Context) error

		// Save flushes buffered writes to the database without committing.
		// Transient faults restart the transaction and replay the buffer,
		// bounded by the configured retry count.
		Save(ctx context.Context) error

		// Commit commits the active transaction. A failed commit triggers a
		// best-effort rollback and surfaces the commit error.
		Commit(ctx context.Context) error

		// Rollback is best-effort and never surfaces an error; failures are
		// logged. Safe to defer unconditionally after a commit.
		Rollback(ctx context.Context)

		Orders() OrderStore
		Customers() CustomerStore
		Outbox() OutboxStore
	}

	// UnitOfWorkFactory hands out fresh, isolated unit of work instances.
	// Each business operation and each relay cycle gets its own.
	UnitOfWorkFactory interface {
		New() UnitOfWork
	}

	// OrderStore is the in-transaction view of the orders table.
	OrderStore interface {
		Find(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
		Save(order *domain.Order)
	}

	CustomerStore interface {
		Find(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error)
		Save(customer *domain.Customer)
	}

	// OutboxStore appends records inside the enclosing transaction so a
	// record exists iff the domain mutation it describes was persisted.
	OutboxStore interface {
		Insert(record *domain.OutboxRecord)
	}
)
