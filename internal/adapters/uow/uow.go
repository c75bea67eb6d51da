package uow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/architeacher/svc-order-outbox/internal/adapters/repos"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/ports"
	"github.com/architeacher/svc-order-outbox/internal/shared/backoff"
)

type (
	// operation is one buffered write, replayable against a fresh transaction.
	operation func(ctx context.Context, tx *sqlx.Tx) error

	// Factory hands out isolated unit of work handles sharing one pool and
	// one retry policy.
	Factory struct {
		db        *sqlx.DB
		orders    *repos.OrderRepository
		customers *repos.CustomerRepository
		outbox    *repos.OutboxRepository

		strategy   backoff.Strategy
		retryCount int
		logger     infrastructure.Logger
	}

	// unitOfWork buffers writes as replayable closures. Save applies the
	// buffer to the open transaction; a transient fault rolls the transaction
	// back, waits, and replays the whole buffer on a fresh one. Closures must
	// therefore be safe to run more than once, which holds for the upsert and
	// insert statements the stores issue.
	unitOfWork struct {
		db        *sqlx.DB
		orders    *repos.OrderRepository
		customers *repos.CustomerRepository
		outbox    *repos.OutboxRepository

		strategy   backoff.Strategy
		retryCount int
		logger     infrastructure.Logger

		tx      *sqlx.Tx
		pending []operation
		applied int
	}
)

func NewFactory(
	db *sqlx.DB,
	orders *repos.OrderRepository,
	customers *repos.CustomerRepository,
	outbox *repos.OutboxRepository,
	strategy backoff.Strategy,
	retryCount int,
	logger infrastructure.Logger,
) *Factory {
	return &Factory{
		db:         db,
		orders:     orders,
		customers:  customers,
		outbox:     outbox,
		strategy:   strategy,
		retryCount: retryCount,
		logger:     logger,
	}
}

func (f *Factory) New() ports.UnitOfWork {
	return &unitOfWork{
		db:         f.db,
		orders:     f.orders,
		customers:  f.customers,
		outbox:     f.outbox,
		strategy:   f.strategy,
		retryCount: f.retryCount,
		logger:     f.logger,
	}
}

// Begin opens the transaction immediately so in-transaction reads are
// possible before the first flush.
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTxAlreadyActive
	}

	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.applied = 0

	return nil
}

// Save flushes buffered writes to the open transaction without committing.
// On a transient fault the transaction is rolled back and the whole buffer
// replayed on a fresh one, bounded by the configured retry count.
func (u *unitOfWork) Save(ctx context.Context) error {
	if u.tx == nil {
		return ErrNoActiveTx
	}

	err := u.apply(ctx)
	if err == nil {
		return nil
	}

	for retry := 0; retry < u.retryCount && isTransient(err); retry++ {
		u.logger.Warn().
			Err(err).
			Int("retry", retry+1).
			Msg("transient storage fault, replaying unit of work")

		u.discardTx()

		if waitErr := u.wait(ctx, retry); waitErr != nil {
			return waitErr
		}

		tx, beginErr := u.db.BeginTxx(ctx, nil)
		if beginErr != nil {
			return fmt.Errorf("failed to begin replacement transaction: %w", beginErr)
		}

		u.tx = tx
		u.applied = 0

		err = u.apply(ctx)
		if err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to save unit of work: %w", err)
}

// Commit flushes anything still buffered, then commits. A failed commit is
// rolled back best-effort and the commit error surfaced; commits are never
// retried because their outcome is ambiguous.
func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return ErrNoActiveTx
	}

	if err := u.Save(ctx); err != nil {
		return err
	}

	if err := u.tx.Commit(); err != nil {
		u.discardTx()

		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.reset()

	return nil
}

// Rollback discards the transaction and the buffer. Best-effort: a rollback
// failure is logged, never surfaced, so it is safe to defer unconditionally.
func (u *unitOfWork) Rollback(ctx context.Context) {
	if u.tx == nil {
		return
	}

	u.discardTx()
	u.reset()
}

func (u *unitOfWork) Orders() ports.OrderStore {
	return &orderStore{u: u}
}

func (u *unitOfWork) Customers() ports.CustomerStore {
	return &customerStore{u: u}
}

func (u *unitOfWork) Outbox() ports.OutboxStore {
	return &outboxStore{u: u}
}

func (u *unitOfWork) enqueue(op operation) {
	u.pending = append(u.pending, op)
}

// apply runs the not-yet-applied tail of the buffer against the open
// transaction.
func (u *unitOfWork) apply(ctx context.Context) error {
	for u.applied < len(u.pending) {
		if err := u.pending[u.applied](ctx, u.tx); err != nil {
			return err
		}

		u.applied++
	}

	return nil
}

func (u *unitOfWork) wait(ctx context.Context, retry int) error {
	timer := time.NewTimer(u.strategy.Backoff(retry))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (u *unitOfWork) discardTx() {
	if u.tx == nil {
		return
	}

	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		u.logger.Warn().Err(err).Msg("failed to roll back transaction")
	}

	u.tx = nil
}

func (u *unitOfWork) reset() {
	u.tx = nil
	u.pending = nil
	u.applied = 0
}
