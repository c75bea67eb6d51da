package uow

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/architeacher/svc-order-outbox/internal/domain"
)

// The stores are thin views over the owning unit of work. Reads run against
// the open transaction so they observe writes already flushed by Save;
// writes are buffered and only hit the database on the next flush.
type (
	orderStore struct {
		u *unitOfWork
	}

	customerStore struct {
		u *unitOfWork
	}

	outboxStore struct {
		u *unitOfWork
	}
)

func (s *orderStore) Find(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	if s.u.tx == nil {
		return nil, ErrNoActiveTx
	}

	return s.u.orders.FindTx(ctx, s.u.tx, orderID)
}

func (s *orderStore) Save(order *domain.Order) {
	s.u.enqueue(func(ctx context.Context, tx *sqlx.Tx) error {
		return s.u.orders.SaveTx(ctx, tx, order)
	})
}

func (s *customerStore) Find(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	if s.u.tx == nil {
		return nil, ErrNoActiveTx
	}

	return s.u.customers.FindTx(ctx, s.u.tx, customerID)
}

func (s *customerStore) Save(customer *domain.Customer) {
	s.u.enqueue(func(ctx context.Context, tx *sqlx.Tx) error {
		return s.u.customers.SaveTx(ctx, tx, customer)
	})
}

func (s *outboxStore) Insert(record *domain.OutboxRecord) {
	s.u.enqueue(func(ctx context.Context, tx *sqlx.Tx) error {
		return s.u.outbox.InsertTx(ctx, tx, record)
	})
}
