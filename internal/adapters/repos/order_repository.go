package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/architeacher/svc-order-outbox/internal/domain"
)

const ordersTable = "orders"

var orderColumns = []string{
	"id", "customer_id", "status", "amount_cents", "currency", "placed_at", "paid_at",
}

type (
	OrderRepository struct {
		conn *sqlx.DB
	}

	orderRow struct {
		ID          string     `db:"id"`
		CustomerID  string     `db:"customer_id"`
		Status      string     `db:"status"`
		AmountCents int64      `db:"amount_cents"`
		Currency    string     `db:"currency"`
		PlacedAt    time.Time  `db:"placed_at"`
		PaidAt      *time.Time `db:"paid_at"`
	}
)

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{
		conn: db,
	}
}

// Find loads an order outside any transaction.
func (r *OrderRepository) Find(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return findOrder(ctx, r.conn, orderID)
}

// FindTx loads an order within the caller's transaction, seeing its
// uncommitted writes.
func (r *OrderRepository) FindTx(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID) (*domain.Order, error) {
	return findOrder(ctx, tx, orderID)
}

// SaveTx upserts an order within the caller's transaction.
func (r *OrderRepository) SaveTx(ctx context.Context, tx *sqlx.Tx, order *domain.Order) error {
	query, args, err := psql.Insert(ordersTable).
		Columns(orderColumns...).
		Values(order.ID, order.CustomerID, order.Status, order.AmountCents, order.Currency, order.PlacedAt, order.PaidAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, paid_at = EXCLUDED.paid_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

func findOrder(ctx context.Context, q sqlx.QueryerContext, orderID uuid.UUID) (*domain.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From(ordersTable).
		Where(sq.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var row orderRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}

		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return convertRowToOrder(row)
}

func convertRowToOrder(row orderRow) (*domain.Order, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse id: %w", err)
	}

	customerID, err := uuid.Parse(row.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse customer_id: %w", err)
	}

	return &domain.Order{
		ID:          id,
		CustomerID:  customerID,
		Status:      domain.OrderStatus(row.Status),
		AmountCents: row.AmountCents,
		Currency:    row.Currency,
		PlacedAt:    row.PlacedAt,
		PaidAt:      row.PaidAt,
	}, nil
}
