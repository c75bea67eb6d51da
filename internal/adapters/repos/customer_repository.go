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

const customersTable = "customers"

var customerColumns = []string{
	"id", "email", "full_name", "registered_at",
}

type (
	CustomerRepository struct {
		conn *sqlx.DB
	}

	customerRow struct {
		ID           string    `db:"id"`
		Email        string    `db:"email"`
		FullName     string    `db:"full_name"`
		RegisteredAt time.Time `db:"registered_at"`
	}
)

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{
		conn: db,
	}
}

func (r *CustomerRepository) Find(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	return findCustomer(ctx, r.conn, customerID)
}

func (r *CustomerRepository) FindTx(ctx context.Context, tx *sqlx.Tx, customerID uuid.UUID) (*domain.Customer, error) {
	return findCustomer(ctx, tx, customerID)
}

// SaveTx upserts a customer within the caller's transaction.
func (r *CustomerRepository) SaveTx(ctx context.Context, tx *sqlx.Tx, customer *domain.Customer) error {
	query, args, err := psql.Insert(customersTable).
		Columns(customerColumns...).
		Values(customer.ID, customer.Email, customer.FullName, customer.RegisteredAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, full_name = EXCLUDED.full_name").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}

	return nil
}

func findCustomer(ctx context.Context, q sqlx.QueryerContext, customerID uuid.UUID) (*domain.Customer, error) {
	query, args, err := psql.Select(customerColumns...).
		From(customersTable).
		Where(sq.Eq{"id": customerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var row customerRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}

		return nil, fmt.Errorf("failed to query customer: %w", err)
	}

	return convertRowToCustomer(row)
}

func convertRowToCustomer(row customerRow) (*domain.Customer, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse id: %w", err)
	}

	return &domain.Customer{
		ID:           id,
		Email:        row.Email,
		FullName:     row.FullName,
		RegisteredAt: row.RegisteredAt,
	}, nil
}
