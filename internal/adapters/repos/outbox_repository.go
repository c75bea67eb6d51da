package repos

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/architeacher/svc-order-outbox/internal/domain"
)

const outboxRecordsTable = "outbox_records"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var outboxColumns = []string{
	"id", "type_tag", "payload", "occurred_on_utc", "processed_on_utc", "attempts", "last_error",
}

type (
	// OutboxRepository reads and updates outbox records on the shared pool.
	// Inserts go through InsertTx so a record only exists together with the
	// domain mutation that produced it.
	OutboxRepository struct {
		conn *sqlx.DB
	}

	outboxRecordRow struct {
		ID             string     `db:"id"`
		TypeTag        string     `db:"type_tag"`
		Payload        []byte     `db:"payload"`
		OccurredOnUTC  time.Time  `db:"occurred_on_utc"`
		ProcessedOnUTC *time.Time `db:"processed_on_utc"`
		Attempts       int        `db:"attempts"`
		LastError      *string    `db:"last_error"`
	}
)

func NewOutboxRepository(db *sqlx.DB) *OutboxRepository {
	return &OutboxRepository{
		conn: db,
	}
}

// InsertTx appends a record within the caller's transaction.
func (r *OutboxRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, record *domain.OutboxRecord) error {
	query, args, err := psql.Insert(outboxRecordsTable).
		Columns("id", "type_tag", "payload", "occurred_on_utc", "attempts").
		Values(record.ID, record.TypeTag, record.Payload, record.OccurredOnUTC, record.Attempts).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert outbox record: %w", err)
	}

	return nil
}

// FetchUnpublished returns up to limit unpublished records whose attempts are
// below the quarantine ceiling, oldest occurrence first, ids breaking ties.
func (r *OutboxRepository) FetchUnpublished(ctx context.Context, limit, maxAttempts int) ([]*domain.OutboxRecord, error) {
	return r.findByCriteria(
		ctx,
		sq.And{
			sq.Eq{"processed_on_utc": nil},
			sq.Lt{"attempts": maxAttempts},
		},
		limit,
		"unpublished outbox records",
	)
}

// FetchQuarantined lists terminally failed records kept for inspection.
func (r *OutboxRepository) FetchQuarantined(ctx context.Context, limit, maxAttempts int) ([]*domain.OutboxRecord, error) {
	return r.findByCriteria(
		ctx,
		sq.And{
			sq.Eq{"processed_on_utc": nil},
			sq.GtOrEq{"attempts": maxAttempts},
		},
		limit,
		"quarantined outbox records",
	)
}

func (r *OutboxRepository) findByCriteria(
	ctx context.Context,
	criteria sq.Sqlizer,
	limit int,
	errorContext string,
) ([]*domain.OutboxRecord, error) {
	query, args, err := psql.Select(outboxColumns...).
		From(outboxRecordsTable).
		Where(criteria).
		OrderBy("occurred_on_utc ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var rows []outboxRecordRow
	if err := r.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", errorContext, err)
	}

	records := make([]*domain.OutboxRecord, 0, len(rows))
	for _, row := range rows {
		record, err := convertRowToRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// MarkProcessed confirms publication. The processed_on_utc guard makes the
// call idempotent: only the first confirmation sets the timestamp, and it
// also clears last_error left over from earlier attempts.
func (r *OutboxRepository) MarkProcessed(ctx context.Context, recordID uuid.UUID, processedOn time.Time) error {
	query, args, err := psql.Update(outboxRecordsTable).
		Set("processed_on_utc", processedOn.UTC()).
		Set("last_error", nil).
		Where(sq.And{
			sq.Eq{"id": recordID},
			sq.Eq{"processed_on_utc": nil},
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark record as processed: %w", err)
	}

	return nil
}

// MarkFailed stores the outcome of a failed publish attempt.
func (r *OutboxRepository) MarkFailed(ctx context.Context, recordID uuid.UUID, lastError string, attempts int) error {
	query, args, err := psql.Update(outboxRecordsTable).
		Set("attempts", attempts).
		Set("last_error", lastError).
		Where(sq.Eq{"id": recordID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark record as failed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("outbox record not found: %s", recordID)
	}

	return nil
}

func convertRowToRecord(row outboxRecordRow) (*domain.OutboxRecord, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse id: %w", err)
	}

	return &domain.OutboxRecord{
		ID:             id,
		TypeTag:        row.TypeTag,
		Payload:        row.Payload,
		OccurredOnUTC:  row.OccurredOnUTC,
		ProcessedOnUTC: row.ProcessedOnUTC,
		Attempts:       row.Attempts,
		LastError:      row.LastError,
	}, nil
}
