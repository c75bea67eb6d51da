package domain

import (
	"time"

	"github.com/google/uuid"
)

type (
	// OutboxRecord is a row in the engine's table describing a domain event
	// awaiting publication. Its ID doubles as the broker message id so
	// consumers can deduplicate redeliveries.
	OutboxRecord struct {
		ID             uuid.UUID  `json:"id"`
		TypeTag        string     `json:"type_tag"`
		Payload        []byte     `json:"payload"`
		OccurredOnUTC  time.Time  `json:"occurred_on_utc"`
		ProcessedOnUTC *time.Time `json:"processed_on_utc,omitempty"`
		Attempts       int        `json:"attempts"`
		LastError      *string    `json:"last_error,omitempty"`
	}
)

// NewOutboxRecord builds an unpublished record for an already-encoded event.
// A v7 UUID keeps ids roughly time-ordered, which keeps the primary key
// index append-mostly.
func NewOutboxRecord(typeTag string, payload []byte, occurredOn time.Time) (*OutboxRecord, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	return &OutboxRecord{
		ID:            id,
		TypeTag:       typeTag,
		Payload:       payload,
		OccurredOnUTC: occurredOn.UTC(),
		Attempts:      0,
	}, nil
}

// MarkProcessed records a confirmed publication. The first call wins;
// repeated calls keep the original timestamp.
func (r *OutboxRecord) MarkProcessed(processedOn time.Time) {
	if r.ProcessedOnUTC != nil {
		return
	}

	when := processedOn.UTC()
	r.ProcessedOnUTC = &when
	r.LastError = nil
}

// RecordFailure notes one failed publish attempt.
func (r *OutboxRecord) RecordFailure(reason string) {
	r.Attempts++
	r.LastError = &reason
}

// Quarantine puts the record into its terminal failure state. It is excluded
// from future fetches but retained for inspection and archival.
func (r *OutboxRecord) Quarantine(maxAttempts int, reason string) {
	if r.Attempts < maxAttempts {
		r.Attempts = maxAttempts
	}
	r.LastError = &reason
}

func (r *OutboxRecord) IsProcessed() bool {
	return r.ProcessedOnUTC != nil
}

func (r *OutboxRecord) IsQuarantined(maxAttempts int) bool {
	return r.Attempts >= maxAttempts
}
