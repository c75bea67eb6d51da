package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/architeacher/svc-order-outbox/internal/adapters/broker"
	"github.com/architeacher/svc-order-outbox/internal/config"
	"github.com/architeacher/svc-order-outbox/internal/domain"
	"github.com/architeacher/svc-order-outbox/internal/eventcodec"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/ports"
)

type (
	// RelayService drains the outbox table towards the broker, one batch
	// per cycle. Every record is handled independently: a failing record
	// never blocks the ones behind it, and each mark is written directly to
	// the pool so progress survives a crash mid-batch.
	RelayService interface {
		ProcessCycle(ctx context.Context) (domain.RelayCycleResult, error)
		FetchQuarantined(ctx context.Context, limit int) ([]*domain.OutboxRecord, error)
	}

	relayService struct {
		outboxRepo ports.OutboxRepository
		publisher  ports.Publisher
		codec      *eventcodec.Registry
		config     config.OutboxConfig
		clock      func() time.Time
		logger     infrastructure.Logger
		metrics    infrastructure.Metrics
	}
)

func NewRelayService(
	outboxRepo ports.OutboxRepository,
	publisher ports.Publisher,
	codec *eventcodec.Registry,
	cfg config.OutboxConfig,
	clock func() time.Time,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
) RelayService {
	if clock == nil {
		clock = time.Now
	}

	return relayService{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		codec:      codec,
		config:     cfg,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// ProcessCycle publishes one batch of unpublished records, oldest first.
// A cancelled context stops the batch between records; the in-flight record
// finishes its bookkeeping so its attempt is not lost.
func (s relayService) ProcessCycle(ctx context.Context) (domain.RelayCycleResult, error) {
	started := s.clock()

	records, err := s.outboxRepo.FetchUnpublished(ctx, s.config.BatchSize, s.config.MaxAttempts)
	if err != nil {
		s.metrics.RecordCycle(ctx, 0, s.clock().Sub(started), true)

		return domain.RelayCycleResult{}, fmt.Errorf("failed to fetch unpublished records: %w", err)
	}

	result := domain.RelayCycleResult{Fetched: len(records)}

	for _, record := range records {
		if ctx.Err() != nil {
			break
		}

		switch s.processRecord(ctx, record) {
		case recordPublished:
			result.Published++
		case recordQuarantined:
			result.Quarantined++
		case recordFailed:
			result.Failed++
		}
	}

	s.metrics.RecordCycle(ctx, result.Fetched, s.clock().Sub(started), false)

	return result, nil
}

func (s relayService) FetchQuarantined(ctx context.Context, limit int) ([]*domain.OutboxRecord, error) {
	return s.outboxRepo.FetchQuarantined(ctx, limit, s.config.MaxAttempts)
}

type recordOutcome int

const (
	recordPublished recordOutcome = iota
	recordQuarantined
	recordFailed
)

func (s relayService) processRecord(ctx context.Context, record *domain.OutboxRecord) recordOutcome {
	tag := domain.EventTypeTag(record.TypeTag)

	// Decode before publishing so schema problems are caught here and not
	// pushed onto every consumer. The original payload still goes out
	// verbatim on success.
	if _, err := s.codec.Decode(tag, record.Payload); err != nil {
		if errors.Is(err, eventcodec.ErrUnknownType) || errors.Is(err, eventcodec.ErrMalformed) {
			return s.quarantine(ctx, record, err)
		}

		return s.fail(ctx, record, err)
	}

	publishStarted := s.clock()
	err := s.publisher.Publish(ctx, ports.OutboxMessage{
		ID:      record.ID,
		TypeTag: tag,
		Payload: record.Payload,
	})
	s.metrics.RecordPublish(ctx, record.TypeTag, err == nil, s.clock().Sub(publishStarted))

	if err != nil {
		return s.fail(ctx, record, err)
	}

	if err := s.outboxRepo.MarkProcessed(ctx, record.ID, s.clock()); err != nil {
		// The message is out; the record stays unpublished and will be
		// republished next cycle under the same message id.
		s.logger.Error().
			Err(err).
			Str("record_id", record.ID.String()).
			Msg("published but failed to mark record as processed")

		return recordFailed
	}

	s.logger.Debug().
		Str("record_id", record.ID.String()).
		Str("event_type", record.TypeTag).
		Msg("outbox record published")

	return recordPublished
}

// quarantine parks a record that can never publish successfully: its attempt
// counter jumps to the ceiling so fetches skip it from now on.
func (s relayService) quarantine(ctx context.Context, record *domain.OutboxRecord, cause error) recordOutcome {
	record.Quarantine(s.config.MaxAttempts, cause.Error())

	if err := s.outboxRepo.MarkFailed(ctx, record.ID, cause.Error(), record.Attempts); err != nil {
		s.logger.Error().
			Err(err).
			Str("record_id", record.ID.String()).
			Msg("failed to quarantine record")

		return recordFailed
	}

	s.metrics.RecordQuarantine(ctx, record.TypeTag, cause.Error())

	s.logger.Warn().
		Str("record_id", record.ID.String()).
		Str("event_type", record.TypeTag).
		Str("reason", cause.Error()).
		Msg("outbox record quarantined")

	return recordQuarantined
}

// fail books one failed attempt. Transient and permanent broker failures
// count the same; classification only changes what gets logged. A cancelled
// publish is transient by definition, the next holder of the lease retries.
func (s relayService) fail(ctx context.Context, record *domain.OutboxRecord, cause error) recordOutcome {
	record.RecordFailure(cause.Error())

	// Bookkeeping must survive the shutdown that may have caused the
	// failure, so it runs on a background-derived context.
	markCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		markCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	if err := s.outboxRepo.MarkFailed(markCtx, record.ID, cause.Error(), record.Attempts); err != nil {
		s.logger.Error().
			Err(err).
			Str("record_id", record.ID.String()).
			Msg("failed to record publish failure")

		return recordFailed
	}

	event := s.logger.Warn().
		Str("record_id", record.ID.String()).
		Str("event_type", record.TypeTag).
		Int("attempts", record.Attempts).
		Bool("permanent", broker.IsPermanent(cause))

	if record.Attempts >= s.config.MaxAttempts {
		s.metrics.RecordQuarantine(markCtx, record.TypeTag, "max attempts exceeded")
		event.Err(cause).Msg("outbox record exhausted its attempts")

		return recordQuarantined
	}

	event.Err(cause).Msg("failed to publish outbox record")

	return recordFailed
}
