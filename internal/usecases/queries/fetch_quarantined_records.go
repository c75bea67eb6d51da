package queries

import (
	"context"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/svc-order-outbox/internal/domain"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/service"
	"github.com/architeacher/svc-order-outbox/internal/shared/decorator"
)

type (
	FetchQuarantinedRecordsQuery struct {
		Limit int
	}

	FetchQuarantinedRecordsQueryHandler decorator.QueryHandler[FetchQuarantinedRecordsQuery, []*domain.OutboxRecord]

	fetchQuarantinedRecordsQueryHandler struct {
		relayService service.RelayService
		logger       infrastructure.Logger
	}
)

func NewFetchQuarantinedRecordsQueryHandler(
	relayService service.RelayService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) FetchQuarantinedRecordsQueryHandler {
	return decorator.ApplyQueryDecorators[FetchQuarantinedRecordsQuery, []*domain.OutboxRecord](
		fetchQuarantinedRecordsQueryHandler{
			relayService: relayService,
			logger:       logger,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h fetchQuarantinedRecordsQueryHandler) Execute(
	ctx context.Context,
	query FetchQuarantinedRecordsQuery,
) ([]*domain.OutboxRecord, error) {
	return h.relayService.FetchQuarantined(ctx, query.Limit)
}
