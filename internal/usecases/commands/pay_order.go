package commands

import (
	"context"

	"github.com/google/uuid"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/svc-order-outbox/internal/domain"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/service"
	"github.com/architeacher/svc-order-outbox/internal/shared/decorator"
)

type (
	PayOrderCommand struct {
		OrderID uuid.UUID
	}

	PayOrderHandler decorator.CommandHandler[PayOrderCommand, *domain.Order]

	payOrderHandler struct {
		enqueueService service.EnqueueService
		logger         infrastructure.Logger
	}
)

func NewPayOrderHandler(
	enqueueService service.EnqueueService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) PayOrderHandler {
	return decorator.ApplyCommandDecorators[PayOrderCommand, *domain.Order](
		payOrderHandler{
			enqueueService: enqueueService,
			logger:         logger,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h payOrderHandler) Handle(
	ctx context.Context,
	cmd PayOrderCommand,
) (*domain.Order, error) {
	return h.enqueueService.PayOrder(ctx, cmd.OrderID)
}
