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
	PlaceOrderCommand struct {
		CustomerID  uuid.UUID
		AmountCents int64
		Currency    string
	}

	PlaceOrderHandler decorator.CommandHandler[PlaceOrderCommand, *domain.Order]

	placeOrderHandler struct {
		enqueueService service.EnqueueService
		logger         infrastructure.Logger
	}
)

func NewPlaceOrderHandler(
	enqueueService service.EnqueueService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) PlaceOrderHandler {
	return decorator.ApplyCommandDecorators[PlaceOrderCommand, *domain.Order](
		placeOrderHandler{
			enqueueService: enqueueService,
			logger:         logger,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h placeOrderHandler) Handle(
	ctx context.Context,
	cmd PlaceOrderCommand,
) (*domain.Order, error) {
	return h.enqueueService.PlaceOrder(ctx, cmd.CustomerID, cmd.AmountCents, cmd.Currency)
}
