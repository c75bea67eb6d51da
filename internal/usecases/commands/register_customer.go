package commands

import (
	"context"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/svc-order-outbox/internal/domain"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/service"
	"github.com/architeacher/svc-order-outbox/internal/shared/decorator"
)

type (
	RegisterCustomerCommand struct {
		Email    string
		FullName string
	}

	RegisterCustomerHandler decorator.CommandHandler[RegisterCustomerCommand, *domain.Customer]

	registerCustomerHandler struct {
		enqueueService service.EnqueueService
		logger         infrastructure.Logger
	}
)

func NewRegisterCustomerHandler(
	enqueueService service.EnqueueService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) RegisterCustomerHandler {
	return decorator.ApplyCommandDecorators[RegisterCustomerCommand, *domain.Customer](
		registerCustomerHandler{
			enqueueService: enqueueService,
			logger:         logger,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h registerCustomerHandler) Handle(
	ctx context.Context,
	cmd RegisterCustomerCommand,
) (*domain.Customer, error) {
	return h.enqueueService.RegisterCustomer(ctx, cmd.Email, cmd.FullName)
}
