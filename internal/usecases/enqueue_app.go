package usecases

import (
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/service"
	"github.com/architeacher/svc-order-outbox/internal/shared/decorator"
	"github.com/architeacher/svc-order-outbox/internal/usecases/commands"
)

type (
	// EnqueueApplication exposes the business commands that feed the outbox.
	EnqueueApplication struct {
		Commands EnqueueCommands
	}

	EnqueueCommands struct {
		RegisterCustomerHandler commands.RegisterCustomerHandler
		PlaceOrderHandler       commands.PlaceOrderHandler
		PayOrderHandler         commands.PayOrderHandler
	}
)

func NewEnqueueApplication(
	enqueueService service.EnqueueService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) *EnqueueApplication {
	return &EnqueueApplication{
		Commands: EnqueueCommands{
			RegisterCustomerHandler: commands.NewRegisterCustomerHandler(
				enqueueService,
				logger,
				tracerProvider,
				metricsClient,
			),
			PlaceOrderHandler: commands.NewPlaceOrderHandler(
				enqueueService,
				logger,
				tracerProvider,
				metricsClient,
			),
			PayOrderHandler: commands.NewPayOrderHandler(
				enqueueService,
				logger,
				tracerProvider,
				metricsClient,
			),
		},
	}
}
