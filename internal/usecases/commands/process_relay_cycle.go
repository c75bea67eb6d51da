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
	ProcessRelayCycleCommand struct{}

	ProcessRelayCycleHandler decorator.CommandHandler[ProcessRelayCycleCommand, domain.RelayCycleResult]

	processRelayCycleHandler struct {
		relayService service.RelayService
		logger       infrastructure.Logger
	}
)

func NewProcessRelayCycleHandler(
	relayService service.RelayService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) ProcessRelayCycleHandler {
	return decorator.ApplyCommandDecorators[ProcessRelayCycleCommand, domain.RelayCycleResult](
		processRelayCycleHandler{
			relayService: relayService,
			logger:       logger,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h processRelayCycleHandler) Handle(
	ctx context.Context,
	_ ProcessRelayCycleCommand,
) (domain.RelayCycleResult, error) {
	return h.relayService.ProcessCycle(ctx)
}
