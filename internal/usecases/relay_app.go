package usecases

import (
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/service"
	"github.com/architeacher/svc-order-outbox/internal/shared/decorator"
	"github.com/architeacher/svc-order-outbox/internal/usecases/commands"
	"github.com/architeacher/svc-order-outbox/internal/usecases/queries"
)

type (
	// RelayApplication exposes the relay's cycle command and the
	// operational queries over the outbox table.
	RelayApplication struct {
		Commands RelayCommands
		Queries  RelayQueries
	}

	RelayCommands struct {
		ProcessRelayCycleHandler commands.ProcessRelayCycleHandler
	}

	RelayQueries struct {
		FetchQuarantinedRecordsQueryHandler queries.FetchQuarantinedRecordsQueryHandler
	}
)

func NewRelayApplication(
	relayService service.RelayService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) *RelayApplication {
	return &RelayApplication{
		Commands: RelayCommands{
			ProcessRelayCycleHandler: commands.NewProcessRelayCycleHandler(
				relayService,
				logger,
				tracerProvider,
				metricsClient,
			),
		},
		Queries: RelayQueries{
			FetchQuarantinedRecordsQueryHandler: queries.NewFetchQuarantinedRecordsQueryHandler(
				relayService,
				logger,
				tracerProvider,
				metricsClient,
			),
		},
	}
}
