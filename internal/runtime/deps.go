package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/architeacher/svc-order-outbox/internal/adapters/outbox"
	"github.com/architeacher/svc-order-outbox/internal/config"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/ports"
	"github.com/architeacher/svc-order-outbox/internal/usecases"
)

type (
	Applications struct {
		Enqueue *usecases.EnqueueApplication
		Relay   *usecases.RelayApplication
	}

	ApplicationWorkers struct {
		OutboxRelay *outbox.Relay
	}

	InfrastructureDeps struct {
		OpsServer     *http.Server
		StorageClient *infrastructure.Storage
		QueueClient   infrastructure.Queue
		LeaseClient   ports.Lease
		Metrics       infrastructure.Metrics
	}

	Repos struct {
		OutboxRepo   ports.OutboxRepository
		OrderRepo    ports.OrderRepository
		CustomerRepo ports.CustomerRepository
	}

	Dependencies struct {
		Apps    Applications
		Workers ApplicationWorkers

		cfg *config.ServiceConfig

		logger infrastructure.Logger

		Infra      InfrastructureDeps
		Repos      Repos
		UnitOfWork ports.UnitOfWorkFactory

		actionsMetrics     *infrastructure.ActionsMetricsClient
		tracerShutdownFunc infrastructure.TracerShutdownFunc
	}
)

func initializeDependencies(ctx context.Context, opts ...DependencyOption) (*Dependencies, error) {
	cfg, err := config.Init()
	if err != nil {
		return nil, fmt.Errorf("unable to load service configuration: %w", err)
	}

	appLogger := infrastructure.New(config.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	appLogger.Info().Msg("initializing dependencies...")

	deps := &Dependencies{
		cfg:    cfg,
		logger: appLogger,
	}

	// Start with default options and append any additional options.
	options := append(defaultOptions(ctx), opts...)

	for _, opt := range options {
		if err := opt(deps); err != nil {
			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	deps.logger.Info().Msg("dependencies initialized successfully")

	return deps, nil
}

// initOpsServer exposes the health report and the metrics endpoint on a
// dedicated listener, away from any business traffic.
func initOpsServer(
	cfg *config.ServiceConfig,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
	healthChecker ports.HealthChecker,
) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		result := healthChecker.CheckHealth(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if !result.OK {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		if err := writeJSON(w, result); err != nil {
			logger.Error().Err(err).Msg("failed to write health response")
		}
	})

	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.OpsServer.Host, fmt.Sprintf("%d", cfg.OpsServer.Port)),
		Handler:      mux,
		ReadTimeout:  cfg.OpsServer.ReadTimeout,
		WriteTimeout: cfg.OpsServer.WriteTimeout,
	}

	logger.Info().Str("addr", server.Addr).Msg("ops server created")

	return server
}

func writeJSON(w http.ResponseWriter, v any) error {
	return json.NewEncoder(w).Encode(v)
}
