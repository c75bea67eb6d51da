package runtime

import (
	"context"
	"fmt"

	"github.com/architeacher/svc-order-outbox/internal/adapters"
	"github.com/architeacher/svc-order-outbox/internal/adapters/broker"
	"github.com/architeacher/svc-order-outbox/internal/adapters/lease"
	"github.com/architeacher/svc-order-outbox/internal/adapters/outbox"
	"github.com/architeacher/svc-order-outbox/internal/adapters/repos"
	"github.com/architeacher/svc-order-outbox/internal/adapters/uow"
	"github.com/architeacher/svc-order-outbox/internal/eventcodec"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/service"
	"github.com/architeacher/svc-order-outbox/internal/shared/backoff"
	"github.com/architeacher/svc-order-outbox/internal/usecases"
	"go.opentelemetry.io/otel"
)

type (
	DependencyOption func(*Dependencies) error
)

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithStorage(ctx),
		WithDataRepos(),
		WithUnitOfWork(),
		WithMetrics(ctx),
		WithActionsMetrics(),
		WithTracing(ctx),
	}
}

func WithStorage(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		storage, err := infrastructure.NewStorage(ctx, d.cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}

		d.Infra.StorageClient = storage

		return nil
	}
}

func WithDataRepos() DependencyOption {
	return func(d *Dependencies) error {
		db := d.Infra.StorageClient.DB

		d.Repos.OutboxRepo = repos.NewOutboxRepository(db)
		d.Repos.OrderRepo = repos.NewOrderRepository(db)
		d.Repos.CustomerRepo = repos.NewCustomerRepository(db)

		return nil
	}
}

func WithUnitOfWork() DependencyOption {
	return func(d *Dependencies) error {
		db := d.Infra.StorageClient.DB

		d.UnitOfWork = uow.NewFactory(
			db,
			repos.NewOrderRepository(db),
			repos.NewCustomerRepository(db),
			repos.NewOutboxRepository(db),
			backoff.NewExponentialStrategy(d.cfg.Backoff),
			d.cfg.Storage.SaveRetryCount,
			d.logger,
		)

		return nil
	}
}

func WithMetrics(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		metrics, err := infrastructure.NewMetrics(ctx, *d.cfg, d.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}

		d.Infra.Metrics = metrics

		return nil
	}
}

// WithActionsMetrics registers the use-case counter once; the decorator
// chains of every application share it.
func WithActionsMetrics() DependencyOption {
	return func(d *Dependencies) error {
		d.actionsMetrics = infrastructure.NewActionsMetricsClient()

		return nil
	}
}

func WithTracing(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		tracerProvider, tracerShutdownFunc, err := infrastructure.NewTracerProvider(ctx, *d.cfg)
		if err != nil {
			d.logger.Error().Err(err).Msg("failed to initialize tracer")

			return err
		}

		otel.SetTracerProvider(tracerProvider)
		d.tracerShutdownFunc = tracerShutdownFunc

		return nil
	}
}

func WithQueue() DependencyOption {
	return func(d *Dependencies) error {
		queueClient := infrastructure.NewQueue(d.cfg.Broker, d.logger)

		if err := queueClient.Connect(); err != nil {
			return fmt.Errorf("failed to connect to queue: %w", err)
		}

		d.Infra.QueueClient = queueClient

		return nil
	}
}

// WithLease is a no-op when no Redis address is configured; the relay then
// runs unleased, which is only safe single-instance.
func WithLease() DependencyOption {
	return func(d *Dependencies) error {
		if d.cfg.Lease.Addr == "" {
			d.logger.Warn().Msg("no lease configured, running without relay election")

			return nil
		}

		d.Infra.LeaseClient = lease.NewRedisLease(d.cfg.Lease)

		return nil
	}
}

// WithEnqueuer wires the business command side: unit of work, codec and the
// command handlers on top.
func WithEnqueuer() DependencyOption {
	return func(d *Dependencies) error {
		enqueueService := service.NewEnqueueService(
			d.UnitOfWork,
			eventcodec.DefaultRegistry(),
			nil,
			d.logger,
			d.Infra.Metrics,
		)

		d.Apps.Enqueue = usecases.NewEnqueueApplication(
			enqueueService,
			d.logger,
			otel.GetTracerProvider(),
			d.actionsMetrics,
		)

		return nil
	}
}

// WithRelay wires the publishing side: broker connection, exchange topology,
// the cycle handler and the polling worker, plus the ops listener reporting
// their health.
func WithRelay() DependencyOption {
	return func(d *Dependencies) error {
		if err := WithQueue()(d); err != nil {
			return err
		}

		if err := WithLease()(d); err != nil {
			return err
		}

		publisher := broker.NewPublisher(d.cfg.Broker, d.Infra.QueueClient, d.logger)
		if err := publisher.Setup(); err != nil {
			return fmt.Errorf("failed to set up broker topology: %w", err)
		}

		relayService := service.NewRelayService(
			d.Repos.OutboxRepo,
			publisher,
			eventcodec.DefaultRegistry(),
			d.cfg.Outbox,
			nil,
			d.logger,
			d.Infra.Metrics,
		)

		d.Apps.Relay = usecases.NewRelayApplication(
			relayService,
			d.logger,
			otel.GetTracerProvider(),
			d.actionsMetrics,
		)

		d.Workers.OutboxRelay = outbox.NewRelay(
			d.Apps.Relay,
			d.Infra.LeaseClient,
			d.cfg.Outbox,
			d.logger,
		)

		if d.cfg.OpsServer.Enabled {
			healthChecker := adapters.NewHealthChecker(
				d.Infra.StorageClient,
				d.Infra.QueueClient,
				d.Workers.OutboxRelay,
			)

			d.Infra.OpsServer = initOpsServer(d.cfg, d.logger, d.Infra.Metrics, healthChecker)
		}

		return nil
	}
}
