package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownGrace = 10 * time.Second

// RelayCtx is the lifecycle of the relay process: the enqueue command side,
// the polling worker and the ops listener, torn down together on a signal.
type RelayCtx struct {
	deps *Dependencies

	shutdownChannel chan os.Signal

	backgroundActorCtx      context.Context
	backgroundActorStopFunc context.CancelFunc
}

func NewRelay(opt ...RelayOption) *RelayCtx {
	if len(opt) != 0 {
		rCtx := RelayCtx{}

		for i := range opt {
			opt[i](&rCtx)
		}

		return &rCtx
	}

	return &RelayCtx{
		shutdownChannel: make(chan os.Signal, 1),
	}
}

func (c *RelayCtx) Run() {
	c.build()
	c.start()
	c.shutdownHook()
	c.shutdown()
}

func (c *RelayCtx) build() {
	c.backgroundActorCtx, c.backgroundActorStopFunc = context.WithCancel(context.Background())

	deps, err := initializeDependencies(c.backgroundActorCtx, WithEnqueuer(), WithRelay())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	c.deps = deps
}

func (c *RelayCtx) start() {
	go func() {
		c.deps.logger.Info().Msg("starting outbox relay service")

		if err := c.deps.Workers.OutboxRelay.Start(c.backgroundActorCtx); err != nil && !errors.Is(err, context.Canceled) {
			c.deps.logger.Fatal().Err(err).Msg("outbox relay failed")
		}
	}()

	if c.deps.Infra.OpsServer != nil {
		go func() {
			if err := c.deps.Infra.OpsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				c.deps.logger.Fatal().Err(err).Msg("ops server failed")
			}
		}()
	}
}

func (c *RelayCtx) shutdownHook() {
	signal.Notify(c.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
}

func (c *RelayCtx) shutdown() {
	// Waits for one of the following shutdown conditions to happen.
	select {
	case <-c.backgroundActorCtx.Done():
	case <-c.shutdownChannel:
		defer close(c.shutdownChannel)
	}

	c.deps.logger.Info().Msg("received shutdown signal")

	// Cancel context so the relay finishes its in-flight record and stops.
	c.backgroundActorStopFunc()

	c.cleanup()

	c.deps.logger.Info().Msg("outbox relay service stopped")
}

func (c *RelayCtx) cleanup() {
	c.deps.logger.Info().Msg("cleaning up resources...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if c.deps.Infra.OpsServer != nil {
		if err := c.deps.Infra.OpsServer.Shutdown(ctx); err != nil {
			c.deps.logger.Error().Err(err).Msg("failed to shut down ops server")
		}
	}

	if c.deps.Infra.QueueClient != nil {
		if err := c.deps.Infra.QueueClient.Close(); err != nil {
			c.deps.logger.Error().Err(err).Msg("failed to close queue")
		}
	}

	if err := c.deps.Infra.Metrics.Shutdown(ctx); err != nil {
		c.deps.logger.Error().Err(err).Msg("failed to shut down metrics")
	}

	if err := c.deps.tracerShutdownFunc(ctx); err != nil {
		c.deps.logger.Error().Err(err).Msg("failed to shut down tracer")
	}

	if err := c.deps.Infra.StorageClient.Close(); err != nil {
		c.deps.logger.Error().Err(err).Msg("failed to close storage")
	}

	c.deps.logger.Info().Msg("cleanup completed")
}
