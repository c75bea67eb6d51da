package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/architeacher/svc-order-outbox/internal/config"
	"github.com/architeacher/svc-order-outbox/internal/domain"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/ports"
	"github.com/architeacher/svc-order-outbox/internal/usecases"
	"github.com/architeacher/svc-order-outbox/internal/usecases/commands"
)

// Ensure Relay implements the BackgroundProcessor interface
var _ ports.BackgroundProcessor = (*Relay)(nil)

type (
	// Relay drives the poll loop. Cycles never overlap: the timer is armed
	// only after the previous cycle has finished, so a slow broker stretches
	// the period instead of stacking batches.
	//
	// With a lease configured, only the instance holding it processes; the
	// others keep bidding every interval and take over when the holder dies.
	Relay struct {
		app    *usecases.RelayApplication
		lease  ports.Lease
		config config.OutboxConfig
		logger infrastructure.Logger

		mutex     sync.RWMutex
		lastCycle domain.CycleStatus
		holding   bool
	}
)

func NewRelay(
	app *usecases.RelayApplication,
	lease ports.Lease,
	cfg config.OutboxConfig,
	logger infrastructure.Logger,
) *Relay {
	return &Relay{
		app:    app,
		lease:  lease,
		config: cfg,
		logger: logger,
	}
}

// Start blocks until ctx is cancelled. Cycle failures are logged and the
// loop keeps going; only cancellation ends it.
func (r *Relay) Start(ctx context.Context) error {
	r.logger.Info().
		Dur("poll_interval", r.config.PollInterval).
		Int("batch_size", r.config.BatchSize).
		Msg("starting outbox relay")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("outbox relay shutting down")
			r.releaseLease()

			return ctx.Err()

		case <-timer.C:
			if r.activate(ctx) {
				r.runCycle(ctx)
			}

			timer.Reset(r.config.PollInterval)
		}
	}
}

// LastCycle reports when the previous cycle completed and whether it failed.
func (r *Relay) LastCycle() domain.CycleStatus {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.lastCycle
}

// activate reports whether this instance may process right now. Without a
// lease every instance is active, which is only safe single-instance.
func (r *Relay) activate(ctx context.Context) bool {
	if r.lease == nil {
		return true
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.holding {
		renewed, err := r.lease.Renew(ctx)
		if err != nil {
			r.logger.Warn().Err(err).Msg("failed to renew relay lease")
		}

		if !renewed {
			r.logger.Info().Msg("lost relay lease, going idle")
		}

		r.holding = renewed

		return r.holding
	}

	acquired, err := r.lease.Acquire(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to acquire relay lease")

		return false
	}

	if acquired {
		r.logger.Info().Msg("acquired relay lease")
	}

	r.holding = acquired

	return r.holding
}

func (r *Relay) runCycle(ctx context.Context) {
	result, err := r.app.Commands.ProcessRelayCycleHandler.Handle(ctx, commands.ProcessRelayCycleCommand{})

	completedAt := time.Now().UTC()
	status := domain.CycleStatus{CompletedAt: &completedAt}

	if err != nil {
		status.Error = err.Error()
		r.logger.Error().Err(err).Msg("relay cycle failed")
	} else if result.Fetched > 0 {
		r.logger.Info().
			Int("fetched", result.Fetched).
			Int("published", result.Published).
			Int("failed", result.Failed).
			Int("quarantined", result.Quarantined).
			Msg("relay cycle completed")
	}

	r.mutex.Lock()
	r.lastCycle = status
	r.mutex.Unlock()
}

func (r *Relay) releaseLease() {
	if r.lease == nil {
		return
	}

	r.mutex.Lock()
	holding := r.holding
	r.holding = false
	r.mutex.Unlock()

	if !holding {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.lease.Release(ctx); err != nil {
		r.logger.Warn().Err(err).Msg("failed to release relay lease")
	}
}
