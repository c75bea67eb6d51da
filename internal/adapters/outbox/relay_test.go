package outbox_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/architeacher/svc-order-outbox/internal/adapters/outbox"
	"github.com/architeacher/svc-order-outbox/internal/config"
	"github.com/architeacher/svc-order-outbox/internal/domain"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/usecases"
	"github.com/architeacher/svc-order-outbox/internal/usecases/commands"
)

type (
	fakeCycleHandler struct {
		cycles atomic.Int64
		result domain.RelayCycleResult
		err    error
	}

	fakeLease struct {
		granted atomic.Bool

		acquires atomic.Int64
		renewals atomic.Int64
		released atomic.Int64
	}
)

func (h *fakeCycleHandler) Handle(context.Context, commands.ProcessRelayCycleCommand) (domain.RelayCycleResult, error) {
	h.cycles.Add(1)

	return h.result, h.err
}

func (l *fakeLease) Acquire(context.Context) (bool, error) {
	l.acquires.Add(1)

	return l.granted.Load(), nil
}

func (l *fakeLease) Renew(context.Context) (bool, error) {
	l.renewals.Add(1)

	return l.granted.Load(), nil
}

func (l *fakeLease) Release(context.Context) error {
	l.released.Add(1)

	return nil
}

func relayConfig() config.OutboxConfig {
	return config.OutboxConfig{
		PollInterval: 5 * time.Millisecond,
		BatchSize:    20,
		MaxAttempts:  5,
	}
}

func relayApp(handler *fakeCycleHandler) *usecases.RelayApplication {
	return &usecases.RelayApplication{
		Commands: usecases.RelayCommands{
			ProcessRelayCycleHandler: handler,
		},
	}
}

func runRelay(t *testing.T, relay *adapter.Relay, duration time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	err := relay.Start(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRelayRunsCyclesUntilCancelled(t *testing.T) {
	t.Parallel()

	handler := &fakeCycleHandler{result: domain.RelayCycleResult{Fetched: 2, Published: 2}}
	relay := adapter.NewRelay(relayApp(handler), nil, relayConfig(), infrastructure.NewNop())

	runRelay(t, relay, 40*time.Millisecond)

	assert.GreaterOrEqual(t, handler.cycles.Load(), int64(2), "the relay must keep polling")

	status := relay.LastCycle()
	require.NotNil(t, status.CompletedAt)
	assert.Empty(t, status.Error)
}

func TestRelayRecordsCycleFailure(t *testing.T) {
	t.Parallel()

	handler := &fakeCycleHandler{err: errors.New("storage down")}
	relay := adapter.NewRelay(relayApp(handler), nil, relayConfig(), infrastructure.NewNop())

	runRelay(t, relay, 20*time.Millisecond)

	assert.GreaterOrEqual(t, handler.cycles.Load(), int64(1))

	status := relay.LastCycle()
	require.NotNil(t, status.CompletedAt)
	assert.Equal(t, "storage down", status.Error)
}

func TestRelayStaysIdleWithoutLease(t *testing.T) {
	t.Parallel()

	handler := &fakeCycleHandler{}
	lease := &fakeLease{}
	relay := adapter.NewRelay(relayApp(handler), lease, relayConfig(), infrastructure.NewNop())

	runRelay(t, relay, 30*time.Millisecond)

	assert.Zero(t, handler.cycles.Load(), "a denied lease must keep the relay idle")
	assert.GreaterOrEqual(t, lease.acquires.Load(), int64(2), "an idle relay keeps bidding for the lease")
	assert.Zero(t, lease.released.Load(), "nothing to release when the lease was never held")
}

func TestRelayRenewsHeldLeaseAndReleasesOnShutdown(t *testing.T) {
	t.Parallel()

	handler := &fakeCycleHandler{}
	lease := &fakeLease{}
	lease.granted.Store(true)

	relay := adapter.NewRelay(relayApp(handler), lease, relayConfig(), infrastructure.NewNop())

	runRelay(t, relay, 40*time.Millisecond)

	assert.Equal(t, int64(1), lease.acquires.Load(), "a held lease is renewed, not re-acquired")
	assert.GreaterOrEqual(t, lease.renewals.Load(), int64(1))
	assert.GreaterOrEqual(t, handler.cycles.Load(), int64(2))
	assert.Equal(t, int64(1), lease.released.Load())
}

func TestRelayGoesIdleWhenLeaseIsLost(t *testing.T) {
	t.Parallel()

	handler := &fakeCycleHandler{}
	lease := &fakeLease{}
	lease.granted.Store(true)

	relay := adapter.NewRelay(relayApp(handler), lease, relayConfig(), infrastructure.NewNop())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- relay.Start(ctx) }()

	require.Eventually(t, func() bool {
		return handler.cycles.Load() >= 1
	}, time.Second, time.Millisecond)

	lease.granted.Store(false)

	cyclesAtLoss := handler.cycles.Load()

	require.Eventually(t, func() bool {
		return lease.renewals.Load()+lease.acquires.Load() >= 5
	}, time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	assert.LessOrEqual(t, handler.cycles.Load(), cyclesAtLoss+1, "at most the in-flight cycle may finish after the lease is lost")
	assert.Zero(t, lease.released.Load(), "a lost lease must not be released on shutdown")
}
