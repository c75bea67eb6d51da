package adapters

import (
	"context"
	"time"

	"github.com/architeacher/svc-order-outbox/internal/domain"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/ports"
)

type (
	// cycleReporter is the slice of the relay the checker needs.
	cycleReporter interface {
		LastCycle() domain.CycleStatus
	}

	// HealthChecker probes the engine's two hard dependencies and folds in
	// the outcome of the last relay cycle.
	HealthChecker struct {
		storage   *infrastructure.Storage
		queue     infrastructure.Queue
		relay     cycleReporter
		startTime time.Time
	}
)

func NewHealthChecker(storage *infrastructure.Storage, queue infrastructure.Queue, relay cycleReporter) ports.HealthChecker {
	return &HealthChecker{
		storage:   storage,
		queue:     queue,
		relay:     relay,
		startTime: time.Now(),
	}
}

// CheckHealth is ok iff storage and broker respond and the last relay cycle
// did not fail at the top level.
func (h *HealthChecker) CheckHealth(ctx context.Context) domain.HealthResult {
	storageStatus := h.checkStorage(ctx)
	brokerStatus := h.checkBroker()
	lastCycle := h.relay.LastCycle()

	ok := storageStatus.Status == domain.DependencyCheckStatusHealthy &&
		brokerStatus.Status == domain.DependencyCheckStatusHealthy &&
		lastCycle.Error == ""

	return domain.HealthResult{
		OK:        ok,
		Storage:   storageStatus,
		Broker:    brokerStatus,
		LastCycle: lastCycle,
		Uptime:    float32(time.Since(h.startTime).Seconds()),
	}
}

func (h *HealthChecker) checkStorage(ctx context.Context) domain.DependencyStatus {
	start := time.Now()

	if err := h.storage.Ping(ctx); err != nil {
		return domain.DependencyStatus{
			Status:  domain.DependencyCheckStatusUnhealthy,
			Latency: time.Since(start),
			Error:   err.Error(),
		}
	}

	return domain.DependencyStatus{
		Status:  domain.DependencyCheckStatusHealthy,
		Latency: time.Since(start),
	}
}

func (h *HealthChecker) checkBroker() domain.DependencyStatus {
	start := time.Now()

	if !h.queue.IsConnected() {
		return domain.DependencyStatus{
			Status:  domain.DependencyCheckStatusUnhealthy,
			Latency: time.Since(start),
			Error:   "not connected to broker",
		}
	}

	return domain.DependencyStatus{
		Status:  domain.DependencyCheckStatusHealthy,
		Latency: time.Since(start),
	}
}
