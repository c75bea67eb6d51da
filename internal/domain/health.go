package domain

import "time"

const (
	DependencyCheckStatusHealthy   DependencyCheckStatus = "healthy"
	DependencyCheckStatusUnhealthy DependencyCheckStatus = "unhealthy"
)

type (
	DependencyCheckStatus string

	DependencyStatus struct {
		Status  DependencyCheckStatus `json:"status"`
		Latency time.Duration         `json:"latency"`
		Error   string                `json:"error,omitempty"`
	}

	// HealthResult is ok iff the last relay cycle completed without a
	// top-level failure and both the database and the broker were
	// reachable.
	HealthResult struct {
		OK        bool             `json:"ok"`
		Storage   DependencyStatus `json:"storage"`
		Broker    DependencyStatus `json:"broker"`
		LastCycle CycleStatus      `json:"last_cycle"`
		Uptime    float32          `json:"uptime_seconds"`
	}

	CycleStatus struct {
		CompletedAt *time.Time `json:"completed_at,omitempty"`
		Error       string     `json:"error,omitempty"`
	}
)
