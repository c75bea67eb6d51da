package ports

import (
	"context"

	"github.com/architeacher/svc-order-outbox/internal/domain"
)

type (
	// HealthChecker reports whether the engine can reach its dependencies
	// and whether the last relay cycle completed cleanly.
	HealthChecker interface {
		CheckHealth(ctx context.Context) domain.HealthResult
	}
)
