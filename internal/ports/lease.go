package ports

import "context"

type (
	// Lease elects one active relay across process instances. Acquire and
	// Renew report whether this instance currently holds the lease.
	Lease interface {
		Acquire(ctx context.Context) (bool, error)
		Renew(ctx context.Context) (bool, error)
		Release(ctx context.Context) error
	}
)
