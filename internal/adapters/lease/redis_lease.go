package lease

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/architeacher/svc-order-outbox/internal/config"
	"github.com/architeacher/svc-order-outbox/internal/ports"
)

// The scripts compare the stored token before touching the key so an
// instance can never renew or release a lease another instance has since
// acquired.
var (
	renewScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end`)

	releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`)
)

type (
	// RedisLease elects a single active relay via a token-fenced expiring
	// key. Losing the lease is not an error; the relay simply goes idle
	// until it wins again.
	RedisLease struct {
		client *redis.Client
		key    string
		token  string
		config config.LeaseConfig
	}
)

func NewRedisLease(cfg config.LeaseConfig) *RedisLease {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	return &RedisLease{
		client: client,
		key:    cfg.Key,
		token:  uuid.NewString(),
		config: cfg,
	}
}

// Acquire tries to take the lease. It returns false without error when
// another instance holds it.
func (l *RedisLease) Acquire(ctx context.Context) (bool, error) {
	acquired, err := l.client.SetNX(ctx, l.key, l.token, l.config.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease: %w", err)
	}

	return acquired, nil
}

// Renew extends the lease if this instance still holds it.
func (l *RedisLease) Renew(ctx context.Context) (bool, error) {
	renewed, err := renewScript.Run(ctx, l.client, []string{l.key}, l.token, l.config.TTL.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to renew lease: %w", err)
	}

	return renewed == 1, nil
}

// Release gives the lease up if this instance holds it. Releasing a lease
// held by someone else is a no-op.
func (l *RedisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release lease: %w", err)
	}

	return nil
}

// Close releases the underlying Redis connection pool.
func (l *RedisLease) Close() error {
	return l.client.Close()
}

var _ ports.Lease = (*RedisLease)(nil)
