// Package runlock provides a best-effort distributed lock so overlapping
// pipeline runs (scheduler tick plus a manual API trigger, or two replicas)
// do not double-send the daily digest.
package runlock

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

type Lock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// New builds a lock around one redis key. The TTL bounds how long a crashed
// run can block the next one.
func New(client *redis.Client, key string, ttl time.Duration, logger *slog.Logger) *Lock {
	return &Lock{
		client: client,
		key:    key,
		ttl:    ttl,
		logger: logger.With("component", "runlock"),
	}
}

// Acquire takes the lock if nobody holds it. Returns false when another run
// owns the key.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	holder := fmt.Sprintf("%s:%d", hostname(), os.Getpid())
	ok, err := l.client.SetNX(ctx, l.key, holder, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if ok {
		l.logger.Debug("lock acquired", "key", l.key, "ttl", l.ttl)
	}
	return ok, nil
}

// Release frees the lock early instead of waiting for the TTL.
func (l *Lock) Release(ctx context.Context) error {
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
