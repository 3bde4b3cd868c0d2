package cache

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisLocker serializes chat turns per session via redsync. Lock acquisition
// is best-effort: if the mutex cannot be taken the caller proceeds unlocked,
// since losing serialization is preferable to failing the turn.
type RedisLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
	log    zerolog.Logger
}

// NewRedisLocker builds a locker over an existing Redis client.
func NewRedisLocker(client goredislib.UniversalClient, expiry time.Duration, log zerolog.Logger) *RedisLocker {
	if expiry <= 0 {
		expiry = 30 * time.Second
	}
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: expiry,
		log:    log.With().Str("component", "redis-locker").Logger(),
	}
}

// Lock acquires the named mutex and returns its release function.
func (l *RedisLocker) Lock(ctx context.Context, name string) func() {
	mutex := l.rs.NewMutex("lock:"+name, redsync.WithExpiry(l.expiry), redsync.WithTries(3))

	if err := mutex.LockContext(ctx); err != nil {
		l.log.Warn().Err(err).Str("lock", name).Msg("lock acquisition failed, proceeding unlocked")
		return func() {}
	}

	return func() {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			l.log.Warn().Err(err).Str("lock", name).Msg("failed to release lock")
		}
	}
}
