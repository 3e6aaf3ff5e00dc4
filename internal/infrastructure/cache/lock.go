package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/alejandroruanova/text-refinery/internal/pkg/errors"
)

// DefaultLockTTL bounds how long a crashed holder can block a dataset
const DefaultLockTTL = 10 * time.Minute

// releaseScript deletes the key only while it still holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript resets the expiry only while the key holds the caller's token
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker is a single-instance Redis lock built on SET NX with expiry
type RedisLocker struct {
	cache *RedisCache
	ttl   time.Duration
}

// NewRedisLocker creates a locker; ttl <= 0 uses DefaultLockTTL
func NewRedisLocker(cache *RedisCache, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLocker{cache: cache, ttl: ttl}
}

// Acquire takes the lock and returns the token needed to release it. A lock
// held by someone else is a CONFLICT error.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (string, error) {
	token := uuid.NewString()

	ok, err := l.cache.SetNX(ctx, key, token, l.ttl)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to acquire lock").
			WithDetails("key", key)
	}
	if !ok {
		return "", apperrors.Conflict("dataset is already being cleaned").
			WithDetails("key", key)
	}

	l.cache.logger.Debug("lock acquired",
		slog.String("key", key),
		slog.Duration("ttl", l.ttl))

	return token, nil
}

// TTL returns the expiry set on every acquire and extend
func (l *RedisLocker) TTL() time.Duration {
	return l.ttl
}

// Extend pushes the expiry of a held lock a full TTL into the future. A lock
// that expired or was taken over is a CONFLICT error.
func (l *RedisLocker) Extend(ctx context.Context, key, token string) error {
	extended, err := extendScript.Run(ctx, l.cache.client, []string{key}, token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to extend lock").
			WithDetails("key", key)
	}
	if extended == 0 {
		return apperrors.Conflict("dataset lock was lost").
			WithDetails("key", key)
	}
	return nil
}

// Release drops the lock if token still owns it. Releasing an expired or
// foreign lock is a no-op.
func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	deleted, err := releaseScript.Run(ctx, l.cache.client, []string{key}, token).Int()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to release lock").
			WithDetails("key", key)
	}

	if deleted == 0 {
		l.cache.logger.Warn("lock was no longer held at release", slog.String("key", key))
	}
	return nil
}
