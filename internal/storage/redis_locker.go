package storage

import (
	"context"
	"fmt"
	"igmetrics/internal/models"
	"igmetrics/internal/providers"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix     = "igm:lock:"
	defaultLockTTL    = 30 * time.Second
	defaultRetryDelay = 100 * time.Millisecond
)

var ErrLockNotAcquired = fmt.Errorf("%w: lock not acquired", models.ErrPersistenceConflict)

// unlockScript deletes the key only while it still holds our token.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`

// RedisLocker serializes profile updates across daemon instances.
type RedisLocker struct {
	client     redis.UniversalClient
	logger     providers.Logger
	ttl        time.Duration
	retryDelay time.Duration
	newToken   func() string
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, logger providers.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{
		client:     client,
		logger:     logger,
		ttl:        ttl,
		retryDelay: defaultRetryDelay,
		newToken:   func() string { return uuid.New().String() },
	}
}

// Lock polls SETNX until the key is free, the TTL elapses or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := lockKeyPrefix + key
	token := l.newToken()
	deadline := time.Now().Add(l.ttl)

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return func() { l.unlock(redisKey, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *RedisLocker) unlock(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := l.client.Eval(ctx, unlockScript, []string{redisKey}, token).Int64()
	if err != nil {
		l.logger.Errorf(providers.TypeApp, "Failed to release lock %s: %s", redisKey, err)
		return
	}
	if res == 0 {
		l.logger.Warnf(providers.TypeApp, "Lock %s expired before release", redisKey)
	}
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}
