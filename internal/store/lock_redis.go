package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultLockTTL   = 10 * time.Second
	defaultLockRetry = 25 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another replica is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisLockClient is the subset of *redis.Client the locker needs.
type redisLockClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	redis.Scripter
}

// RedisLocker serializes writers across replicas sharing one backing store.
type RedisLocker struct {
	client redisLockClient
	key    string
	ttl    time.Duration
	retry  time.Duration
	log    *zap.Logger
}

func NewRedisLocker(client redisLockClient, key string, ttl, retry time.Duration, log *zap.Logger) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if retry <= 0 {
		retry = defaultLockRetry
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisLocker{client: client, key: key, ttl: ttl, retry: retry, log: log}, nil
}

func (l *RedisLocker) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	t := time.NewTicker(l.retry)
	defer t.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("setnx %s: %w", l.key, err)
		}
		if ok {
			return func() { l.release(token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (l *RedisLocker) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
		l.log.Warn("release document lock failed", zap.String("key", l.key), zap.Error(err))
	}
}
