package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/banko/internal/core/domain"
)

const (
	drawLockKey       = "banko:draw-lock"
	sessionKeyPrefix  = "banko:session:"
	lockTTL           = 10 * time.Second
	lockRetryInterval = 25 * time.Millisecond
)

// Only the owner of the lock token may delete the key.
var releaseLockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisAdapter provides the cross-process draw lock and the session store.
type RedisAdapter struct {
	client     *redis.Client
	sessionTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, sessionTTL time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, sessionTTL: sessionTTL}
}

func (r *RedisAdapter) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, drawLockKey, token, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			return func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				releaseLockScript.Run(ctx, r.client, []string{drawLockKey}, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (r *RedisAdapter) Create(ctx context.Context, principal domain.Principal) (string, error) {
	token := uuid.NewString()
	if err := r.client.Set(ctx, sessionKeyPrefix+token, string(principal), r.sessionTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (r *RedisAdapter) Principal(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Anonymous, nil
	}
	value, err := r.client.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Anonymous, nil
	}
	if err != nil {
		return domain.Anonymous, err
	}
	return domain.Principal(value), nil
}

func (r *RedisAdapter) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, sessionKeyPrefix+token).Err()
}
