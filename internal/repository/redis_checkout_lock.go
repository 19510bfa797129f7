package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisCheckoutLock struct {
	client redis.UniversalClient
}

func NewRedisCheckoutLock(client redis.UniversalClient) *RedisCheckoutLock {
	return &RedisCheckoutLock{client: client}
}

func checkoutLockKey(ownerID string) string {
	return fmt.Sprintf("checkout_lock:%s", ownerID)
}

// Acquire reports false when another submission of the same visitor holds the
// lock. The TTL bounds how long a crashed submission can block the visitor.
func (l *RedisCheckoutLock) Acquire(ctx context.Context, ownerID, token string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, checkoutLockKey(ownerID), token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire checkout lock: %w", err)
	}

	return ok, nil
}

// Release is a no-op once the lock expired and another submission took it.
func (l *RedisCheckoutLock) Release(ctx context.Context, ownerID, token string) error {
	err := releaseScript.Run(ctx, l.client, []string{checkoutLockKey(ownerID)}, token).Err()
	if err != nil {
		return fmt.Errorf("failed to release checkout lock: %w", err)
	}

	return nil
}
