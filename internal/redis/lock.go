package redisclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("workspace lock not acquired")
)

// Locker serialises mutations of one owner's scheduling workspace.
type Locker interface {
	WithOwnerLock(ctx context.Context, ownerID string, fn func(ctx context.Context) error) error
}

type redisOwnerLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisOwnerLocker creates a locker shared by every server instance, keyed
// per owner. A busy lock fails fast with ErrLockNotAcquired.
func NewRedisOwnerLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisOwnerLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisOwnerLocker) WithOwnerLock(ctx context.Context, ownerID string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:workspace:%s", ownerID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire workspace lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(context.WithoutCancel(ctx), key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisOwnerLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release workspace lock: %w", err)
	}
	return nil
}

type localOwnerLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocalLocker serialises owners inside this process only. Used when Redis
// is not configured.
func NewLocalLocker() Locker {
	return &localOwnerLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *localOwnerLocker) WithOwnerLock(ctx context.Context, ownerID string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	m, ok := l.locks[ownerID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[ownerID] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}
