package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serialises turns for one session id. The returned func releases
// the lock and is safe to call once.
type Locker interface {
	Lock(ctx context.Context, id string) (func(), error)
}

// KeyedMutex is an in-process Locker.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedEntry)}
}

func (k *KeyedMutex) Lock(ctx context.Context, id string) (func(), error) {
	k.mu.Lock()
	entry, ok := k.locks[id]
	if !ok {
		entry = &keyedEntry{ch: make(chan struct{}, 1)}
		k.locks[id] = entry
	}
	entry.refs++
	k.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(id, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.ch
			k.release(id, entry)
		})
	}, nil
}

func (k *KeyedMutex) release(id string, entry *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, id)
	}
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

const (
	defaultLockTTL   = 2 * time.Minute
	lockRetryBackoff = 50 * time.Millisecond
)

// RedisLocker shares turn locks between replicas. A lock that is never
// released expires after ttl.
type RedisLocker struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{redis: client, ttl: ttl}
}

// Lock polls until the lock is acquired or ctx ends. It returns
// ErrSessionLocked when ctx ends while another holder owns the key.
func (l *RedisLocker) Lock(ctx context.Context, id string) (func(), error) {
	key := lockKey(id)
	token := uuid.NewString()

	for {
		ok, err := l.redis.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", ErrSessionLocked, ctx.Err())
			}
			return nil, fmt.Errorf("session: failed to acquire lock for %s: %w", id, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrSessionLocked, ctx.Err())
		case <-time.After(lockRetryBackoff):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			// A failed release expires on its own after ttl.
			_ = unlockScript.Run(ctx, l.redis, []string{key}, token).Err()
		})
	}, nil
}

func lockKey(id string) string {
	return fmt.Sprintf("session-lock:%s", id)
}
